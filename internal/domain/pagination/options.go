package pagination

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithWindowDays sets the window used to compute the cutoff date.
func WithWindowDays(days int) Option {
	return func(c *Controller) {
		if days > 0 {
			c.windowDays = days
		}
	}
}

// WithMaxPages sets the hard page ceiling.
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxPages = n
		}
	}
}
