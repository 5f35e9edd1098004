package source

import (
	"net/http"
	"time"

	"github.com/okian/rumorboard/pkg/logger"
)

// Default client configuration constants.
const (
	DefaultUserAgent   = "rumorboard/1.0 (+trade rumor tracker)"
	defaultTimeout     = 20 * time.Second
	defaultRetries     = 3
	defaultBackoffBase = 400 * time.Millisecond
	defaultBackoffMax  = 6 * time.Second
	defaultPageDelay   = 500 * time.Millisecond
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBasicAuth sets preview-site credentials. An empty user disables auth.
func WithBasicAuth(user, pass string) Option {
	return func(c *Client) {
		c.user = user
		c.pass = pass
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the exponential backoff base and cap.
func WithBackoff(base, maxBackoff time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoffBase = base
		}
		if maxBackoff >= base && maxBackoff > 0 {
			c.backoffMax = maxBackoff
		}
	}
}

// WithPageDelay sets the pause before every page after the first.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pageDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
