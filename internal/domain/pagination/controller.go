// Package pagination decides when to stop requesting rumor pages.
//
// The controller only decides when to stop. It never filters fragments;
// the scoring window does that downstream.
package pagination

import (
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
)

// Defaults for the controller.
const (
	DefaultWindowDays = 28
	DefaultMaxPages   = 50
)

// State of the controller.
type State int

const (
	Fetching State = iota
	CutoffReached
	Exhausted
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case CutoffReached:
		return "cutoff_reached"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Stop reasons.
const (
	ReasonCutoff      = "cutoff"
	ReasonEmptyPage   = "empty_page"
	ReasonLastPage    = "last_page"
	ReasonPageCeiling = "page_ceiling"
	ReasonFetchError  = "fetch_error"
)

// Page is one fetched page of fragments.
type Page struct {
	Fragments []model.CandidateFragment
	HasNext   bool
}

// Controller is the cutoff state machine. It is not safe for concurrent use.
type Controller struct {
	today      time.Time
	windowDays int
	maxPages   int

	state  State
	page   int
	reason string
}

// New creates a controller in the Fetching state on page 1.
func New(today time.Time, opts ...Option) *Controller {
	c := &Controller{
		today:      model.Day(today),
		windowDays: DefaultWindowDays,
		maxPages:   DefaultMaxPages,
		state:      Fetching,
		page:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Page returns the page number to fetch next, or the last page observed once done.
func (c *Controller) Page() int { return c.page }

// Done reports whether fetching has stopped.
func (c *Controller) Done() bool { return c.state != Fetching }

// Reason explains why fetching stopped; empty while fetching.
func (c *Controller) Reason() string { return c.reason }

// Cutoff is the oldest date still inside the window.
func (c *Controller) Cutoff() time.Time {
	return model.AddDays(c.today, -c.windowDays)
}

// Observe applies the transitions for the page just fetched and returns the
// new state. Observing after the controller is done is a no-op.
func (c *Controller) Observe(p Page) State {
	if c.Done() {
		return c.state
	}
	switch {
	case len(p.Fragments) == 0:
		c.stop(Exhausted, ReasonEmptyPage)
	case c.pastCutoff(p.Fragments):
		c.stop(CutoffReached, ReasonCutoff)
	case !p.HasNext:
		c.stop(Exhausted, ReasonLastPage)
	case c.page >= c.maxPages:
		c.stop(Exhausted, ReasonPageCeiling)
	default:
		c.page++
	}
	return c.state
}

// Fail ends fetching after a collaborator error.
func (c *Controller) Fail() {
	if !c.Done() {
		c.stop(Exhausted, ReasonFetchError)
	}
}

func (c *Controller) stop(s State, reason string) {
	c.state = s
	c.reason = reason
}

// pastCutoff compares the oldest parsed date on the page with the cutoff.
// Dateless fragments are ignored so an unparseable page never stops fetching.
func (c *Controller) pastCutoff(fragments []model.CandidateFragment) bool {
	var oldest time.Time
	for _, f := range fragments {
		if !f.HasDate() {
			continue
		}
		d := model.Day(f.Date)
		if oldest.IsZero() || d.Before(oldest) {
			oldest = d
		}
	}
	return !oldest.IsZero() && oldest.Before(c.Cutoff())
}
