// Package scoring ranks players by recency-weighted mention counts.
//
// Scores are a pure function of the record set and the as-of date, so they
// are recomputed on every read and never stored.
package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultWindowDays = 28
	bucketCount       = 3
)

// Bucket is one recency tier. A record lands in the first bucket whose
// UpperDays exceeds its days-ago value.
type Bucket struct {
	UpperDays int
	Weight    float64
}

// DefaultBuckets are the recent, mid and old tiers.
func DefaultBuckets() []Bucket {
	return []Bucket{{UpperDays: 7, Weight: 1.0}, {UpperDays: 14, Weight: 0.5}, {UpperDays: 28, Weight: 0.25}}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWindowDays sets the trailing window length.
func WithWindowDays(days int) Option {
	return func(e *Engine) {
		e.windowDays = days
	}
}

// WithBuckets replaces the recency tiers.
func WithBuckets(b []Bucket) Option {
	return func(e *Engine) {
		e.buckets = append([]Bucket(nil), b...)
	}
}

// Engine computes rankings. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	windowDays int
	buckets    []Bucket
}

// NewEngine creates an engine with the default window and tiers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		windowDays: DefaultWindowDays,
		buckets:    DefaultBuckets(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WindowDays returns the configured window length.
func (e *Engine) WindowDays() int { return e.windowDays }

// Buckets returns a copy of the configured tiers.
func (e *Engine) Buckets() []Bucket { return append([]Bucket(nil), e.buckets...) }

// Validate checks that the tiers are usable: three of them, ascending bounds,
// positive non-increasing weights, and the last bound equal to the window.
func (e *Engine) Validate() error {
	if e.windowDays <= 0 {
		return fmt.Errorf("%w: window %d days", ErrInvalidWindow, e.windowDays)
	}
	if len(e.buckets) != bucketCount {
		return fmt.Errorf("%w: want %d tiers, got %d", ErrInvalidBuckets, bucketCount, len(e.buckets))
	}
	prev := Bucket{UpperDays: 0, Weight: e.buckets[0].Weight}
	for i, b := range e.buckets {
		if b.UpperDays <= prev.UpperDays {
			return fmt.Errorf("%w: tier %d bound %d is not ascending", ErrInvalidBuckets, i, b.UpperDays)
		}
		if b.Weight <= 0 {
			return fmt.Errorf("%w: tier %d weight %g is not positive", ErrInvalidBuckets, i, b.Weight)
		}
		if b.Weight > prev.Weight {
			return fmt.Errorf("%w: tier %d weight %g exceeds a more recent tier", ErrInvalidBuckets, i, b.Weight)
		}
		prev = b
	}
	if last := e.buckets[len(e.buckets)-1].UpperDays; last != e.windowDays {
		return fmt.Errorf("%w: last tier ends at %d days, window is %d", ErrInvalidBuckets, last, e.windowDays)
	}
	return nil
}

// AsOf returns the latest record date. It is false for an empty set.
func AsOf(records []model.MentionRecord) (time.Time, bool) {
	var latest time.Time
	for _, r := range records {
		d := model.Day(r.Date)
		if d.After(latest) {
			latest = d
		}
	}
	return latest, !latest.IsZero()
}

// Window returns the inclusive first and last day of the window ending at asOf.
func (e *Engine) Window(asOf time.Time) (time.Time, time.Time) {
	end := model.Day(asOf)
	return model.AddDays(end, -(e.windowDays - 1)), end
}

// bucket returns the tier index for a record daysAgo days before asOf, or -1
// when it falls outside the window.
func (e *Engine) bucket(daysAgo int) int {
	if daysAgo < 0 || daysAgo >= e.windowDays {
		return -1
	}
	for i, b := range e.buckets {
		if daysAgo < b.UpperDays {
			return i
		}
	}
	return -1
}

// Weight returns the weight of a record daysAgo days old; zero outside the window.
func (e *Engine) Weight(daysAgo int) float64 {
	i := e.bucket(daysAgo)
	if i < 0 {
		return 0
	}
	return e.buckets[i].Weight
}

type tally struct {
	counts [bucketCount]int
	first  time.Time
	last   time.Time
}

// Score ranks every player with at least one in-window record. A zero asOf
// means the latest record date. Records outside the window are ignored
// entirely. The order is score desc, recent mentions desc, then name.
func (e *Engine) Score(records []model.MentionRecord, asOf time.Time) []model.PlayerScore {
	if asOf.IsZero() {
		var ok bool
		if asOf, ok = AsOf(records); !ok {
			return []model.PlayerScore{}
		}
	}
	end := model.Day(asOf)
	tallies := make(map[string]*tally)
	for _, r := range records {
		d := model.Day(r.Date)
		i := e.bucket(model.DaysBetween(d, end))
		if i < 0 {
			continue
		}
		t, ok := tallies[r.Player]
		if !ok {
			t = &tally{first: d, last: d}
			tallies[r.Player] = t
		}
		t.counts[min(i, bucketCount-1)]++
		if d.Before(t.first) {
			t.first = d
		}
		if d.After(t.last) {
			t.last = d
		}
	}

	out := make([]model.PlayerScore, 0, len(tallies))
	for player, t := range tallies {
		ps := model.PlayerScore{
			Player:       player,
			Recent:       t.counts[0],
			Mid:          t.counts[1],
			Old:          t.counts[2],
			FirstMention: t.first,
			LastMention:  t.last,
		}
		ps.Total = ps.Recent + ps.Mid + ps.Old
		for i, n := range t.counts {
			if n == 0 {
				continue
			}
			ps.Score += float64(n) * e.buckets[i].Weight
		}
		out = append(out, ps)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		if out[a].Recent != out[b].Recent {
			return out[a].Recent > out[b].Recent
		}
		return out[a].Player < out[b].Player
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
