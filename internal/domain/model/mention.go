// Package model contains domain models passed between layers.
package model

import "time"

// CanonicalPlayer is a roster identity. Loaded once per run and never mutated.
type CanonicalPlayer struct {
	FullName string // unique canonical spelling, e.g. "Nikola Jokić"
	LastName string // derived from FullName, generational suffixes skipped
}

// CandidateFragment is one raw unit handed over by the fetch/parse collaborator.
// It is consumed once by the extractor and never persisted.
type CandidateFragment struct {
	RawText   string    // rumor text as scraped
	Tags      []string  // explicit tag link texts, may be empty
	Date      time.Time // zero when the page date could not be parsed
	SourceURL string    // link to the original article
	Outlet    string    // publication or context text
}

// HasDate reports whether the fragment carries a usable date.
func (f CandidateFragment) HasDate() bool {
	return !f.Date.IsZero()
}

// MentionRecord is a resolved, dated attribution of a fragment to one player.
type MentionRecord struct {
	Player    string    // canonical full name
	Date      time.Time // calendar date at UTC midnight
	Snippet   string
	SourceURL string
	Outlet    string
}

// PlayerScore is the derived ranking row for one player. Recomputed on every read.
type PlayerScore struct {
	Player       string
	Score        float64
	Recent       int // mentions in the most recent bucket
	Mid          int
	Old          int
	Total        int // all in-window mentions
	FirstMention time.Time
	LastMention  time.Time
	Rank         int // 1-based
}

// DailyCount is the number of mentions of a player on one calendar day.
type DailyCount struct {
	Date     time.Time
	Mentions int
}
