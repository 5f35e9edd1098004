// Package types contains the JSON shapes served to the presentation layer.
package types

import (
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
)

// Leaderboard statuses.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// Entry represents a leaderboard entry
type Entry struct {
	Rank        int     `json:"rank"`
	Player      string  `json:"player"`
	Slug        string  `json:"slug"`
	Team        string  `json:"team,omitempty"`
	Score       float64 `json:"score"`
	Recent      int     `json:"recent"`
	Mid         int     `json:"mid"`
	Old         int     `json:"old"`
	Total       int     `json:"total"`
	LastMention string  `json:"last_mention"`
}

// NewEntry converts a score row.
func NewEntry(ps model.PlayerScore, slug, team string) Entry {
	return Entry{
		Rank:        ps.Rank,
		Player:      ps.Player,
		Slug:        slug,
		Team:        team,
		Score:       ps.Score,
		Recent:      ps.Recent,
		Mid:         ps.Mid,
		Old:         ps.Old,
		Total:       ps.Total,
		LastMention: model.FormatDate(ps.LastMention),
	}
}

// Leaderboard is a ranked snapshot. Entries is never null.
type Leaderboard struct {
	AsOf        string  `json:"as_of,omitempty"`
	WindowStart string  `json:"window_start,omitempty"`
	WindowEnd   string  `json:"window_end,omitempty"`
	WindowDays  int     `json:"window_days"`
	Status      string  `json:"status"`
	Players     int     `json:"players"`
	Entries     []Entry `json:"entries"`
}

// Empty reports whether there is nothing to rank.
func (l Leaderboard) Empty() bool { return len(l.Entries) == 0 }

// Mention is one rumor in a player's history.
type Mention struct {
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	SourceURL string `json:"source_url,omitempty"`
	Outlet    string `json:"outlet,omitempty"`
}

// NewMention converts a stored record.
func NewMention(r model.MentionRecord) Mention {
	return Mention{
		Date:      model.FormatDate(r.Date),
		Snippet:   r.Snippet,
		SourceURL: r.SourceURL,
		Outlet:    r.Outlet,
	}
}

// DailyCount is one point of a player's timeline.
type DailyCount struct {
	Date     string `json:"date"`
	Mentions int    `json:"mentions"`
}

// PlayerDetail is the per-player view. Score is nil when the player has no
// mention inside the window.
type PlayerDetail struct {
	Player   string       `json:"player"`
	Slug     string       `json:"slug"`
	Team     string       `json:"team,omitempty"`
	AsOf     string       `json:"as_of,omitempty"`
	Score    *Entry       `json:"score,omitempty"`
	Mentions []Mention    `json:"mentions"`
	Daily    []DailyCount `json:"daily"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Pages      int            `json:"pages"`
	State      string         `json:"state"`
	StopReason string         `json:"stop_reason"`
	Fragments  int            `json:"fragments"`
	Dropped    map[string]int `json:"dropped"`
	Extracted  int            `json:"extracted"`
	Duplicates int            `json:"duplicates"`
	Stored     int            `json:"stored"`
}

// Duration returns how long the run took.
func (r IngestReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stats is the operational summary served on /stats.
type Stats struct {
	RosterSize    int           `json:"roster_size"`
	TeamsVersion  int           `json:"teams_version"`
	StoreBackend  string        `json:"store_backend"`
	IngestRunning bool          `json:"ingest_running"`
	LastIngest    *IngestReport `json:"last_ingest,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	Uptime        string        `json:"uptime"`
}
