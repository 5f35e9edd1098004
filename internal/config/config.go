// Package config defines service configuration structures and loading hooks.
//
// Values are layered: defaults from New, then an optional YAML file named by
// RUMORBOARD_CONFIG, then RUMORBOARD_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/rumorboard/internal/adapters/repository"
	"github.com/okian/rumorboard/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RosterPath is the line-oriented canonical player list.
	RosterPath string `koanf:"roster_path"`

	// TeamsPath is the versioned player to team YAML file. Optional.
	TeamsPath string `koanf:"teams_path"`

	// StoreBackend selects the record store: csv or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// StorePath is the record store location.
	StorePath string `koanf:"store_path"`

	// Source settings for the rumor tag page.
	SourceBaseURL     string `koanf:"source_base_url"`
	SourceUser        string `koanf:"source_user"`
	SourcePass        string `koanf:"source_pass"`
	SourceTimeoutSec  int    `koanf:"source_timeout_sec"`
	SourceRetries     int    `koanf:"source_retries"`
	SourcePageDelayMS int    `koanf:"source_page_delay_ms"`

	// MaxPages caps the pages requested by one ingestion run.
	MaxPages int `koanf:"max_pages"`

	// WindowDays is the scoring and pagination window.
	WindowDays int `koanf:"window_days"`

	// BucketDays and BucketWeights define the recency tiers. Upper bounds are
	// exclusive days-ago values; the last one must equal WindowDays.
	BucketDays    []int     `koanf:"bucket_days"`
	BucketWeights []float64 `koanf:"bucket_weights"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// IngestSchedule is a five-field cron expression; empty disables it.
	IngestSchedule string `koanf:"ingest_schedule"`

	// IngestTimezone is the IANA zone the schedule runs in.
	IngestTimezone string `koanf:"ingest_timezone"`

	// IngestOnStart runs one ingestion when the server starts.
	IngestOnStart bool `koanf:"ingest_on_start"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		RosterPath:          "data/roster.txt",
		TeamsPath:           "data/teams.yaml",
		StoreBackend:        repository.BackendCSV,
		StorePath:           "data/mentions.csv",
		SourceBaseURL:       "http://preview.hoopshype.com/rumors/tag/trade",
		SourceTimeoutSec:    20,
		SourceRetries:       3,
		SourcePageDelayMS:   500,
		MaxPages:            50,
		WindowDays:          scoring.DefaultWindowDays,
		BucketDays:          []int{7, 14, 28},
		BucketWeights:       []float64{1.0, 0.5, 0.25},
		MaxLeaderboardLimit: 100,
		IngestSchedule:      "",
		IngestTimezone:      "UTC",
		IngestOnStart:       false,
	}
}

// SourceTimeout returns the per-request timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSec) * time.Second
}

// SourcePageDelay returns the pause between pages.
func (c *Config) SourcePageDelay() time.Duration {
	return time.Duration(c.SourcePageDelayMS) * time.Millisecond
}

// Buckets pairs BucketDays with BucketWeights. Validate reports mismatches.
func (c *Config) Buckets() []scoring.Bucket {
	n := min(len(c.BucketDays), len(c.BucketWeights))
	out := make([]scoring.Bucket, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, scoring.Bucket{UpperDays: c.BucketDays[i], Weight: c.BucketWeights[i]})
	}
	return out
}

// Engine builds the scoring engine described by the config.
func (c *Config) Engine() *scoring.Engine {
	return scoring.NewEngine(
		scoring.WithWindowDays(c.WindowDays),
		scoring.WithBuckets(c.Buckets()),
	)
}

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.StorePath) == "":
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	case c.MaxPages < 1:
		return fmt.Errorf("%w: max_pages must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.SourceTimeoutSec < 1:
		return fmt.Errorf("%w: source_timeout_sec must be positive", ErrInvalidConfig)
	case c.SourceRetries < 0:
		return fmt.Errorf("%w: source_retries must not be negative", ErrInvalidConfig)
	case c.SourcePageDelayMS < 0:
		return fmt.Errorf("%w: source_page_delay_ms must not be negative", ErrInvalidConfig)
	case len(c.BucketDays) != len(c.BucketWeights):
		return fmt.Errorf("%w: bucket_days and bucket_weights differ in length", ErrInvalidConfig)
	}

	switch strings.ToLower(strings.TrimSpace(c.StoreBackend)) {
	case "", repository.BackendCSV, repository.BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}

	if u, err := url.Parse(c.SourceBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source_base_url %q is not an http(s) URL", ErrInvalidConfig, c.SourceBaseURL)
	}

	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
