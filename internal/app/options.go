package service

import (
	"time"

	"github.com/okian/rumorboard/internal/adapters/repository"
	"github.com/okian/rumorboard/internal/domain/pagination"
	"github.com/okian/rumorboard/internal/domain/roster"
	"github.com/okian/rumorboard/internal/domain/scoring"
	"github.com/okian/rumorboard/internal/domain/teams"
	"github.com/okian/rumorboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSource sets the page fetcher used by Ingest.
func WithSource(f pagination.Fetcher) Option {
	return func(s *Service) {
		s.source = f
	}
}

// WithRoster sets the canonical roster.
func WithRoster(idx *roster.Index) Option {
	return func(s *Service) {
		if idx != nil {
			s.roster = idx
		}
	}
}

// WithTeams sets the player to team directory.
func WithTeams(d *teams.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.teams = d
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithClock overrides the wall clock used for the pagination cutoff and run
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxPages caps how many pages one ingestion run may request.
func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithWindowDays sets the pagination cutoff window. It defaults to the
// scoring window.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}
