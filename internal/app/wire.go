package service

import (
	"context"
	"fmt"

	"github.com/okian/rumorboard/internal/adapters/repository"
	"github.com/okian/rumorboard/internal/adapters/source"
	"github.com/okian/rumorboard/internal/config"
	"github.com/okian/rumorboard/internal/domain/roster"
	"github.com/okian/rumorboard/internal/domain/teams"
	"github.com/okian/rumorboard/pkg/logger"
)

// FromConfig loads the roster and team files, opens the store and builds the
// rumor source described by cfg. A missing roster or teams file is not an
// error; the caller owns Close.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	log = logger.OrNop(log)

	idx, err := roster.LoadFile(cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	log.Info(ctx, "roster loaded", logger.String("path", cfg.RosterPath), logger.Int("players", idx.Len()))

	dir, err := teams.LoadFile(cfg.TeamsPath)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	src, err := source.New(cfg.SourceBaseURL,
		source.WithBasicAuth(cfg.SourceUser, cfg.SourcePass),
		source.WithTimeout(cfg.SourceTimeout()),
		source.WithRetries(cfg.SourceRetries),
		source.WithPageDelay(cfg.SourcePageDelay()),
		source.WithLogger(log.Named("source")),
	)
	if err != nil {
		return nil, fmt.Errorf("build source: %w", err)
	}

	store, err := repository.Open(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info(ctx, "record store opened", logger.String("backend", store.Backend()), logger.String("path", cfg.StorePath))

	return New(
		WithLogger(log),
		WithRoster(idx),
		WithTeams(dir),
		WithStore(store),
		WithSource(src),
		WithEngine(cfg.Engine()),
		WithMaxPages(cfg.MaxPages),
		WithWindowDays(cfg.WindowDays),
	), nil
}
