// Package service wires the ingestion pipeline and the read paths used by the
// HTTP API and the CLI.
//
// Ingest runs one at a time: collect pages, extract mentions, drop duplicates
// and rewrite the store. Reads load a full snapshot and score it on every call.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rumorboard/internal/adapters/repository"
	"github.com/okian/rumorboard/internal/domain/dedupe"
	"github.com/okian/rumorboard/internal/domain/extract"
	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/internal/domain/pagination"
	"github.com/okian/rumorboard/internal/domain/roster"
	"github.com/okian/rumorboard/internal/domain/scoring"
	"github.com/okian/rumorboard/internal/domain/teams"
	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
	"github.com/okian/rumorboard/pkg/metrics"
)

// Service implements the API dependencies for the rumor leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	source    pagination.Fetcher
	roster    *roster.Index
	teams     *teams.Directory
	engine    *scoring.Engine
	extractor *extract.Extractor

	// Configuration
	maxPages   int
	windowDays int
	now        func() time.Time

	// State
	ingestMu   sync.Mutex
	ingesting  atomic.Bool
	lastIngest *types.IngestReport
	lastErr    error
	startedAt  time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		roster:   roster.New(nil),
		teams:    teams.Empty(),
		engine:   scoring.NewEngine(),
		maxPages: pagination.DefaultMaxPages,
		now:      time.Now,
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.windowDays <= 0 {
		s.windowDays = s.engine.WindowDays()
	}
	s.extractor = extract.New(s.roster)
	s.startedAt = s.now()

	metrics.UpdateRosterSize(s.roster.Len())
	if s.roster.Len() == 0 {
		s.logger.Warn(context.Background(), "roster is empty, no mention can resolve")
	}
	return s
}

// Close releases the record store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Ingest runs one full ingestion: it collects pages until the cutoff, resolves
// mentions, drops duplicates and replaces the stored dataset. A failure on the
// first page leaves the store untouched.
func (s *Service) Ingest(ctx context.Context) (types.IngestReport, error) {
	if !s.ingestMu.TryLock() {
		metrics.RecordIngestRun(metrics.OutcomeSkipped, 0, 0)
		return types.IngestReport{}, ErrIngestRunning
	}
	defer s.ingestMu.Unlock()
	s.ingesting.Store(true)
	defer s.ingesting.Store(false)

	report := types.IngestReport{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
		Dropped:   map[string]int{},
	}
	log := s.logger.Named("ingest")
	err := s.ingest(ctx, log, &report)
	report.FinishedAt = s.now()

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.RecordIngestRun(outcome, float64(report.Duration().Milliseconds()), report.FinishedAt.Unix())
	s.finish(report, err)

	if err != nil {
		metrics.RecordErrorByComponent("ingest", errorType(err))
		log.Error(ctx, "ingestion failed",
			logger.String("run_id", report.RunID),
			logger.Int("pages", report.Pages),
			logger.Error(err),
		)
		return report, err
	}
	log.Info(ctx, "ingestion finished",
		logger.String("run_id", report.RunID),
		logger.Int("pages", report.Pages),
		logger.String("stop_reason", report.StopReason),
		logger.Int("fragments", report.Fragments),
		logger.Int("extracted", report.Extracted),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("stored", report.Stored),
		logger.Duration("took", report.Duration()),
	)
	return report, nil
}

func (s *Service) ingest(ctx context.Context, log logger.Logger, report *types.IngestReport) error {
	if s.source == nil {
		return ErrNoSource
	}
	if s.store == nil {
		return fmt.Errorf("%w: no store configured", ErrStoreWrite)
	}

	ctrl := pagination.New(report.StartedAt,
		pagination.WithWindowDays(s.windowDays),
		pagination.WithMaxPages(s.maxPages),
	)
	res, err := pagination.Collect(ctx, ctrl, s.source, log)
	report.Pages = res.Pages
	report.State = res.State.String()
	report.StopReason = res.Reason
	if err != nil {
		if errors.Is(err, pagination.ErrFirstPage) {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		return err
	}

	recs, out := s.extractor.ExtractAll(res.Fragments)
	report.Fragments = out.Fragments
	report.Extracted = out.Mentions
	metrics.RecordFragments(out.Fragments)
	metrics.RecordMentionsExtracted(out.Mentions)
	for reason, n := range out.Dropped {
		report.Dropped[reason] = n
		metrics.RecordFragmentsDropped(reason, n)
		log.Debug(ctx, "fragments dropped", logger.String("reason", reason), logger.Int("count", n))
	}

	unique := dedupe.Records(ctx, recs)
	report.Duplicates = len(recs) - len(unique)
	metrics.RecordMentionsDuplicate(report.Duplicates)

	if err := s.store.Save(ctx, unique); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	report.Stored = len(unique)
	return nil
}

func (s *Service) finish(report types.IngestReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastIngest = &report
	s.lastErr = err
}

// Leaderboard ranks every player mentioned in the window ending at the latest
// stored date. limit <= 0 returns every ranked player. A store that was never
// written yields an empty leaderboard with status no_data.
func (s *Service) Leaderboard(ctx context.Context, limit int) (types.Leaderboard, error) {
	if limit < 0 {
		return types.Leaderboard{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	recs, err := s.load(ctx)
	if err != nil {
		return types.Leaderboard{}, err
	}

	lb := types.Leaderboard{
		WindowDays: s.engine.WindowDays(),
		Status:     types.StatusNoData,
		Entries:    []types.Entry{},
	}
	asOf, ok := scoring.AsOf(recs)
	if !ok {
		metrics.UpdateRankedPlayers(0)
		return lb, nil
	}

	start := time.Now()
	scores := s.engine.Score(recs, asOf)
	metrics.RecordRankingLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateRankedPlayers(len(scores))

	windowStart, windowEnd := s.engine.Window(asOf)
	lb.AsOf = model.FormatDate(asOf)
	lb.WindowStart = model.FormatDate(windowStart)
	lb.WindowEnd = model.FormatDate(windowEnd)
	lb.Players = len(scores)
	if len(scores) > 0 {
		lb.Status = types.StatusOK
	}
	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}
	for _, ps := range scores {
		lb.Entries = append(lb.Entries, s.entry(ps))
	}
	return lb, nil
}

// Player returns the detail view for a slug or a canonical name.
func (s *Service) Player(ctx context.Context, ref string) (types.PlayerDetail, error) {
	recs, err := s.load(ctx)
	if err != nil {
		return types.PlayerDetail{}, err
	}
	name, ok := s.lookup(ref, recs)
	if !ok {
		return types.PlayerDetail{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, ref)
	}

	detail := types.PlayerDetail{
		Player:   name,
		Slug:     roster.Slug(name),
		Mentions: []types.Mention{},
		Daily:    []types.DailyCount{},
	}
	detail.Team, _ = s.teams.Team(name)

	asOf, ok := scoring.AsOf(recs)
	if !ok {
		return detail, nil
	}
	detail.AsOf = model.FormatDate(asOf)
	for _, ps := range s.engine.Score(recs, asOf) {
		if ps.Player == name {
			e := s.entry(ps)
			detail.Score = &e
			break
		}
	}
	for _, r := range scoring.PlayerMentions(recs, name) {
		detail.Mentions = append(detail.Mentions, types.NewMention(r))
	}
	for _, dc := range s.engine.DailyCounts(recs, name, asOf) {
		detail.Daily = append(detail.Daily, types.DailyCount{
			Date:     model.FormatDate(dc.Date),
			Mentions: dc.Mentions,
		})
	}
	return detail, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		RosterSize:    s.roster.Len(),
		TeamsVersion:  s.teams.Version(),
		IngestRunning: s.ingesting.Load(),
		Uptime:        s.now().Sub(s.startedAt).Truncate(time.Second).String(),
	}
	if s.store != nil {
		stats.StoreBackend = s.store.Backend()
	}
	if s.lastIngest != nil {
		r := *s.lastIngest
		stats.LastIngest = &r
	}
	if s.lastErr != nil {
		stats.LastError = s.lastErr.Error()
	}
	return stats
}

// load reads a store snapshot. A missing dataset is an empty one.
func (s *Service) load(ctx context.Context) ([]model.MentionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	recs, err := s.store.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn(ctx, "record store not found, serving empty data",
			logger.String("backend", s.store.Backend()),
		)
		return nil, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("store", errorType(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return recs, nil
}

// lookup resolves ref against the roster first, then against stored names so
// players dropped from the roster stay reachable.
func (s *Service) lookup(ref string, recs []model.MentionRecord) (string, bool) {
	if p, ok := s.roster.BySlug(ref); ok {
		return p.FullName, true
	}
	if p, ok := s.roster.ResolveExact(ref); ok {
		return p.FullName, true
	}
	want := roster.Slug(ref)
	if want == "" {
		return "", false
	}
	for _, r := range recs {
		if roster.Slug(r.Player) == want {
			return r.Player, true
		}
	}
	return "", false
}

func (s *Service) entry(ps model.PlayerScore) types.Entry {
	team, _ := s.teams.Team(ps.Player)
	return types.NewEntry(ps, roster.Slug(ps.Player), team)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrNoSource):
		return "no_source"
	case errors.Is(err, ErrStoreWrite):
		return "store_write"
	case errors.Is(err, repository.ErrMalformed):
		return "store_malformed"
	case errors.Is(err, repository.ErrUnavailable):
		return "store_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
