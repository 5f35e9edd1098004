// Package scheduler re-runs ingestion on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	service "github.com/okian/rumorboard/internal/app"
	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
)

// Sentinel errors for schedule setup.
var (
	ErrInvalidSchedule = errors.New("invalid ingest schedule")
	ErrInvalidTimezone = errors.New("invalid ingest timezone")
	ErrStopped         = errors.New("scheduler stopped")
)

// Ingester runs one ingestion.
type Ingester interface {
	Ingest(ctx context.Context) (types.IngestReport, error)
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRunTimeout bounds every scheduled run. Zero means no bound.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// Scheduler triggers ingestion on a standard five-field cron expression.
type Scheduler struct {
	cron     *cron.Cron
	ing      Ingester
	spec     string
	location *time.Location
	timeout  time.Duration
	log      logger.Logger

	entryID cron.EntryID

	// mu orders runs.Add against Stop so Wait never races a new run.
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
}

// New creates a scheduler for spec in timezone. An empty spec yields a
// disabled scheduler whose Start is a no-op. An empty timezone means UTC.
func New(ing Ingester, spec, timezone string, opts ...Option) (*Scheduler, error) {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimezone, timezone, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		ing:      ing,
		spec:     strings.TrimSpace(spec),
		location: loc,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if s.spec == "" {
		return s, nil
	}
	id, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, s.spec, err)
	}
	s.entryID = id
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool { return s.entryID != 0 }

// Next returns the first planned run after now, or the zero time when disabled.
func (s *Scheduler) Next(now time.Time) time.Time {
	if !s.Enabled() {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Schedule.Next(now.In(s.location))
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.log.Info(context.Background(), "ingest schedule disabled")
		return
	}
	s.cron.Start()
	s.log.Info(context.Background(), "ingest scheduled",
		logger.String("cron", s.spec),
		logger.String("timezone", s.location.String()),
		logger.Time("next", s.Next(time.Now())),
	)
}

// Stop cancels a run in progress, halts the cron loop and waits for every
// run to return. Later RunNow calls fail with ErrStopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.runs.Wait()
}

// RunNow performs one ingestion outside the schedule. The run ends early
// when ctx is done or the scheduler stops. A run already in progress is
// skipped and reported as ErrIngestRunning.
func (s *Scheduler) RunNow(ctx context.Context) (types.IngestReport, error) {
	if !s.begin() {
		return types.IngestReport{}, ErrStopped
	}
	defer s.runs.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unwatch := context.AfterFunc(s.ctx, cancel)
	defer unwatch()
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.ing.Ingest(ctx)
	if errors.Is(err, service.ErrIngestRunning) {
		s.log.Info(ctx, "ingestion already running, skipping scheduled run")
	}
	return report, err
}

// begin registers a run unless the scheduler is stopping.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.runs.Add(1)
	return true
}

func (s *Scheduler) run() {
	_, _ = s.RunNow(s.ctx)
}
