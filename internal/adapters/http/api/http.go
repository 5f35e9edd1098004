// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
)

// defaultMaxLimit caps /leaderboard?limit when no option is given.
const defaultMaxLimit = 500

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	PlayerDependencies
	IngestDependencies
	StatsProvider
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the leaderboard limit parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the clock used for freshness in /stats.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxLimit int
	log      logger.Logger
	now      func() time.Time

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	ingestHandler      *IngestHandler
	leaderboardHandler *LeaderboardHandler
	playerHandler      *PlayerHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxLimit, log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps, s.now)
	s.ingestHandler = NewIngestHandler(deps, s.log)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit, s.log)
	s.playerHandler = NewPlayerHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handlers := map[Route]http.HandlerFunc{
		RouteHealth:      s.healthHandler.HandleHealth,
		RouteStats:       s.statsHandler.HandleStats,
		RouteIngest:      s.ingestHandler.HandleIngest,
		RouteLeaderboard: s.leaderboardHandler.HandleGetLeaderboard,
		RoutePlayers:     s.playerHandler.HandleGetPlayer,
	}
	for route, h := range handlers {
		mux.HandleFunc(route.Pattern(), MetricsMiddleware(h, route))
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.Register(ctx, mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	if rec, ok := w.(*responseRecorder); ok {
		rec.errCode = code
	}
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes the response for an upstream error and logs server-side ones.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.String("code", code), logger.Error(err))
	}
	writeError(w, status, code, err)
}
