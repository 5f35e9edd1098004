package api

import (
	"net/http"
	"time"

	"github.com/okian/rumorboard/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() types.Stats
}

// statsResponse adds data freshness to the service stats.
type statsResponse struct {
	types.Stats
	LastIngestAgeSeconds *int64 `json:"last_ingest_age_seconds,omitempty"`
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
	now      func() time.Time
}

// NewStatsHandler creates a stats handler. now defaults to time.Now.
func NewStatsHandler(provider StatsProvider, now func() time.Time) *StatsHandler {
	if now == nil {
		now = time.Now
	}
	return &StatsHandler{provider: provider, now: now}
}

// HandleStats reports roster, store and ingestion state. The age of the
// last run is measured from its finish time; it is omitted before any run.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	resp := statsResponse{Stats: h.provider.GetStats()}
	if last := resp.LastIngest; last != nil && !last.FinishedAt.IsZero() {
		age := int64(h.now().Sub(last.FinishedAt) / time.Second)
		resp.LastIngestAgeSeconds = &age
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}
