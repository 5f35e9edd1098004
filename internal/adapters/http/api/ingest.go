package api

import (
	"context"
	"net/http"

	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
)

// IngestDependencies defines the interface for triggering ingestion.
type IngestDependencies interface {
	Ingest(ctx context.Context) (types.IngestReport, error)
}

// IngestHandler handles manual ingestion requests.
type IngestHandler struct {
	deps IngestDependencies
	log  logger.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies, log logger.Logger) *IngestHandler {
	return &IngestHandler{deps: deps, log: logger.OrNop(log)}
}

// HandleIngest handles POST /ingest. The run is synchronous and bound to the
// request context.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	report, err := h.deps.Ingest(r.Context())
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
