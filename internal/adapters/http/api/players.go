package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
)

// PlayerDependencies defines the interface for player lookups.
type PlayerDependencies interface {
	Player(ctx context.Context, slug string) (types.PlayerDetail, error)
}

// PlayerHandler handles per-player requests.
type PlayerHandler struct {
	deps PlayerDependencies
	log  logger.Logger
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies, log logger.Logger) *PlayerHandler {
	return &PlayerHandler{deps: deps, log: logger.OrNop(log)}
}

// HandleGetPlayer handles GET /players/{slug} requests.
func (h *PlayerHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/players/")
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	if strings.TrimSpace(slug) == "" || strings.Contains(slug, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing player slug", ErrBadRequest))
		return
	}
	detail, err := h.deps.Player(r.Context(), slug)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
