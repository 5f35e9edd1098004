package api

import (
	"errors"
	"net/http"

	service "github.com/okian/rumorboard/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)

// classify maps an upstream error to a status code and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrIngestRunning):
		return http.StatusConflict, "ingest_running"
	case errors.Is(err, service.ErrSourceUnavailable):
		return http.StatusBadGateway, "source_unavailable"
	case errors.Is(err, service.ErrNoSource):
		return http.StatusServiceUnavailable, "no_source"
	case errors.Is(err, service.ErrStoreRead):
		return http.StatusInternalServerError, "store_read_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
