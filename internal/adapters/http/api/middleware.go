package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/rumorboard/pkg/metrics"
)

// Route names a registered endpoint. It doubles as the metrics label so
// player slugs never reach label cardinality.
type Route string

// Routes served by the API.
const (
	RouteHealth      Route = "healthz"
	RouteStats       Route = "stats"
	RouteIngest      Route = "ingest"
	RouteLeaderboard Route = "leaderboard"
	RoutePlayers     Route = "players"
)

// Pattern returns the ServeMux pattern for r.
func (r Route) Pattern() string {
	if r == RoutePlayers {
		return "/players/"
	}
	return "/" + string(r)
}

// MetricsMiddleware records request count, duration and, for failed
// requests, the API error code written by the handler.
func MetricsMiddleware(next http.HandlerFunc, route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		status := strconv.Itoa(rec.statusCode)
		metrics.RecordHTTPRequest(string(route), r.Method, status)
		metrics.RecordHTTPRequestDuration(string(route), r.Method, status, durationMs)

		if rec.statusCode >= http.StatusBadRequest {
			metrics.RecordErrorByComponent("http_"+string(route), rec.errorType())
		}
	}
}

// responseRecorder captures the status and the error code of the response.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	errCode    string
}

// errorType prefers the code from the error body; responses written without
// writeError fall back to the status class.
func (rw *responseRecorder) errorType() string {
	if rw.errCode != "" {
		return rw.errCode
	}
	if rw.statusCode >= http.StatusInternalServerError {
		return "server_error"
	}
	return "client_error"
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
