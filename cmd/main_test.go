package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	app "github.com/okian/rumorboard/internal/app"
	"github.com/okian/rumorboard/internal/config"
	"github.com/okian/rumorboard/internal/domain/types"
	"github.com/okian/rumorboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given a configuration pointing at empty data files", t, func() {
		dir := t.TempDir()
		t.Setenv("RUMORBOARD_ROSTER_PATH", filepath.Join(dir, "roster.txt"))
		t.Setenv("RUMORBOARD_TEAMS_PATH", filepath.Join(dir, "teams.yaml"))
		t.Setenv("RUMORBOARD_STORE_PATH", filepath.Join(dir, "mentions.csv"))
		t.Setenv("RUMORBOARD_MAX_LEADERBOARD_LIMIT", "5")

		ctx := context.Background()
		cfg, err := config.Load()
		convey.So(err, convey.ShouldBeNil)

		svc, err := app.FromConfig(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = svc.Close() }()

		mux := newMux(ctx, svc, cfg, logger.Nop())

		convey.Convey("When requesting the leaderboard before any ingestion", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then a well-formed empty result is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var lb types.Leaderboard
				convey.So(json.NewDecoder(w.Body).Decode(&lb), convey.ShouldBeNil)
				convey.So(lb.Status, convey.ShouldEqual, types.StatusNoData)
				convey.So(lb.Entries, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the limit exceeds the configured maximum", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=6", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then it is rejected", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When requesting the OpenAPI document and stats", func() {
			for _, path := range []string{"/openapi.yaml", "/stats", "/healthz"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}
