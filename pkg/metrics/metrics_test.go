package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sample sums every series of a family in the global registry. Histograms
// contribute their sample count.
func sample(name string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithLatencyBuckets([]float64{1, 10}),
				WithIngestBuckets([]float64{1000, 60000, 600000}),
			)

			Convey("Then its metrics register under the given names and buckets", func() {
				So(manager, ShouldNotBeNil)
				manager.rosterSize.Set(3)
				manager.rankingLatency.Observe(2)
				manager.ingestDuration.Observe(45000)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				buckets := map[string]int{}
				names := map[string]bool{}
				for _, mf := range families {
					names[mf.GetName()] = true
					for _, m := range mf.GetMetric() {
						if h := m.GetHistogram(); h != nil {
							buckets[mf.GetName()] = len(h.GetBucket())
						}
					}
				}
				So(names["test_pipeline_roster_size"], ShouldBeTrue)
				So(buckets["test_pipeline_ranking_latency_milliseconds"], ShouldEqual, 2)
				So(buckets["test_pipeline_ingest_duration_milliseconds"], ShouldEqual, 3)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the duplicate registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := sample("rumorboard_pipeline_fragments_dropped_total")
			RecordPageFetched(OutcomeOK)
			RecordSourceRetry()
			RecordFragments(5)
			RecordFragmentsDropped("no_date", 2)
			RecordMentionsExtracted(3)
			RecordMentionsDuplicate(1)

			Convey("Then the counters move", func() {
				So(sample("rumorboard_pipeline_fragments_dropped_total"), ShouldEqual, before+2)
				So(sample("rumorboard_pipeline_pages_fetched_total"), ShouldBeGreaterThanOrEqualTo, 1)
				So(sample("rumorboard_pipeline_mentions_extracted_total"), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When recording ingest runs", func() {
			runs := sample("rumorboard_pipeline_ingest_runs_total")
			observed := sample("rumorboard_pipeline_ingest_duration_milliseconds")
			RecordIngestRun(OutcomeOK, 120, 1735689600)
			RecordIngestRun(OutcomeSkipped, 0, 0)

			Convey("Then skipped runs are counted but not timed", func() {
				So(sample("rumorboard_pipeline_ingest_runs_total"), ShouldEqual, runs+2)
				So(sample("rumorboard_pipeline_ingest_duration_milliseconds"), ShouldEqual, observed+1)
				So(sample("rumorboard_pipeline_ingest_last_success_unix"), ShouldEqual, 1735689600)
			})
		})

		Convey("When updating gauges", func() {
			UpdateRosterSize(512)
			UpdateStoredRecords(40)
			UpdateRankedPlayers(7)

			Convey("Then they hold the last value", func() {
				So(sample("rumorboard_pipeline_roster_size"), ShouldEqual, 512)
				So(sample("rumorboard_pipeline_stored_records"), ShouldEqual, 40)
				So(sample("rumorboard_pipeline_ranked_players"), ShouldEqual, 7)
			})
		})

		Convey("When recording store, ranking and HTTP metrics", func() {
			So(func() {
				RecordStoreOperation("csv", "load", OutcomeOK, 2.5)
				RecordRankingLatency(1.2)
				RecordHTTPRequest("/leaderboard", "GET", "200")
				RecordHTTPRequestDuration("/leaderboard", "GET", "200", 3)
				RecordErrorByComponent("store", "malformed")
			}, ShouldNotPanic)

			Convey("Then they are exposed", func() {
				So(sample("rumorboard_pipeline_store_operations_total"), ShouldBeGreaterThanOrEqualTo, 1)
				So(sample("rumorboard_pipeline_http_requests_total"), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}
