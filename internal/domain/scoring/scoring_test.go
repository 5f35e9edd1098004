package scoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var asOf = time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)

func ago(player string, days int) model.MentionRecord {
	return model.MentionRecord{Player: player, Date: model.AddDays(asOf, -days), Snippet: player}
}

func names(scores []model.PlayerScore) []string {
	out := make([]string, 0, len(scores))
	for _, s := range scores {
		out = append(out, s.Player)
	}
	return out
}

func TestScore(t *testing.T) {
	Convey("Given the default engine", t, func() {
		e := scoring.NewEngine()
		So(e.Validate(), ShouldBeNil)

		Convey("When a player has a recent and a mid mention", func() {
			got := e.Score([]model.MentionRecord{ago("X", 3), ago("X", 10)}, asOf)

			Convey("Then the weights add up", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].Score, ShouldEqual, 1.5)
				So(got[0].Recent, ShouldEqual, 1)
				So(got[0].Mid, ShouldEqual, 1)
				So(got[0].Old, ShouldEqual, 0)
				So(got[0].Total, ShouldEqual, 2)
				So(got[0].Rank, ShouldEqual, 1)
				So(model.FormatDate(got[0].FirstMention), ShouldEqual, "2025-01-18")
				So(model.FormatDate(got[0].LastMention), ShouldEqual, "2025-01-25")
			})
		})

		Convey("When a player only has a mention outside the window", func() {
			got := e.Score([]model.MentionRecord{ago("Y", 30), ago("X", 1)}, asOf)

			Convey("Then that player is absent rather than listed with zero", func() {
				So(names(got), ShouldResemble, []string{"X"})
			})
		})

		Convey("When the record set is empty", func() {
			got := e.Score(nil, asOf)

			Convey("Then the ranking is empty and not nil", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When asOf is zero", func() {
			got := e.Score([]model.MentionRecord{ago("X", 3), ago("X", 8)}, time.Time{})

			Convey("Then the latest record date is used", func() {
				So(got[0].Score, ShouldEqual, 2.0)
				So(got[0].Recent, ShouldEqual, 2)
				So(got[0].Mid, ShouldEqual, 0)
			})
		})

		Convey("When records sit on the window edges", func() {
			got := e.Score([]model.MentionRecord{
				ago("Edge", 27),
				ago("Outside", 28),
				ago("Future", -1),
				ago("Six", 6), ago("Seven", 7), ago("Thirteen", 13), ago("Fourteen", 14),
			}, asOf)

			Convey("Then only records inside the window count", func() {
				byName := map[string]model.PlayerScore{}
				for _, s := range got {
					byName[s.Player] = s
				}
				So(byName, ShouldContainKey, "Edge")
				So(byName, ShouldNotContainKey, "Outside")
				So(byName, ShouldNotContainKey, "Future")
				So(byName["Edge"].Old, ShouldEqual, 1)
				So(byName["Six"].Score, ShouldEqual, 1.0)
				So(byName["Seven"].Score, ShouldEqual, 0.5)
				So(byName["Thirteen"].Mid, ShouldEqual, 1)
				So(byName["Fourteen"].Score, ShouldEqual, 0.25)
			})
		})

		Convey("When scores tie", func() {
			got := e.Score([]model.MentionRecord{
				ago("Zed", 1),
				ago("Amy", 8), ago("Amy", 9),
				ago("Bob", 2),
			}, asOf)

			Convey("Then recent mentions then names break the tie", func() {
				So(names(got), ShouldResemble, []string{"Bob", "Zed", "Amy"})
				So(got[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the same records arrive in a different order", func() {
			recs := []model.MentionRecord{ago("A", 1), ago("B", 2), ago("C", 9), ago("A", 20), ago("B", 15), ago("D", 3)}
			rev := make([]model.MentionRecord, len(recs))
			for i, r := range recs {
				rev[len(recs)-1-i] = r
			}

			Convey("Then the ranking is identical", func() {
				So(e.Score(rev, asOf), ShouldResemble, e.Score(recs, asOf))
				So(e.Score(recs, asOf), ShouldResemble, e.Score(recs, asOf))
			})
		})
	})
}

func TestWeightMonotonicity(t *testing.T) {
	Convey("Given the default engine", t, func() {
		e := scoring.NewEngine()

		Convey("Then a fresher record never weighs less", func() {
			for d := 0; d < 40; d++ {
				So(e.Weight(d), ShouldBeGreaterThanOrEqualTo, e.Weight(d+1))
			}
			So(e.Weight(0), ShouldEqual, 1.0)
			So(e.Weight(28), ShouldEqual, 0)
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given engines with different windows", t, func() {
		Convey("Then the window spans window days inclusive", func() {
			start, end := scoring.NewEngine().Window(asOf.Add(15 * time.Hour))
			So(model.FormatDate(start), ShouldEqual, "2025-01-01")
			So(model.FormatDate(end), ShouldEqual, "2025-01-28")
		})

		Convey("And AsOf picks the latest record date", func() {
			d, ok := scoring.AsOf([]model.MentionRecord{ago("A", 5), ago("B", 0), ago("C", 12)})
			So(ok, ShouldBeTrue)
			So(model.FormatDate(d), ShouldEqual, "2025-01-28")

			_, ok = scoring.AsOf(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given engine configurations", t, func() {
		Convey("When the tiers are custom but consistent", func() {
			e := scoring.NewEngine(scoring.WithWindowDays(21), scoring.WithBuckets([]scoring.Bucket{{UpperDays: 3, Weight: 2}, {UpperDays: 10, Weight: 1}, {UpperDays: 21, Weight: 1}}))

			Convey("Then they validate and apply", func() {
				So(e.Validate(), ShouldBeNil)
				got := e.Score([]model.MentionRecord{ago("X", 2), ago("X", 5), ago("X", 20), ago("X", 21)}, asOf)
				So(got[0].Score, ShouldEqual, 4)
				So(got[0].Total, ShouldEqual, 3)
			})
		})

		Convey("When the configuration is unusable", func() {
			cases := []*scoring.Engine{
				scoring.NewEngine(scoring.WithBuckets(nil)),
				scoring.NewEngine(scoring.WithBuckets([]scoring.Bucket{{UpperDays: 7, Weight: 1}, {UpperDays: 7, Weight: 0.5}, {UpperDays: 28, Weight: 0.25}})),
				scoring.NewEngine(scoring.WithBuckets([]scoring.Bucket{{UpperDays: 7, Weight: 1}, {UpperDays: 14, Weight: 0}, {UpperDays: 28, Weight: 0.25}})),
				scoring.NewEngine(scoring.WithBuckets([]scoring.Bucket{{UpperDays: 7, Weight: 0.5}, {UpperDays: 14, Weight: 1}, {UpperDays: 28, Weight: 0.25}})),
				scoring.NewEngine(scoring.WithBuckets([]scoring.Bucket{{UpperDays: 7, Weight: 1}, {UpperDays: 14, Weight: 0.5}, {UpperDays: 21, Weight: 0.25}})),
			}

			Convey("Then validation reports invalid buckets", func() {
				for _, e := range cases {
					So(errors.Is(e.Validate(), scoring.ErrInvalidBuckets), ShouldBeTrue)
				}
			})
		})

		Convey("When the window is not positive", func() {
			e := scoring.NewEngine(scoring.WithWindowDays(0))

			Convey("Then validation reports the window", func() {
				So(errors.Is(e.Validate(), scoring.ErrInvalidWindow), ShouldBeTrue)
				So(e.DailyCounts([]model.MentionRecord{ago("X", 0)}, "X", asOf), ShouldBeNil)
			})
		})
	})
}

func TestPlayerDetail(t *testing.T) {
	Convey("Given records for several players", t, func() {
		first := ago("X", 3)
		first.Outlet = "first"
		second := ago("X", 3)
		second.Outlet = "second"
		recs := []model.MentionRecord{ago("X", 40), first, ago("Y", 1), second, ago("X", 0)}
		e := scoring.NewEngine()

		Convey("When listing a player's mentions", func() {
			got := scoring.PlayerMentions(recs, "X")

			Convey("Then they are newest first with stable ties", func() {
				So(len(got), ShouldEqual, 4)
				So(model.FormatDate(got[0].Date), ShouldEqual, "2025-01-28")
				So(got[1].Outlet, ShouldEqual, "first")
				So(got[2].Outlet, ShouldEqual, "second")
				So(model.FormatDate(got[3].Date), ShouldEqual, "2024-12-19")
			})
		})

		Convey("When listing an unknown player", func() {
			So(scoring.PlayerMentions(recs, "Nobody"), ShouldBeEmpty)
		})

		Convey("When counting mentions per day", func() {
			got := e.DailyCounts(recs, "X", time.Time{})

			Convey("Then every window day has an entry", func() {
				So(len(got), ShouldEqual, 28)
				So(model.FormatDate(got[0].Date), ShouldEqual, "2025-01-01")
				So(got[27].Mentions, ShouldEqual, 1)
				So(got[24].Mentions, ShouldEqual, 2)
				total := 0
				for _, c := range got {
					total += c.Mentions
				}
				So(total, ShouldEqual, 3)
			})
		})

		Convey("When counting with no records", func() {
			So(e.DailyCounts(nil, "X", time.Time{}), ShouldBeNil)
		})
	})
}
