package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/okian/rumorboard/internal/adapters/render"
	"github.com/okian/rumorboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboard(t *testing.T) {
	Convey("Given a leaderboard", t, func() {
		var buf bytes.Buffer

		Convey("When it is empty", func() {
			err := render.Leaderboard(&buf, types.Leaderboard{WindowDays: 28, Status: types.StatusNoData, Entries: []types.Entry{}})

			Convey("Then a no activity line is printed", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "No activity in the last 28 days.\n")
			})
		})

		Convey("When it has entries with accented names", func() {
			lb := types.Leaderboard{
				AsOf: "2025-01-28", WindowStart: "2025-01-01", WindowEnd: "2025-01-28",
				WindowDays: 28, Status: types.StatusOK, Players: 2,
				Entries: []types.Entry{
					{Rank: 1, Player: "Nikola Jokić", Team: "Denver Nuggets", Score: 2.5, Recent: 2, Mid: 1, LastMention: "2025-01-28"},
					{Rank: 2, Player: "Kevin Love", Score: 0.25, Old: 1, LastMention: "2025-01-05"},
				},
			}
			err := render.Leaderboard(&buf, lb)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

			Convey("Then columns line up by display width", func() {
				So(err, ShouldBeNil)
				So(lines[0], ShouldContainSubstring, "as of 2025-01-28")
				So(len(lines), ShouldEqual, 5)
				header, first, second := lines[2], lines[3], lines[4]
				col := func(line, cell string) int {
					return runewidth.StringWidth(line[:strings.Index(line, cell)])
				}
				So(col(first, "Denver Nuggets"), ShouldEqual, col(header, "TEAM"))
				So(col(second, "-"), ShouldEqual, col(header, "TEAM"))
				So(first, ShouldContainSubstring, "2.50")
				So(second, ShouldContainSubstring, "0.25")
			})
		})
	})
}

func TestPlayer(t *testing.T) {
	Convey("Given a player detail", t, func() {
		var buf bytes.Buffer
		d := types.PlayerDetail{
			Player: "Kevin Love",
			Slug:   "kevin-love",
			Team:   "Miami Heat",
			AsOf:   "2025-01-28",
			Score:  &types.Entry{Rank: 4, Score: 0.5, Mid: 1},
			Mentions: []types.Mention{
				{Date: "2025-01-20", Outlet: "ESPN", Snippet: strings.Repeat("word ", 40)},
			},
			Daily: []types.DailyCount{{Date: "2025-01-19"}, {Date: "2025-01-20", Mentions: 1}},
		}

		Convey("When rendering it", func() {
			err := render.Player(&buf, d)
			out := buf.String()

			Convey("Then the score line and history are printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "Kevin Love (kevin-love)\nTeam: Miami Heat\n")
				So(out, ShouldContainSubstring, "Rank 4, score 0.50 (recent 0, mid 1, old 0) as of 2025-01-28")
				So(out, ShouldContainSubstring, "Active on 1 of the last 2 days")
				So(out, ShouldContainSubstring, "2025-01-20  ESPN")
				So(out, ShouldNotContainSubstring, strings.Repeat("word ", 40))
			})
		})

		Convey("When the player has no score in the window", func() {
			d.Score = nil
			d.Mentions = nil
			d.Daily = nil
			err := render.Player(&buf, d)

			Convey("Then that is stated", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEndWith, "No mentions in the current window.\n")
			})
		})
	})
}
