package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/rumorboard/internal/domain/dedupe"
	"github.com/okian/rumorboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(player, date, snippet string) model.MentionRecord {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return model.MentionRecord{Player: player, Date: d, Snippet: snippet}
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(8))

		Convey("Then it starts empty", func() {
			So(d, ShouldNotBeNil)
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When the key is new", func() {
			seen := d.SeenAndRecord(context.Background(), "k-1")

			Convey("Then it should return false and record the key", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the key was already seen", func() {
			d.SeenAndRecord(context.Background(), "k-1")
			seen := d.SeenAndRecord(context.Background(), "k-1")

			Convey("Then it should return true", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many keys are recorded", func() {
			const n = 1000
			for i := 0; i < n; i++ {
				So(d.SeenAndRecord(context.Background(), fmt.Sprintf("k-%d", i)), ShouldBeFalse)
			}

			Convey("Then none are evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(context.Background(), "k-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const goroutines = 10
		const perGoroutine = 100

		Convey("When goroutines record overlapping keys", func() {
			var wg sync.WaitGroup
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("k-%d", j))
					}
				}()
			}
			wg.Wait()

			Convey("Then every key is stored once", func() {
				So(d.Size(), ShouldEqual, int64(perGoroutine))
			})
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Given mention records", t, func() {
		Convey("When the snippet differs only after 100 runes", func() {
			base := strings.Repeat("é", 100)
			a := record("X", "2025-01-01", base+" first")
			b := record("X", "2025-01-01", base+" second")

			Convey("Then the keys are equal", func() {
				So(dedupe.Key(a), ShouldEqual, dedupe.Key(b))
			})
		})

		Convey("When the date carries a time of day", func() {
			a := record("X", "2025-01-01", "s")
			b := a
			b.Date = a.Date.Add(13 * time.Hour)

			Convey("Then only the calendar date counts", func() {
				So(dedupe.Key(a), ShouldEqual, dedupe.Key(b))
				So(dedupe.Key(a), ShouldEqual, "X|2025-01-01|s")
			})
		})

		Convey("When player or date differ", func() {
			a := record("X", "2025-01-01", "s")

			Convey("Then the keys differ", func() {
				So(dedupe.Key(a), ShouldNotEqual, dedupe.Key(record("Y", "2025-01-01", "s")))
				So(dedupe.Key(a), ShouldNotEqual, dedupe.Key(record("X", "2025-01-02", "s")))
			})
		})
	})
}

func TestRecords(t *testing.T) {
	Convey("Given records from overlapping page fetches", t, func() {
		first := record("X", "2025-01-01", "Team rumored to pursue X")
		first.Outlet = "first"
		second := first
		second.Outlet = "second"
		other := record("X", "2025-01-01", "Another team calls about X")
		in := []model.MentionRecord{first, other, second}

		Convey("When deduplicating", func() {
			out := dedupe.Records(context.Background(), in)

			Convey("Then the first-seen record per key wins and order is kept", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].Outlet, ShouldEqual, "first")
				So(out[1].Snippet, ShouldEqual, "Another team calls about X")
			})

			Convey("And running it again is a no-op", func() {
				So(dedupe.Records(context.Background(), out), ShouldResemble, out)
			})
		})

		Convey("When the input is empty", func() {
			out := dedupe.Records(context.Background(), nil)

			Convey("Then the output is empty", func() {
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When batches share a deduper", func() {
			d := dedupe.NewInMemoryDeduper()
			a := dedupe.Filter(context.Background(), d, []model.MentionRecord{first})
			b := dedupe.Filter(context.Background(), d, []model.MentionRecord{second, other})

			Convey("Then duplicates across batches collapse", func() {
				So(len(a), ShouldEqual, 1)
				So(len(b), ShouldEqual, 1)
				So(b[0].Snippet, ShouldEqual, other.Snippet)
			})
		})
	})
}
