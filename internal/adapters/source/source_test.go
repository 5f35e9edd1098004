package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/rumorboard/internal/adapters/source"
	"github.com/okian/rumorboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const rumorPage = `<html><body>
<div id="sidebar"><div class="rumor"><p class="rumortext">Sidebar noise</p></div></div>
<div id="content">
  <div class="date-holder">November 19, 2025 Updates</div>
  <div class="rumors">
    <div class="rumor">
      <p class="rumortext">The Celtics are   open to moving
        <strong>Anfernee Simons</strong>.</p>
      <a class="quote" href="https://www.espn.com/story/1">quote</a>
      <a class="rumormedia" href="/media/espn">ESPN</a>
      <div class="tag"><a href="/player/anfernee-simons">Anfernee Simons</a><a href="/team/celtics">Boston Celtics</a></div>
    </div>
    <div class="rumor">
      <p class="rumortext">Nobody quoted this one.</p>
      <a class="rumormedia" href="/media/hoopshype">HoopsHype</a>
    </div>
    <div class="rumor"><p class="rumortext">   </p></div>
  </div>
  <div class="date-holder">Sometime recently</div>
  <div class="rumors">
    <div class="rumor"><p class="rumor-content">Undated rumor about Sam Hauser</p><div class="tags"><a>Sam Hauser</a></div></div>
  </div>
  <div class="swipe_next"><a href="/rumors/tag/trade?page=2">Next</a></div>
</div>
</body></html>`

func TestParse(t *testing.T) {
	Convey("Given a rumor page", t, func() {
		base, _ := url.Parse("https://rumors.example.com/rumors/tag/trade")

		Convey("When parsing it", func() {
			p, err := source.Parse(strings.NewReader(rumorPage), base, 1)

			Convey("Then rumors inside the content block become fragments", func() {
				So(err, ShouldBeNil)
				So(len(p.Fragments), ShouldEqual, 3)
				So(p.HasNext, ShouldBeTrue)
			})

			Convey("And fields are extracted and cleaned", func() {
				f := p.Fragments[0]
				So(f.RawText, ShouldEqual, "The Celtics are open to moving Anfernee Simons.")
				So(f.Tags, ShouldResemble, []string{"Anfernee Simons", "Boston Celtics"})
				So(f.SourceURL, ShouldEqual, "https://www.espn.com/story/1")
				So(f.Outlet, ShouldEqual, "ESPN")
				So(model.FormatDate(f.Date), ShouldEqual, "2025-11-19")
			})

			Convey("And the outlet link is the fallback source", func() {
				So(p.Fragments[1].SourceURL, ShouldEqual, "https://rumors.example.com/media/hoopshype")
				So(p.Fragments[1].Tags, ShouldBeEmpty)
			})

			Convey("And an unparseable header leaves rumors undated", func() {
				f := p.Fragments[2]
				So(f.HasDate(), ShouldBeFalse)
				So(f.Tags, ShouldResemble, []string{"Sam Hauser"})
			})
		})

		Convey("When the page only links to the next number", func() {
			html := `<div id="content"><div class="date-holder">January 2, 2025</div><div class="rumor"><p class="rumortext">x</p></div><a href="?page=4">4</a></div>`
			p, err := source.Parse(strings.NewReader(html), base, 3)

			Convey("Then a next page is detected", func() {
				So(err, ShouldBeNil)
				So(p.HasNext, ShouldBeTrue)
			})
		})

		Convey("When the page has no pagination", func() {
			p, err := source.Parse(strings.NewReader(`<div id="content"></div>`), base, 1)

			Convey("Then it is empty and last", func() {
				So(err, ShouldBeNil)
				So(p.Fragments, ShouldBeEmpty)
				So(p.HasNext, ShouldBeFalse)
			})
		})
	})
}

func TestParseDateHeader(t *testing.T) {
	Convey("Given date headers", t, func() {
		So(model.FormatDate(source.ParseDateHeader("November 19, 2025 Updates")), ShouldEqual, "2025-11-19")
		So(model.FormatDate(source.ParseDateHeader("  March 3, 2024")), ShouldEqual, "2024-03-03")
		So(source.ParseDateHeader("Updates").IsZero(), ShouldBeTrue)
		So(source.ParseDateHeader("").IsZero(), ShouldBeTrue)
	})
}

func TestClient(t *testing.T) {
	Convey("Given a rumor site behind basic auth", t, func() {
		var calls atomic.Int32
		var failFirst atomic.Bool
		var lastQuery, lastUA atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			lastQuery.Store(r.URL.RawQuery)
			lastUA.Store(r.UserAgent())
			if user, pass, ok := r.BasicAuth(); !ok || user != "preview" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if failFirst.CompareAndSwap(true, false) {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(rumorPage))
		}))
		defer srv.Close()

		newClient := func(user string) *source.Client {
			c, err := source.New(srv.URL+"/rumors/tag/trade",
				source.WithBasicAuth(user, "secret"),
				source.WithUserAgent("rumorboard-test"),
				source.WithRetries(2),
				source.WithBackoff(time.Millisecond, 5*time.Millisecond),
				source.WithPageDelay(0),
				source.WithTimeout(2*time.Second),
			)
			So(err, ShouldBeNil)
			return c
		}

		Convey("When fetching page 2", func() {
			p, err := newClient("preview").FetchPage(context.Background(), 2)

			Convey("Then the page query, auth and user agent are sent", func() {
				So(err, ShouldBeNil)
				So(len(p.Fragments), ShouldEqual, 3)
				So(lastQuery.Load(), ShouldEqual, "page=2")
				So(lastUA.Load(), ShouldEqual, "rumorboard-test")
			})
		})

		Convey("When the server fails transiently", func() {
			failFirst.Store(true)
			_, err := newClient("preview").FetchPage(context.Background(), 1)

			Convey("Then the request is retried", func() {
				So(err, ShouldBeNil)
				So(calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When credentials are wrong", func() {
			_, err := newClient("intruder").FetchPage(context.Background(), 1)

			Convey("Then the client gives up without retrying", func() {
				So(errors.Is(err, source.ErrUnavailable), ShouldBeTrue)
				So(errors.Is(err, source.ErrBadStatus), ShouldBeTrue)
				So(calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := newClient("preview").FetchPage(ctx, 1)

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given page URLs", t, func() {
		c, err := source.New("https://rumors.example.com/rumors/tag/trade")
		So(err, ShouldBeNil)
		So(c.PageURL(1), ShouldEqual, "https://rumors.example.com/rumors/tag/trade")
		So(c.PageURL(3), ShouldEqual, "https://rumors.example.com/rumors/tag/trade?page=3")

		_, err = source.New("ftp://nope")
		So(errors.Is(err, source.ErrInvalidURL), ShouldBeTrue)
	})
}
