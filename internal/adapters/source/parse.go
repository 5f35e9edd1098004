package source

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/internal/domain/pagination"
)

// Selectors for the rumor page layout. Older and newer templates differ, so
// each field lists both spellings.
const (
	blockSelector  = "div.date-holder, div.rumor"
	textSelector   = "p.rumortext, p.rumor-content"
	tagSelector    = "div.tag a, div.tags a"
	quoteSelector  = "a.quote"
	outletSelector = "a.rumormedia"
	nextSelector   = "a.next, div.swipe_next a"
)

// Parse turns one rumor page into fragments. Every rumor takes the date of
// the nearest preceding date header; an unparseable header leaves its rumors
// without a date. page is used to detect a numbered link to the next page.
func Parse(r io.Reader, base *url.URL, page int) (pagination.Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return pagination.Page{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	root := doc.Selection
	if content := doc.Find("div#content"); content.Length() > 0 {
		root = content.First()
	}

	var out pagination.Page
	var current time.Time
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("date-holder") {
			current = ParseDateHeader(s.Text())
			return
		}
		f, ok := parseRumor(s, base)
		if !ok {
			return
		}
		f.Date = current
		out.Fragments = append(out.Fragments, f)
	})
	out.HasNext = hasNext(doc, page)
	return out, nil
}

func parseRumor(s *goquery.Selection, base *url.URL) (model.CandidateFragment, bool) {
	p := s.Find(textSelector).First()
	text := collapse(p.Text())
	if text == "" {
		return model.CandidateFragment{}, false
	}
	f := model.CandidateFragment{RawText: text}
	s.Find(tagSelector).Each(func(_ int, a *goquery.Selection) {
		if t := collapse(a.Text()); t != "" {
			f.Tags = append(f.Tags, t)
		}
	})
	outlet := s.Find(outletSelector).First()
	f.Outlet = collapse(outlet.Text())
	if href, ok := s.Find(quoteSelector).First().Attr("href"); ok {
		f.SourceURL = resolve(base, href)
	} else if href, ok := outlet.Attr("href"); ok {
		f.SourceURL = resolve(base, href)
	}
	return f, true
}

func hasNext(doc *goquery.Document, page int) bool {
	if doc.Find(nextSelector).Length() > 0 {
		return true
	}
	want := strconv.Itoa(page + 1)
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if u, err := url.Parse(href); err == nil && u.Query().Get("page") == want {
			found = true
		}
		return !found
	})
	return found
}

// ParseDateHeader reads headers such as "November 19, 2025 Updates". The
// first three words are tried first, then the whole header. It returns the
// zero time when neither parses.
func ParseDateHeader(text string) time.Time {
	words := strings.Fields(text)
	if len(words) == 0 {
		return time.Time{}
	}
	candidates := []string{strings.Join(words[:min(3, len(words))], " "), strings.Join(words, " ")}
	for _, c := range candidates {
		t, err := dateparse.ParseIn(c, time.UTC)
		if err == nil {
			return model.Day(t)
		}
	}
	return time.Time{}
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
