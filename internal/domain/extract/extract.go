// Package extract resolves raw candidate fragments to dated mention records.
//
// Resolution follows one precedence chain:
//  1. explicit tags that exactly match a canonical name (one record per player)
//  2. full canonical names inside the text (longest wins, then leftmost)
//  3. last-name fallback (single candidate, else longest then lexicographic)
//
// A fragment without a date never yields a record.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/internal/domain/roster"
)

// Defaults for snippet handling.
const (
	defaultSnippetRunes = 500
	tagSeparator        = " , "
	tagMarker           = "trade"
)

// Drop reasons reported by ExtractAll.
const (
	ReasonNoDate     = "no_date"
	ReasonUnresolved = "unresolved"
)

// Resolver is the roster surface the extractor depends on.
type Resolver interface {
	ResolveExact(text string) (model.CanonicalPlayer, bool)
	FindFullNames(text string) []roster.Match
	ResolveByLastNameFallback(text string) []model.CanonicalPlayer
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithSnippetRunes caps the stored snippet length.
func WithSnippetRunes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.snippetRunes = n
		}
	}
}

// WithTagTrailer enables recovering tags from a trailing " , Trade , A , B" list
// when the collaborator supplied none.
func WithTagTrailer(enabled bool) Option {
	return func(e *Extractor) {
		e.tagTrailer = enabled
	}
}

// Extractor is a pure function of its inputs and the immutable roster.
type Extractor struct {
	roster       Resolver
	snippetRunes int
	tagTrailer   bool
}

// New creates an extractor over the given roster.
func New(r Resolver, opts ...Option) *Extractor {
	e := &Extractor{
		roster:       r,
		snippetRunes: defaultSnippetRunes,
		tagTrailer:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves a single fragment to zero or more mention records.
func (e *Extractor) Extract(f model.CandidateFragment) []model.MentionRecord {
	recs, _ := e.extract(f)
	return recs
}

func (e *Extractor) extract(f model.CandidateFragment) ([]model.MentionRecord, string) {
	if !f.HasDate() {
		return nil, ReasonNoDate
	}
	players := e.resolve(f)
	if len(players) == 0 {
		return nil, ReasonUnresolved
	}
	date := model.Day(f.Date)
	snippet := e.snippet(f.RawText)
	out := make([]model.MentionRecord, 0, len(players))
	for _, p := range players {
		out = append(out, model.MentionRecord{
			Player:    p.FullName,
			Date:      date,
			Snippet:   snippet,
			SourceURL: strings.TrimSpace(f.SourceURL),
			Outlet:    strings.TrimSpace(f.Outlet),
		})
	}
	return out, ""
}

func (e *Extractor) resolve(f model.CandidateFragment) []model.CanonicalPlayer {
	if e.roster == nil {
		return nil
	}
	tags := f.Tags
	if len(tags) == 0 && e.tagTrailer {
		tags = TrailerTags(f.RawText)
	}
	if players := e.resolveTags(tags); len(players) > 0 {
		return players
	}
	if p, ok := longestMatch(e.roster.FindFullNames(f.RawText)); ok {
		return []model.CanonicalPlayer{p}
	}
	if p, ok := longestCandidate(e.roster.ResolveByLastNameFallback(f.RawText)); ok {
		return []model.CanonicalPlayer{p}
	}
	return nil
}

func (e *Extractor) resolveTags(tags []string) []model.CanonicalPlayer {
	var out []model.CanonicalPlayer
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		p, ok := e.roster.ResolveExact(tag)
		if !ok {
			continue
		}
		if _, dup := seen[p.FullName]; dup {
			continue
		}
		seen[p.FullName] = struct{}{}
		out = append(out, p)
	}
	return out
}

// longestMatch picks the longest full name; ties go to the leftmost occurrence.
func longestMatch(matches []roster.Match) (model.CanonicalPlayer, bool) {
	if len(matches) == 0 {
		return model.CanonicalPlayer{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		bl, ml := roster.NameLength(best.Player), roster.NameLength(m.Player)
		if ml > bl || (ml == bl && m.Position < best.Position) {
			best = m
		}
	}
	return best.Player, true
}

// longestCandidate picks the longest full name from fallback candidates;
// equal lengths fall back to lexicographic order.
func longestCandidate(cands []model.CanonicalPlayer) (model.CanonicalPlayer, bool) {
	if len(cands) == 0 {
		return model.CanonicalPlayer{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		cl, bl := roster.NameLength(c), roster.NameLength(best)
		if cl > bl || (cl == bl && c.FullName < best.FullName) {
			best = c
		}
	}
	return best, true
}

func (e *Extractor) snippet(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if utf8.RuneCountInString(s) <= e.snippetRunes {
		return s
	}
	r := []rune(s)
	return string(r[:e.snippetRunes])
}

// TrailerTags recovers tag names from scraped text that ends in a tag list,
// e.g. "... HoopsHype Boston Celtics , Trade , Anfernee Simons , Sam Hauser".
// Only entries after the last "Trade" marker with at least two words count.
func TrailerTags(text string) []string {
	parts := strings.Split(text, tagSeparator)
	marker := -1
	for i := len(parts) - 1; i >= 0; i-- {
		if strings.EqualFold(strings.TrimSpace(parts[i]), tagMarker) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, p := range parts[marker+1:] {
		p = strings.TrimSpace(p)
		if len(strings.Fields(p)) < 2 {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
