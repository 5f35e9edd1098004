// Package roster provides the immutable lookup of canonical player names.
//
// An Index is built once per run and is safe for concurrent reads. An empty
// Index is a valid state: nothing resolves.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/okian/rumorboard/internal/domain/model"
)

// Defaults for the roster source and fallback matching.
const (
	headerToken      = "player"
	minLastNameRunes = 4
)

// Match is a full-name occurrence found in free text.
type Match struct {
	Player   model.CanonicalPlayer
	Position int // token offset of the first name token
	Tokens   int // number of tokens the name spans
}

// Index resolves text to canonical players.
type Index struct {
	players   []model.CanonicalPlayer
	byKey     map[string]int
	bySlug    map[string]int
	byLast    map[string][]int
	maxTokens int
}

// New builds an index from canonical full names. Blank names, the header
// token and duplicates (after folding) are skipped; the first spelling wins.
func New(names []string) *Index {
	idx := &Index{
		byKey:  make(map[string]int, len(names)),
		bySlug: make(map[string]int, len(names)),
		byLast: make(map[string][]int, len(names)),
	}
	for _, name := range names {
		idx.add(name)
	}
	return idx
}

func (idx *Index) add(name string) {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	if name == "" || strings.EqualFold(name, headerToken) {
		return
	}
	key := Key(name)
	if key == "" {
		return
	}
	if _, dup := idx.byKey[key]; dup {
		return
	}
	p := model.CanonicalPlayer{FullName: name, LastName: lastName(name)}
	i := len(idx.players)
	idx.players = append(idx.players, p)
	idx.byKey[key] = i
	idx.bySlug[Slug(name)] = i
	if last := Key(p.LastName); last != "" {
		idx.byLast[last] = append(idx.byLast[last], i)
	}
	if n := len(strings.Fields(key)); n > idx.maxTokens {
		idx.maxTokens = n
	}
}

// Load reads a line-oriented roster. A read error returns the players parsed
// so far together with the error.
func Load(r io.Reader) (*Index, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		names = append(names, sc.Text())
	}
	idx := New(names)
	if err := sc.Err(); err != nil {
		return idx, fmt.Errorf("read roster: %w", err)
	}
	return idx, nil
}

// LoadFile reads a roster file. A missing file yields an empty index and no error.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return New(nil), fmt.Errorf("open roster %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Len returns the number of canonical players.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.players)
}

// Players returns a copy of the canonical players in load order.
func (idx *Index) Players() []model.CanonicalPlayer {
	if idx == nil {
		return nil
	}
	out := make([]model.CanonicalPlayer, len(idx.players))
	copy(out, idx.players)
	return out
}

// ResolveExact matches text against full names, ignoring case, diacritics
// and surrounding punctuation.
func (idx *Index) ResolveExact(text string) (model.CanonicalPlayer, bool) {
	if idx.Len() == 0 {
		return model.CanonicalPlayer{}, false
	}
	i, ok := idx.byKey[Key(text)]
	if !ok {
		return model.CanonicalPlayer{}, false
	}
	return idx.players[i], true
}

// BySlug resolves a presentation-layer slug.
func (idx *Index) BySlug(slug string) (model.CanonicalPlayer, bool) {
	if idx.Len() == 0 {
		return model.CanonicalPlayer{}, false
	}
	i, ok := idx.bySlug[Slug(slug)]
	if !ok {
		return model.CanonicalPlayer{}, false
	}
	return idx.players[i], true
}

// ResolveByLastNameFallback returns every player whose last name appears as a
// whole token in text. Tokens shorter than four runes are ignored. Results are
// ordered by first occurrence, then by full name.
func (idx *Index) ResolveByLastNameFallback(text string) []model.CanonicalPlayer {
	if idx.Len() == 0 {
		return nil
	}
	var out []model.CanonicalPlayer
	seen := make(map[int]struct{})
	for _, tok := range Tokens(text) {
		if utf8.RuneCountInString(tok) < minLastNameRunes {
			continue
		}
		hits := idx.byLast[tok]
		if len(hits) == 0 {
			continue
		}
		batch := make([]model.CanonicalPlayer, 0, len(hits))
		for _, i := range hits {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			batch = append(batch, idx.players[i])
		}
		sort.Slice(batch, func(a, b int) bool { return batch[a].FullName < batch[b].FullName })
		out = append(out, batch...)
	}
	return out
}

// FindFullNames returns every canonical full name that occurs in text on
// token boundaries, in order of position.
func (idx *Index) FindFullNames(text string) []Match {
	if idx.Len() == 0 {
		return nil
	}
	toks := Tokens(text)
	var out []Match
	for i := range toks {
		for n := 1; n <= idx.maxTokens && i+n <= len(toks); n++ {
			p, ok := idx.byKey[strings.Join(toks[i:i+n], " ")]
			if !ok {
				continue
			}
			out = append(out, Match{Player: idx.players[p], Position: i, Tokens: n})
		}
	}
	return out
}

// NameLength is the length used by the longest-name heuristic.
func NameLength(p model.CanonicalPlayer) int {
	return utf8.RuneCountInString(Fold(p.FullName))
}
