package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark and therefore survive NFD decomposition.
var strokeLetters = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ı", "i",
	"ß", "ss",
)

var quotes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// generational suffixes never count as a last name.
var suffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}, "v": {},
}

// Fold strips diacritics so "Jokić" and "Jokic" compare equal. Case is kept.
func Fold(s string) string {
	// transform.Chain is stateful, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strokeLetters.Replace(out)
}

// Tokens splits text into folded, lower-cased name tokens. Separators are
// anything other than letters, digits, apostrophes, periods and hyphens;
// surrounding punctuation and a possessive "'s" are trimmed.
func Tokens(s string) []string {
	s = strings.ToLower(Fold(quotes.Replace(s)))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '.' && r != '-'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'.-")
		f = strings.TrimSuffix(f, "'s")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Key returns the lookup key for a name: its tokens joined by single spaces.
func Key(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Slug builds the URL-safe identifier used by the presentation layer.
func Slug(name string) string {
	s := strings.ToLower(Fold(quotes.Replace(strings.TrimSpace(name))))
	s = strings.NewReplacer("'", "", ".", "").Replace(s)
	return strings.Join(strings.Fields(s), "-")
}

// lastName derives the surname of a full name, skipping generational suffixes.
func lastName(full string) string {
	words := strings.Fields(full)
	for i := len(words) - 1; i >= 0; i-- {
		w := strings.Trim(strings.ToLower(Fold(words[i])), "'.,")
		if _, ok := suffixes[w]; ok && i > 0 {
			continue
		}
		return strings.TrimRight(words[i], ",")
	}
	return ""
}
