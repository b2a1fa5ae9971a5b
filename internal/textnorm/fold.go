// Package textnorm provides accent-insensitive matching helpers for Spanish
// text. Marker phrases and keyword tables are matched under Fold so user
// spelling without tildes ("informacion", "cuando") still hits.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes combining diacritical marks.
func Fold(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Contains reports whether haystack contains needle, compared under Fold.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// HasAny reports whether haystack contains any of the needles under Fold.
// The haystack is folded once.
func HasAny(haystack string, needles []string) bool {
	folded := Fold(haystack)
	for _, n := range needles {
		if strings.Contains(folded, Fold(n)) {
			return true
		}
	}
	return false
}
