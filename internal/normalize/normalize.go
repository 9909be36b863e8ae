// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the canonical case-insensitive form of s, used as the
// deduplication key for names that must compare equal regardless of
// casing ("Valve" and "VALVE" fold to the same key).
//
// Returns empty string for values that are empty after trimming.
func Fold(s string) string {
	s = strings.TrimSpace(sanitizeString(s))
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

// stripMarks removes combining marks after NFD decomposition.
//
//nolint:gochecknoglobals // Static transformer chain
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes diacritical marks ("Pokémon" → "Pokemon").
// Used to normalize search queries so accented and unaccented spellings
// match the same terms. Returns the input unchanged if the transform fails.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// SearchTerm lowercases, strips diacritics, and collapses internal
// whitespace. It produces the form indexed and queried by the search layer.
func SearchTerm(s string) string {
	s = strings.ToLower(StripDiacritics(sanitizeString(s)))
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing. Some catalog feeds include
// null terminators in strings.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
