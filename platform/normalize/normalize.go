// Package normalize folds user-typed place names and codes into the keys
// used for matching.
// This is part of the platform layer and contains no business logic.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// City trims, strips diacritics and upper-cases a city name so that
// "São Paulo", "sao paulo " and "SAO PAULO" share one key.
func City(s string) string {
	folded := Fold(strings.TrimSpace(s))
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

// Region trims and upper-cases a state/region code.
func Region(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Fold removes combining marks after canonical decomposition.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// PostalCode canonicalizes a postal code. Eight-digit codes are formatted
// as NNNNN-NNN; anything else is trimmed and upper-cased.
func PostalCode(s string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(s))

	digits := make([]rune, 0, len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		case r == '-' || r == ' ' || r == '.':
		default:
			return trimmed
		}
	}
	if len(digits) == 8 {
		return string(digits[:5]) + "-" + string(digits[5:])
	}
	return trimmed
}
