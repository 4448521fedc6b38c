// Package textnorm holds the string normalizations shared by the fleet and geo packages.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonLetters = regexp.MustCompile(`[^A-Z]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

func fold(s string, dropNonASCII bool) string {
	chain := []transform.Transformer{norm.NFKD, runes.Remove(runes.In(unicode.Mn))}
	if dropNonASCII {
		chain = append(chain, runes.Remove(runes.Predicate(func(r rune) bool {
			return r > unicode.MaxASCII
		})))
	}
	out, _, err := transform.String(transform.Chain(chain...), s)
	if err != nil {
		return s
	}
	return out
}

// StripAccents decomposes s (NFKD) and removes the combining marks.
func StripAccents(s string) string {
	return fold(s, false)
}

// AirlineKey is the grouping key for airline names: trimmed, accent-free ASCII, uppercase.
func AirlineKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(fold(strings.TrimSpace(s), true)))
}

// ModelKey normalizes an aircraft designation the same way as airline names.
func ModelKey(s string) string {
	return AirlineKey(s)
}

// Country uppercases s, strips diacritics, turns every non A-Z character into a
// space and collapses runs of whitespace.
func Country(s string) string {
	s = strings.ToUpper(strings.TrimSpace(fold(s, false)))
	s = nonLetters.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
