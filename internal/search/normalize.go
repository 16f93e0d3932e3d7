// Package search finds catalog entries by free-text query. Matching is
// substring containment of normalized query tokens in normalized names; a
// token "cat" matches a name containing "catalog". That is intentional.
package search

import (
	"strings"
	"unicode"
)

// stopWords are dropped from both queries and names: articles,
// conjunctions, common prepositions, copulas, and demonstratives.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {}, "nor": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "of": {}, "for": {}, "by": {}, "with": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"this": {}, "that": {}, "it": {}, "its": {},
}

// Normalize lowercases, turns underscores into spaces, strips everything
// that is not a letter, digit, or space, collapses whitespace runs, and
// trims. Normalizing an already-normalized string returns it unchanged.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if r == '_' || unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens normalizes s, splits it into words, removes stop-words, and
// deduplicates preserving first occurrence. Queries and candidate names go
// through this same pipeline in the same order.
func Tokens(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}

	var tokens []string
	seen := make(map[string]struct{})
	for _, word := range strings.Split(normalized, " ") {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
	}
	return tokens
}
