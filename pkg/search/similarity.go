// Package search implements approximate title matching over recent registry
// entries and a general purpose edit distance
package search // import "github.com/joincivil/civil-content-registry/pkg/search"

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// ExactScore is the score of a case-insensitive exact match
	ExactScore = 100
	// ContainsScore is the score when one string contains the other
	ContainsScore = 80

	minQueryTokenLength = 4
)

// Similarity scores how well title matches query, from 0 to 100. An exact
// match scores 100, containment either way 80, otherwise the rounded share of
// query words longer than 3 characters that match some title word.
func Similarity(query string, title string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	ti := strings.ToLower(strings.TrimSpace(title))
	if q == "" || ti == "" {
		return 0
	}
	if q == ti {
		return ExactScore
	}
	if strings.Contains(ti, q) || strings.Contains(q, ti) {
		return ContainsScore
	}

	titleTokens := tokenize(ti)
	considered := 0
	matched := 0
	for _, qt := range tokenize(q) {
		if utf8.RuneCountInString(qt) < minQueryTokenLength {
			continue
		}
		considered++
		for _, tt := range titleTokens {
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				matched++
				break
			}
		}
	}
	if considered == 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(considered)))
}

// tokenize splits s into words of letters and digits
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
