package search // import "github.com/joincivil/civil-content-registry/pkg/search"

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// MaxEditDistanceLength is the longest input EditDistance computes exactly
	MaxEditDistanceLength = 10000
)

// EditDistance returns the Levenshtein distance between a and b with unit
// costs. When either input is longer than MaxEditDistanceLength characters it
// returns an estimate derived from the word-set Jaccard similarity instead.
func EditDistance(a string, b string) int {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	if lenA <= MaxEditDistanceLength && lenB <= MaxEditDistanceLength {
		return levenshtein.ComputeDistance(a, b)
	}
	longest := lenA
	if lenB > longest {
		longest = lenB
	}
	return int(math.Round((1 - JaccardSimilarity(a, b)) * float64(longest)))
}

// JaccardSimilarity returns the overlap of the lower cased word sets of a and
// b, from 0 to 1. Two strings without words are identical.
func JaccardSimilarity(a string, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = struct{}{}
	}
	return set
}
