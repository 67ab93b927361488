package nlp

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity for an approximate match.
const DefaultFuzzyThreshold = 0.8

// thresholdTolerance absorbs float rounding so a similarity that equals the
// threshold on paper is accepted.
const thresholdTolerance = 1e-9

// Similarity returns 1 - distance/max(len(a), len(b)) using Levenshtein
// distance over runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// meetsThreshold reports whether sim is at or above threshold.
func meetsThreshold(sim, threshold float64) bool {
	return sim >= threshold-thresholdTolerance
}
