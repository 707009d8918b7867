// Package match provides identity matching for bibliographic entities:
// personal name parsing and equivalence, publisher canonical-alias
// resolution, and edit-distance similarity scoring used by the domain
// reconcilers to group near-identical strings.
package match

import (
	"github.com/agnivade/levenshtein"
)

// DefaultSimilarityThreshold is the similarity above which two normalized
// free-text values (publisher names, series names, titles) are treated as
// the same entity.
const DefaultSimilarityThreshold = 0.8

// Similarity returns a Levenshtein similarity in [0,1]:
// (maxLen - editDistance) / maxLen. Two empty strings score 1.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// Similar reports whether two strings clear the default similarity threshold.
func Similar(a, b string) bool {
	return Similarity(a, b) >= DefaultSimilarityThreshold
}
