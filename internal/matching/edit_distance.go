package matching

import "math"

// Correction policy constants
const (
	MinCorrectionQueryLength = 5   // queries of 4 runes or fewer are never corrected
	MaxCorrectionDistance    = 3   // hard cap on accepted edit distance
	MinCorrectionConfidence  = 0.1 // floor for accepted corrections
)

// LevenshteinDistance calculates the edit distance between two strings. Insertion,
// deletion and substitution each cost 1. Comparison is rune-wise and case-sensitive;
// callers upper-case both sides first.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// CorrectionDistanceBound is the largest distance accepted for a query of the given
// rune length: min(3, queryLen/3)
func CorrectionDistanceBound(queryLen int) int {
	return min(MaxCorrectionDistance, queryLen/3)
}

// CorrectionEligible reports whether a query is long enough to be corrected
func CorrectionEligible(queryLen int) bool {
	return queryLen >= MinCorrectionQueryLength
}

// IsCorrection applies the correction policy to a computed distance
func IsCorrection(distance, queryLen int) bool {
	if !CorrectionEligible(queryLen) {
		return false
	}
	return distance >= 1 && distance <= CorrectionDistanceBound(queryLen)
}

// CorrectionConfidence converts an accepted distance to a 0.1-1.0 confidence.
// queryLen must be positive; IsCorrection guarantees that.
func CorrectionConfidence(distance, queryLen int) float64 {
	return math.Max(MinCorrectionConfidence, 1.0-float64(distance)/float64(queryLen))
}
