package matching

import (
	"strings"
	"unicode/utf8"
)

// Multi-word relevance weights
const (
	titleWordWeight       = 10  // significant word found in title
	descriptionWordWeight = 5   // significant word found in description
	fullQueryTitleBonus   = 100 // whole query found in title
)

// Single-word relevance tiers
const (
	singleWordExactTitle          = 100
	singleWordTitlePrefix         = 60
	singleWordTitleContains       = 30
	singleWordDescriptionContains = 10
)

// maxNoiseWordLength: words this short carry no signal
const maxNoiseWordLength = 2

// SignificantWords drops words of two runes or fewer
func SignificantWords(words []string) []string {
	significant := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > maxNoiseWordLength {
			significant = append(significant, w)
		}
	}
	return significant
}

// TextRelevance scores a free-text query against a title and description.
//
// Multi-word queries add 10 per significant word in the title, 5 per significant
// word in the description, and 100 when the whole query appears in the title.
// Single-word queries use tiers instead: exact title, title prefix, title
// substring, description substring. No clamp is applied.
func TextRelevance(query, title, description string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	t := strings.ToLower(title)
	d := strings.ToLower(description)

	words := strings.Fields(q)
	if len(words) == 1 {
		switch {
		case t == q:
			return singleWordExactTitle
		case strings.HasPrefix(t, q):
			return singleWordTitlePrefix
		case strings.Contains(t, q):
			return singleWordTitleContains
		case strings.Contains(d, q):
			return singleWordDescriptionContains
		}
		return 0
	}

	score := 0
	if strings.Contains(t, q) {
		score += fullQueryTitleBonus
	}
	for _, w := range SignificantWords(words) {
		if strings.Contains(t, w) {
			score += titleWordWeight
		}
		if strings.Contains(d, w) {
			score += descriptionWordWeight
		}
	}
	return score
}
