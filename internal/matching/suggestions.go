package matching

import (
	"sort"
	"strings"

	"github.com/logparts/backend/internal/domain"
)

// MinSuggestionQueryLength is the shortest trimmed query that gets suggestions
const MinSuggestionQueryLength = 2

// maxCorrections caps the correction source after sorting by confidence
const maxCorrections = 3

// Confidence values per source and tier
const (
	similarExactConfidence   = 1.0
	similarVariantConfidence = 0.9
	similarOtherConfidence   = 0.8

	partialCodePrefixConfidence = 1.0
	partialCodeConfidence       = 0.8
	partialTitleConfidence      = 0.6
	partialDescConfidence       = 0.4
	partialFallbackConfidence   = 0.2

	popularConfidence = 0.5
)

// SuggestionSources are the candidates fetched for one suggestion request. Codes is
// the bounded distinct-code scan used for corrections; it is ignored for queries
// too short to correct.
type SuggestionSources struct {
	Similar []domain.ProductRecord
	Partial []domain.ProductRecord
	Popular []domain.ProductRecord
	Codes   []string
}

// SimilarLimit caps the similar source: limit/2
func SimilarLimit(limit int) int { return limit / 2 }

// PartialLimit caps the partial source: limit
func PartialLimit(limit int) int { return limit }

// PopularLimit caps the popular source: max(3, limit/3)
func PopularLimit(limit int) int { return max(3, limit/3) }

// SimilarLookupCodes returns the codes the similar source looks up. The variant set
// already holds the upper-cased query and lookups are case-insensitive.
func SimilarLookupCodes(query string) []string {
	return NormalizeCode(query).Values()
}

// AggregateSuggestions merges the four sources in order (similar, partial, popular,
// correction), drops case-insensitive duplicates keeping the first occurrence, sorts
// by confidence descending and truncates to limit.
func AggregateSuggestions(query string, limit int, sources SuggestionSources) []domain.Suggestion {
	q := strings.TrimSpace(query)
	if RuneLen(q) < MinSuggestionQueryLength || limit <= 0 {
		return []domain.Suggestion{}
	}

	var merged []domain.Suggestion
	merged = append(merged, similarSuggestions(q, sources.Similar, SimilarLimit(limit))...)
	merged = append(merged, partialSuggestions(q, sources.Partial, PartialLimit(limit))...)
	merged = append(merged, popularSuggestions(sources.Popular, PopularLimit(limit))...)
	if CorrectionEligible(RuneLen(q)) {
		merged = append(merged, correctionSuggestions(q, sources.Codes)...)
	}

	seen := make(map[string]bool, len(merged))
	unique := make([]domain.Suggestion, 0, len(merged))
	for _, s := range merged {
		key := strings.ToLower(s.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})

	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func similarSuggestions(query string, products []domain.ProductRecord, limit int) []domain.Suggestion {
	variants := NormalizeCode(query)
	upperQuery := strings.ToUpper(query)

	out := make([]domain.Suggestion, 0, len(products))
	for _, p := range products {
		if p.Code == "" {
			continue
		}
		code := strings.ToUpper(p.Code)
		confidence := similarOtherConfidence
		switch {
		case code == upperQuery:
			confidence = similarExactConfidence
		case variants.Contains(code):
			confidence = similarVariantConfidence
		}
		out = append(out, titledSuggestion(p, domain.SuggestionSimilar, confidence))
	}
	return capByConfidence(out, limit)
}

func partialSuggestions(query string, products []domain.ProductRecord, limit int) []domain.Suggestion {
	q := strings.ToUpper(query)

	out := make([]domain.Suggestion, 0, len(products))
	for _, p := range products {
		if p.Code == "" {
			continue
		}
		code := strings.ToUpper(p.Code)
		confidence := partialFallbackConfidence
		switch {
		case strings.HasPrefix(code, q):
			confidence = partialCodePrefixConfidence
		case strings.Contains(code, q):
			confidence = partialCodeConfidence
		case strings.Contains(strings.ToUpper(p.Title), q):
			confidence = partialTitleConfidence
		case strings.Contains(strings.ToUpper(p.Description), q):
			confidence = partialDescConfidence
		}
		out = append(out, titledSuggestion(p, domain.SuggestionPartial, confidence))
	}
	return capByConfidence(out, limit)
}

func popularSuggestions(products []domain.ProductRecord, limit int) []domain.Suggestion {
	ranked := make([]domain.ProductRecord, 0, len(products))
	for _, p := range products {
		if p.Code != "" {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Completeness(), ranked[j].Completeness()
		if ci != cj {
			return ci > cj
		}
		return ranked[i].Code < ranked[j].Code
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]domain.Suggestion, 0, len(ranked))
	for _, p := range ranked {
		out = append(out, titledSuggestion(p, domain.SuggestionPopular, popularConfidence))
	}
	return out
}

func correctionSuggestions(query string, codes []string) []domain.Suggestion {
	q := strings.ToUpper(query)
	qLen := RuneLen(q)

	out := []domain.Suggestion{}
	for _, code := range codes {
		if code == "" {
			continue
		}
		distance := LevenshteinDistance(q, strings.ToUpper(code))
		if !IsCorrection(distance, qLen) {
			continue
		}
		out = append(out, domain.Suggestion{
			Text:       code,
			Type:       domain.SuggestionCorrection,
			Confidence: CorrectionConfidence(distance, qLen),
			Metadata:   map[string]interface{}{"distance": distance},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > maxCorrections {
		out = out[:maxCorrections]
	}
	return out
}

// capByConfidence orders by (confidence desc, text asc) and keeps the first limit
func capByConfidence(suggestions []domain.Suggestion, limit int) []domain.Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Text < suggestions[j].Text
	})
	if limit < 0 {
		limit = 0
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

func titledSuggestion(p domain.ProductRecord, t domain.SuggestionType, confidence float64) domain.Suggestion {
	return domain.Suggestion{
		Text:       p.Code,
		Type:       t,
		Confidence: confidence,
		Metadata:   map[string]interface{}{"title": p.Title},
	}
}
