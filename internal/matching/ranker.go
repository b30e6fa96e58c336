package matching

import (
	"sort"

	"github.com/logparts/backend/internal/domain"
)

// DefaultPageLimit is used when a caller passes a non-positive limit
const DefaultPageLimit = 20

// ScoreAll attaches confidence to every candidate and sorts descending by
// (level priority, score, title). Titles compare by byte order, so equal
// priority and score resolve in reverse title order. Fully equal keys keep
// their storage order.
func ScoreAll(candidates []domain.ProductRecord, query domain.Query) []domain.ScoredProduct {
	scored := make([]domain.ScoredProduct, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, domain.ScoredProduct{
			Product:    candidates[i],
			Confidence: ScoreConfidence(&candidates[i], query),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if pa, pb := a.Confidence.Level.Priority(), b.Confidence.Level.Priority(); pa != pb {
			return pa > pb
		}
		if a.Confidence.Score != b.Confidence.Score {
			return a.Confidence.Score > b.Confidence.Score
		}
		return a.Product.Title > b.Product.Title
	})

	return scored
}

// RankAndPage scores and sorts the full candidate set, then slices [skip, skip+limit)
// from the sorted list. Stats cover the full set, not just the page.
func RankAndPage(candidates []domain.ProductRecord, query domain.Query, skip, limit int) domain.SearchPage {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	scored := ScoreAll(candidates, query)

	var stats domain.ConfidenceStats
	for _, s := range scored {
		stats.Add(s.Confidence.Level)
	}

	total := len(scored)
	start := min(skip, total)
	end := min(skip+limit, total)

	items := make([]domain.ScoredProduct, end-start)
	copy(items, scored[start:end])

	return domain.SearchPage{
		Items:   items,
		Total:   total,
		Page:    skip/limit + 1,
		Limit:   limit,
		HasMore: total > skip+limit,
		Stats:   stats,
	}
}
