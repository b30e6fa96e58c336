package matching

import (
	"testing"

	"github.com/logparts/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankingFixture scores (for the text query "filtro"):
// D 75 high, E 40 medium, C 33 low, A 30 low, B 25 low
func rankingFixture() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: "1", Code: "A1", Title: "Filtro"},
		{ID: "2", Code: "B1", Title: "Filtro de oleo motor"},
		{ID: "3", Code: "C1", Title: "Filtro de ar completo", Images: []string{"c.jpg"}},
		{ID: "4", Code: "D1", Title: "Filtro de combustivel", RawAlternateCodes: "filtro"},
		{ID: "5", Code: "E1", Title: "Bomba filtro", Description: "com filtro"},
	}
}

func codesOf(items []domain.ScoredProduct) []string {
	codes := make([]string, 0, len(items))
	for _, it := range items {
		codes = append(codes, it.Product.Code)
	}
	return codes
}

func TestScoreAll_Ordering(t *testing.T) {
	scored := ScoreAll(rankingFixture(), textQuery("filtro"))

	require.Len(t, scored, 5)
	assert.Equal(t, []string{"D1", "E1", "C1", "A1", "B1"}, codesOf(scored))
	assert.Equal(t, domain.LevelHigh, scored[0].Confidence.Level)
	assert.Equal(t, domain.LevelMedium, scored[1].Confidence.Level)

	for i := 1; i < len(scored); i++ {
		prev, cur := scored[i-1].Confidence, scored[i].Confidence
		assert.GreaterOrEqual(t, prev.Level.Priority(), cur.Level.Priority())
		if prev.Level == cur.Level {
			assert.GreaterOrEqual(t, prev.Score, cur.Score)
		}
	}
}

func TestScoreAll_TiesResolveInReverseTitleOrder(t *testing.T) {
	candidates := []domain.ProductRecord{
		{Code: "X1", Title: "Filtro de ar motor"},
		{Code: "X2", Title: "Filtro de oleo motor"},
	}

	scored := ScoreAll(candidates, textQuery("filtro"))

	require.Equal(t, scored[0].Confidence.Score, scored[1].Confidence.Score)
	assert.Equal(t, []string{"X2", "X1"}, codesOf(scored))
}

func TestScoreAll_Empty(t *testing.T) {
	assert.Empty(t, ScoreAll(nil, textQuery("filtro")))
}

func TestRankAndPage(t *testing.T) {
	query := textQuery("filtro")

	tests := []struct {
		name    string
		skip    int
		limit   int
		codes   []string
		page    int
		hasMore bool
	}{
		{"first page", 0, 2, []string{"D1", "E1"}, 1, true},
		{"middle page", 2, 2, []string{"C1", "A1"}, 2, true},
		{"last partial page", 4, 2, []string{"B1"}, 3, false},
		{"exact fit", 0, 5, []string{"D1", "E1", "C1", "A1", "B1"}, 1, false},
		{"skip past the end", 10, 2, []string{}, 6, false},
		{"negative skip is treated as zero", -3, 1, []string{"D1"}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankAndPage(rankingFixture(), query, tt.skip, tt.limit)

			assert.Equal(t, tt.codes, codesOf(got.Items))
			assert.Equal(t, 5, got.Total)
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.hasMore, got.HasMore)
		})
	}
}

func TestRankAndPage_StatsCoverFullSet(t *testing.T) {
	got := RankAndPage(rankingFixture(), textQuery("filtro"), 0, 1)

	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.ConfidenceStats{Total: 5, High: 1, Medium: 1, Low: 3}, got.Stats)
	assert.Equal(t, got.Stats.Total, got.Stats.High+got.Stats.Medium+got.Stats.Low)
}

func TestRankAndPage_DefaultLimit(t *testing.T) {
	got := RankAndPage(rankingFixture(), textQuery("filtro"), 0, 0)

	assert.Equal(t, DefaultPageLimit, got.Limit)
	assert.Len(t, got.Items, 5)
	assert.False(t, got.HasMore)
}

func TestRankAndPage_NoCandidates(t *testing.T) {
	got := RankAndPage(nil, codeQuery("ZZ999"), 0, 20)

	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.False(t, got.HasMore)
	assert.Equal(t, domain.ConfidenceStats{}, got.Stats)
}
