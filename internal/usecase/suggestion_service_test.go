package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/logparts/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuggestionService(t *testing.T) {
	svc := NewSuggestionService(NewMockProductRepository(), nil, SuggestionServiceConfig{})

	assert.Equal(t, 10, svc.config.DefaultLimit)
	assert.Equal(t, 20, svc.config.MaxLimit)
	assert.Equal(t, 100, svc.config.SourceFetchLimit)
	assert.Equal(t, 1000, svc.config.CorrectionScanLimit)
}

func TestSuggest_ShortQuerySkipsRepository(t *testing.T) {
	repo := NewMockProductRepository()
	svc := NewSuggestionService(repo, nil, SuggestionServiceConfig{})

	for _, q := range []string{"", "a", " b "} {
		resp, err := svc.Suggest(context.Background(), q, 10)
		require.NoError(t, err)
		assert.NotNil(t, resp.Suggestions)
		assert.Empty(t, resp.Suggestions)
		assert.Equal(t, 0, resp.Total)
	}
	assert.Equal(t, 0, repo.callCount("FindPartial"))
}

func TestSuggest_CorrectionScanOnlyForLongQueries(t *testing.T) {
	repo := NewMockProductRepository()
	svc := NewSuggestionService(repo, nil, SuggestionServiceConfig{})
	ctx := context.Background()

	_, err := svc.Suggest(ctx, "ABCD", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.callCount("DistinctCodes"))
	assert.Equal(t, 1, repo.callCount("FindByCodes"))
	assert.Equal(t, 1, repo.callCount("FindPartial"))
	assert.Equal(t, 1, repo.callCount("FindComplete"))

	_, err = svc.Suggest(ctx, "ABCDE", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.callCount("DistinctCodes"))
}

func TestSuggest_AggregatesSources(t *testing.T) {
	svc := NewSuggestionService(seededStore(t), nil, SuggestionServiceConfig{})

	resp, err := svc.Suggest(context.Background(), "RV0401.0033", 10)
	require.NoError(t, err)

	assert.Equal(t, "RV0401.0033", resp.Query)
	assert.Equal(t, len(resp.Suggestions), resp.Total)
	assert.LessOrEqual(t, resp.Total, 10)

	seen := map[string]bool{}
	for i, s := range resp.Suggestions {
		key := strings.ToLower(s.Text)
		assert.False(t, seen[key], "duplicate %q", s.Text)
		seen[key] = true
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Suggestions[i-1].Confidence, s.Confidence)
		}
	}

	// both RV codes are one edit away and come back as corrections
	assert.True(t, seen["rv0401.0031"])
	assert.True(t, seen["rv0401.0032"])
	for _, s := range resp.Suggestions {
		assert.Equal(t, domain.SuggestionCorrection, s.Type)
	}
}

func TestSuggest_PartialAndSimilar(t *testing.T) {
	svc := NewSuggestionService(seededStore(t), nil, SuggestionServiceConfig{})

	resp, err := svc.Suggest(context.Background(), "RV04010031", 10)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)

	first := resp.Suggestions[0]
	assert.Equal(t, "RV0401.0031", first.Text)
	assert.Equal(t, domain.SuggestionSimilar, first.Type)
	assert.Equal(t, 0.9, first.Confidence)
}

func TestSuggest_LimitClamped(t *testing.T) {
	repo := NewMockProductRepository()
	for i := 0; i < 40; i++ {
		repo.partial = append(repo.partial, domain.ProductRecord{Code: "AB" + strings.Repeat("X", i+1)})
	}
	svc := NewSuggestionService(repo, nil, SuggestionServiceConfig{})

	resp, err := svc.Suggest(context.Background(), "AB", 500)
	require.NoError(t, err)
	assert.Len(t, resp.Suggestions, 20)

	resp, err = svc.Suggest(context.Background(), "AB", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Suggestions, 10)
}

func TestSuggest_DegradesOnFailure(t *testing.T) {
	repo := NewMockProductRepository()
	repo.distinctError = errors.New("scan timeout")
	cache := NewMockCacheRepository()
	svc := NewSuggestionService(repo, cache, SuggestionServiceConfig{})

	resp, err := svc.Suggest(context.Background(), "FILTRO", 10)

	assert.True(t, errors.Is(err, domain.ErrRepositoryFailure))
	require.NotNil(t, resp)
	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, "FILTRO", resp.Query)
	assert.Contains(t, resp.Error, "scan timeout")
	assert.Equal(t, 0, cache.sets)
}

func TestSuggest_UsesCache(t *testing.T) {
	repo := NewMockProductRepository()
	repo.partial = []domain.ProductRecord{{Code: "FIL-100", Title: "Filtro"}}
	cache := NewMockCacheRepository()
	svc := NewSuggestionService(repo, cache, SuggestionServiceConfig{})
	ctx := context.Background()

	first, err := svc.Suggest(ctx, "fil", 5)
	require.NoError(t, err)
	second, err := svc.Suggest(ctx, "FIL", 5)
	require.NoError(t, err)

	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, 1, repo.callCount("FindPartial"))
	assert.Equal(t, "fil", first.Query)
	assert.Equal(t, "FIL", second.Query, "cache hit echoes the caller's casing")
}

func TestSuggest_PunctuationIsPartOfCacheKey(t *testing.T) {
	repo := NewMockProductRepository()
	cache := NewMockCacheRepository()
	svc := NewSuggestionService(repo, cache, SuggestionServiceConfig{})
	ctx := context.Background()

	_, err := svc.Suggest(ctx, "AB+12", 5)
	require.NoError(t, err)
	_, err = svc.Suggest(ctx, "AB12", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.callCount("FindPartial"))
}
