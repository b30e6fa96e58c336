package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore()
	products := []domain.ProductRecord{
		{
			Code:              "RV0401.0031",
			Title:             "Bomba de agua",
			Description:       "Bomba de agua para motor diesel",
			Brand:             "Rolvel",
			RawAlternateCodes: "HY 1534017 / YA 580039672",
			Images:            []string{"https://cdn.example.com/rv.jpg"},
			BasePrice:         price(120.5),
		},
		{Code: "FIL-100", Title: "Filtro de oleo", Description: "Filtro de oleo do motor", Brand: "Tecfil"},
		{Code: "FIL-200", Title: "Filtro de ar"},
		{Code: "PEC-01", Title: "Peça de reposição", Description: "Junta", Images: []string{"a.jpg"}, BasePrice: price(10)},
	}
	for _, p := range products {
		require.NoError(t, store.Insert(context.Background(), p))
	}
	return store
}

func codes(products []domain.ProductRecord) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Code)
	}
	return out
}

func TestStore_Insert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, 4, store.Len())

	err := store.Insert(ctx, domain.ProductRecord{Code: "FIL-100"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateProduct))

	err = store.Insert(ctx, domain.ProductRecord{Code: ""})
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	got, err := store.GetByIDOrCode(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, got.AlternateCodes, 2)
}

func TestStore_SearchCandidates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		query      string
		searchType domain.SearchType
		want       []string
	}{
		{"exact code first", "fil-100", domain.SearchTypeCode, []string{"FIL-100"}},
		{"compacted code", "RV04010031", domain.SearchTypeCode, []string{"RV0401.0031"}},
		{"alternate code", "HY 1534017", domain.SearchTypeCode, []string{"RV0401.0031"}},
		{"code prefix in title order", "fil", domain.SearchTypeCode, []string{"FIL-200", "FIL-100"}},
		{"text by relevance", "filtro", domain.SearchTypeText, []string{"FIL-200", "FIL-100"}},
		{"multi word AND", "filtro motor", domain.SearchTypeText, []string{"FIL-100"}},
		{"full term in title", "de agua", domain.SearchTypeText, []string{"RV0401.0031"}},
		{"accents fold", "PEÇA", domain.SearchTypeText, []string{"PEC-01"}},
		{"no match", "pastilha", domain.SearchTypeText, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchCandidates(ctx, matching.ParseQuery(tt.query, tt.searchType), 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(got))
		})
	}
}

func TestStore_Lookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.FindByCodes(ctx, []string{"rv0401.0031", "nope"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"RV0401.0031"}, codes(got))

	got, err = store.FindPartial(ctx, "FIL", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIL-100"}, codes(got))

	got, err = store.FindComplete(ctx, "a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEC-01", "RV0401.0031"}, codes(got))

	distinct, err := store.DistinctCodes(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIL-100", "FIL-200"}, distinct)

	got, err = store.List(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEC-01"}, codes(got))

	got, err = store.PopularByCompleteness(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEC-01", "RV0401.0031"}, codes(got))

	_, err = store.GetByIDOrCode(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestStore_ConcurrentReadsAndWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	query := matching.ParseQuery("filtro", domain.SearchTypeText)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Insert(ctx, domain.ProductRecord{Code: "NEW-" + string(rune('A'+i)), Title: "Filtro novo"})
			_, err := store.SearchCandidates(ctx, query, 50)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 12, store.Len())
}
