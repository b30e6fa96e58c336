package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
	"github.com/logparts/backend/internal/metrics"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	DefaultLimit        int
	MaxLimit            int
	CandidateMultiplier int
	MaxCandidates       int
	EnableDebugLogging  bool
}

// SearchService ranks catalog candidates by confidence and pages the result
type SearchService struct {
	products     domain.ProductRepository
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	config       SearchServiceConfig
}

// NewSearchService creates a new search service. cache may be nil.
func NewSearchService(
	products domain.ProductRepository,
	cache domain.CacheRepository,
	config SearchServiceConfig,
) *SearchService {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = matching.DefaultPageLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 100
	}
	if config.CandidateMultiplier <= 0 {
		config.CandidateMultiplier = 2
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 500
	}

	return &SearchService{
		products:     products,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging),
		config:       config,
	}
}

// Search fetches candidates for the request, scores every one of them and returns
// the requested page of the confidence-sorted list.
//
// A repository failure returns a valid empty response with Error set together
// with an error wrapping ErrRepositoryFailure, so callers can still render it.
func (s *SearchService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	query := s.preprocessor.Preprocess(request.Query, domain.ParseSearchType(request.Type))
	if query.IsEmpty() {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	skip, limit := s.pageBounds(request.Skip, request.Limit)

	key := cacheKey("search", string(query.Type), query.Trimmed, skip, limit)
	if cached, ok := s.getFromCache(ctx, key); ok {
		metrics.ObserveRequest(metrics.OpSearch, time.Since(start), nil)
		return cached, nil
	}

	candidates, err := s.products.SearchCandidates(ctx, query, s.fetchLimit(skip, limit))
	if err != nil {
		log.Printf("[SEARCH] candidate fetch failed for %q: %v", query.Trimmed, err)
		metrics.IncRepositoryFailure("search_candidates")
		metrics.ObserveRequest(metrics.OpSearch, time.Since(start), err)

		return &domain.SearchResponse{
			Page:  matching.RankAndPage(nil, query, skip, limit),
			Error: err.Error(),
		}, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}

	page := matching.RankAndPage(candidates, query, skip, limit)
	response := &domain.SearchResponse{Page: page}

	if s.config.EnableDebugLogging {
		log.Printf("[SEARCH] q=%q type=%s candidates=%d page=%d high=%d medium=%d low=%d",
			query.Trimmed, query.Type, len(candidates), page.Page,
			page.Stats.High, page.Stats.Medium, page.Stats.Low)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, response); err != nil {
			log.Printf("[SEARCH] cache set failed: %v", err)
		}
	}

	metrics.AddConfidenceStats(page.Stats)
	metrics.ObserveRequest(metrics.OpSearch, time.Since(start), nil)
	return response, nil
}

// pageBounds applies the default and maximum page size
func (s *SearchService) pageBounds(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	return skip, limit
}

// fetchLimit bounds the candidate fetch. Ranking happens over the whole fetched set,
// so the fetch always covers the requested page and over-fetches by the multiplier.
func (s *SearchService) fetchLimit(skip, limit int) int {
	needed := skip + limit
	fetch := needed * s.config.CandidateMultiplier
	if fetch > s.config.MaxCandidates {
		fetch = max(s.config.MaxCandidates, needed)
	}
	return fetch
}

func (s *SearchService) getFromCache(ctx context.Context, key string) (*domain.SearchResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.IncCacheMiss(metrics.OpSearch)
		return nil, false
	}

	response, ok := value.(*domain.SearchResponse)
	if !ok {
		metrics.IncCacheMiss(metrics.OpSearch)
		return nil, false
	}

	metrics.IncCacheHit(metrics.OpSearch)
	return response, true
}
