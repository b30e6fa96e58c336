package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
	"github.com/logparts/backend/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// SuggestionServiceConfig holds configuration for the suggestion service
type SuggestionServiceConfig struct {
	DefaultLimit        int
	MaxLimit            int
	SourceFetchLimit    int
	CorrectionScanLimit int
	EnableDebugLogging  bool
}

// SuggestionService produces "did you mean" completions for a partial query
type SuggestionService struct {
	products     domain.ProductRepository
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	config       SuggestionServiceConfig
}

// NewSuggestionService creates a new suggestion service. cache may be nil.
func NewSuggestionService(
	products domain.ProductRepository,
	cache domain.CacheRepository,
	config SuggestionServiceConfig,
) *SuggestionService {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 10
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 20
	}
	if config.SourceFetchLimit <= 0 {
		config.SourceFetchLimit = 100
	}
	if config.CorrectionScanLimit <= 0 {
		config.CorrectionScanLimit = 1000
	}

	return &SuggestionService{
		products:     products,
		cache:        cache,
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging),
		config:       config,
	}
}

// Suggest fetches the four candidate sources concurrently and aggregates them.
// Queries shorter than two characters yield an empty response without touching
// the repository. A fetch failure returns an empty response with Error set and an
// error wrapping ErrRepositoryFailure.
func (s *SuggestionService) Suggest(ctx context.Context, rawQuery string, limit int) (*domain.SuggestResponse, error) {
	start := time.Now()

	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	query := s.preprocessor.Preprocess(rawQuery, domain.SearchTypeCode)
	empty := &domain.SuggestResponse{Suggestions: []domain.Suggestion{}, Query: query.Trimmed}

	if matching.RuneLen(query.Trimmed) < matching.MinSuggestionQueryLength {
		return empty, nil
	}

	key := cacheKey("suggest", query.Trimmed, limit)
	if cached, ok := s.getFromCache(ctx, key); ok {
		metrics.ObserveRequest(metrics.OpSuggest, time.Since(start), nil)
		// the key is case-folded, so echo this caller's query
		echoed := *cached
		echoed.Query = query.Trimmed
		return &echoed, nil
	}

	sources, err := s.fetchSources(ctx, query.Trimmed)
	if err != nil {
		log.Printf("[SUGGEST] source fetch failed for %q: %v", query.Trimmed, err)
		metrics.IncRepositoryFailure("suggestion_sources")
		metrics.ObserveRequest(metrics.OpSuggest, time.Since(start), err)

		empty.Error = err.Error()
		return empty, fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
	}

	suggestions := matching.AggregateSuggestions(query.Trimmed, limit, sources)
	response := &domain.SuggestResponse{
		Suggestions: suggestions,
		Query:       query.Trimmed,
		Total:       len(suggestions),
	}

	if s.config.EnableDebugLogging {
		log.Printf("[SUGGEST] q=%q similar=%d partial=%d popular=%d codes=%d returned=%d",
			query.Trimmed, len(sources.Similar), len(sources.Partial), len(sources.Popular),
			len(sources.Codes), len(suggestions))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, response); err != nil {
			log.Printf("[SUGGEST] cache set failed: %v", err)
		}
	}

	metrics.AddSuggestions(suggestions)
	metrics.ObserveRequest(metrics.OpSuggest, time.Since(start), nil)
	return response, nil
}

// fetchSources runs the repository lookups in parallel. Each goroutine writes only
// its own field, so the result is identical to a sequential fetch.
func (s *SuggestionService) fetchSources(ctx context.Context, query string) (matching.SuggestionSources, error) {
	var sources matching.SuggestionSources
	fetchLimit := s.config.SourceFetchLimit

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.products.FindByCodes(gctx, matching.SimilarLookupCodes(query), fetchLimit)
		if err != nil {
			return fmt.Errorf("similar: %w", err)
		}
		sources.Similar = products
		return nil
	})

	g.Go(func() error {
		products, err := s.products.FindPartial(gctx, query, fetchLimit)
		if err != nil {
			return fmt.Errorf("partial: %w", err)
		}
		sources.Partial = products
		return nil
	})

	g.Go(func() error {
		products, err := s.products.FindComplete(gctx, query, fetchLimit)
		if err != nil {
			return fmt.Errorf("popular: %w", err)
		}
		sources.Popular = products
		return nil
	})

	if matching.CorrectionEligible(matching.RuneLen(query)) {
		g.Go(func() error {
			codes, err := s.products.DistinctCodes(gctx, s.config.CorrectionScanLimit)
			if err != nil {
				return fmt.Errorf("corrections: %w", err)
			}
			sources.Codes = codes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return matching.SuggestionSources{}, err
	}
	return sources, nil
}

func (s *SuggestionService) getFromCache(ctx context.Context, key string) (*domain.SuggestResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.IncCacheMiss(metrics.OpSuggest)
		return nil, false
	}

	response, ok := value.(*domain.SuggestResponse)
	if !ok {
		metrics.IncCacheMiss(metrics.OpSuggest)
		return nil, false
	}

	metrics.IncCacheHit(metrics.OpSuggest)
	return response, true
}
