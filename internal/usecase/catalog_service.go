package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/metrics"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	DefaultLimit        int
	MaxLimit            int
	DefaultPopularLimit int
	MaxPopularLimit     int
}

// CatalogService serves plain catalog reads: listing, lookup and popular searches
type CatalogService struct {
	products domain.ProductRepository
	config   CatalogServiceConfig
}

// NewCatalogService creates a new catalog service with defaults applied
func NewCatalogService(products domain.ProductRepository, config CatalogServiceConfig) *CatalogService {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 100
	}
	if config.DefaultPopularLimit <= 0 {
		config.DefaultPopularLimit = 10
	}
	if config.MaxPopularLimit <= 0 {
		config.MaxPopularLimit = 50
	}

	return &CatalogService{products: products, config: config}
}

// ListProducts pages through the catalog in storage order
func (s *CatalogService) ListProducts(ctx context.Context, skip, limit int) ([]domain.ProductRecord, error) {
	start := time.Now()

	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	products, err := s.products.List(ctx, skip, limit)
	metrics.ObserveRequest(metrics.OpListProducts, time.Since(start), err)
	if err != nil {
		metrics.IncRepositoryFailure("list")
		return nil, wrapRepositoryError(err)
	}
	return products, nil
}

// GetProduct looks a product up by id or exact code
func (s *CatalogService) GetProduct(ctx context.Context, key string) (*domain.ProductRecord, error) {
	start := time.Now()

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}

	product, err := s.products.GetByIDOrCode(ctx, key)
	if errors.Is(err, domain.ErrProductNotFound) {
		metrics.ObserveRequest(metrics.OpGetProduct, time.Since(start), nil)
		return nil, err
	}
	metrics.ObserveRequest(metrics.OpGetProduct, time.Since(start), err)
	if err != nil {
		metrics.IncRepositoryFailure("get")
		return nil, wrapRepositoryError(err)
	}
	return product, nil
}

// PopularSearches ranks catalog entries by data completeness as a stand-in for
// search popularity. limit outside 1..MaxPopularLimit is rejected; zero uses the
// default.
func (s *CatalogService) PopularSearches(ctx context.Context, limit int) ([]domain.PopularSearch, error) {
	start := time.Now()

	if limit == 0 {
		limit = s.config.DefaultPopularLimit
	}
	if limit < 1 || limit > s.config.MaxPopularLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, s.config.MaxPopularLimit)
	}

	products, err := s.products.PopularByCompleteness(ctx, limit)
	metrics.ObserveRequest(metrics.OpPopularSearches, time.Since(start), err)
	if err != nil {
		metrics.IncRepositoryFailure("popular")
		return nil, wrapRepositoryError(err)
	}

	popular := make([]domain.PopularSearch, 0, len(products))
	for i := range products {
		popular = append(popular, domain.PopularSearch{
			Code:  products[i].Code,
			Title: products[i].Title,
			Score: products[i].Completeness(),
		})
	}
	return popular, nil
}

// wrapRepositoryError tags err with ErrRepositoryFailure unless it already is one
func wrapRepositoryError(err error) error {
	if errors.Is(err, domain.ErrRepositoryFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrRepositoryFailure, err)
}
