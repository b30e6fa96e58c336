package domain

import (
	"context"
)

// CacheRepository defines the interface for response caching
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// ProductRepository is the read-only lookup/scan capability over stored products.
// Implementations bound every fetch by the given limit and return rows in a
// deterministic order.
type ProductRepository interface {
	// SearchCandidates fetches records matching a search query
	SearchCandidates(ctx context.Context, query Query, limit int) ([]ProductRecord, error)
	// FindByCodes fetches records whose code equals any of codes, case-insensitively
	FindByCodes(ctx context.Context, codes []string, limit int) ([]ProductRecord, error)
	// FindPartial fetches records whose code, title or description contains term
	FindPartial(ctx context.Context, term string, limit int) ([]ProductRecord, error)
	// FindComplete fetches records with price, images and description whose code or
	// title contains term
	FindComplete(ctx context.Context, term string, limit int) ([]ProductRecord, error)
	// DistinctCodes scans a bounded set of distinct non-empty codes
	DistinctCodes(ctx context.Context, limit int) ([]string, error)
	// List pages through the catalog in id order
	List(ctx context.Context, skip, limit int) ([]ProductRecord, error)
	// GetByIDOrCode fetches one record by id or exact code
	GetByIDOrCode(ctx context.Context, key string) (*ProductRecord, error)
	// PopularByCompleteness fetches records ordered by data completeness
	PopularByCompleteness(ctx context.Context, limit int) ([]ProductRecord, error)
}

// ProductWriter stores catalog entries; only the seeding command uses it
type ProductWriter interface {
	Insert(ctx context.Context, product ProductRecord) error
}
