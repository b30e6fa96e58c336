package domain

import "errors"

var (
	// ErrProductNotFound is returned when no product matches an id or code lookup
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRepositoryFailure is returned when the product repository cannot serve a fetch
	ErrRepositoryFailure = errors.New("product repository request failed")

	// ErrDuplicateProduct is returned when a product with the same code is already stored
	ErrDuplicateProduct = errors.New("product code already exists")

	// ErrInvalidCatalogFile is returned when a catalog seed file cannot be decoded
	ErrInvalidCatalogFile = errors.New("invalid catalog file")
)
