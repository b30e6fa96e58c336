package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/logparts/backend/config"
	"github.com/logparts/backend/internal/delivery/http"
	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/infrastructure/cache"
	"github.com/logparts/backend/internal/infrastructure/catalogfile"
	"github.com/logparts/backend/internal/infrastructure/memory"
	"github.com/logparts/backend/internal/infrastructure/sqlite"
	"github.com/logparts/backend/internal/usecase"
)

// storeHandle bundles the views of the configured product store
type storeHandle struct {
	repo   domain.ProductRepository
	writer domain.ProductWriter
	pinger http.Pinger // nil for the memory store
	close  func() error
}

// Close releases the underlying store
func (s *storeHandle) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStore(cfg *config.Config) (*storeHandle, error) {
	switch cfg.Database.Type {
	case "memory":
		store := memory.NewStore()
		return &storeHandle{repo: store, writer: store}, nil
	case "sqlite":
		store, err := sqlite.NewStore(cfg.Database.Path, cfg.Search.EnableDebugLogging)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &storeHandle{repo: store, writer: store, pinger: store, close: store.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
	}
}

// app is the wired server: store, services and router
type app struct {
	store  *storeHandle
	router *gin.Engine
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Seed != "" {
		if ctx == nil {
			ctx = context.Background()
		}
		result, err := catalogfile.NewLoader(store.writer).LoadFile(ctx, cfg.Database.Seed)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Printf("Seeded %s: inserted=%d skipped=%d errors=%d",
			cfg.Database.Seed, result.Inserted, result.Skipped, len(result.Errors))
	}

	var responseCache domain.CacheRepository
	if cfg.Cache.Enabled {
		responseCache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
		log.Printf("Cache: size=%d, ttl=%s", cfg.Cache.Size, cfg.Cache.TTL)
	} else {
		log.Printf("Cache: disabled")
	}

	searchService := usecase.NewSearchService(store.repo, responseCache, usecase.SearchServiceConfig{
		DefaultLimit:        cfg.Search.DefaultLimit,
		MaxLimit:            cfg.Search.MaxLimit,
		CandidateMultiplier: cfg.Search.CandidateMultiplier,
		MaxCandidates:       cfg.Search.MaxCandidates,
		EnableDebugLogging:  cfg.Search.EnableDebugLogging,
	})
	suggestionService := usecase.NewSuggestionService(store.repo, responseCache, usecase.SuggestionServiceConfig{
		CorrectionScanLimit: cfg.Search.CorrectionScanLimit,
		EnableDebugLogging:  cfg.Search.EnableDebugLogging,
	})
	catalogService := usecase.NewCatalogService(store.repo, usecase.CatalogServiceConfig{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	})

	handler := http.NewHandler(searchService, suggestionService, catalogService, store.pinger)

	return &app{store: store, router: http.SetupRouter(cfg, handler)}, nil
}

// Close releases the store
func (a *app) Close() error {
	return a.store.Close()
}
