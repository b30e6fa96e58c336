package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/logparts/backend/internal/domain"
)

// ServiceName and Version are reported by the health endpoints
const (
	ServiceName = "logparts-backend"
	Version     = "1.0.0"
)

// Searcher ranks catalog candidates for a query
type Searcher interface {
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error)
}

// Suggester produces "did you mean" completions
type Suggester interface {
	Suggest(ctx context.Context, query string, limit int) (*domain.SuggestResponse, error)
}

// Catalog serves plain catalog reads
type Catalog interface {
	ListProducts(ctx context.Context, skip, limit int) ([]domain.ProductRecord, error)
	GetProduct(ctx context.Context, key string) (*domain.ProductRecord, error)
	PopularSearches(ctx context.Context, limit int) ([]domain.PopularSearch, error)
}

// Pinger reports whether the product store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search  Searcher
	suggest Suggester
	catalog Catalog
	store   Pinger
}

// NewHandler creates a new HTTP handler. store may be nil when the backend has
// nothing to ping.
func NewHandler(search Searcher, suggest Suggester, catalog Catalog, store Pinger) *Handler {
	return &Handler{
		search:  search,
		suggest: suggest,
		catalog: catalog,
		store:   store,
	}
}

type brandJSON struct {
	Name string `json:"name"`
}

type imageJSON struct {
	URL string `json:"url"`
}

type productJSON struct {
	ID            string                   `json:"id"`
	SKU           string                   `json:"sku"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	Brand         *brandJSON               `json:"brand"`
	Category      string                   `json:"category,omitempty"`
	Images        []imageJSON              `json:"images"`
	Codes         []domain.AlternateCode   `json:"codes"`
	OriginalCodes string                   `json:"original_codes"`
	BasePrice     *float64                 `json:"base_price"`
	Confidence    *domain.ConfidenceResult `json:"confidence,omitempty"`
}

type searchJSON struct {
	Products        []productJSON          `json:"products"`
	Total           int                    `json:"total"`
	Page            int                    `json:"page"`
	Limit           int                    `json:"limit"`
	HasMore         bool                   `json:"hasMore"`
	ConfidenceStats domain.ConfidenceStats `json:"confidence_stats"`
	Error           string                 `json:"error,omitempty"`
}

func toProductJSON(p *domain.ProductRecord, confidence *domain.ConfidenceResult) productJSON {
	out := productJSON{
		ID:            p.ID,
		SKU:           p.Code,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Images:        make([]imageJSON, 0, len(p.Images)),
		Codes:         p.AlternateCodes,
		OriginalCodes: p.AlternateCodesText(),
		BasePrice:     p.BasePrice,
		Confidence:    confidence,
	}
	if p.Brand != "" {
		out.Brand = &brandJSON{Name: p.Brand}
	}
	for _, u := range p.Images {
		out.Images = append(out.Images, imageJSON{URL: u})
	}
	if out.Codes == nil {
		out.Codes = []domain.AlternateCode{}
	}
	return out
}

func toSearchJSON(resp *domain.SearchResponse) searchJSON {
	out := searchJSON{
		Products:        make([]productJSON, 0, len(resp.Page.Items)),
		Total:           resp.Page.Total,
		Page:            resp.Page.Page,
		Limit:           resp.Page.Limit,
		HasMore:         resp.Page.HasMore,
		ConfidenceStats: resp.Page.Stats,
		Error:           resp.Error,
	}
	for i := range resp.Page.Items {
		item := &resp.Page.Items[i]
		confidence := item.Confidence
		out.Products = append(out.Products, toProductJSON(&item.Product, &confidence))
	}
	return out
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	database := "ok"
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			log.Printf("[HEALTH] Database ping failed: %v", err)
			status, code, database = "degraded", http.StatusServiceUnavailable, "unavailable"
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  ServiceName,
		"version":  Version,
		"database": database,
	})
}

// Liveness answers the orchestrator probe without touching the store
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

// SearchProducts handles GET /api/v1/search
func (h *Handler) SearchProducts(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required and skip/limit must be integers"})
		return
	}

	resp, err := h.search.Search(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[SEARCH] Search %q failed: %v", req.Query, err)
		if resp == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
	}

	c.JSON(http.StatusOK, toSearchJSON(resp))
}

// Suggestions handles GET /api/v1/suggestions
func (h *Handler) Suggestions(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0, 1, 20)
	if !ok {
		return
	}

	query := c.Query("q")
	resp, err := h.suggest.Suggest(c.Request.Context(), query, limit)
	if err != nil {
		log.Printf("[SUGGEST] Suggest %q failed: %v", query, err)
		if resp == nil {
			resp = &domain.SuggestResponse{Suggestions: []domain.Suggestion{}, Query: query, Error: err.Error()}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// PopularSearches handles GET /api/v1/suggestions/popular-searches
func (h *Handler) PopularSearches(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0, 1, 50)
	if !ok {
		return
	}

	popular, err := h.catalog.PopularSearches(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[CATALOG] Popular searches failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"popular_searches": []domain.PopularSearch{}, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"popular_searches": popular})
}

// ListProducts handles GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0, 0, -1)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0, 1, -1)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), skip, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[CATALOG] List products failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	out := make([]productJSON, 0, len(products))
	for i := range products {
		out = append(out, toProductJSON(&products[i], nil))
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct handles GET /api/v1/products/:id, where id is a numeric id or a code
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toProductJSON(product, nil))
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[CATALOG] Get product %q failed: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
	}
}

// queryInt reads an optional integer query parameter. An absent parameter yields
// def; a value that is not an integer, below lo, or above hi (when hi >= 0)
// writes a 400 response and returns false.
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		msg := fmt.Sprintf("%s must be an integer >= %d", name, lo)
		if hi >= 0 {
			msg = fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return n, true
}
