// Package memory is an in-process product repository with the same matching and
// ordering rules as the SQLite store. It backs the "memory" database type and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
	"golang.org/x/text/unicode/norm"
)

// Store implements domain.ProductRepository and domain.ProductWriter
type Store struct {
	mu       sync.RWMutex
	products []domain.ProductRecord
	byCode   map[string]int
	nextID   int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		byCode: make(map[string]int),
		nextID: 1,
	}
}

// Insert stores a copy of product, assigning the next id when none is set
func (s *Store) Insert(ctx context.Context, product domain.ProductRecord) error {
	if strings.TrimSpace(product.Code) == "" {
		return fmt.Errorf("%w: product code is required", domain.ErrInvalidRequest)
	}

	product.Code = norm.NFC.String(product.Code)
	product.Title = norm.NFC.String(product.Title)
	product.Description = norm.NFC.String(product.Description)
	product.Brand = norm.NFC.String(product.Brand)
	product.RawAlternateCodes = norm.NFC.String(product.AlternateCodesText())
	product.AlternateCodes = domain.ParseAlternateCodes(product.RawAlternateCodes)
	if product.Images == nil {
		product.Images = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[product.Code]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.Code)
	}
	if product.ID == "" {
		product.ID = strconv.Itoa(s.nextID)
	}
	s.nextID++

	s.byCode[product.Code] = len(s.products)
	s.products = append(s.products, product)
	return nil
}

// SearchCandidates mirrors the SQLite candidate query
func (s *Store) SearchCandidates(ctx context.Context, query domain.Query, limit int) ([]domain.ProductRecord, error) {
	if query.IsEmpty() || limit <= 0 {
		return []domain.ProductRecord{}, nil
	}

	if query.Type == domain.SearchTypeCode {
		matches := s.filter(func(p *domain.ProductRecord) bool { return matchesCode(p, query) })
		sort.SliceStable(matches, func(i, j int) bool {
			ri, rj := codeRank(&matches[i], query.Lower), codeRank(&matches[j], query.Lower)
			if ri != rj {
				return ri < rj
			}
			return matches[i].Title < matches[j].Title
		})
		return head(matches, limit), nil
	}

	type ranked struct {
		product   domain.ProductRecord
		relevance int
	}
	var candidates []ranked
	for _, p := range s.filter(func(p *domain.ProductRecord) bool { return matchesText(p, query) }) {
		candidates = append(candidates, ranked{p, matching.TextRelevance(query.Lower, p.Title, p.Description)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].relevance != candidates[j].relevance {
			return candidates[i].relevance > candidates[j].relevance
		}
		return candidates[i].product.Title < candidates[j].product.Title
	})

	matches := make([]domain.ProductRecord, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, c.product)
	}
	return head(matches, limit), nil
}

// FindByCodes fetches records whose code equals any of codes, ignoring case
func (s *Store) FindByCodes(ctx context.Context, codes []string, limit int) ([]domain.ProductRecord, error) {
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[strings.ToLower(c)] = true
	}

	matches := s.filter(func(p *domain.ProductRecord) bool { return wanted[strings.ToLower(p.Code)] })
	sortByCode(matches)
	return head(matches, limit), nil
}

// FindPartial fetches records whose code, title or description contains term
func (s *Store) FindPartial(ctx context.Context, term string, limit int) ([]domain.ProductRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []domain.ProductRecord{}, nil
	}

	matches := s.filter(func(p *domain.ProductRecord) bool {
		return containsFold(p.Code, term) || containsFold(p.Title, term) || containsFold(p.Description, term)
	})
	sortByCode(matches)
	return head(matches, limit), nil
}

// FindComplete fetches records with price, images and description whose code or
// title contains term
func (s *Store) FindComplete(ctx context.Context, term string, limit int) ([]domain.ProductRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []domain.ProductRecord{}, nil
	}

	matches := s.filter(func(p *domain.ProductRecord) bool {
		return p.Completeness() == 3 && (containsFold(p.Code, term) || containsFold(p.Title, term))
	})
	sortByCode(matches)
	return head(matches, limit), nil
}

// DistinctCodes returns up to limit distinct codes in code order
func (s *Store) DistinctCodes(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	codes := make([]string, 0, len(s.byCode))
	for code := range s.byCode {
		codes = append(codes, code)
	}
	s.mu.RUnlock()

	sort.Strings(codes)
	if limit < 0 {
		limit = 0
	}
	if len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

// List pages through the catalog in insertion order
func (s *Store) List(ctx context.Context, skip, limit int) ([]domain.ProductRecord, error) {
	all := s.filter(func(*domain.ProductRecord) bool { return true })
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return []domain.ProductRecord{}, nil
	}
	return head(all[skip:], limit), nil
}

// GetByIDOrCode fetches one record whose id or exact code equals key
func (s *Store) GetByIDOrCode(ctx context.Context, key string) (*domain.ProductRecord, error) {
	key = strings.TrimSpace(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == key {
			product := s.products[i]
			return &product, nil
		}
	}
	if idx, ok := s.byCode[key]; ok {
		product := s.products[idx]
		return &product, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, key)
}

// PopularByCompleteness orders records by completeness, then by code
func (s *Store) PopularByCompleteness(ctx context.Context, limit int) ([]domain.ProductRecord, error) {
	all := s.filter(func(*domain.ProductRecord) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		ci, cj := all[i].Completeness(), all[j].Completeness()
		if ci != cj {
			return ci > cj
		}
		return all[i].Code < all[j].Code
	})
	return head(all, limit), nil
}

// Len reports how many products are stored
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) filter(keep func(*domain.ProductRecord) bool) []domain.ProductRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.ProductRecord{}
	for i := range s.products {
		if keep(&s.products[i]) {
			out = append(out, s.products[i])
		}
	}
	return out
}

func matchesCode(p *domain.ProductRecord, query domain.Query) bool {
	alternates := p.AlternateCodesText()
	if containsFold(p.Code, query.Lower) || containsFold(alternates, query.Lower) {
		return true
	}
	if query.Compact == "" {
		return false
	}
	return strings.Contains(matching.CompactCode(p.Code), query.Compact) ||
		strings.Contains(matching.CompactCode(alternates), query.Compact)
}

// codeRank: 1 exact code, 2 whole alternate code token, 3 code substring, 4 other
func codeRank(p *domain.ProductRecord, term string) int {
	code := strings.ToLower(p.Code)
	switch {
	case code == term:
		return 1
	case strings.Contains(" "+strings.ToLower(p.AlternateCodesText())+" ", " "+term+" "):
		return 2
	case strings.Contains(code, term):
		return 3
	default:
		return 4
	}
}

func matchesText(p *domain.ProductRecord, query domain.Query) bool {
	inAnyField := func(term string) bool {
		return containsFold(p.Title, term) ||
			containsFold(p.Description, term) ||
			containsFold(p.Code, term) ||
			containsFold(p.Brand, term) ||
			containsFold(p.AlternateCodesText(), term)
	}

	if len(query.Words) <= 1 {
		return inAnyField(query.Lower)
	}

	if containsFold(p.Title, query.Lower) || containsFold(p.Description, query.Lower) {
		return true
	}

	words := matching.SignificantWords(query.Words)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !inAnyField(w) {
			return false
		}
	}
	return true
}

// containsFold reports whether the lower-cased s contains the lower-case term
func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func sortByCode(products []domain.ProductRecord) {
	sort.SliceStable(products, func(i, j int) bool { return products[i].Code < products[j].Code })
}

func head(products []domain.ProductRecord, limit int) []domain.ProductRecord {
	if limit <= 0 {
		return []domain.ProductRecord{}
	}
	if len(products) > limit {
		return products[:limit]
	}
	return products
}
