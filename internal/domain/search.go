package domain

import "strings"

// SearchType selects which fields the confidence scorer treats as the primary match
type SearchType string

const (
	SearchTypeCode SearchType = "code"
	SearchTypeText SearchType = "text"
)

// ParseSearchType maps a wire value to a SearchType. The legacy values "codigo" and
// "texto" are accepted; anything unrecognised is a text search.
func ParseSearchType(s string) SearchType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "code", "codigo":
		return SearchTypeCode
	default:
		return SearchTypeText
	}
}

// Query holds every value derived from the raw query text. It is built once per
// request so that trimming and case folding are applied identically everywhere.
type Query struct {
	Raw     string     // text as received
	Type    SearchType // code or text
	Trimmed string     // trimmed, NFC-normalized
	Lower   string     // lower-cased Trimmed
	Upper   string     // upper-cased Trimmed
	Compact string     // Trimmed with code separators removed, upper-cased
	Words   []string   // lower-cased whitespace-separated words of Trimmed
}

// IsEmpty reports whether nothing remains of the query after trimming
func (q Query) IsEmpty() bool {
	return q.Trimmed == ""
}

// Level is the discrete confidence bucket shown to users
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Confidence level thresholds on the 0-100 score
const (
	HighConfidenceThreshold   = 70
	MediumConfidenceThreshold = 40
)

// LevelForScore buckets a confidence score
func LevelForScore(score int) Level {
	switch {
	case score >= HighConfidenceThreshold:
		return LevelHigh
	case score >= MediumConfidenceThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Priority orders levels for ranking: high=3, medium=2, low=1
func (l Level) Priority() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// ConfidenceResult explains how well a single product matches a query
type ConfidenceResult struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
}

// ConfidenceStats tallies confidence levels across a scored result set
type ConfidenceStats struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Add counts one result at the given level
func (s *ConfidenceStats) Add(level Level) {
	s.Total++
	switch level {
	case LevelHigh:
		s.High++
	case LevelMedium:
		s.Medium++
	default:
		s.Low++
	}
}

// ScoredProduct pairs a candidate with its confidence
type ScoredProduct struct {
	Product    ProductRecord
	Confidence ConfidenceResult
}

// SearchPage is one page of a confidence-ranked candidate set
type SearchPage struct {
	Items   []ScoredProduct
	Total   int
	Page    int
	Limit   int
	HasMore bool
	Stats   ConfidenceStats
}

// SearchRequest represents a product search request
type SearchRequest struct {
	Query string `form:"q" binding:"required"`
	Type  string `form:"type"`
	Skip  int    `form:"skip"`
	Limit int    `form:"limit"`
}

// SearchResponse is the outcome of a search; Error is set when the candidate fetch
// failed and the page is a degraded empty result.
type SearchResponse struct {
	Page  SearchPage
	Error string
}
