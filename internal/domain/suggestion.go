package domain

// SuggestionType names the candidate source a suggestion came from
type SuggestionType string

const (
	SuggestionSimilar    SuggestionType = "similar"
	SuggestionPartial    SuggestionType = "partial"
	SuggestionPopular    SuggestionType = "popular"
	SuggestionCorrection SuggestionType = "correction"
)

// Suggestion is a "did you mean" completion. Its identity for deduplication is the
// case-folded Text.
type Suggestion struct {
	Text       string                 `json:"text"`
	Type       SuggestionType         `json:"type"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// SuggestResponse is the outcome of a suggestion request
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Query       string       `json:"query"`
	Total       int          `json:"total"`
	Error       string       `json:"error,omitempty"`
}

// PopularSearch is a catalog entry ranked by data completeness
type PopularSearch struct {
	Code  string `json:"sku"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

// LoadResult reports what a catalog seed run did
type LoadResult struct {
	Read     int      `json:"read"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
