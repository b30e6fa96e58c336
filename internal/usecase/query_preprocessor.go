package usecase

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/logparts/backend/internal/domain"
	"github.com/logparts/backend/internal/matching"
)

// MaxQueryLength caps the characters of a query that reach the repository
const MaxQueryLength = 200

// QueryPreprocessor cleans raw query text before it is parsed and matched
type QueryPreprocessor struct {
	enableDebugLogging bool
}

// Compiled regex patterns for query preprocessing
var (
	// Control characters pasted along with codes from spreadsheets
	controlCharPattern = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool) *QueryPreprocessor {
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// Preprocess replaces control characters with spaces, trims, truncates overly long
// input at a word boundary and parses the result into a Query. Inner whitespace is
// kept as typed since exact title matching compares it.
func (p *QueryPreprocessor) Preprocess(raw string, searchType domain.SearchType) domain.Query {
	cleaned := controlCharPattern.ReplaceAllString(raw, " ")
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) > MaxQueryLength {
		cleaned = string([]rune(cleaned)[:MaxQueryLength])
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > MaxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	query := matching.ParseQuery(cleaned, searchType)
	query.Raw = raw

	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] Input: %q -> Output: %q (type=%s)", raw, query.Trimmed, searchType)
	}

	return query
}

// cacheKey builds a cache key such as `search:code:"rv0401.0031":0:20`. String parts
// are lower-cased and quoted so no two distinct queries share a key; matching is
// case-insensitive everywhere.
func cacheKey(prefix string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		b.WriteByte(':')
		if s, ok := part.(string); ok {
			b.WriteString(strconv.Quote(strings.ToLower(s)))
			continue
		}
		fmt.Fprint(&b, part)
	}
	return b.String()
}
