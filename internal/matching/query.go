package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/logparts/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// ParseQuery derives every comparison form of a raw query. Composed and decomposed
// accents ("peça" typed either way) normalize to the same NFC text.
func ParseQuery(raw string, searchType domain.SearchType) domain.Query {
	trimmed := norm.NFC.String(strings.TrimSpace(raw))
	lower := strings.ToLower(trimmed)

	return domain.Query{
		Raw:     raw,
		Type:    searchType,
		Trimmed: trimmed,
		Lower:   lower,
		Upper:   strings.ToUpper(trimmed),
		Compact: CompactCode(trimmed),
		Words:   strings.Fields(lower),
	}
}

// RuneLen is the character length used by every length rule in the engine
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
