// Package matching holds the pure relevance engine: code normalization, edit-distance
// correction, text relevance, confidence scoring, suggestion aggregation and ranking.
// Nothing in this package performs I/O.
package matching

import (
	"regexp"
	"sort"
	"strings"
)

// prefixedCodePattern matches a two-letter prefix followed by 7 or 8 digits (RV4010031)
var prefixedCodePattern = regexp.MustCompile(`^([A-Z]{2})(\d{7,8})$`)

// codeSeparatorReplacer strips the separators ignored by normalized code comparison
var codeSeparatorReplacer = strings.NewReplacer("-", "", " ", "", ".", "", "_", "")

// CodeVariantSet is the set of canonical spellings derived from one code
type CodeVariantSet map[string]struct{}

func (s CodeVariantSet) add(v string) {
	s[v] = struct{}{}
}

// Contains reports whether v is one of the variants
func (s CodeVariantSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the variants in sorted order
func (s CodeVariantSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// NormalizeCode generates canonical spelling variants of a part code.
//
//	RV4010031   -> RV4010031, RV4010.031, RV0401.0031
//	RV04010031  -> RV04010031, RV0401.0031
//	RV0401.0031 -> RV0401.0031, RV04010031
//
// The trimmed, upper-cased input is always included. An empty input yields an
// empty set.
func NormalizeCode(code string) CodeVariantSet {
	variants := CodeVariantSet{}

	clean := strings.ToUpper(strings.TrimSpace(code))
	if clean == "" {
		return variants
	}
	variants.add(clean)

	if m := prefixedCodePattern.FindStringSubmatch(clean); m != nil {
		prefix, digits := m[1], m[2]
		variants.add(prefix + digits[:4] + "." + digits[4:])
		if len(digits) == 7 {
			// left-pad the first group to four digits
			variants.add(prefix + "0" + digits[:3] + "." + digits[3:])
		}
	}

	if strings.Contains(clean, ".") {
		variants.add(strings.ReplaceAll(clean, ".", ""))
	}

	return variants
}

// CompactCode upper-cases s and removes '-', ' ', '.' and '_'. Two codes that only
// differ in separators compact to the same string.
func CompactCode(s string) string {
	return codeSeparatorReplacer.Replace(strings.ToUpper(s))
}
