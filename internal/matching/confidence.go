package matching

import (
	"strings"

	"github.com/logparts/backend/internal/domain"
)

// Confidence points per matched condition
const (
	exactCodePoints          = 45
	partialCodePoints        = 25
	exactOEMPoints           = 50
	partialOEMPoints         = 35
	exactTitlePoints         = 40
	titleContainsLongPoints  = 25
	titleContainsShortPoints = 15
	descContainsLongPoints   = 15
	descContainsShortPoints  = 8
	relatedCodePoints        = 20
	brandMatchPoints         = 12
	hasImagesPoints          = 8
	detailedDescPoints       = 5
	incompleteTitlePenalty   = -10
)

// Length rules, in runes
const (
	longTitleTermLength       = 3   // term longer than this counts as a title phrase
	longDescriptionTermLength = 5   // term longer than this counts as a description phrase
	detailedDescriptionLength = 100 // description longer than this is detailed
	minCompleteTitleLength    = 10  // title shorter than this is incomplete
)

// Reason tags, in evaluation order
const (
	ReasonExactCode           = "exact code"
	ReasonPartialCode         = "partial code"
	ReasonExactOEM            = "exact OEM"
	ReasonPartialOEM          = "partial OEM"
	ReasonExactTitle          = "exact title"
	ReasonTitleContainsTerm   = "title contains term"
	ReasonTermInTitle         = "term in title"
	ReasonDescContainsTerm    = "description contains term"
	ReasonTermInDescription   = "term in description"
	ReasonRelatedCode         = "related code"
	ReasonBrandMatch          = "brand match"
	ReasonHasImages           = "has images"
	ReasonDetailedDescription = "detailed description"
	ReasonIncompleteTitle     = "incomplete title"
)

// ScoreConfidence computes the explainable 0-100 match quality of one product for
// a query. Points accumulate in a fixed order and every contribution, negative ones
// included, appends its reason. Missing fields contribute nothing.
func ScoreConfidence(product *domain.ProductRecord, query domain.Query) domain.ConfidenceResult {
	score := 0
	reasons := []string{}
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	q := query.Lower
	code := strings.ToLower(product.Code)
	title := strings.ToLower(product.Title)
	description := strings.ToLower(product.Description)
	qLen := RuneLen(q)

	if q != "" && query.Type == domain.SearchTypeCode && code != "" {
		if code == q {
			add(exactCodePoints, ReasonExactCode)
		} else if strings.Contains(code, q) || strings.Contains(q, code) {
			add(partialCodePoints, ReasonPartialCode)
		}
	}

	if oem := strings.ToLower(product.AlternateCodesText()); q != "" && strings.Contains(oem, q) {
		if containsToken(oem, q) {
			add(exactOEMPoints, ReasonExactOEM)
		} else {
			add(partialOEMPoints, ReasonPartialOEM)
		}
	}

	if q != "" && query.Type == domain.SearchTypeText {
		if q == title {
			add(exactTitlePoints, ReasonExactTitle)
		} else if strings.Contains(title, q) {
			if qLen > longTitleTermLength {
				add(titleContainsLongPoints, ReasonTitleContainsTerm)
			} else {
				add(titleContainsShortPoints, ReasonTermInTitle)
			}
		}

		if strings.Contains(description, q) {
			if qLen > longDescriptionTermLength {
				add(descContainsLongPoints, ReasonDescContainsTerm)
			} else {
				add(descContainsShortPoints, ReasonTermInDescription)
			}
		}

		if strings.Contains(code, q) {
			add(relatedCodePoints, ReasonRelatedCode)
		}
	}

	if brand := strings.ToLower(strings.TrimSpace(product.Brand)); q != "" && brand != "" {
		if strings.Contains(brand, q) || strings.Contains(q, brand) {
			add(brandMatchPoints, ReasonBrandMatch)
		}
	}

	if len(product.Images) > 0 {
		add(hasImagesPoints, ReasonHasImages)
	}

	if RuneLen(description) > detailedDescriptionLength {
		add(detailedDescPoints, ReasonDetailedDescription)
	}

	if RuneLen(title) < minCompleteTitleLength {
		add(incompleteTitlePenalty, ReasonIncompleteTitle)
	}

	score = max(0, min(score, 100))

	return domain.ConfidenceResult{
		Score:   score,
		Level:   domain.LevelForScore(score),
		Reasons: reasons,
	}
}

// containsToken reports whether term appears in s delimited by spaces or the
// string boundaries
func containsToken(s, term string) bool {
	return strings.Contains(" "+s+" ", " "+term+" ")
}
