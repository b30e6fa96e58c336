package domain

import (
	"encoding/json"
	"strings"
)

// AlternateCodeSeparator delimits OEM/alternate codes in the stored string form
const AlternateCodeSeparator = " / "

// AlternateCodeTypeOEM is the type assigned to every parsed alternate code
const AlternateCodeTypeOEM = "OEM"

// ProductRecord is a read-only catalog entry supplied by the product repository.
// Code is always present; every other field may be empty.
type ProductRecord struct {
	ID                string          `json:"id"`
	Code              string          `json:"sku"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Brand             string          `json:"brand,omitempty"`
	Category          string          `json:"category,omitempty"`
	RawAlternateCodes string          `json:"original_codes"`
	AlternateCodes    []AlternateCode `json:"codes"`
	Images            []string        `json:"images"`
	BasePrice         *float64        `json:"base_price"`
}

// AlternateCode is a cross-reference identifier for the same physical part
type AlternateCode struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

// AlternateCodesText returns the " / "-delimited alternate code string, rebuilding
// it from the parsed codes when the raw form was not supplied.
func (p *ProductRecord) AlternateCodesText() string {
	if p.RawAlternateCodes != "" {
		return p.RawAlternateCodes
	}
	if len(p.AlternateCodes) == 0 {
		return ""
	}
	codes := make([]string, 0, len(p.AlternateCodes))
	for _, c := range p.AlternateCodes {
		codes = append(codes, c.Code)
	}
	return strings.Join(codes, AlternateCodeSeparator)
}

// Completeness counts how many of price, images and description are present.
// It stands in for popularity until real usage analytics exist.
func (p *ProductRecord) Completeness() int {
	score := 0
	if p.BasePrice != nil {
		score++
	}
	if len(p.Images) > 0 {
		score++
	}
	if p.Description != "" {
		score++
	}
	return score
}

// ParseAlternateCodes converts "HY 1534017 / YA 580039672" into ordered code pairs
func ParseAlternateCodes(raw string) []AlternateCode {
	if strings.TrimSpace(raw) == "" {
		return []AlternateCode{}
	}

	codes := []AlternateCode{}
	for _, part := range strings.Split(raw, AlternateCodeSeparator) {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		codes = append(codes, AlternateCode{Code: code, Type: AlternateCodeTypeOEM})
	}
	return codes
}

// ParseImageURLs accepts either a JSON array or a comma-delimited list and returns
// the cleaned URLs. Malformed JSON falls back to the comma form.
func ParseImageURLs(raw string) []string {
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		var values []interface{}
		if err := json.Unmarshal([]byte(raw), &values); err == nil {
			urls := []string{}
			for _, v := range values {
				s, ok := v.(string)
				if !ok {
					continue
				}
				if s = strings.TrimSpace(s); s != "" {
					urls = append(urls, s)
				}
			}
			return urls
		}
	}

	urls := []string{}
	for _, part := range strings.Split(raw, ",") {
		if u := cleanImageURL(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// cleanImageURL strips whitespace, stray quotes and their percent-encoded forms
func cleanImageURL(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "'")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "%22", "")
	s = strings.ReplaceAll(s, "%27", "")
	return s
}
