package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/logparts/backend/internal/domain"
)

func TestNewQueryPreprocessor(t *testing.T) {
	t.Run("creates preprocessor with debug logging disabled", func(t *testing.T) {
		p := NewQueryPreprocessor(false)
		if p.enableDebugLogging {
			t.Error("expected debug logging to be disabled")
		}
	})

	t.Run("creates preprocessor with debug logging enabled", func(t *testing.T) {
		p := NewQueryPreprocessor(true)
		if !p.enableDebugLogging {
			t.Error("expected debug logging to be enabled")
		}
	})
}

func TestPreprocess(t *testing.T) {
	p := NewQueryPreprocessor(false)

	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "trims surrounding whitespace", raw: "  RV0401.0031 ", want: "RV0401.0031"},
		{name: "keeps inner whitespace", raw: "kit  junta", want: "kit  junta"},
		{name: "tabs become spaces", raw: "filtro\tde oleo", want: "filtro de oleo"},
		{name: "drops control characters", raw: "FIL-100\x00\r\n", want: "FIL-100"},
		{name: "keeps accents", raw: "Peça", want: "Peça"},
		{name: "empty stays empty", raw: "   ", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Preprocess(tc.raw, domain.SearchTypeText)
			if got.Trimmed != tc.want {
				t.Errorf("Preprocess(%q).Trimmed = %q, want %q", tc.raw, got.Trimmed, tc.want)
			}
			if got.Raw != tc.raw {
				t.Errorf("Preprocess(%q).Raw = %q, want the raw input", tc.raw, got.Raw)
			}
		})
	}
}

func TestPreprocess_TruncatesLongQueries(t *testing.T) {
	p := NewQueryPreprocessor(false)
	raw := strings.Repeat("filtro ", 60)

	got := p.Preprocess(raw, domain.SearchTypeText)

	if n := utf8.RuneCountInString(got.Trimmed); n > MaxQueryLength {
		t.Errorf("length = %d, want <= %d", n, MaxQueryLength)
	}
	if strings.HasSuffix(got.Trimmed, " ") || !strings.HasSuffix(got.Trimmed, "filtro") {
		t.Errorf("expected cut at a word boundary, got %q", got.Trimmed)
	}
}

func TestCacheKey(t *testing.T) {
	testCases := []struct {
		name  string
		parts []interface{}
		want  string
	}{
		{name: "code search", parts: []interface{}{"code", "RV0401.0031", 0, 20}, want: `search:"code":"rv0401.0031":0:20`},
		{name: "separator inside a part stays quoted", parts: []interface{}{"text", "a:b", 0, 20}, want: `search:"text":"a:b":0:20`},
		{name: "keeps punctuation", parts: []interface{}{"code", "AB+12", 0, 20}, want: `search:"code":"ab+12":0:20`},
		{name: "keeps inner spaces", parts: []interface{}{"text", "Filtro  de  ÓLEO", 20, 20}, want: `search:"text":"filtro  de  óleo":20:20`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cacheKey("search", tc.parts...); got != tc.want {
				t.Errorf("cacheKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCacheKey_DistinctQueriesDoNotCollide(t *testing.T) {
	pairs := [][2]string{
		{"AB+12", "AB12"},
		{"FIL#100", "FIL100"},
		{"kit  junta", "kit junta"},
		{"a:b", "a\":\"b"},
	}

	for _, pair := range pairs {
		if cacheKey("search", "code", pair[0], 0, 20) == cacheKey("search", "code", pair[1], 0, 20) {
			t.Errorf("%q and %q share a cache key", pair[0], pair[1])
		}
	}
}
