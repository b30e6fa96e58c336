package matching

import (
	"reflect"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input yields empty set",
			input: "",
			want:  []string{},
		},
		{
			name:  "whitespace only yields empty set",
			input: "   ",
			want:  []string{},
		},
		{
			name:  "seven digit prefixed code",
			input: "RV4010031",
			want:  []string{"RV0401.0031", "RV4010.031", "RV4010031"},
		},
		{
			name:  "eight digit prefixed code gains dotted variant",
			input: "RV04010031",
			want:  []string{"RV0401.0031", "RV04010031"},
		},
		{
			name:  "dotted code gains dot-less variant",
			input: "RV0401.0031",
			want:  []string{"RV0401.0031", "RV04010031"},
		},
		{
			name:  "lower case input is trimmed and upper-cased",
			input: "  rv4010031 ",
			want:  []string{"RV0401.0031", "RV4010.031", "RV4010031"},
		},
		{
			name:  "other two-letter prefixes follow the same rule",
			input: "HY1534017",
			want:  []string{"HY0153.4017", "HY1534.017", "HY1534017"},
		},
		{
			name:  "unmatched code keeps only the original",
			input: "ABC-123",
			want:  []string{"ABC-123"},
		},
		{
			name:  "six digits is not a prefixed code",
			input: "RV401003",
			want:  []string{"RV401003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCode(tt.input).Values()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeCode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode_NeverNil(t *testing.T) {
	for _, input := range []string{"", "x", "RV4010031", "..."} {
		if NormalizeCode(input) == nil {
			t.Errorf("NormalizeCode(%q) returned nil set", input)
		}
	}
}

func TestNormalizeCode_Deterministic(t *testing.T) {
	first := NormalizeCode("RV4010031").Values()
	for i := 0; i < 20; i++ {
		if got := NormalizeCode("RV4010031").Values(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Values() = %v, want %v", i, got, first)
		}
	}
}

func TestCodeVariantSet_Contains(t *testing.T) {
	set := NormalizeCode("RV4010031")
	if !set.Contains("RV0401.0031") {
		t.Error("expected zero-padded variant to be present")
	}
	if set.Contains("rv4010031") {
		t.Error("variants are upper-case; lower-case lookup should miss")
	}
}

func TestCompactCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"RV0401.0031", "RV04010031"},
		{"hy-153 40_17", "HY1534017"},
		{"", ""},
		{"A.B-C D_E", "ABCDE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CompactCode(tt.input); got != tt.want {
				t.Errorf("CompactCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
