package stringutil

import "testing"

func TestContainsAllRunes(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		chars string
		want  bool
	}{
		{"All present", "王小明", "王明", true},
		{"Department abbreviation", "資訊工程學系", "資工系", true},
		{"Non-contiguous order", "王小明", "明王", true},
		{"Missing char", "王小", "王明", false},
		{"Empty required", "test", "", true},
		{"Empty string", "", "test", false},
		{"Exact match", "abc", "abc", true},
		{"Case insensitive ASCII", "Hello World", "hw", true},
		{"Repeated rune requires count", "aba", "aa", true},
		{"Repeated rune missing count", "ab", "aa", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainsAllRunes(tt.s, tt.chars)
			if got != tt.want {
				t.Errorf("ContainsAllRunes(%q, %q) = %v, want %v", tt.s, tt.chars, got, tt.want)
			}
		})
	}
}
