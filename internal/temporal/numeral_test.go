package temporal

import "testing"

func TestSimplify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tens with units digit", "二十三", "二三"},
		{"bare tens", "二十", "二零"},
		{"teens", "十二", "一二"},
		{"single digit unchanged", "五", "五"},
		{"colloquial two", "兩", "兩"},
		{"mixed in unit text", "二十一小時", "二一小時"},
		{"multiple occurrences", "三十分十五秒", "三零分一五秒"},
		{"no numerals", "操場", "操場"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Simplify(tt.input); got != tt.want {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToArabic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simplified tens", "二三", "23"},
		{"simplified teens", "一二", "12"},
		{"zero", "二零", "20"},
		{"lone ten", "十點", "10點"},
		{"colloquial two", "兩天", "2天"},
		{"units survive", "三月一日", "3月1日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ToArabic(tt.input); got != tt.want {
				t.Errorf("ToArabic(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Simplify then ToArabic is the documented two-step conversion; pin the
// round-trip results the pipeline depends on.
func TestSimplifyThenToArabic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"二十三", "23"},
		{"十二", "12"},
		{"二十", "20"},
		{"九十九", "99"},
		{"十", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ToArabic(Simplify(tt.input)); got != tt.want {
				t.Errorf("ToArabic(Simplify(%q)) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
