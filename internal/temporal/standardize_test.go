package temporal

import "testing"

func TestStandardize(t *testing.T) {
	t.Parallel()

	std := NewStandardizer(NewGrammar())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"absolute date", "三月一日", "3月1日"},
		{"absolute date with teens", "十二月三日", "12月3日"},
		{"time of day", "十二點三十分", "12點30分"},
		{"lone ten hour", "十點", "10點"},
		{"relative days", "三天後", "13日"},
		{"relative days backward", "三天前", "7日"},
		{"relative with zhi marker", "三天之後", "13日"},
		{"relative months with counter", "兩個月後", "5月"},
		{"relative minutes", "十分鐘後", "10分"},
		{"relative crossing year", "十個月後", "1月"},
		{"week only relative prints a day", "兩週後", "24日"},
		{"compound relative keeps minimal fields", "一年又兩週又二十一小時之後", "2025年6點"},
		{"date word then numeral time", "明天三點", "2024年3月11日3點"},
		{"range endpoints", "從三月一日到三月二十日", "從3月1日到3月20日"},
		{"embedded in sentence", "我想知道三月五日的新聞", "我想知道3月5日的新聞"},
		{"no temporal expression", "光復校區有什麼活動", "光復校區有什麼活動"},
		{"numeral without unit untouched", "第一名的新聞", "第一名的新聞"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := std.Standardize(tt.input, testNow()); got != tt.want {
				t.Errorf("Standardize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Standardized output carries only Arabic numerals, which the Chinese-numeral
// grammar can never re-match, so a second pass must be a no-op.
func TestStandardizeIdempotent(t *testing.T) {
	t.Parallel()

	std := NewStandardizer(NewGrammar())

	inputs := []string{
		"三月一日",
		"三天後",
		"明天三點",
		"從三月一日到三月二十日",
		"一年又兩週又二十一小時之後有活動",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			once := std.Standardize(input, testNow())
			twice := std.Standardize(once, testNow())
			if once != twice {
				t.Errorf("second pass changed %q: %q -> %q", input, once, twice)
			}
		})
	}
}
