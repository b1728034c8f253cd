package temporal

import (
	"testing"
	"time"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, testZone)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(NewGrammar(), testZone)

	tests := []struct {
		name  string
		input string
		start time.Time
		end   *time.Time
	}{
		{
			name:  "today expands to the whole day",
			input: "今天",
			start: date(2024, time.March, 10, 0, 0, 0),
			end:   ptr(date(2024, time.March, 10, 23, 59, 0)),
		},
		{
			name:  "relative days stay open ended",
			input: "三天後",
			start: date(2024, time.March, 13, 0, 0, 0),
		},
		{
			name:  "explicit range",
			input: "三月一日到三月二十日",
			start: date(2024, time.March, 1, 0, 0, 0),
			end:   ptr(date(2024, time.March, 20, 0, 0, 0)),
		},
		{
			name:  "range with leading cong",
			input: "從三月一日到三月二十日",
			start: date(2024, time.March, 1, 0, 0, 0),
			end:   ptr(date(2024, time.March, 20, 0, 0, 0)),
		},
		{
			name:  "date word range",
			input: "從明天到後天",
			start: date(2024, time.March, 11, 0, 0, 0),
			end:   ptr(date(2024, time.March, 12, 0, 0, 0)),
		},
		{
			name:  "week word becomes a monday to sunday range",
			input: "下禮拜",
			start: date(2024, time.March, 11, 0, 0, 0),
			end:   ptr(date(2024, time.March, 17, 23, 59, 0)),
		},
		{
			name:  "no expression defaults to today",
			input: "光復校區有什麼活動",
			start: date(2024, time.March, 10, 0, 0, 0),
			end:   ptr(date(2024, time.March, 10, 23, 59, 59)),
		},
		{
			name:  "lone year completes predictively",
			input: "2025年",
			start: date(2025, time.January, 1, 0, 0, 0),
		},
		{
			name:  "lone hour inherits the current date",
			input: "十點",
			start: date(2024, time.March, 10, 10, 0, 0),
		},
		{
			name:  "month and day inherit the current year",
			input: "三月五日",
			start: date(2024, time.March, 5, 0, 0, 0),
		},
		{
			name:  "date word with time of day",
			input: "明天三點",
			start: date(2024, time.March, 11, 3, 0, 0),
		},
		{
			name:  "embedded in a sentence",
			input: "我想知道三月五日九點的活動",
			start: date(2024, time.March, 5, 9, 0, 0),
		},
		{
			name:  "whitespace inside the expression",
			input: "三月 五日",
			start: date(2024, time.March, 5, 0, 0, 0),
		},
		{
			name:  "impossible date falls back to today",
			input: "三月三十二日",
			start: date(2024, time.March, 10, 0, 0, 0),
			end:   ptr(date(2024, time.March, 10, 23, 59, 59)),
		},
		{
			name:  "inverted range is preserved",
			input: "三月二十日到三月一日",
			start: date(2024, time.March, 20, 0, 0, 0),
			end:   ptr(date(2024, time.March, 1, 0, 0, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ex.Extract(tt.input, testNow())
			if !got.Start.Equal(tt.start) {
				t.Errorf("Extract(%q).Start = %v, want %v", tt.input, got.Start, tt.start)
			}
			switch {
			case tt.end == nil && got.End != nil:
				t.Errorf("Extract(%q).End = %v, want nil", tt.input, *got.End)
			case tt.end != nil && got.End == nil:
				t.Errorf("Extract(%q).End = nil, want %v", tt.input, *tt.end)
			case tt.end != nil && !got.End.Equal(*tt.end):
				t.Errorf("Extract(%q).End = %v, want %v", tt.input, *got.End, *tt.end)
			}
		})
	}
}

func TestParseInstantRejectsImpossibleDates(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(NewGrammar(), testZone)
	now := date(2024, time.March, 10, 12, 0, 0)

	for _, expr := range []string{"2月30日", "13月1日", "3月32日"} {
		if _, _, err := ex.parseInstant(expr, now); !apperrors.IsInvalidInput(err) {
			t.Errorf("parseInstant(%q) err = %v, want invalid input", expr, err)
		}
	}

	if _, _, err := ex.parseInstant("沒有時間", now); !apperrors.IsInvalidInput(err) {
		t.Errorf("parseInstant with no datetime fields err = %v, want invalid input", err)
	}
}

func TestRangeEndOr(t *testing.T) {
	t.Parallel()

	start := date(2024, time.March, 1, 0, 0, 0)
	fallback := date(2024, time.March, 31, 23, 59, 0)

	open := Range{Start: start}
	if open.Closed() {
		t.Error("open range reports Closed")
	}
	if got := open.EndOr(fallback); !got.Equal(fallback) {
		t.Errorf("EndOr on open range = %v, want fallback %v", got, fallback)
	}

	end := date(2024, time.March, 2, 0, 0, 0)
	closed := Range{Start: start, End: &end}
	if !closed.Closed() {
		t.Error("closed range reports open")
	}
	if got := closed.EndOr(fallback); !got.Equal(end) {
		t.Errorf("EndOr on closed range = %v, want %v", got, end)
	}
}

func ptr(t time.Time) *time.Time { return &t }
