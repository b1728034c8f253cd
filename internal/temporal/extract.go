package temporal

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
)

// Range is a concrete datetime range. End is nil for open-ended single
// instants. Start <= End is deliberately not enforced; malformed input can
// produce inverted ranges and callers must tolerate them.
type Range struct {
	Start time.Time
	End   *time.Time
}

// Closed reports whether both endpoints are present.
func (r Range) Closed() bool {
	return r.End != nil
}

// EndOr returns the end instant, or the fallback when the range is open.
func (r Range) EndOr(fallback time.Time) time.Time {
	if r.End != nil {
		return *r.End
	}
	return fallback
}

// Extractor scans arbitrary text for a single datetime or a 從…到… range and
// converts it into absolute instants.
type Extractor struct {
	grammar *Grammar
	std     *Standardizer
	loc     *time.Location
}

// NewExtractor creates an Extractor. Instants are constructed in loc, which
// should match the timezone now is read in.
func NewExtractor(g *Grammar, loc *time.Location) *Extractor {
	return &Extractor{grammar: g, std: NewStandardizer(g), loc: loc}
}

// Extract standardizes text and returns the datetime range it denotes.
//
// Policy, in order:
//   - no temporal expression or a malformed one: today's full range
//     [00:00:00, 23:59:59]
//   - "X到Y": both sides parsed independently, closed range
//   - a fully dated instant (explicit year+month+day) without a time of day:
//     expanded to that day's [00:00, 23:59] range
//   - any other single instant: open range (End nil)
//
// Extract never fails; every path yields a well-formed Range.
func (e *Extractor) Extract(text string, now time.Time) Range {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	std := e.std.Standardize(cleaned, now)

	match := ""
	for _, m := range e.grammar.dtRange.FindAllString(std, -1) {
		if strings.ContainsFunc(m, unicode.IsDigit) {
			match = m
			break
		}
	}
	if match == "" {
		return e.todayRange(now)
	}

	if left, right, found := strings.Cut(match, "到"); found {
		start, _, err1 := e.parseInstant(strings.TrimPrefix(left, "從"), now)
		end, _, err2 := e.parseInstant(right, now)
		if err1 != nil || err2 != nil {
			return e.todayRange(now)
		}
		return Range{Start: start, End: &end}
	}

	instant, present, err := e.parseInstant(strings.TrimPrefix(match, "從"), now)
	if err != nil {
		return e.todayRange(now)
	}

	// A date like 2024年3月10日 names a whole day, not its first minute.
	if present[UnitYear] && present[UnitMonth] && present[UnitDay] &&
		!present[UnitHour] && !present[UnitMinute] {
		end := time.Date(instant.Year(), instant.Month(), instant.Day(), 23, 59, 0, 0, e.loc)
		return Range{Start: instant, End: &end}
	}

	return Range{Start: instant}
}

// parseInstant converts one Arabic datetime expression into an instant.
//
// Defaulting policy: calendar fields to the left of the first explicitly
// present field inherit now's value; fields to the right of it default to
// their minimum (month/day to 1, hour/minute to 0). A lone hour therefore
// inherits today's date, while 2025年 completes predictively to Jan 1 00:00.
// Weeks never select a calendar field and are ignored here.
//
// Out-of-calendar field values (day 32, month 13) are reported as an error;
// callers fold that into the no-match path.
func (e *Extractor) parseInstant(expr string, now time.Time) (time.Time, [numUnits]bool, error) {
	present := e.grammar.unitsIn(expr)
	present[UnitWeek] = false

	first := -1
	for i := range present {
		if present[i] {
			first = i
			break
		}
	}

	inherited := [numUnits]int{
		UnitYear:   now.Year(),
		UnitMonth:  int(now.Month()),
		UnitDay:    now.Day(),
		UnitHour:   0,
		UnitMinute: 0,
	}
	minimums := [numUnits]int{
		UnitYear:   now.Year(),
		UnitMonth:  1,
		UnitDay:    1,
		UnitHour:   0,
		UnitMinute: 0,
	}

	var values [numUnits]int
	for i := range values {
		switch {
		case present[i]:
			values[i], _ = e.grammar.unitValueIn(expr, Unit(i))
		case first == -1 || i < first:
			values[i] = inherited[i]
		default:
			values[i] = minimums[i]
		}
	}

	if first == -1 {
		return time.Time{}, present, fmt.Errorf("%w: no datetime fields in %q", apperrors.ErrInvalidInput, expr)
	}

	t := time.Date(values[UnitYear], time.Month(values[UnitMonth]), values[UnitDay],
		values[UnitHour], values[UnitMinute], 0, 0, e.loc)

	// time.Date normalizes out-of-range fields (day 32 becomes next month);
	// a shifted component means the expression named an impossible date.
	if t.Year() != values[UnitYear] || int(t.Month()) != values[UnitMonth] ||
		t.Day() != values[UnitDay] || t.Hour() != values[UnitHour] || t.Minute() != values[UnitMinute] {
		return time.Time{}, present, fmt.Errorf("%w: impossible calendar date in %q", apperrors.ErrInvalidInput, expr)
	}

	return t, present, nil
}

// todayRange is the default when no expression is found: the whole of now's
// calendar day.
func (e *Extractor) todayRange(now time.Time) Range {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, e.loc)
	return Range{Start: start, End: &end}
}
