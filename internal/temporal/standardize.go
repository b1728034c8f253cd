package temporal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Standardizer rewrites a sentence so that every temporal substring is
// expressed in absolute, Arabic-numeral year/month/day/hour/minute form.
// It holds only the shared Grammar and is safe for concurrent use.
type Standardizer struct {
	grammar *Grammar
}

// NewStandardizer creates a Standardizer over the given grammar.
func NewStandardizer(g *Grammar) *Standardizer {
	return &Standardizer{grammar: g}
}

// Standardize resolves all temporal expressions in sentence against now.
// Sentences without any temporal expression are returned unchanged; this is
// the no-match policy, not an error.
func (s *Standardizer) Standardize(sentence string, now time.Time) string {
	// Colloquial words first; they would otherwise force look-behind in the
	// composite grammar.
	text := ResolveDateWords(sentence, now)

	// Candidate spans. The composite grammar is all-optional groups, so it
	// happily matches empty or numeral-free substrings; only spans carrying
	// at least one Chinese numeral are real temporal expressions.
	seen := make(map[string]bool)
	var spans []string
	for _, m := range s.grammar.chtComposite.FindAllString(text, -1) {
		if m == "" || seen[m] || !s.grammar.chtNumber.MatchString(m) {
			continue
		}
		seen[m] = true
		spans = append(spans, m)
	}
	if len(spans) == 0 {
		return text
	}

	elision := strings.NewReplacer("又", "", "個", "")
	resolved := make(map[string]string, len(spans))
	for _, span := range spans {
		arabic := elision.Replace(ToArabic(Simplify(span)))

		if rel := s.grammar.relative.FindString(arabic); rel != "" {
			arabic = strings.Replace(arabic, rel, s.resolveRelative(rel, now), 1)
		}
		resolved[span] = arabic
	}

	// Replace longest spans first so a long match's prefix is never consumed
	// by a shorter overlapping one.
	sort.Slice(spans, func(i, j int) bool {
		return len([]rune(spans[i])) > len([]rune(spans[j]))
	})
	for _, span := range spans {
		text = strings.ReplaceAll(text, span, resolved[span])
	}
	return text
}

// resolveRelative converts a relative Arabic expression ("3天後", "1年2週21小時之前")
// into absolute datetime text. The delta is accumulated per present unit with
// calendar-aware addition and applied forward (後) or backward (前) from now.
func (s *Standardizer) resolveRelative(rel string, now time.Time) string {
	sign := 1
	if strings.HasSuffix(rel, "前") {
		sign = -1
	}

	target := now
	present := s.grammar.unitsIn(rel)
	for i := range unitDefs {
		if !present[i] {
			continue
		}
		if n, ok := s.grammar.unitValueIn(rel, Unit(i)); ok {
			target = Unit(i).addTo(target, sign*n)
		}
	}

	return formatMinimal(target, present)
}

// formatMinimal prints target using only the calendar fields whose units were
// present in the original match, so a "三天後" never grows a fabricated year.
// Weeks contribute to the delta but never select a field; a week-only match
// prints at day granularity.
func formatMinimal(t time.Time, present [numUnits]bool) string {
	fields := present
	if fields[UnitWeek] {
		fields[UnitWeek] = false
		if !fields[UnitYear] && !fields[UnitMonth] && !fields[UnitDay] &&
			!fields[UnitHour] && !fields[UnitMinute] {
			fields[UnitDay] = true
		}
	}

	values := [numUnits]int{
		UnitYear:   t.Year(),
		UnitMonth:  int(t.Month()),
		UnitDay:    t.Day(),
		UnitHour:   t.Hour(),
		UnitMinute: t.Minute(),
	}

	var b strings.Builder
	for i, def := range unitDefs {
		if fields[i] && def.format != "" {
			fmt.Fprintf(&b, def.format, values[i])
		}
	}
	return b.String()
}
