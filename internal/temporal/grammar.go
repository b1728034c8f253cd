package temporal

import (
	"regexp"
	"strings"
)

// Grammar holds every compiled pattern the temporal pipeline needs. It is
// built once at process start and shared by reference; it is never mutated
// afterwards, so concurrent use needs no locking.
type Grammar struct {
	// chtComposite matches a contiguous Chinese-numeral temporal expression:
	// an optional (number, unit) group per unit in descending order, joined by
	// the elision characters 又/的, with an optional trailing direction
	// marker (之前/之後). Every group is optional, so candidate matches must
	// be filtered for containing at least one numeral character.
	chtComposite *regexp.Regexp

	// arabicComposite is the same unit sequence over Arabic numerals, used to
	// recognize expressions after normalization. No direction marker.
	arabicComposite *regexp.Regexp

	// relative anchors the Arabic unit sequence with a mandatory trailing
	// 之?後 or 之?前, recognizing expressions that need delta-from-now
	// arithmetic.
	relative *regexp.Regexp

	// dtRange recognizes an optional leading 從 and an optional 到<expr>
	// suffix around Arabic datetime expressions.
	dtRange *regexp.Regexp

	// unitValue[u] extracts the "<digits><unit token>" fragment for unit u
	// from an Arabic expression.
	unitValue [numUnits]*regexp.Regexp

	// chtNumber detects whether a candidate span contains any Chinese
	// numeral at all.
	chtNumber *regexp.Regexp

	// digits extracts the numeric value from a unitValue fragment.
	digits *regexp.Regexp
}

// NewGrammar compiles the temporal grammar tables.
func NewGrammar() *Grammar {
	g := &Grammar{
		chtComposite:    regexp.MustCompile(compositePattern(chtNumberClass) + "(?:之?[前後])?"),
		arabicComposite: regexp.MustCompile(compositePattern(`\d+`)),
		relative:        regexp.MustCompile(compositePattern(`\d+`) + "之?[前後]"),
		chtNumber:       regexp.MustCompile(chtNumberClass),
		digits:          regexp.MustCompile(`\d+`),
	}

	arabic := compositePattern(`\d+`)
	g.dtRange = regexp.MustCompile("(?:從)?" + arabic + "(?:到" + arabic + ")?")

	for i, def := range unitDefs {
		counter := ""
		if def.counter {
			counter = "個?"
		}
		g.unitValue[i] = regexp.MustCompile(`\d+` + counter + def.pattern)
	}

	return g
}

// compositePattern builds the unit-sequence pattern over the given number
// class: one optional (number, unit) group per unit from year down to minute,
// each followed by an optional elision character. Units can only appear in
// descending-magnitude order, so malformed orderings are simply not matched.
func compositePattern(numberClass string) string {
	var b strings.Builder
	for _, def := range unitDefs {
		counter := ""
		if def.counter {
			counter = "個?"
		}
		b.WriteString("(?:" + numberClass + counter + def.pattern + ")?")
		b.WriteString("(?:又|的)?")
	}
	return b.String()
}

// unitsIn reports which units have an explicit "<digits><unit>" fragment in
// the given Arabic-numeral expression.
func (g *Grammar) unitsIn(arabicExpr string) [numUnits]bool {
	var present [numUnits]bool
	for i := range unitDefs {
		present[i] = g.unitValue[i].MatchString(arabicExpr)
	}
	return present
}

// unitValueIn extracts the integer value for a unit from an Arabic-numeral
// expression. The second return is false when the unit is absent.
func (g *Grammar) unitValueIn(arabicExpr string, u Unit) (int, bool) {
	frag := g.unitValue[u].FindString(arabicExpr)
	if frag == "" {
		return 0, false
	}
	n := 0
	for _, c := range g.digits.FindString(frag) {
		n = n*10 + int(c-'0')
	}
	return n, true
}
