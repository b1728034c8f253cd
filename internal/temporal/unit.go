// Package temporal rewrites Chinese temporal expressions into absolute,
// Arabic-numeral datetime text and extracts concrete datetime ranges from it.
//
// The pipeline has three stages:
//  1. colloquial date words ("明天", "下禮拜", "去年") are resolved against the
//     current time (dateword.go)
//  2. Chinese-numeral expressions ("三月一日", "兩天後") are normalized to
//     Arabic numerals and, for relative expressions, to absolute instants
//     (standardize.go)
//  3. the standardized sentence is scanned for a single datetime or a
//     "從…到…" range (extract.go)
//
// All regex tables are compiled once into an immutable Grammar and shared
// by reference; nothing in this package holds per-request state.
package temporal

import "time"

// Unit is a calendar unit recognized by the temporal grammar, ordered from
// largest to smallest magnitude. Natural Chinese word order lists units in
// descending magnitude, which is what the composite grammar encodes.
type Unit int

// Calendar units from year down to minute.
const (
	UnitYear Unit = iota
	UnitMonth
	UnitWeek
	UnitDay
	UnitHour
	UnitMinute

	numUnits = int(UnitMinute) + 1
)

// String returns the canonical surface token for the unit.
func (u Unit) String() string {
	switch u {
	case UnitYear:
		return "年"
	case UnitMonth:
		return "月"
	case UnitWeek:
		return "週"
	case UnitDay:
		return "日"
	case UnitHour:
		return "時"
	case UnitMinute:
		return "分"
	default:
		return "?"
	}
}

// unitDef describes one calendar unit: its surface token alternation, whether
// the counter word 個 may precede it, and how a resolved value is printed.
//
// Token sets are mutually exclusive across units, so a composite match can
// never attribute one number to two units.
type unitDef struct {
	unit    Unit
	pattern string // regex alternation of surface tokens, no capturing groups
	counter bool   // counter word 個 may appear between number and token
	format  string // printf format for a resolved field value
}

// unitDefs lists the units in descending-magnitude order, mirroring the only
// order the composite grammar accepts.
var unitDefs = [numUnits]unitDef{
	{UnitYear, "年", false, "%d年"},
	{UnitMonth, "月", true, "%d月"},
	{UnitWeek, "(?:週|周|星期|禮拜)", true, ""},
	{UnitDay, "(?:日|天|號)", false, "%d日"},
	{UnitHour, "(?:小?時|鐘頭|點)", true, "%d點"},
	{UnitMinute, "分鐘?", false, "%d分"},
}

// addTo shifts base by n of the given unit using calendar-aware arithmetic,
// so adding a month in January lands in February regardless of month length.
func (u Unit) addTo(base time.Time, n int) time.Time {
	switch u {
	case UnitYear:
		return base.AddDate(n, 0, 0)
	case UnitMonth:
		return base.AddDate(0, n, 0)
	case UnitWeek:
		return base.AddDate(0, 0, 7*n)
	case UnitDay:
		return base.AddDate(0, 0, n)
	case UnitHour:
		return base.Add(time.Duration(n) * time.Hour)
	case UnitMinute:
		return base.Add(time.Duration(n) * time.Minute)
	default:
		return base
	}
}
