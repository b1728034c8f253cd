package temporal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Colloquial date-word families. Each rewrites to concrete calendar text so
// the composite grammar never needs look-behind to disambiguate them.
var (
	yearWordRule  = regexp.MustCompile("[前去今明後]年")
	monthWordRule = regexp.MustCompile("(上+|下+|這)個?月")
	weekWordRule  = regexp.MustCompile("(上+|下+|這)個?(?:禮拜|星期|週|周)")
	dayWordRule   = regexp.MustCompile("[前昨今明後][天日]")
)

// shift values for the single-character year/day prefixes.
var (
	yearShifts = map[rune]int{'前': -2, '去': -1, '今': 0, '明': 1, '後': 2}
	dayShifts  = map[rune]int{'前': -2, '昨': -1, '今': 0, '明': 1, '後': 2}
)

// ResolveDateWords rewrites every colloquial date word in text into concrete
// calendar text anchored on now:
//
//	去年     -> 2023年
//	下個月   -> 4月
//	上上個月 -> 1月
//	下禮拜   -> 2024年3月11日到2024年3月17日23點59分
//	明天     -> 2024年3月11日
//
// Week words expand to an inline Monday-to-Sunday range literal because a
// week is a span, not an instant. Repeated 上/下 prefixes accumulate
// (上上個月 shifts by -2). Text without date words is returned unchanged.
func ResolveDateWords(text string, now time.Time) string {
	text = yearWordRule.ReplaceAllStringFunc(text, func(m string) string {
		shift := yearShifts[[]rune(m)[0]]
		return fmt.Sprintf("%d年", now.AddDate(shift, 0, 0).Year())
	})

	text = monthWordRule.ReplaceAllStringFunc(text, func(m string) string {
		target := now.AddDate(0, prefixShift(m), 0)
		return fmt.Sprintf("%d月", int(target.Month()))
	})

	text = weekWordRule.ReplaceAllStringFunc(text, func(m string) string {
		target := now.AddDate(0, 0, 7*prefixShift(m))
		monday := target.AddDate(0, 0, 1-isoWeekday(target))
		sunday := monday.AddDate(0, 0, 6)
		return fmt.Sprintf("%d年%d月%d日到%d年%d月%d日23點59分",
			monday.Year(), int(monday.Month()), monday.Day(),
			sunday.Year(), int(sunday.Month()), sunday.Day())
	})

	text = dayWordRule.ReplaceAllStringFunc(text, func(m string) string {
		target := now.AddDate(0, 0, dayShifts[[]rune(m)[0]])
		return fmt.Sprintf("%d年%d月%d日", target.Year(), int(target.Month()), target.Day())
	})

	return text
}

// prefixShift converts a 上⁺/這/下⁺ prefix into a signed month/week shift:
// each 下 adds one, each 上 subtracts one, 這 is zero.
func prefixShift(word string) int {
	switch {
	case strings.HasPrefix(word, "下"):
		return strings.Count(word, "下")
	case strings.HasPrefix(word, "上"):
		return -strings.Count(word, "上")
	default:
		return 0
	}
}

// isoWeekday returns the ISO weekday (Monday=1 .. Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
