package temporal

import (
	"regexp"
	"strings"
)

// chtNumberClass matches a run of Chinese numeral characters.
// 兩 is the colloquial form of 二 used before counter words ("兩天").
const chtNumberClass = "[零一二兩三四五六七八九十]+"

var (
	// tensRule matches two-digit idioms with an explicit tens digit:
	// 二十, 二十三, 九十九. Must run before teensRule, otherwise the bare-十
	// rule would corrupt the tens position of 二十三.
	tensRule = regexp.MustCompile("[一二兩三四五六七八九]十[一二兩三四五六七八九]?")

	// teensRule matches 11-19 written without a tens digit: 十二, 十九.
	teensRule = regexp.MustCompile("十[一二兩三四五六七八九]")

	arabicReplacer = strings.NewReplacer(
		"零", "0", "一", "1", "二", "2", "兩", "2", "三", "3", "四", "4",
		"五", "5", "六", "6", "七", "7", "八", "8", "九", "9", "十", "10",
	)
)

// Simplify collapses two-digit Chinese numeral idioms into one character per
// decimal position, so a character-for-character substitution can finish the
// conversion:
//
//	二十三 -> 二三
//	二十   -> 二零
//	十二   -> 一二
//
// The input should be a single numeral span already isolated by the composite
// grammar; running this over a whole sentence could bleed digits across
// unrelated units.
func Simplify(text string) string {
	text = tensRule.ReplaceAllStringFunc(text, func(m string) string {
		r := []rune(m)
		if r[len(r)-1] == '十' {
			// 二十 -> 二零
			return string(r[0]) + "零"
		}
		// 二十三 -> 二三
		return string(r[0]) + string(r[len(r)-1])
	})
	return teensRule.ReplaceAllStringFunc(text, func(m string) string {
		// 十二 -> 一二
		return "一" + strings.TrimPrefix(m, "十")
	})
}

// ToArabic substitutes every Chinese numeral character in simplified text
// with its Arabic counterpart. A lone 十 (as in 十點) becomes 10.
func ToArabic(simplified string) string {
	return arabicReplacer.Replace(simplified)
}
