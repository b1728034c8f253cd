// Package stringutil provides string helpers shared by the matching layers.
package stringutil

import "strings"

// ContainsAllRunes reports whether s contains every rune of chars, with
// multiplicity and in any order. ASCII letters compare case-insensitively.
// "明王" therefore matches "王小明", and "aa" needs two 'a's in s.
//
// Keyword matching over Chinese text works per rune rather than per
// substring, so a user can abbreviate "資訊工程學系" as "資工系".
func ContainsAllRunes(s, chars string) bool {
	if chars == "" {
		return true
	}
	if s == "" {
		return false
	}

	need := make(map[rune]int)
	for _, r := range strings.ToLower(chars) {
		need[r]++
	}

	remaining := len(need)
	for _, r := range strings.ToLower(s) {
		n, ok := need[r]
		if !ok {
			continue
		}
		if n == 1 {
			delete(need, r)
			remaining--
			if remaining == 0 {
				return true
			}
		} else {
			need[r] = n - 1
		}
	}
	return false
}
