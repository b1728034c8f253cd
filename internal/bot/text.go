package bot

import (
	"strings"
)

// normalizeWhitespace collapses all whitespace runs into single spaces and
// trims leading/trailing whitespace.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// removePunctuation strips punctuation while keeping ASCII alphanumerics,
// spaces, and CJK ideographs. Full-width space (U+3000) maps to a regular
// space so normalizeWhitespace can fold it.
func removePunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(r)
		case r == '　':
			b.WriteRune(' ')
		case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
			b.WriteRune(r)
		case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
			b.WriteRune(r)
		}
	}

	return b.String()
}

// sanitizeText prepares an utterance for the NLU pipeline: punctuation
// removed, whitespace normalized.
func sanitizeText(s string) string {
	return normalizeWhitespace(removePunctuation(s))
}
