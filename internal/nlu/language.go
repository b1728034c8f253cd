package nlu

import "strings"

// Language is the requested response language.
type Language int

// Supported response languages. Chinese is the default.
const (
	LanguageChinese Language = iota
	LanguageTaiwanese
)

func (l Language) String() string {
	if l == LanguageTaiwanese {
		return "台語"
	}
	return "中文"
}

// Directive phrases, checked in order. Taiwanese first so an utterance
// carrying both keeps the more specific request.
var languageDirectives = []struct {
	phrase string
	lang   Language
}{
	{"用台語", LanguageTaiwanese},
	{"用中文", LanguageChinese},
}

// ExtractLanguage pulls an explicit 用中文/用台語 directive out of text. The
// directive is removed from the returned text so it never pollutes keyword
// extraction or intent matching. Text without a directive comes back
// unchanged with LanguageChinese.
func ExtractLanguage(text string) (string, Language) {
	for _, d := range languageDirectives {
		if strings.Contains(text, d.phrase) {
			return strings.ReplaceAll(text, d.phrase, ""), d.lang
		}
	}
	return text, LanguageChinese
}
