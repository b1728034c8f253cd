// Package news finds one news article matching a query: a media enum with
// outlet-name detection, per-outlet scrapers, and BM25 ranking over the
// scraped candidates.
package news

import "strings"

// Media is a supported news outlet.
type Media int

// Supported outlets. NCKU is the institution's own newsroom and the default
// when an utterance names no outlet.
const (
	MediaNCKU Media = iota
	MediaChinaTimes
	MediaLTN
	MediaETtoday
	MediaSETN
	MediaTVBS
	MediaUDN
)

func (m Media) String() string {
	switch m {
	case MediaChinaTimes:
		return "chinatimes"
	case MediaLTN:
		return "ltn"
	case MediaETtoday:
		return "ettoday"
	case MediaSETN:
		return "setn"
	case MediaTVBS:
		return "tvbs"
	case MediaUDN:
		return "udn"
	default:
		return "ncku"
	}
}

// Outlet name aliases. Latin keys are lowercase; Detect lowercases Latin
// tokens before lookup.
var mediaAliases = map[string]Media{
	"成大":      MediaNCKU,
	"成功大學":    MediaNCKU,
	"ncku":    MediaNCKU,
	"中時":      MediaChinaTimes,
	"中國時報":    MediaChinaTimes,
	"中時電子報":   MediaChinaTimes,
	"自由":      MediaLTN,
	"自由時報":    MediaLTN,
	"ltn":     MediaLTN,
	"東森":      MediaETtoday,
	"東森新聞雲":   MediaETtoday,
	"ettoday": MediaETtoday,
	"三立":      MediaSETN,
	"三立新聞":    MediaSETN,
	"setn":    MediaSETN,
	"tvbs":    MediaTVBS,
	"聯合":      MediaUDN,
	"聯合報":     MediaUDN,
	"聯合新聞網":   MediaUDN,
	"udn":     MediaUDN,
}

// Detect scans recognized name tokens for a known outlet and returns the
// first hit, or MediaNCKU when none match.
func Detect(tokens []string) Media {
	for _, tok := range tokens {
		if m, ok := mediaAliases[strings.ToLower(tok)]; ok {
			return m
		}
	}
	return MediaNCKU
}

// IsMediaName reports whether token names a known outlet.
func IsMediaName(token string) bool {
	_, ok := mediaAliases[strings.ToLower(token)]
	return ok
}
