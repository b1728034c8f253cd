// Package nlu turns entity-recognition output and standardized text into a
// classified intent: an EntityBag of filtered entities, a response-language
// directive, and a priority-cascade classifier over both.
package nlu

import (
	"sort"
	"unicode/utf8"

	"github.com/freshLiver/SuperStudent/internal/ner"
	"github.com/freshLiver/SuperStudent/internal/sliceutil"
)

// Generic domain words that would pollute search keywords; they name the
// request type, not its subject.
var genericWords = map[string]bool{
	"新聞": true,
	"報導": true,
	"活動": true,
}

// EntityBag is the filtered view of one NER response. All slices are fresh
// copies; mutating a bag never touches the response it came from.
type EntityBag struct {
	People        []string
	Organizations []string

	// Locations sorted longest-first, so the head is the most specific
	// place mentioned.
	Locations []string

	Dates  []string
	Times  []string
	Events []string

	// Keywords drive downstream search: deduplicated nouns and proper nouns,
	// at least two characters, with generic domain words and media names
	// removed.
	Keywords []string
}

// NewEntityBag builds an EntityBag from a NER response. isMediaName reports
// whether a token names a known news outlet; those are excluded from
// keywords because they select the media instead of describing the query.
// A nil response yields an empty bag.
func NewEntityBag(resp *ner.Response, isMediaName func(string) bool) EntityBag {
	if resp == nil {
		return EntityBag{}
	}
	if isMediaName == nil {
		isMediaName = func(string) bool { return false }
	}

	bag := EntityBag{
		People:        copyStrings(resp.Categories[ner.CategoryPerson]),
		Organizations: copyStrings(resp.Categories[ner.CategoryOrganization]),
		Locations:     copyStrings(resp.Locations),
		Dates:         copyStrings(resp.Dates),
		Times:         copyStrings(resp.Times),
		Events:        copyStrings(resp.Events),
	}

	sort.SliceStable(bag.Locations, func(i, j int) bool {
		return utf8.RuneCountInString(bag.Locations[i]) > utf8.RuneCountInString(bag.Locations[j])
	})

	candidates := make([]string, 0, len(resp.Objects)+len(resp.ProperNouns)+len(bag.Organizations)+len(bag.People))
	candidates = append(candidates, resp.Objects...)
	candidates = append(candidates, resp.ProperNouns...)
	candidates = append(candidates, bag.Organizations...)
	candidates = append(candidates, bag.People...)

	candidates = sliceutil.Deduplicate(candidates, func(s string) string { return s })

	for _, word := range candidates {
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if genericWords[word] || isMediaName(word) {
			continue
		}
		bag.Keywords = append(bag.Keywords, word)
	}

	return bag
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
