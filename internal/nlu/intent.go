package nlu

import (
	"strings"

	"github.com/freshLiver/SuperStudent/internal/news"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

// Service is the request type an utterance resolves to.
type Service int

// Classified request types.
const (
	ServiceUnknown Service = iota
	ServiceSearchNews
	ServiceSearchActivity
	ServiceCreateActivity
)

func (s Service) String() string {
	switch s {
	case ServiceSearchNews:
		return "search_news"
	case ServiceSearchActivity:
		return "search_activity"
	case ServiceCreateActivity:
		return "create_activity"
	default:
		return "unknown"
	}
}

// Intent is the classification result for one utterance. Computed once,
// immutable afterwards; carries everything the router needs.
type Intent struct {
	Service  Service
	Range    temporal.Range
	Keywords []string
	Media    news.Media
	Locations []string

	// AmbiguousLocation marks a CreateActivity with no usable location; the
	// router turns it into a clarification instead of persisting.
	AmbiguousLocation bool

	Language Language
}

// Cue word sets for the classification cascade.
var (
	newsWords     = []string{"新聞", "報導"}
	activityWords = []string{"活動", "考試", "展", "演講", "舉行", "舉辦", "會"}
	searchVerbs   = []string{"查詢", "什麼", "想知道", "哪些"}
	creationVerbs = []string{"有", "舉行", "舉辦", "開放", "加入"}
)

// rule is one step of the cascade: the first rule whose predicate matches
// decides the service.
type rule struct {
	name    string
	matches func(text string, bag EntityBag) bool
	service Service
}

// Classifier decides the target service for an utterance. The cascade is an
// ordered rule list so the priority between overlapping cue words ("想知道"
// beats "有") is data, not code order buried in conditionals.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the default cascade:
//
//  1. news cue words win over everything else
//  2. activity-typed utterances (activity cue word or non-empty NER event
//     list) sub-classify by verb: search verbs, then creation verbs, then a
//     read-biased SearchActivity default
//  3. anything else is Unknown
func NewClassifier() *Classifier {
	activityTyped := func(text string, bag EntityBag) bool {
		return containsAny(text, activityWords) || len(bag.Events) > 0
	}

	return &Classifier{rules: []rule{
		{
			name:    "news cue word",
			matches: func(text string, _ EntityBag) bool { return containsAny(text, newsWords) },
			service: ServiceSearchNews,
		},
		{
			name: "activity search verb",
			matches: func(text string, bag EntityBag) bool {
				return activityTyped(text, bag) && containsAny(text, searchVerbs)
			},
			service: ServiceSearchActivity,
		},
		{
			name: "activity creation verb",
			matches: func(text string, bag EntityBag) bool {
				return activityTyped(text, bag) && containsAny(text, creationVerbs)
			},
			service: ServiceCreateActivity,
		},
		{
			name:    "activity read-biased default",
			matches: activityTyped,
			service: ServiceSearchActivity,
		},
	}}
}

// Classify runs the cascade over the standardized text and entity bag and
// assembles the full intent. It never fails; an utterance matching no rule
// is Unknown.
func (c *Classifier) Classify(text string, bag EntityBag, rng temporal.Range, lang Language) Intent {
	intent := Intent{
		Service:   ServiceUnknown,
		Range:     rng,
		Keywords:  bag.Keywords,
		Locations: bag.Locations,
		Media:     news.Detect(append(bag.Organizations, bag.People...)),
		Language:  lang,
	}

	for _, r := range c.rules {
		if r.matches(text, bag) {
			intent.Service = r.service
			break
		}
	}

	if intent.Service == ServiceCreateActivity && len(bag.Locations) == 0 {
		intent.AmbiguousLocation = true
	}

	return intent
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
