package news

import (
	"strings"
	"unicode"

	"github.com/crawlab-team/bm25"
)

// rankArticles orders candidate articles by BM25 relevance to the keywords,
// best first. Articles scoring zero are dropped. An empty keyword list or a
// scoring failure falls back to the input order, so ranking never loses
// candidates that date filtering already accepted.
func rankArticles(articles []Article, keywords []string) []Article {
	if len(articles) < 2 || len(keywords) == 0 {
		return articles
	}

	corpus := make([]string, len(articles))
	for i, a := range articles {
		corpus[i] = a.Title + " " + a.Snippet
	}

	okapi, err := bm25.NewBM25Okapi(corpus, tokenizeChinese, 1.5, 0.75, nil)
	if err != nil {
		return articles
	}

	query := tokenizeChinese(strings.Join(keywords, " "))
	if len(query) == 0 {
		return articles
	}

	scores, err := okapi.GetScores(query)
	if err != nil || len(scores) != len(articles) {
		return articles
	}

	type scored struct {
		article Article
		score   float64
	}
	ranked := make([]scored, 0, len(articles))
	for i, a := range articles {
		if scores[i] > 0 {
			ranked = append(ranked, scored{article: a, score: scores[i]})
		}
	}
	if len(ranked) == 0 {
		return nil
	}

	// Insertion sort keeps equal scores in scrape order, which is already
	// newest first for every outlet.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	out := make([]Article, len(ranked))
	for i, r := range ranked {
		out[i] = r.article
	}
	return out
}

// tokenizeChinese produces unigram+bigram tokens for CJK runs and whole
// lowercased words for Latin runs. Bigrams give phrase affinity in a
// language without word spacing.
func tokenizeChinese(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var word strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.Is(unicode.Han, r):
			if word.Len() > 0 {
				tokens = append(tokens, word.String())
				word.Reset()
			}
			tokens = append(tokens, string(r))
			if i+1 < len(runes) && unicode.Is(unicode.Han, runes[i+1]) {
				tokens = append(tokens, string(r)+string(runes[i+1]))
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			if word.Len() > 0 {
				tokens = append(tokens, word.String())
				word.Reset()
			}
		}
	}
	if word.Len() > 0 {
		tokens = append(tokens, word.String())
	}

	return tokens
}
