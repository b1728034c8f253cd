package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/freshLiver/SuperStudent/internal/scraper"
)

const (
	nckuListPath = "/p/403-1000-3094-1.php?Lang=zh-tw"

	// The newsroom lists announcements newest first; pages beyond this are
	// older than any range a chat query asks about.
	nckuMaxArticles = 12
)

// nckuFetcher scrapes the NCKU newsroom. The listing page only carries
// titles, so each article page is fetched for its date and body.
type nckuFetcher struct {
	client *scraper.Client
	urls   *scraper.URLCache
	loc    *time.Location
}

func newNCKUFetcher(client *scraper.Client, loc *time.Location) *nckuFetcher {
	return &nckuFetcher{
		client: client,
		urls:   scraper.NewURLCache(client, "ncku"),
		loc:    loc,
	}
}

func (f *nckuFetcher) Fetch(ctx context.Context, keywords []string) ([]Article, error) {
	base, err := f.urls.Get(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := f.client.GetDocument(ctx, base+nckuListPath)
	if err != nil {
		if scraper.IsNetworkError(err) {
			f.urls.Clear()
		}
		return nil, err
	}

	var links []string
	doc.Find("div.mtitle a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, ok := sel.Attr("href"); ok {
			links = append(links, href)
		}
		return len(links) < nckuMaxArticles
	})

	articles := make([]Article, len(links))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, link := range links {
		g.Go(func() error {
			article, err := f.fetchArticle(gctx, link)
			if err != nil {
				// A single broken article page should not sink the search.
				return nil
			}
			mu.Lock()
			articles[i] = article
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Article
	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if matchesAll(a.Title+a.Snippet, keywords) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *nckuFetcher) fetchArticle(ctx context.Context, link string) (Article, error) {
	doc, err := f.client.GetDocument(ctx, link)
	if err != nil {
		return Article{}, err
	}

	article := Article{
		URL:   link,
		Title: strings.TrimSpace(doc.Find("h2.hdline").First().Text()),
	}

	// The second attribute value on the page is the publication date.
	if dateText := strings.TrimSpace(doc.Find("span.mattr-val").Eq(1).Text()); dateText != "" {
		if t, err := time.ParseInLocation("2006-01-02", dateText, f.loc); err == nil {
			article.PublishedAt = t
		}
	}

	var body strings.Builder
	doc.Find(`span[style="font-size:1.125em;"]`).Each(func(_ int, sel *goquery.Selection) {
		body.WriteString(strings.ReplaceAll(sel.Text(), "\n", ""))
	})
	article.Snippet = body.String()

	return article, nil
}

// matchesAll reports whether content contains every keyword. An empty
// keyword list matches everything.
func matchesAll(content string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(content, kw) {
			return false
		}
	}
	return true
}
