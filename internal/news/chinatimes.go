package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/freshLiver/SuperStudent/internal/scraper"
)

const (
	chinaTimesSearchPath  = "/search/"
	chinaTimesHotNewsPath = "/hotnews/?chdtv"
	chinaTimesMaxPages    = 5
)

// chinaTimesFetcher scrapes ChinaTimes search result pages; the listing
// carries url, date, and intro in one place, so no per-article fetch is
// needed. Without keywords it falls back to the hot-news page.
type chinaTimesFetcher struct {
	client *scraper.Client
	urls   *scraper.URLCache
	loc    *time.Location
}

func newChinaTimesFetcher(client *scraper.Client, loc *time.Location) *chinaTimesFetcher {
	return &chinaTimesFetcher{
		client: client,
		urls:   scraper.NewURLCache(client, "chinatimes"),
		loc:    loc,
	}
}

func (f *chinaTimesFetcher) Fetch(ctx context.Context, keywords []string) ([]Article, error) {
	base, err := f.urls.Get(ctx)
	if err != nil {
		return nil, err
	}

	if len(keywords) == 0 {
		return f.fetchHotNews(ctx, base)
	}

	searchBase := base + chinaTimesSearchPath + url.PathEscape(strings.Join(keywords, " ")) + "/"

	var articles []Article
	for page := 1; page <= chinaTimesMaxPages; page++ {
		doc, err := f.client.GetDocument(ctx, fmt.Sprintf("%s?page=%d", searchBase, page))
		if err != nil {
			if len(articles) > 0 {
				break
			}
			if scraper.IsNetworkError(err) {
				f.urls.Clear()
			}
			return nil, err
		}

		if strings.TrimSpace(doc.Find("span.search-result-count").First().Text()) == "0" {
			break
		}

		pageArticles := f.parseList(doc)
		if len(pageArticles) == 0 {
			break
		}
		articles = append(articles, pageArticles...)
	}

	return articles, nil
}

func (f *chinaTimesFetcher) parseList(doc *goquery.Document) []Article {
	var articles []Article

	doc.Find("h3.title a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		article := Article{
			URL:     href,
			Title:   strings.TrimSpace(sel.Text()),
			Snippet: strings.TrimSpace(doc.Find("p.intro").Eq(i).Text()),
		}
		if dateText := strings.TrimSpace(doc.Find("span.date").Eq(i).Text()); dateText != "" {
			if t, err := time.ParseInLocation("2006/01/02", dateText, f.loc); err == nil {
				article.PublishedAt = t
			}
		}
		articles = append(articles, article)
	})

	return articles
}

func (f *chinaTimesFetcher) fetchHotNews(ctx context.Context, base string) ([]Article, error) {
	doc, err := f.client.GetDocument(ctx, base+chinaTimesHotNewsPath)
	if err != nil {
		if scraper.IsNetworkError(err) {
			f.urls.Clear()
		}
		return nil, err
	}
	return f.parseList(doc), nil
}
