package news

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/freshLiver/SuperStudent/internal/scraper"
)

const (
	udnSearchPath = "/search/word/2/"
	udnRankPath   = "/rank/pv/2"
)

// udnFetcher scrapes UDN search result pages; without keywords it falls back
// to the most-read ranking page.
type udnFetcher struct {
	client *scraper.Client
	urls   *scraper.URLCache
	loc    *time.Location
}

func newUDNFetcher(client *scraper.Client, loc *time.Location) *udnFetcher {
	return &udnFetcher{
		client: client,
		urls:   scraper.NewURLCache(client, "udn"),
		loc:    loc,
	}
}

func (f *udnFetcher) Fetch(ctx context.Context, keywords []string) ([]Article, error) {
	base, err := f.urls.Get(ctx)
	if err != nil {
		return nil, err
	}

	target := base + udnRankPath
	if len(keywords) > 0 {
		target = base + udnSearchPath + url.PathEscape(strings.Join(keywords, " "))
	}

	doc, err := f.client.GetDocument(ctx, target)
	if err != nil {
		if scraper.IsNetworkError(err) {
			f.urls.Clear()
		}
		return nil, err
	}

	var articles []Article
	doc.Find("div.story-list__text").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("h2 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		article := Article{
			URL:     href,
			Title:   strings.TrimSpace(link.Text()),
			Snippet: strings.TrimSpace(sel.Find("p").First().Text()),
		}

		// Listing timestamps look like "2024-03-05 12:34"; the date part is
		// enough for range filtering.
		if dateText := strings.TrimSpace(sel.Find("time.story-list__time").First().Text()); len(dateText) >= 10 {
			if t, err := time.ParseInLocation("2006-01-02", dateText[:10], f.loc); err == nil {
				article.PublishedAt = t
			}
		}

		articles = append(articles, article)
	})

	return articles, nil
}
