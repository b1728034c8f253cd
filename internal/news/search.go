package news

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/scraper"
	"github.com/freshLiver/SuperStudent/internal/temporal"
)

// Article is one scraped candidate article.
type Article struct {
	URL     string
	Title   string
	Snippet string

	// PublishedAt is zero when the outlet's listing carries no usable date;
	// such articles pass date filtering.
	PublishedAt time.Time
}

// Result is the single article a search resolves to.
type Result struct {
	URL     string
	Snippet string
}

// Fetcher scrapes candidate articles from one outlet.
type Fetcher interface {
	Fetch(ctx context.Context, keywords []string) ([]Article, error)
}

// Service answers news searches by scraping the requested outlet, filtering
// candidates to the requested date window, and ranking what remains.
type Service struct {
	fetchers map[Media]Fetcher
	sf       *scraper.FetchGroup
	metrics  *metrics.Metrics // nil disables recording
	logger   *logger.Logger
	wrap     *apperrors.Wrapper
}

// NewService wires the per-outlet scrapers. Outlets without a scraper report
// not-found at search time.
func NewService(client *scraper.Client, loc *time.Location, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		fetchers: map[Media]Fetcher{
			MediaNCKU:       newNCKUFetcher(client, loc),
			MediaChinaTimes: newChinaTimesFetcher(client, loc),
			MediaUDN:        newUDNFetcher(client, loc),
		},
		sf:      scraper.NewFetchGroup(),
		metrics: m,
		logger:  log.WithModule("news"),
		wrap:    apperrors.NewWrapper("news", "search"),
	}
}

// Search finds the best article on media matching keywords inside rng. An
// open range is padded to the end of its start day. Returns
// apperrors.ErrNotFound when nothing matches.
func (s *Service) Search(ctx context.Context, rng temporal.Range, keywords []string, media Media) (Result, error) {
	fetcher, ok := s.fetchers[media]
	if !ok {
		s.logger.WithField("media", media.String()).Infof("no scraper for outlet")
		return Result{}, fmt.Errorf("%w: outlet %s has no scraper", apperrors.ErrNotFound, media)
	}

	// Concurrent identical queries share a single scrape.
	key := media.String() + "|" + strings.Join(keywords, ",")
	fetchStart := time.Now()
	fetched, shared, err := s.sf.Do(ctx, key, func() (any, error) {
		return fetcher.Fetch(ctx, keywords)
	})
	if s.metrics != nil {
		if shared {
			s.metrics.RecordSingleflightDedup("news")
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordScraperRequest(media.String(), status, time.Since(fetchStart).Seconds())
	}
	if err != nil {
		return Result{}, s.wrap.Wrapf(err, "%s新聞查詢暫時無法使用，請稍後再試", media)
	}
	articles, _ := fetched.([]Article)

	start := rng.Start
	end := rng.EndOr(time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, 0, start.Location()))

	var candidates []Article
	for _, a := range articles {
		if !a.PublishedAt.IsZero() && (a.PublishedAt.Before(start) || a.PublishedAt.After(end)) {
			continue
		}
		candidates = append(candidates, a)
	}

	candidates = rankArticles(candidates, keywords)
	if len(candidates) == 0 {
		s.logger.WithFields(map[string]any{
			"media":    media.String(),
			"keywords": strings.Join(keywords, ","),
		}).Infof("no matching news")
		return Result{}, fmt.Errorf("%w: no article matched", apperrors.ErrNotFound)
	}

	best := candidates[0]
	return Result{URL: best.URL, Snippet: cleanSnippet(best.Snippet)}, nil
}

var latinLetters = regexp.MustCompile(`[a-zA-Z]`)

// cleanSnippet normalizes a scraped snippet for a chat bubble: ideographic
// spaces and newlines removed, Latin noise stripped, cut at the first full
// stop or 50 runes.
func cleanSnippet(s string) string {
	s = strings.NewReplacer("　", " ", "\n", "", "\r", "").Replace(s)
	s = latinLetters.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "。"); i > 0 {
		return s[:i]
	}
	if runes := []rune(s); len(runes) > 50 {
		return string(runes[:50])
	}
	return s
}
