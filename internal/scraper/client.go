package scraper

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Pacing between outgoing requests so the news sites see polite traffic.
const (
	scraperWorkers  = 4
	scraperMinDelay = 500 * time.Millisecond
	scraperMaxDelay = 1500 * time.Millisecond

	retryInitialDelay = 2 * time.Second
)

// Client fetches pages from the news outlets. Requests are paced by a
// shared rate limiter, retried with backoff, and sent with a rotating
// User-Agent. Each outlet can list failover base URLs tried in order.
type Client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	maxRetries  int
	baseURLs    map[string][]string
	mu          sync.RWMutex
}

// NewClient builds a scraping client. baseURLs maps an outlet name to its
// base URLs in preference order.
func NewClient(timeout time.Duration, maxRetries int, baseURLs map[string][]string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: NewRateLimiter(scraperWorkers, scraperMinDelay, scraperMaxDelay),
		maxRetries:  maxRetries,
		baseURLs:    baseURLs,
	}
}

// Get fetches url, retrying transient failures. 401, 403 and 404 are not
// retried. The caller closes the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	err := RetryWithBackoff(ctx, c.maxRetries, retryInitialDelay, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		var err error
		resp, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	_ = resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited for %s: status %d", url, resp.StatusCode)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, fmt.Errorf("server error for %s: status %d", url, resp.StatusCode)
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, &permanentError{err: fmt.Errorf("client error for %s: status %d", url, resp.StatusCode)}
	default:
		return nil, fmt.Errorf("unexpected status for %s: %d", url, resp.StatusCode)
	}
}

// GetDocument fetches url and parses the body as HTML. Gzip bodies are
// decompressed and Big5 pages, still common on Taiwanese sites, are
// transcoded to UTF-8 before parsing.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return doc, nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decompressing response: %w", err)
		}
		reader = gz
	}

	if strings.Contains(strings.ToUpper(resp.Header.Get("Content-Type")), "BIG5") {
		reader = transform.NewReader(reader, traditionalchinese.Big5.NewDecoder())
	}
	return reader, nil
}

// TryFailoverURLs probes the outlet's base URLs with HEAD requests and
// returns the first one that answers below 500.
func (c *Client) TryFailoverURLs(ctx context.Context, outlet string) (string, error) {
	c.mu.RLock()
	urls, ok := c.baseURLs[outlet]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no base URLs configured for outlet %s", outlet)
	}

	for _, baseURL := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", uarand.GetRandom())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode < 500 {
			return baseURL, nil
		}
	}

	return "", fmt.Errorf("all base URLs failed for outlet %s", outlet)
}

// GetBaseURLs returns a copy of the outlet's configured base URLs, or nil
// for an unknown outlet.
func (c *Client) GetBaseURLs(outlet string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	urls, ok := c.baseURLs[outlet]
	if !ok {
		return nil
	}
	return append([]string(nil), urls...)
}
