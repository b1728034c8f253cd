package scraper

import (
	"context"
	"fmt"
	"sync/atomic"
)

// URLCache remembers the working base URL for one outlet. Reads are
// lock-free; a miss runs failover detection against the configured URL
// list.
type URLCache struct {
	client *Client
	outlet string
	cached atomic.Pointer[string]
}

// NewURLCache creates a URL cache for an outlet registered in the
// client's base URL map.
func NewURLCache(client *Client, outlet string) *URLCache {
	return &URLCache{client: client, outlet: outlet}
}

// Get returns the cached working URL, probing for one on a miss. When
// probing fails outright, the first configured URL is used so a flaky
// HEAD check cannot take the outlet offline.
func (c *URLCache) Get(ctx context.Context) (string, error) {
	if url := c.GetCached(); url != "" {
		return url, nil
	}

	baseURL, err := c.client.TryFailoverURLs(ctx, c.outlet)
	if err != nil {
		urls := c.client.GetBaseURLs(c.outlet)
		if len(urls) == 0 {
			return "", fmt.Errorf("no URLs available for outlet %s: %w", c.outlet, err)
		}
		baseURL = urls[0]
	}

	c.cached.Store(&baseURL)
	return baseURL, nil
}

// Clear drops the cached URL so the next Get probes again. Fetchers call
// this after a failed scrape to trigger failover.
func (c *URLCache) Clear() {
	c.cached.Store(nil)
}

// GetCached returns the cached URL without probing, or "" on a miss.
func (c *URLCache) GetCached() string {
	if p := c.cached.Load(); p != nil {
		return *p
	}
	return ""
}
