package scraper

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FetchGroup collapses concurrent fetches of the same key into one upstream
// request. A burst of users asking for the same media's news page hits the
// site once; everyone gets the shared result.
type FetchGroup struct {
	group singleflight.Group
}

// NewFetchGroup returns an empty group.
func NewFetchGroup() *FetchGroup {
	return &FetchGroup{}
}

// Do runs fn once per in-flight key. shared reports whether this caller
// received a result produced for another caller. A context already
// cancelled when the leader starts aborts without calling fn.
func (g *FetchGroup) Do(ctx context.Context, key string, fn func() (any, error)) (result any, shared bool, err error) {
	result, err, shared = g.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})
	return result, shared, err
}

// Forget drops the in-flight entry for key so the next Do runs fn again.
func (g *FetchGroup) Forget(key string) {
	g.group.Forget(key)
}
