package github

import (
	"context"
	"sync"
)

// listingCache memoizes the daily report listing so resolving both the
// current and prior snapshot costs one API call. Empty listings are not
// cached so a transient empty response can be retried.
type listingCache struct {
	mu      sync.Mutex
	reports []Report
}

func (c *listingCache) get(ctx context.Context, fetch func(context.Context) ([]Report, error)) ([]Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.reports) > 0 {
		return c.reports, nil
	}
	reports, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 {
		c.reports = reports
	}
	return reports, nil
}
