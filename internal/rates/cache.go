// Package rates holds the process-lifetime exchange-rate cache and the
// fetcher that retrieves rate tables from the configured source.
package rates

import (
	"context"
	"log/slog"
	"sync"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

const (
	StateEmpty    State = "empty"
	StateFetching State = "fetching"
	StateLoaded   State = "loaded"
	StateFailed   State = "failed"
)

type (
	State string

	// Fetcher retrieves a validated rate table from a source URL.
	Fetcher interface {
		Fetch(ctx context.Context, url string) (core.RateTable, error)
	}
)

// Cache holds at most one trusted rate table. A fetch is attempted at most
// once per configured source; failures are absorbed into the failed state so
// reporting can degrade to unconverted totals instead of erroring out.
//
// Two callers racing through an empty cache may both fetch; the second result
// overwrites the first idempotently, which is an accepted limitation.
type Cache struct {
	mu        sync.Mutex
	fetcher   Fetcher
	sourceURL string
	state     State
	table     core.RateTable

	// gen increments whenever the configuration changes (SetSourceURL) or
	// the table is overridden (SetRates). A fetch that started under an
	// older generation must not install its result.
	gen uint64
}

func NewCache(fetcher Fetcher, sourceURL string) *Cache {
	return &Cache{
		fetcher:   fetcher,
		sourceURL: sourceURL,
		state:     StateEmpty,
	}
}

// Rates returns the current table, fetching it first if this configuration
// has never been tried. It never returns an error: a failed or absent fetch
// reports (nil, false).
func (c *Cache) Rates(ctx context.Context) (core.RateTable, bool) {
	c.mu.Lock()
	switch c.state {
	case StateLoaded:
		table := c.table
		c.mu.Unlock()
		return table, true
	case StateFailed:
		c.mu.Unlock()
		return nil, false
	}

	c.state = StateFetching
	url := c.sourceURL
	gen := c.gen
	c.mu.Unlock()

	table, err := c.fetcher.Fetch(ctx, url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// The configuration changed mid-fetch. The result belongs to a
		// retired source, so discard it and answer from the cache as it
		// stands now.
		if c.state == StateLoaded {
			return c.table, true
		}
		return nil, false
	}
	if err != nil {
		c.state = StateFailed
		fields := applog.NewFields().
			WithComponent(applog.ComponentRates).
			WithOperation(applog.OpFetch).
			WithRates(url, string(StateFailed)).
			WithError(err)
		slog.WarnContext(ctx, "Rate fetch failed", fields.ToSlice()...)
		return nil, false
	}
	c.state = StateLoaded
	c.table = table
	fields := applog.NewFields().
		WithComponent(applog.ComponentRates).
		WithOperation(applog.OpFetch).
		WithRates(url, string(StateLoaded))
	slog.InfoContext(ctx, "Rates loaded", fields.ToSlice()...)
	return table, true
}

// SetRates overrides the cached table. An invalid table is rejected wholesale
// and leaves the prior state and table untouched.
func (c *Cache) SetRates(table core.RateTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = StateLoaded
	c.table = table
	return nil
}

// SetSourceURL points the cache at a new source and resets it, allowing one
// fresh fetch attempt.
func (c *Cache) SetSourceURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.sourceURL = url
	c.state = StateEmpty
	c.table = nil
}

// State reports the cache's current lifecycle state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
