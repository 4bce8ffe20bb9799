package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-apartment-search/internal/domain"
)

const (
	// DefaultResultTTL bounds how long a search result is served from cache.
	DefaultResultTTL = 30 * time.Minute
	// DefaultListingTTL bounds how long a remembered listing is kept.
	DefaultListingTTL = 7 * 24 * time.Hour

	resultsNamespace  = "search"
	listingsNamespace = "listing"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	resultTTL  time.Duration
	listingTTL time.Duration
	now        func() time.Time
}

// WithResultTTL overrides DefaultResultTTL. Non-positive values are ignored.
func WithResultTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resultTTL = d
		}
	}
}

// WithListingTTL overrides DefaultListingTTL. Non-positive values are ignored.
func WithListingTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.listingTTL = d
		}
	}
}

// WithClock injects the clock used for stamping and freshness checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Cache bundles the search result tier and the remembered listing tier over a
// single Store.
type Cache struct {
	Results  *Tier[domain.SearchResult]
	Listings *Tier[domain.Listing]
}

// New builds a Cache over store.
func New(store Store, opts ...Option) *Cache {
	o := options{
		resultTTL:  DefaultResultTTL,
		listingTTL: DefaultListingTTL,
		now:        time.Now,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache{
		Results:  NewTier[domain.SearchResult](store, resultsNamespace, o.resultTTL, o.now),
		Listings: NewTier[domain.Listing](store, listingsNamespace, o.listingTTL, o.now),
	}
}

// SweepStale removes stale entries from both tiers.
func (c *Cache) SweepStale(ctx context.Context) int {
	return c.Results.SweepStale(ctx) + c.Listings.SweepStale(ctx)
}

// Clear removes every entry from both tiers.
func (c *Cache) Clear(ctx context.Context) int {
	return c.Results.Clear(ctx) + c.Listings.Clear(ctx)
}

// RunSweeper sweeps once immediately and then every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (c *Cache) RunSweeper(ctx context.Context, interval time.Duration) {
	c.sweepAndLog(ctx)
	if interval <= 0 {
		return
	}
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			c.sweepAndLog(ctx)
		}
	}
}

func (c *Cache) sweepAndLog(ctx context.Context) {
	start := time.Now()
	n := c.SweepStale(ctx)
	log.Debug().
		Int("removed", n).
		Dur("elapsed", time.Since(start)).
		Msg("cache sweep")
}
