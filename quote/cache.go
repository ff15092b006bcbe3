package quote

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/etnz/holdings"
)

// Request kinds, also the prefixes of store keys.
const (
	kindQuote = "quote"
	kindDaily = "daily"
)

// Cache resolves quotes through two store tiers before the network.
//
// Tier order is strict and the first hit wins: the transient store within
// its short freshness window, then the persistent store within its long
// one (a persistent hit backfills the transient tier with the same entry,
// timestamp included), then the provider. A successful fetch writes
// through to both tiers with a fresh timestamp; a failed one caches
// nothing.
//
// Concurrent fetches for different identifiers race independently.
// Overlapping calls for the same identifier are not deduplicated: both may
// reach the provider, and the later write wins. That is accepted behavior,
// not a defect to coalesce away.
type Cache struct {
	provider   Provider
	transient  Store
	persistent Store
	cfg        holdings.CacheConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	log   zerolog.Logger
}

// New returns a cache over the given provider and store tiers, configured
// by cfg (freshness windows, batch group size and delay).
func New(provider Provider, transient, persistent Store, cfg holdings.CacheConfig) *Cache {
	return &Cache{
		provider:   provider,
		transient:  transient,
		persistent: persistent,
		cfg:        cfg,
		now:        time.Now,
		sleep:      wait,
		log:        zerolog.Nop(),
	}
}

// WithClock injects the time source (tests).
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// WithSleeper injects the inter-group wait primitive (tests).
func (c *Cache) WithSleeper(sleep func(ctx context.Context, d time.Duration) error) *Cache {
	c.sleep = sleep
	return c
}

// WithLogger sets the cache logger.
func (c *Cache) WithLogger(log zerolog.Logger) *Cache {
	c.log = log
	return c
}

// wait blocks for d or until the context is cancelled, whichever comes
// first.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// lookup tries the two tiers for key, then falls back to fetch.
func lookup[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	now := c.now()

	if e, ok := c.transient.Get(key); ok && now.Sub(e.At) < c.cfg.TransientTTL {
		var v T
		if json.Unmarshal(e.Data, &v) == nil {
			return v, nil
		}
	}
	if e, ok := c.persistent.Get(key); ok && now.Sub(e.At) < c.cfg.PersistentTTL {
		var v T
		if json.Unmarshal(e.Data, &v) == nil {
			// Backfill the transient tier with the same entry, original
			// timestamp included: the data did not get any fresher.
			if err := c.transient.Put(key, e); err != nil {
				c.log.Warn().Str("key", key).Err(err).Msg("transient backfill failed")
			}
			return v, nil
		}
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		// The value is still good, it just cannot be cached.
		c.log.Warn().Str("key", key).Err(err).Msg("cache encode failed")
		return v, nil
	}
	e := Entry{At: now, Data: data}
	if err := c.transient.Put(key, e); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("transient write failed")
	}
	if err := c.persistent.Put(key, e); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("persistent write failed")
	}
	return v, nil
}

// Quote returns the latest known quote for securityID. The returned error
// is ErrRateLimited or ErrUnavailable (wrapped); either way there is no
// quote and nothing was cached.
func (c *Cache) Quote(ctx context.Context, securityID string) (Quote, error) {
	return lookup(c, kindQuote+"_"+securityID, func() (Quote, error) {
		return c.provider.Quote(ctx, securityID)
	})
}

// History returns the daily close history for securityID, possibly empty.
func (c *Cache) History(ctx context.Context, securityID string) ([]Point, error) {
	return lookup(c, kindDaily+"_"+securityID, func() ([]Point, error) {
		return c.provider.Daily(ctx, securityID)
	})
}

// QuoteBatch resolves many identifiers under the provider's quota.
//
// The identifier list is partitioned into fixed-size groups. All requests
// of a group run concurrently and the group completes only when every
// member settled; one identifier's failure never aborts its siblings. An
// unconditional delay separates consecutive groups (none after the last),
// a window-aligned throttle that deliberately trades latency for staying
// inside the provider's per-minute quota.
//
// The result omits identifiers that produced no quote. Only a cancelled
// context returns an error.
func (c *Cache) QuoteBatch(ctx context.Context, securityIDs []string) (map[string]Quote, error) {
	size := c.cfg.GroupSize
	if size <= 0 {
		size = 1
	}

	quotes := make(map[string]Quote, len(securityIDs))
	var mu sync.Mutex

	for start := 0; start < len(securityIDs); start += size {
		group := securityIDs[start:min(start+size, len(securityIDs))]

		var wg sync.WaitGroup
		for _, id := range group {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				q, err := c.Quote(ctx, id)
				if err != nil {
					c.log.Debug().Str("security", id).Err(err).Msg("batch member failed")
					return
				}
				mu.Lock()
				quotes[id] = q
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if start+size < len(securityIDs) {
			if err := c.sleep(ctx, c.cfg.GroupDelay); err != nil {
				return quotes, err
			}
		}
	}
	return quotes, nil
}

// Detail is the result of loading one security's detail view: the point
// quote and the daily history, each with its own independent error state.
// One side failing never hides the other's success.
type Detail struct {
	Quote      Quote
	QuoteErr   error
	History    []Point
	HistoryErr error
}

// Detail fetches the quote and history of one security concurrently.
func (c *Cache) Detail(ctx context.Context, securityID string) Detail {
	var d Detail
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.Quote, d.QuoteErr = c.Quote(ctx, securityID)
	}()
	go func() {
		defer wg.Done()
		d.History, d.HistoryErr = c.History(ctx, securityID)
	}()
	wg.Wait()
	return d
}
