// Package quotecache memoizes quote results keyed by request fingerprint,
// with TTL expiry and single-flight collapsing of concurrent identical
// requests. Rule-set version bumps invalidate implicitly: the version is part
// of every fingerprint, so stale entries simply become unreachable and age
// out; no sweep is required.
package quotecache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 5 * time.Minute

type entry struct {
	result  pricing.Result
	version int64
	expires time.Time
}

// Cache is safe for concurrent use. The now func is injectable for tests.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

func New(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// GetOrCompute returns the cached result for the fingerprint, or runs compute
// exactly once for all concurrent callers sharing the fingerprint. The hit
// flag is true when the caller was served without running compute itself —
// either from a stored entry or by joining an in-flight computation.
//
// A failed computation propagates its error to every waiting caller and
// releases the flight, so a later caller retries cleanly; nothing is ever
// left permanently "in progress".
func (c *Cache) GetOrCompute(ctx context.Context, fingerprint string, version int64, compute func(ctx context.Context) (pricing.Result, error)) (pricing.Result, bool, error) {
	if res, ok, err := c.lookup(fingerprint, version); ok || err != nil {
		return res, ok, err
	}

	// The closure only runs for the caller that wins the claim; everyone
	// else joins the flight and is reported as a hit.
	computed := false
	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		computed = true
		// Another flight may have published while we waited on the claim.
		if res, ok, err := c.lookup(fingerprint, version); err != nil {
			return nil, err
		} else if ok {
			computed = false
			return res, nil
		}
		res, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[fingerprint] = entry{result: res, version: version, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return pricing.Result{}, false, err
	}
	return v.(pricing.Result), !computed, nil
}

// lookup returns (result, true, nil) on a live hit. A version mismatch on a
// stored entry should be impossible — the version is hashed into the
// fingerprint — so it is treated as a fatal inconsistency, logged, and the
// poisoned entry dropped.
func (c *Cache) lookup(fingerprint string, version int64) (pricing.Result, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok {
		return pricing.Result{}, false, nil
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, fingerprint)
		c.mu.Unlock()
		return pricing.Result{}, false, nil
	}
	if e.version != version {
		log.Printf("FATAL-CACHE: fingerprint %s stored under version %d, requested %d", fingerprint, e.version, version)
		c.mu.Lock()
		delete(c.entries, fingerprint)
		c.mu.Unlock()
		return pricing.Result{}, false, fmt.Errorf("%w: stored %d, requested %d", pricing.ErrCacheInconsistency, e.version, version)
	}
	return e.result, true, nil
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
