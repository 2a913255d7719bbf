// Package cache provides a fingerprint-keyed response cache that wraps any
// provider.Adapter: identical canonical requests hit the cache instead of
// the network, with TTL expiry, priority-aware eviction and periodic
// sweeping of stale entries.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/digitallysavvy/go-ai/pkg/provider"
	"github.com/digitallysavvy/go-ai/pkg/provider/types"
)

// Priority influences which entries survive memory-pressure eviction. It is
// an alias for the canonical type so callers storing an entry and callers
// inspecting a CanonicalResponse's priority metadata share one vocabulary.
type Priority = types.CachePriority

const (
	PriorityLow      = types.CachePriorityLow
	PriorityNormal   = types.CachePriorityNormal
	PriorityHigh     = types.CachePriorityHigh
	PriorityCritical = types.CachePriorityCritical
)

// EvictionReason records why an entry left the cache, for Stats.
type EvictionReason string

const (
	EvictedLRU        EvictionReason = "lru"
	EvictedCapacity   EvictionReason = "capacity"
	EvictedExpired    EvictionReason = "expired"
	EvictedInvalidate EvictionReason = "invalidated"
	EvictedPressure   EvictionReason = "memory-pressure"
	EvictedCleared    EvictionReason = "cleared"
)

// EvictionPolicy selects which entry Store evicts when the cache is at
// capacity and a new key needs room.
type EvictionPolicy int

const (
	// EvictionLRU evicts the least-recently-used entry. The default, and
	// the only policy golang-lru's backing store enforces natively.
	EvictionLRU EvictionPolicy = iota
	// EvictionLFU evicts the entry with the lowest AccessCount.
	EvictionLFU
	// EvictionFIFO evicts the entry with the oldest CreatedAt, regardless
	// of how recently or often it was read.
	EvictionFIFO
	// EvictionPriority evicts the lowest-Priority entry first, breaking
	// ties by oldest CreatedAt.
	EvictionPriority
)

// Entry is a single cached response plus its bookkeeping.
type Entry struct {
	Response    *types.CanonicalResponse
	CreatedAt   time.Time
	LastAccess  time.Time
	AccessCount int64
	TTL         time.Duration
	Priority    Priority
}

func (e *Entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.CreatedAt) > e.TTL
}

// Stats reports cumulative cache behavior since construction.
type Stats struct {
	Hits      int64
	Misses    int64
	Stores    int64
	Evictions map[EvictionReason]int64
	StartedAt time.Time
}

// Key is the deterministic fingerprint of a CanonicalRequest: two requests
// that are semantically equal produce the same key across processes. It is
// an alias for the canonical fingerprint type in pkg/provider/types, so the
// cache and anything else that needs to address a request agree on one hash.
type Key = types.CacheKey

// Fingerprint derives req's Key. It defers entirely to
// types.NewCacheKey, which normalizes message content and settings into an
// order-independent projection before hashing.
func Fingerprint(req types.CanonicalRequest) Key {
	return types.NewCacheKey(req)
}

// Cache is a single-writer response store keyed by request fingerprint.
// All mutating operations take the lock; reads and writes never interleave
// inconsistently with one another.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache[Key, *Entry]
	policy   EvictionPolicy
	capacity int
	stats    Stats
	sweepCh  chan struct{}
	stopOnce sync.Once
}

// Config controls cache capacity, capacity-eviction policy, and sweep
// cadence.
type Config struct {
	// MaxEntries bounds the number of cached responses. Required.
	MaxEntries int
	// EvictionPolicy selects how Store picks a victim when the cache is
	// full. Zero value is EvictionLRU.
	EvictionPolicy EvictionPolicy
	// SweepInterval is how often expired entries are purged in the
	// background. Zero disables the background sweep.
	SweepInterval time.Duration
}

// New creates a Cache and, if cfg.SweepInterval > 0, starts its background
// sweep goroutine. Call Close to stop the sweep goroutine.
func New(cfg Config) *Cache {
	backing, _ := lru.New[Key, *Entry](cfg.MaxEntries)
	c := &Cache{
		lru:      backing,
		policy:   cfg.EvictionPolicy,
		capacity: cfg.MaxEntries,
		stats: Stats{
			Evictions: make(map[EvictionReason]int64),
			StartedAt: time.Now(),
		},
	}
	if cfg.SweepInterval > 0 {
		c.sweepCh = make(chan struct{})
		go c.sweepLoop(cfg.SweepInterval)
	}
	return c
}

// Get returns a clone of the cached response for req, if present, fresh,
// and not expired under ttlOverride (when non-zero, it replaces the
// entry's own TTL for this check only).
func (c *Cache) Get(req types.CanonicalRequest, ttlOverride time.Duration) (*types.CanonicalResponse, bool) {
	key := Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	ttl := entry.TTL
	if ttlOverride > 0 {
		ttl = ttlOverride
	}
	if ttl > 0 && time.Since(entry.CreatedAt) > ttl {
		c.lru.Remove(key)
		c.stats.Evictions[EvictedExpired]++
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.stats.Hits++
	return cloneResponse(entry.Response), true
}

// Store saves resp under req's fingerprint with the given ttl and priority.
// A zero ttl means the entry never expires on its own (still subject to
// capacity eviction).
func (c *Cache) Store(req types.CanonicalRequest, resp *types.CanonicalResponse, ttl time.Duration, priority Priority) {
	key := Fingerprint(req)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.policy == EvictionLRU {
		evicted := c.lru.Add(key, &Entry{
			Response:   cloneResponse(resp),
			CreatedAt:  now,
			LastAccess: now,
			TTL:        ttl,
			Priority:   priority,
		})
		if evicted {
			c.stats.Evictions[EvictedLRU]++
		}
	} else {
		c.evictForCapacityLocked(key)
		c.lru.Add(key, &Entry{
			Response:   cloneResponse(resp),
			CreatedAt:  now,
			LastAccess: now,
			TTL:        ttl,
			Priority:   priority,
		})
	}
	c.stats.Stores++
}

// evictForCapacityLocked removes one entry, chosen per c.policy, if the
// cache is full and incoming is a new key. Must be called with c.mu held,
// and only for non-LRU policies: golang-lru already enforces LRU eviction
// on Add.
func (c *Cache) evictForCapacityLocked(incoming Key) {
	if c.capacity <= 0 || c.lru.Contains(incoming) || c.lru.Len() < c.capacity {
		return
	}
	victim, ok := c.selectVictimLocked()
	if !ok {
		return
	}
	c.lru.Remove(victim)
	c.stats.Evictions[EvictedCapacity]++
}

// selectVictimLocked picks the entry c.policy would evict next. Must be
// called with c.mu held.
func (c *Cache) selectVictimLocked() (Key, bool) {
	var (
		victim       Key
		found        bool
		bestAccesses int64
		bestCreated  time.Time
		bestRank     int
	)

	for _, key := range c.lru.Keys() {
		entry, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		switch c.policy {
		case EvictionLFU:
			if !found || entry.AccessCount < bestAccesses {
				victim, bestAccesses, found = key, entry.AccessCount, true
			}
		case EvictionFIFO:
			if !found || entry.CreatedAt.Before(bestCreated) {
				victim, bestCreated, found = key, entry.CreatedAt, true
			}
		case EvictionPriority:
			rank := priorityRank(entry.Priority)
			if !found || rank < bestRank || (rank == bestRank && entry.CreatedAt.Before(bestCreated)) {
				victim, bestRank, bestCreated, found = key, rank, entry.CreatedAt, true
			}
		}
	}
	return victim, found
}

// priorityRank orders priorities low-to-high so EvictionPriority can pick
// the smallest rank as its victim.
func priorityRank(p Priority) int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityNormal:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return 1
	}
}

// InvalidatePredicate removes every entry whose cached response satisfies
// pred. Since the cache only stores fingerprints, pred is evaluated against
// each entry's cached response rather than the original request.
func (c *Cache) InvalidatePredicate(pred func(*types.CanonicalResponse) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for _, key := range c.lru.Keys() {
		entry, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if pred(entry.Response) {
			c.lru.Remove(key)
			c.stats.Evictions[EvictedInvalidate]++
			removed++
		}
	}
	return removed
}

// InvalidateByModel removes every entry whose response came from modelString.
func (c *Cache) InvalidateByModel(modelString string) int {
	return c.InvalidatePredicate(func(r *types.CanonicalResponse) bool {
		return r.ModelString == modelString
	})
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.lru.Len()
	c.lru.Purge()
	c.stats.Evictions[EvictedCleared] += int64(n)
}

// Prewarm seeds the cache with a known request/response pair, as if it had
// been fetched normally. Useful for warming frequently-asked prompts at
// startup.
func (c *Cache) Prewarm(req types.CanonicalRequest, resp *types.CanonicalResponse, ttl time.Duration, priority Priority) {
	c.Store(req, resp, ttl, priority)
}

// ReclaimMode selects how HandleMemoryPressure sheds entries.
type ReclaimMode int

const (
	ReclaimAll ReclaimMode = iota
	ReclaimHalf
	ReclaimLowPriority
	ReclaimAdaptive
)

// HandleMemoryPressure sheds cache entries according to mode, in response
// to an externally signaled memory-pressure event (the cache itself does
// not monitor process memory).
func (c *Cache) HandleMemoryPressure(mode ReclaimMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case ReclaimAll:
		n := c.lru.Len()
		c.lru.Purge()
		c.stats.Evictions[EvictedPressure] += int64(n)
	case ReclaimHalf:
		c.evictFraction(0.5)
	case ReclaimAdaptive:
		c.evictFraction(0.3)
	case ReclaimLowPriority:
		for _, key := range c.lru.Keys() {
			entry, ok := c.lru.Peek(key)
			if ok && entry.Priority == PriorityLow {
				c.lru.Remove(key)
				c.stats.Evictions[EvictedPressure]++
			}
		}
	}
}

// evictFraction removes the oldest (by LRU order) fraction of entries.
// Must be called with c.mu held.
func (c *Cache) evictFraction(fraction float64) {
	keys := c.lru.Keys() // oldest first
	n := int(float64(len(keys)) * fraction)
	for _, key := range keys[:n] {
		c.lru.Remove(key)
		c.stats.Evictions[EvictedPressure]++
	}
}

// Stats returns a snapshot of cumulative cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := make(map[EvictionReason]int64, len(c.stats.Evictions))
	for k, v := range c.stats.Evictions {
		evictions[k] = v
	}
	return Stats{
		Hits:      c.stats.Hits,
		Misses:    c.stats.Misses,
		Stores:    c.stats.Stores,
		Evictions: evictions,
		StartedAt: c.stats.StartedAt,
	}
}

// Close stops the background sweep goroutine, if one was started.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		if c.sweepCh != nil {
			close(c.sweepCh)
		}
	})
}

func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.sweepCh:
			return
		}
	}
}

func (c *Cache) sweepExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.lru.Keys() {
		entry, ok := c.lru.Peek(key)
		if ok && entry.expired(now) {
			c.lru.Remove(key)
			c.stats.Evictions[EvictedExpired]++
		}
	}
}

func cloneResponse(resp *types.CanonicalResponse) *types.CanonicalResponse {
	if resp == nil {
		return nil
	}
	clone := *resp
	clone.Parts = append([]types.ContentPart(nil), resp.Parts...)
	if resp.Usage != nil {
		usage := *resp.Usage
		clone.Usage = &usage
	}
	return &clone
}

// Wrap decorates an adapter's Generate with cache lookups, storing fresh
// responses with ttl and priority. Stream is passed through unmodified:
// streaming responses are not cached (spec: cache applies to the unary
// path only).
type Wrap struct {
	Adapter  provider.Adapter
	Cache    *Cache
	TTL      time.Duration
	Priority Priority
}

var _ provider.Adapter = (*Wrap)(nil)

func (w *Wrap) Name() string { return w.Adapter.Name() }

func (w *Wrap) Capabilities(modelName string) types.CapabilityTable {
	return w.Adapter.Capabilities(modelName)
}

func (w *Wrap) Generate(ctx context.Context, req types.CanonicalRequest) (*types.CanonicalResponse, error) {
	if resp, ok := w.Cache.Get(req, 0); ok {
		return resp, nil
	}
	resp, err := w.Adapter.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	ttl := w.TTL
	if len(req.Tools) > 0 && ttl > 0 {
		ttl /= 4 // tool-bearing responses go stale faster: the tool's own state may have changed
	}
	w.Cache.Store(req, resp, ttl, w.Priority)
	return resp, nil
}

func (w *Wrap) Stream(ctx context.Context, req types.CanonicalRequest) (<-chan types.StreamDelta, error) {
	return w.Adapter.Stream(ctx, req)
}
