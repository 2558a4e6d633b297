// Package cache is a three-tier in-process LRU used to absorb latency
// from external data fetches. L1 is the smallest and longest-lived tier;
// a hit in a lower tier promotes the entry one tier up.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type Tier int

const (
	L1 Tier = iota
	L2
	L3

	numTiers = 3
)

func (t Tier) String() string {
	switch t {
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return "L3"
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TierPolicy decides, from the measured upstream latency of a miss, which
// tier a write-through lands in and how to scale that tier's default TTL.
type TierPolicy func(latency time.Duration) (Tier, float64)

// DefaultTierPolicy keeps the slowest upstreams hottest: calls of 1s and
// up go to L1 with doubled TTL, 500ms and up to L2, the rest to L3 with
// halved TTL.
func DefaultTierPolicy(latency time.Duration) (Tier, float64) {
	switch {
	case latency >= time.Second:
		return L1, 2
	case latency >= 500*time.Millisecond:
		return L2, 1
	default:
		return L3, 0.5
	}
}

type Options struct {
	Capacities [numTiers]int
	TTLs       [numTiers]time.Duration
	Policy     TierPolicy
}

func DefaultOptions() Options {
	return Options{
		Capacities: [numTiers]int{50, 200, 500},
		TTLs:       [numTiers]time.Duration{30 * time.Minute, 10 * time.Minute, 5 * time.Minute},
		Policy:     DefaultTierPolicy,
	}
}

type Stats struct {
	Hits    [numTiers]uint64
	Misses  uint64
	HitRate float64
}

// Cache is safe for concurrent use; a single mutex covers all tiers,
// which is fine at this scale.
type Cache struct {
	mu     sync.Mutex
	tiers  [numTiers]*simplelru.LRU[string, entry]
	ttls   [numTiers]time.Duration
	hits   [numTiers]uint64
	misses uint64
	policy TierPolicy

	now func() time.Time
}

func New(opts Options) *Cache {
	c := &Cache{ttls: opts.TTLs, policy: opts.Policy, now: time.Now}
	if c.policy == nil {
		c.policy = DefaultTierPolicy
	}
	for i := range c.tiers {
		cap := opts.Capacities[i]
		if cap <= 0 {
			cap = DefaultOptions().Capacities[i]
		}
		// NewLRU only errors on a non-positive size.
		lru, err := simplelru.NewLRU[string, entry](cap, nil)
		if err != nil {
			panic(err)
		}
		c.tiers[i] = lru
	}
	return c
}

// Get checks L1, then L2, then L3. A hit below L1 promotes the entry to
// the next tier up with a fresh recency position. Expired entries never
// satisfy a Get; they are dropped and counted as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for t := L1; t <= L3; t++ {
		e, ok := c.tiers[t].Get(key)
		if !ok {
			continue
		}
		if now.After(e.expiresAt) {
			c.tiers[t].Remove(key)
			continue
		}
		c.hits[t]++
		if t > L1 {
			c.tiers[t].Remove(key)
			c.tiers[t-1].Add(key, e)
		}
		return e.value, true
	}
	c.misses++
	return nil, false
}

// Set inserts into the requested tier, evicting that tier's LRU entry
// when it is at capacity. A ttl of zero uses the tier default.
func (c *Cache) Set(key string, value any, tier Tier, ttl time.Duration) {
	if tier < L1 || tier > L3 {
		tier = L3
	}
	if ttl <= 0 {
		ttl = c.ttls[tier]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value, expiresAt: c.now().Add(ttl)}
	for t := L1; t <= L3; t++ {
		if t != tier {
			c.tiers[t].Remove(key)
		}
	}
	c.tiers[tier].Add(key, e)
}

// SetAuto places a write-through value by the tier policy, using the
// measured latency of the upstream call that produced it.
func (c *Cache) SetAuto(key string, value any, latency time.Duration) {
	tier, scale := c.policy(latency)
	if tier < L1 || tier > L3 {
		tier = L3
	}
	ttl := time.Duration(float64(c.ttls[tier]) * scale)
	c.Set(key, value, tier, ttl)
}

// Delete removes the key from every tier.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for t := L1; t <= L3; t++ {
		c.tiers[t].Remove(key)
	}
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits, Misses: c.misses}
	total := c.hits[L1] + c.hits[L2] + c.hits[L3] + c.misses
	if total > 0 {
		s.HitRate = float64(c.hits[L1]+c.hits[L2]+c.hits[L3]) / float64(total)
	}
	return s
}
