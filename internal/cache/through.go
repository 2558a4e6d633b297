package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"
)

// Key builds a deterministic cache key from a call signature. Arguments
// are folded in positional order, so the same call always hashes the
// same.
func Key(name string, args ...any) string {
	h := fnv.New64a()
	fmt.Fprint(h, name)
	for _, a := range args {
		fmt.Fprintf(h, "|%v", a)
	}
	return name + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// Through wraps an upstream call with the cache. On a miss it runs fn,
// times it, and stores the result under the latency-based tier policy.
// Errors are never cached.
func Through[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	start := time.Now()
	t, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.SetAuto(key, t, time.Since(start))
	return t, nil
}
