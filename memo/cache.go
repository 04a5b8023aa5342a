package memo

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Key is a cache key that can also name its singleflight call.
type Key interface {
	comparable
	String() string
}

type Stats struct {
	Name         string
	Hits         uint64
	Misses       uint64
	Computations uint64 // values actually derived from raw data
	Evictions    uint64
	Entries      int
}

type evictionCounter interface {
	Evictions() uint64
}

// Cache memoizes deterministic computations. Concurrent misses on one key
// run the computation once and share its result.
type Cache[K Key, V any] struct {
	name  string
	store Store[K, V]
	group singleflight.Group

	hits         atomic.Uint64
	misses       atomic.Uint64
	computations atomic.Uint64
}

func New[K Key, V any](name string, store Store[K, V]) *Cache[K, V] {
	if store == nil {
		store = NewMapStore[K, V]()
	}
	return &Cache[K, V]{
		name:  name,
		store: store,
	}
}

func NewLRU[K Key, V any](name string, size int) (*Cache[K, V], error) {
	store, err := NewLRUStore[K, V](size)
	if err != nil {
		return nil, err
	}
	return New[K, V](name, store), nil
}

func (c *Cache[K, V]) Name() string {
	return c.name
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCompute returns the cached value for key, running compute on a miss.
// Failed computations are not cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key.String(), c.flight(key, compute))
	if err != nil {
		var zero V
		return zero, errors.Wrapf(err, "compute %s entry", c.name)
	}
	return res.(V), nil
}

// GetOrComputeContext is GetOrCompute for cancelable computations. The
// caller stops waiting when its own ctx is done. A caller that joined a
// computation canceled by another caller's context computes again under
// its own ctx.
func (c *Cache[K, V]) GetOrComputeContext(ctx context.Context, key K,
	compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, errors.Wrapf(err, "get %s entry", c.name)
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	for {
		ch := c.group.DoChan(key.String(), c.flight(key, func() (V, error) {
			return compute(ctx)
		}))

		select {
		case <-ctx.Done():
			return zero, errors.Wrapf(ctx.Err(), "wait %s entry", c.name)
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(V), nil
			}
			if isContextError(res.Err) && ctx.Err() == nil {
				continue
			}
			return zero, errors.Wrapf(res.Err, "compute %s entry", c.name)
		}
	}
}

func (c *Cache[K, V]) flight(key K, compute func() (V, error)) func() (interface{}, error) {
	return func() (interface{}, error) {
		// another caller may have stored it between our miss and this call
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.computations.Add(1)
		c.store.Add(key, v)
		return v, nil
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *Cache[K, V]) Len() int {
	return c.store.Len()
}

// Reset drops every entry, counters are kept.
func (c *Cache[K, V]) Reset() {
	c.store.Purge()
}

func (c *Cache[K, V]) Stats() Stats {
	stats := Stats{
		Name:         c.name,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Computations: c.computations.Load(),
		Entries:      c.store.Len(),
	}
	if counter, ok := c.store.(evictionCounter); ok {
		stats.Evictions = counter.Evictions()
	}
	return stats
}
