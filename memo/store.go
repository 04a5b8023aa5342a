package memo

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
)

// Store is the key value storage behind a Cache. Implementations must be
// safe for concurrent use.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Len() int
	Purge()
}

// MapStore keeps every entry until Purge.
type MapStore[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewMapStore[K comparable, V any]() *MapStore[K, V] {
	return &MapStore[K, V]{
		items: map[K]V{},
	}
}

func (s *MapStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MapStore[K, V]) Add(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func (s *MapStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MapStore[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[K]V{}
}

// LRUStore bounds the number of entries, dropping the least recently used.
type LRUStore[K comparable, V any] struct {
	cache     *lru.Cache[K, V]
	evictions atomic.Uint64
}

func NewLRUStore[K comparable, V any](size int) (*LRUStore[K, V], error) {
	if size <= 0 {
		return nil, errors.Wrapf(common.ErrorInvalidParameter, "lru size %d", size)
	}
	s := &LRUStore[K, V]{}
	cache, err := lru.NewWithEvict[K, V](size, func(K, V) {
		s.evictions.Add(1)
	})
	if err != nil {
		return nil, errors.Wrap(err, "new lru")
	}
	s.cache = cache
	return s, nil
}

func (s *LRUStore[K, V]) Get(key K) (V, bool) {
	return s.cache.Get(key)
}

func (s *LRUStore[K, V]) Add(key K, value V) {
	s.cache.Add(key, value)
}

func (s *LRUStore[K, V]) Len() int {
	return s.cache.Len()
}

func (s *LRUStore[K, V]) Purge() {
	s.cache.Purge()
}

// Evictions counts entries dropped for capacity or by Purge.
func (s *LRUStore[K, V]) Evictions() uint64 {
	return s.evictions.Load()
}
