package memo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testKey struct {
	id int
}

func (k testKey) String() string {
	return fmt.Sprintf("key-%d", k.id)
}

func TestGetOrCompute(t *testing.T) {
	cache := New[testKey, float64]("test", nil)

	calls := 0
	compute := func() (float64, error) {
		calls++
		return 42, nil
	}

	v, err := cache.GetOrCompute(testKey{1}, compute)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	v, err = cache.GetOrCompute(testKey{1}, compute)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
	assert.Equal(t, 1, calls)

	stats := cache.Stats()
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Computations)
	assert.Equal(t, 1, stats.Entries)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	cache := New[testKey, int]("test", nil)
	failure := errors.New("boom")

	_, err := cache.GetOrCompute(testKey{1}, func() (int, error) { return 0, failure })
	assert.True(t, errors.Is(err, failure))
	assert.Equal(t, 0, cache.Len())

	v, err := cache.GetOrCompute(testKey{1}, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, uint64(1), cache.Stats().Computations)
}

func TestReset(t *testing.T) {
	cache := New[testKey, int]("test", nil)
	_, err := cache.GetOrCompute(testKey{1}, func() (int, error) { return 1, nil })
	require.NoError(t, err)

	cache.Reset()
	assert.Equal(t, 0, cache.Len())

	_, ok := cache.Get(testKey{1})
	assert.False(t, ok)
}

func TestConcurrentGetOrCompute(t *testing.T) {
	cache := New[testKey, int]("test", nil)

	var calls atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := testKey{i % 4}
			v, err := cache.GetOrCompute(key, func() (int, error) {
				calls.Add(1)
				return key.id * 10, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, key.id*10, v)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, cache.Len())
	assert.Equal(t, int64(4), calls.Load())
	assert.Equal(t, uint64(4), cache.Stats().Computations)
}

func TestGetOrComputeContextCanceledCallerDoesNotFailOthers(t *testing.T) {
	cache := New[testKey, int]("test", nil)
	key := testKey{1}

	var calls atomic.Int64
	started := make(chan struct{})
	compute := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 7, nil
	}

	canceledCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	canceledErr := make(chan error, 1)
	go func() {
		_, err := cache.GetOrComputeContext(canceledCtx, key, compute)
		canceledErr <- err
	}()
	<-started

	type outcome struct {
		v   int
		err error
	}
	other := make(chan outcome, 1)
	go func() {
		v, err := cache.GetOrComputeContext(context.Background(), key, compute)
		other <- outcome{v, err}
	}()

	require.Eventually(t, func() bool {
		return cache.Stats().Misses == 2
	}, time.Second, time.Millisecond)
	cancel()

	err := <-canceledErr
	assert.True(t, errors.Is(err, context.Canceled))

	res := <-other
	require.NoError(t, res.err)
	assert.Equal(t, 7, res.v)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, uint64(1), cache.Stats().Computations)

	v, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestGetOrComputeContextStopsWaiting(t *testing.T) {
	cache := New[testKey, int]("test", nil)

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := cache.GetOrComputeContext(ctx, testKey{1}, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLRUCache(t *testing.T) {
	cache, err := NewLRU[testKey, int]("lru", 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		i := i
		_, err := cache.GetOrCompute(testKey{i}, func() (int, error) { return i, nil })
		require.NoError(t, err)
	}

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, uint64(1), stats.Evictions)

	_, ok := cache.Get(testKey{0})
	assert.False(t, ok)
	v, ok := cache.Get(testKey{2})
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := NewLRU[testKey, int]("lru", 0)
	assert.Error(t, err)
}
