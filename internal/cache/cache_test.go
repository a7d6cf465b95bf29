package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_StableAndScoped(t *testing.T) {
	t.Parallel()

	a := NewKey("subparts", ID("modelId", 5), Int("page", 1), Int("limit", 100))
	b := NewKey("subparts", ID("modelId", 5), Int("limit", 100), Int("page", 1))
	assert.Equal(t, a, b, "parameter order must not matter")
	assert.Equal(t, Key("subparts/modelId=5?limit=100&page=1"), a)
	assert.Equal(t, "subparts", a.Resource())

	unscoped := NewKey("inspections", Param{}, Int("page", 1), String("search", ""))
	assert.Equal(t, Key("inspections/?page=1"), unscoped, "empty values are omitted")

	assert.True(t, len(ScopePrefix("subparts", ID("modelId", 5))) < len(string(a)))
	assert.NotContains(t, string(NewKey("subparts", ID("modelId", 55))), ScopePrefix("subparts", ID("modelId", 5)))
}

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	c := New()
	key := NewKey("subparts", ID("modelId", 1), Int("page", 1))
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}
	ctx := context.Background()

	v, err := Fetch(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = Fetch(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "second read is served from cache")
	assert.Equal(t, int32(1), calls.Load())

	dropped := c.Invalidate(ScopePrefix("subparts", ID("modelId", 1)))
	assert.Equal(t, 1, dropped)

	v, err = Fetch(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int32(2), calls.Load(), "exactly one refetch after invalidation")
}

func TestInvalidate_OnlyMatchingPrefix(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()
	keys := []Key{
		NewKey("subparts", ID("modelId", 1), Int("page", 1)),
		NewKey("subparts", ID("modelId", 1), Int("page", 2)),
		NewKey("subparts", ID("modelId", 12), Int("page", 1)),
		NewKey("models", ID("inspectionId", 1), Int("page", 1)),
	}
	for _, k := range keys {
		_, err := Fetch(ctx, c, k, func(context.Context) (string, error) { return string(k), nil })
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Invalidate(ScopePrefix("subparts", ID("modelId", 1))))
	assert.Equal(t, 2, c.Len())

	_, ok := Peek[string](c, keys[2])
	assert.True(t, ok, "modelId=12 must survive invalidation of modelId=1")
	_, ok = Peek[string](c, keys[3])
	assert.True(t, ok)

	assert.Equal(t, 2, c.Invalidate(""))
	assert.Zero(t, c.Len())
}

func TestFetch_SharesInflightRequest(t *testing.T) {
	t.Parallel()

	c := New()
	key := NewKey("inspections", Param{}, Int("page", 1))
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "page-1", nil
	}

	const readers = 5
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, key, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	require.Eventually(t, func() bool {
		return StateOf[string](c, key).IsLoading
	}, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "page-1", r)
	}
	st := StateOf[string](c, key)
	assert.False(t, st.IsLoading)
	assert.True(t, st.HasData)
}

func TestFetch_ErrorsAreNotCachedAsData(t *testing.T) {
	t.Parallel()

	c := New()
	key := NewKey("customers", Param{}, Int("page", 1))
	boom := errors.New("backend down")
	var calls atomic.Int32

	_, err := Fetch(context.Background(), c, key, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	st := StateOf[int](c, key)
	assert.ErrorIs(t, st.Err, boom)
	assert.False(t, st.HasData)

	v, err := Fetch(context.Background(), c, key, func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(2), calls.Load())
	assert.NoError(t, StateOf[int](c, key).Err)
}

func TestInvalidate_DuringFetchDoesNotRepopulate(t *testing.T) {
	t.Parallel()

	c := New()
	key := NewKey("subparts", ID("modelId", 3), Int("page", 1))
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := Fetch(context.Background(), c, key, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	c.Invalidate(ScopePrefix("subparts", ID("modelId", 3)))
	close(release)
	assert.Equal(t, 1, <-done, "the in-flight waiter still gets its answer")

	_, ok := Peek[int](c, key)
	assert.False(t, ok, "stale answer must not be cached")

	v, err := Fetch(context.Background(), c, key, func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetch_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	t.Parallel()

	c := New()
	key := NewKey("contacts", ID("customerId", 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := Fetch(ctx, c, key, func(ctx context.Context) (string, error) {
		return "ok", ctx.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
