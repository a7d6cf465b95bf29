package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/your-org/partsboard/internal/observability"
)

type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
}

// Cache holds query results keyed by parameter tuple. Results stay fresh until
// invalidated; there is no time-based expiry.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	epochs   map[Key]uint64
	inflight map[Key]int
	group    singleflight.Group
	now      func() time.Time
}

func New() *Cache {
	return &Cache{
		entries:  make(map[Key]*entry),
		epochs:   make(map[Key]uint64),
		inflight: make(map[Key]int),
		now:      time.Now,
	}
}

// State is what an observer of one query sees.
type State[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	Err       error
	FetchedAt time.Time
}

// Fetch returns cached data for key, or runs fn once for all concurrent callers
// of the same key. Errors are returned to every waiter and are not cached as data.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	resource := key.Resource()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.hasData {
		c.mu.Unlock()
		observability.CacheLookups.WithLabelValues(resource, "hit").Inc()
		return e.data.(T), nil
	}
	epoch := c.epochs[key]
	c.mu.Unlock()

	// The fetch is shared, so one caller going away must not cancel it for the others.
	fetchCtx := context.WithoutCancel(ctx)

	v, err, shared := c.group.Do(string(key), func() (any, error) {
		c.begin(key)
		data, err := fn(fetchCtx)
		c.finish(key, epoch, data, err)
		return data, err
	})

	result := "miss"
	if shared {
		result = "shared"
	}
	observability.CacheLookups.WithLabelValues(resource, result).Inc()

	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Peek returns cached data without fetching.
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.hasData {
		if v, ok := e.data.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// StateOf reports the observable state of one query.
func StateOf[T any](c *Cache, key Key) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State[T]{IsLoading: c.inflight[key] > 0}
	if e, ok := c.entries[key]; ok {
		st.Err = e.err
		st.FetchedAt = e.fetchedAt
		if e.hasData {
			if v, ok := e.data.(T); ok {
				st.Data = v
				st.HasData = true
				st.IsLoading = false
			}
		}
	}
	return st
}

// Invalidate drops every key starting with prefix. In-flight fetches for those keys
// finish for their current waiters but do not repopulate the cache, and the next
// read starts a new request. An empty prefix drops everything.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for k := range c.entries {
		if strings.HasPrefix(string(k), prefix) {
			delete(c.entries, k)
			c.epochs[k]++
			dropped++
			observability.CacheInvalidations.WithLabelValues(k.Resource()).Inc()
		}
	}
	for k := range c.inflight {
		if strings.HasPrefix(string(k), prefix) {
			c.epochs[k]++
			c.group.Forget(string(k))
		}
	}
	return dropped
}

// Len is the number of cached entries, including cached errors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) begin(key Key) {
	c.mu.Lock()
	c.inflight[key]++
	c.mu.Unlock()
}

func (c *Cache) finish(key Key, epoch uint64, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
	if c.epochs[key] != epoch {
		return
	}
	if err != nil {
		c.entries[key] = &entry{err: err, fetchedAt: c.now()}
		return
	}
	c.entries[key] = &entry{data: data, hasData: true, fetchedAt: c.now()}
}
