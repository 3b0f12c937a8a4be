package cache

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	current time.Time
}

func (f *fakeClock) now() time.Time {
	return f.current
}

func (f *fakeClock) advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func newTestCache(capacity int, ttl time.Duration) (*LRUCache, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(capacity, ttl)
	c.now = clock.now
	return c, clock
}

func TestGetReturnsStoredValue(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	c.Set("a", []string{"one", "two"})

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit for live entry")
	}
	values := got.([]string)
	if len(values) != 2 || values[0] != "one" {
		t.Errorf("unexpected value: %v", values)
	}
}

func TestExpiredEntryEvictedOnGet(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("a", 1)
	clock.advance(time.Minute + time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss for expired entry")
	}
	// The expired entry must no longer count toward capacity
	if c.Len() != 0 {
		t.Errorf("expired entry still held, len = %d", c.Len())
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s to survive", key)
		}
	}
}

func TestGetPromotesRecency(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction victim
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted after a was promoted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive after promotion")
	}
}

func TestSetExistingKeyReplacesAndRefreshes(t *testing.T) {
	c, clock := newTestCache(2, time.Minute)

	c.Set("a", 1)
	clock.advance(45 * time.Second)
	c.Set("a", 2) // refreshes TTL from now
	clock.advance(30 * time.Second)

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit, TTL should have been refreshed by Set")
	}
	if got.(int) != 2 {
		t.Errorf("Get = %v, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("replacing a key must not grow the cache, len = %d", c.Len())
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("len after Clear = %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestCleanExpired(t *testing.T) {
	c, clock := newTestCache(8, time.Minute)

	c.Set("old", 1)
	clock.advance(2 * time.Minute)
	c.Set("fresh", 2)

	c.CleanExpired()

	if c.Len() != 1 {
		t.Fatalf("len after CleanExpired = %d, want 1", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry removed by CleanExpired")
	}
}
