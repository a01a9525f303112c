package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestSetAndGet(t *testing.T) {
	clk := newFakeClock()
	c := New[string, int](time.Minute, 0, clk.Now)

	c.Set("key1", 42)

	value, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get returned ok=false for existing key")
	}
	if value != 42 {
		t.Errorf("Get returned wrong value: got %d, want 42", value)
	}

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("Get returned ok=true for non-existent key")
	}
}

func TestGetExpired(t *testing.T) {
	clk := newFakeClock()
	c := New[string, int](time.Minute, 0, clk.Now)
	c.Set("key1", 42)

	clk.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("entry expired too early")
	}

	clk.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("Get returned ok=true for expired entry")
	}

	stale, ok := c.GetStale("key1")
	if !ok || stale != 42 {
		t.Errorf("GetStale = %d, %v; want 42, true", stale, ok)
	}
}

func TestPerKeyExpiry(t *testing.T) {
	clk := newFakeClock()
	c := New[string, int](time.Minute, 0, clk.Now)

	c.Set("a", 1)
	clk.Advance(40 * time.Second)
	c.Set("b", 2)
	clk.Advance(30 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("b = %d, %v; want 2, true", v, ok)
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string, int](time.Minute, 0, nil)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone after Invalidate")
	}
	if _, ok := c.GetStale("a"); ok {
		t.Error("Invalidate must also drop the stale copy")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive Invalidate(a)")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("Len after InvalidateAll = %d, want 0", c.Len())
	}
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	clk := newFakeClock()
	c := New[int, string](time.Hour, 2, clk.Now)

	c.Set(1, "one")
	clk.Advance(time.Second)
	c.Set(2, "two")
	clk.Advance(time.Second)
	c.Set(3, "three")

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range []int{2, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d should still be cached", k)
		}
	}

	// overwrite existing key does not evict
	c.Set(3, "tiga")
	if c.Len() != 2 {
		t.Errorf("Len after overwrite = %d, want 2", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](time.Minute, 50, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(n*100+j, j)
				c.Get(n*100 + j)
				if j%10 == 0 {
					c.Invalidate(n*100 + j)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d, exceeds bound 50", c.Len())
	}
}

func TestSetIfGenerationSkipsAfterInvalidate(t *testing.T) {
	clk := newFakeClock()
	c := New[string, []string](time.Minute, 0, clk.Now)

	gen := c.Generation()
	// load lama masih jalan, lalu ada write yang invalidate
	c.Invalidate("claims")

	if c.SetIfGeneration("claims", []string{"old"}, gen) {
		t.Fatal("SetIfGeneration stored a result loaded before Invalidate")
	}
	if _, ok := c.GetStale("claims"); ok {
		t.Fatal("old result must not be cached")
	}

	gen = c.Generation()
	if !c.SetIfGeneration("claims", []string{"new"}, gen) {
		t.Fatal("SetIfGeneration refused with current generation")
	}
	if v, ok := c.Get("claims"); !ok || v[0] != "new" {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	gen = c.Generation()
	c.InvalidateAll()
	if c.SetIfGeneration("claims", []string{"stale"}, gen) {
		t.Fatal("InvalidateAll should bump generation too")
	}
}
