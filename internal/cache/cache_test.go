package cache

import (
	"sync"
	"testing"
)

func TestGetOrCreate(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() string {
		calls++
		return "v"
	}

	if got := c.GetOrCreate(1, create); got != "v" {
		t.Errorf("GetOrCreate() = %q, want v", got)
	}
	c.GetOrCreate(1, create)
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if v, ok := c.Get(1); !ok || v != "v" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) found a missing key")
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for k := range 4 {
		c.GetOrCreate(k, func() int { return k })
	}
	// Touch 0 so that 1 becomes the oldest.
	c.Get(0)
	c.GetOrCreate(4, func() int { return 4 })

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 after eviction", c.Len())
	}
	if _, ok := c.Get(0); !ok {
		t.Error("recently used key 0 was evicted")
	}
	if _, ok := c.Get(4); !ok {
		t.Error("newest key 4 was evicted")
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest key 1 survived eviction")
	}
}

func TestClear(t *testing.T) {
	c := New[string, int](2)
	c.GetOrCreate("a", func() int { return 1 })
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	c := New[int, *int](0)
	var wg sync.WaitGroup
	results := make([]*int, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.GetOrCreate(7, func() *int { v := 7; return &v })
		}()
	}
	wg.Wait()
	for _, r := range results {
		if r != results[0] {
			t.Fatal("GetOrCreate returned different values for one key")
		}
	}
}
