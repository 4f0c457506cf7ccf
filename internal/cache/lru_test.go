package cache

import (
	"sync"
	"testing"
)

func TestLRU_GetPut(t *testing.T) {
	c := New[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	if v, ok := c.Get("a"); !ok || v != 10 {
		t.Errorf("Get(a) = %v, %v; want 10, true", v, ok)
	}
	if _, ok := c.Get("z"); ok {
		t.Error("Get(z) found a missing key")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d; want 2", c.Len())
	}
	hits, misses := c.Metrics()
	if hits != 1 || misses != 1 {
		t.Errorf("Metrics() = %d, %d; want 1, 1", hits, misses)
	}
}

func TestLRU_EvictsLeastRecent(t *testing.T) {
	c := New[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")
	c.Put("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestLRU_DeleteClear(t *testing.T) {
	c := New[string, int](0)
	c.Put("a", 1)
	c.Put("b", 2)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d; capacity should clamp to 1", c.Len())
	}
	if !c.Delete("b") || c.Delete("b") {
		t.Error("Delete(b) should succeed once")
	}
	c.Put("c", 3)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[int, int](50)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := range 100 {
				c.Put(base*100+j, j)
				c.Get(j)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("Len() = %d; want <= 50", c.Len())
	}
}
