package cache

import (
	"testing"
	"time"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	// touch "a" so "b" becomes oldest
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3, 0)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("k", "v", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
}

func TestVectorCacheCopies(t *testing.T) {
	vc := NewVectorCache(NewLRU(4, time.Minute))
	src := []float32{1, 2, 3}
	vc.Set("q", src, 0)
	src[0] = 99

	got, ok := vc.Get("q")
	if !ok {
		t.Fatal("vector missing")
	}
	if got[0] != 1 {
		t.Error("cache shares caller slice")
	}
	got[1] = 42
	again, _ := vc.Get("q")
	if again[1] != 2 {
		t.Error("cache entry mutated through returned slice")
	}
}
