package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_SetGet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "alpha")

	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = (%q, %v), want (alpha, true)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestLRUCache_Overwrite(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)

	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("Get(k) = %d, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry should survive eviction")
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestLRUCache_GetRefreshesRecency(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used
	c.Set("c", 3)

	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "alpha")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should not be returned")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "alpha")
	c.Set("b", "beta")
	time.Sleep(20 * time.Millisecond)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", c.Size())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "alpha")
	c.Delete("a")
	c.Delete("missing") // no-op

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestLRUCache_Purge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Purge()

	if c.Size() != 0 {
		t.Errorf("Size() = %d after purge, want 0", c.Size())
	}

	// Cache stays usable after a purge
	c.Set("a", 1)
	if got, ok := c.Get("a"); !ok || got != 1 {
		t.Errorf("Get(a) after purge = (%d, %v), want (1, true)", got, ok)
	}
}
