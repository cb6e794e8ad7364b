package cache

import (
	"testing"
	"time"
)

func TestLRU_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	c := NewLRU[int](10, time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestLRU_SetIfAbsent(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	c := NewLRU[string](10, time.Minute)
	c.SetClock(func() time.Time { return now })

	if !c.SetIfAbsent("k", "first") {
		t.Fatal("first SetIfAbsent should store")
	}
	if c.SetIfAbsent("k", "second") {
		t.Fatal("second SetIfAbsent should not store")
	}
	if v, _ := c.Get("k"); v != "first" {
		t.Fatalf("Get(k) = %q, want first", v)
	}

	now = now.Add(time.Hour)
	if !c.SetIfAbsent("k", "third") {
		t.Fatal("SetIfAbsent should store over an expired entry")
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestLRU_CleanExpired(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	c := NewLRU[int](10, time.Hour)
	c.SetClock(func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(30 * time.Minute)
	c.Set("new", 2)
	now = now.Add(45 * time.Minute)

	if got := c.CleanExpired(); got != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", got)
	}
	if got := c.CleanExpired(); got != 0 {
		t.Fatalf("second CleanExpired() = %d, want 0", got)
	}
	c.Delete("new")
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}
