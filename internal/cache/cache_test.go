package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", "2b")

	clock.t = clock.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != "2b" {
		t.Errorf("Get(b) = %q, %v; rewrite should refresh expiry", v, ok)
	}

	clock.t = clock.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_Add(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	if !c.Add("k", "first") {
		t.Fatal("first Add should store")
	}
	if c.Add("k", "second") {
		t.Error("second Add should be rejected")
	}
	if v, _ := c.Get("k"); v != "first" {
		t.Errorf("Get(k) = %q, want first", v)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if !c.Add("k", "third") {
		t.Error("Add after expiry should store")
	}
}

func TestManager_Clean(t *testing.T) {
	a, clock := newTestCache(10, time.Minute)
	a.Set("x", "1")
	a.Set("y", "2")
	clock.t = clock.t.Add(2 * time.Minute)

	m := NewManager()
	m.Register("sessions", a)

	got := m.Clean()
	if got["sessions"] != 2 {
		t.Errorf("Clean() = %v, want sessions:2", got)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop()
}
