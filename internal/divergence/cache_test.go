package divergence

import (
	"sync"
	"testing"
)

func TestCache_SetAndGet(t *testing.T) {
	t.Parallel()

	c := NewCache()
	if c.Has("a...b") {
		t.Error("Has() = true on empty cache")
	}

	if !c.Set("a...b", Result{Ahead: 2, Behind: 1}) {
		t.Error("Set() = false for a new key, want true")
	}

	got, ok := c.Get("a...b")
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if got != (Result{Ahead: 2, Behind: 1}) {
		t.Errorf("Get() = %+v, want {Ahead:2 Behind:1}", got)
	}
	if !c.Has("a...b") {
		t.Error("Has() = false after Set")
	}
}

func TestCache_WriteOnce(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.Set("k", Result{Ahead: 1})

	// A second, conflicting write must not change the stored value
	if c.Set("k", Result{Ahead: 99, Behind: 99}) {
		t.Error("Set() = true for an existing key, want false")
	}

	got, _ := c.Get("k")
	if got != (Result{Ahead: 1}) {
		t.Errorf("Get() = %+v, want the first written value", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("shared", Result{Ahead: i})
			c.Has("shared")
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get("shared"); !ok {
		t.Error("Get() ok = false after concurrent writes")
	}
}

func TestCache_Snapshot(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.Set("a...b", Result{Ahead: 1})
	c.Set("a...c", Result{Behind: 2})

	snap := c.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() has %d entries, want 2", len(snap))
	}

	// Mutating the snapshot must not affect the cache
	snap["a...d"] = Result{}
	if c.Len() != 2 {
		t.Errorf("Len() = %d after snapshot mutation, want 2", c.Len())
	}
}
