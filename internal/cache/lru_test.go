package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheBasicOps(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get on empty cache reported a hit")
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if got, found := c.Get("a"); !found || got != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", got, found)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Set("a", 10)
	if got, _ := c.Get("a"); got != 10 {
		t.Errorf("Get(a) after overwrite = %d, want 10", got)
	}
	if c.Size() != 2 {
		t.Errorf("Size() after overwrite = %d, want 2", c.Size())
	}

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("Get(a) after Delete reported a hit")
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "A")
	c.Set("b", "B")

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", "C")

	if _, found := c.Get("b"); found {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "c"} {
		if _, found := c.Get(key); !found {
			t.Errorf("entry %q was evicted, want kept", key)
		}
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry reported as hit")
	}
	if c.Size() != 0 {
		t.Errorf("Size() after expired Get = %d, want 0", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 99)

	if removed := c.CleanExpired(); removed != 5 {
		t.Errorf("CleanExpired() = %d, want 5", removed)
	}
	if _, found := c.Get("fresh"); !found {
		t.Error("fresh entry removed by CleanExpired")
	}
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	c := NewLRUCache[int](10, 5*time.Millisecond)
	c.Set("a", 1)

	m := NewManager()
	m.Register("test", c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("manager never swept the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked when cleanup was never started")
	}
}
