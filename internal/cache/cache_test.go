// file: internal/cache/cache_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Fatalf("expected v, got %q ok=%v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", 42)
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry")
	}
	if n := c.PurgeExpired(); n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be invalidated")
	}
	v, ok := c.Get("b")
	if !ok || v != "2" {
		t.Fatal("expected b to remain")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.InvalidateAll()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected all invalidated")
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[[]string](time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"mabuhay", "salamat"}, nil
	}

	v, hit, err := c.GetOrLoad("q1", load)
	if err != nil || hit || len(v) != 2 {
		t.Fatalf("first load: v=%v hit=%v err=%v", v, hit, err)
	}
	_, hit, _ = c.GetOrLoad("q1", load)
	if !hit {
		t.Fatal("expected second lookup to hit")
	}
	if calls != 1 {
		t.Fatalf("expected load once, got %d", calls)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	c := New[int](time.Minute)
	boom := errors.New("boom")
	if _, _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Stats().Size != 0 {
		t.Fatal("failed load must not be cached")
	}
}
