package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("empty cache should miss")
	}

	buf := []byte("one")
	if err := c.Set(ctx, "a", buf, 0); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != "one" {
		t.Errorf("Get(a) = %q, %v, %v; want stored copy", data, hit, err)
	}

	// Bounded: a third key evicts the least recently used one.
	_ = c.Set(ctx, "b", []byte("two"), 0)
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("three"), 0)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("a should be deleted")
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get(ctx, "c"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", c.Len())
	}
}

func TestMemoryCachePerEntryTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(0)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "layout", []byte("l"), time.Minute)
	_ = c.Set(ctx, "response", []byte("r"), time.Hour)
	_ = c.Set(ctx, "pinned", []byte("p"), 0)

	now = now.Add(10 * time.Minute)
	for key, want := range map[string]bool{"layout": false, "response": true, "pinned": true} {
		if _, hit, _ := c.Get(ctx, key); hit != want {
			t.Errorf("Get(%q) hit = %v, want %v", key, hit, want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "response:abc", []byte(`{"ok":true}`), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "response:abc")
	if err != nil || !hit || string(data) != `{"ok":true}` {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired file entry should miss")
	}

	if err := c.Delete(ctx, "response:abc"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewMemoryCache(8)

	type payload struct {
		Name string `json:"name"`
	}
	var got payload
	if err := GetJSON(ctx, c, "test", "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON on empty cache = %v, want ErrCacheMiss", err)
	}

	if err := SetJSON(ctx, c, "test", "k", payload{Name: "Ann"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "test", "k", &got); err != nil || got.Name != "Ann" {
		t.Errorf("GetJSON = %+v, %v", got, err)
	}

	// Corrupt entries are dropped and reported as misses.
	_ = c.Set(ctx, "bad", []byte("{not json"), 0)
	if err := GetJSON(ctx, c, "test", "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(corrupt) = %v, want ErrCacheMiss", err)
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	r1 := k.ResponseKey("gemma3", "what is a monad")
	r2 := k.ResponseKey("llama3", "what is a monad")
	if r1 == r2 {
		t.Error("different models should produce different keys")
	}
	if !strings.HasPrefix(r1, "response:") || len(r1) != len("response:")+64 {
		t.Errorf("ResponseKey unexpected: %s", r1)
	}

	if lk := k.LayoutKey("hash123"); lk != "layout:hash123" {
		t.Errorf("LayoutKey unexpected: %s", lk)
	}
	if rk := k.RenderKey("hash123", "twopi"); rk != "render:twopi:hash123" {
		t.Errorf("RenderKey unexpected: %s", rk)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "huh:")

	if key := scoped.LayoutKey("abc"); key != "huh:layout:abc" {
		t.Errorf("ScopedKeyer LayoutKey unexpected: %s", key)
	}
	if key := scoped.ResponseKey("gemma3", "x"); key != "huh:"+inner.ResponseKey("gemma3", "x") {
		t.Errorf("ScopedKeyer ResponseKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.LayoutKey("h"); key != "prefix:layout:h" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
