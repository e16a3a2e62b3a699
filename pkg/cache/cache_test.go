package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("graphviz", "svg", "digraph {}")
	k2 := Key("graphviz", "png", "digraph {}")
	if k1 == k2 {
		t.Error("different parts produced the same key")
	}
	if k1 != Key("graphviz", "svg", "digraph {}") {
		t.Error("Key is not deterministic")
	}
	if !strings.HasPrefix(k1, "graphviz:") || len(k1) != len("graphviz:")+64 {
		t.Errorf("key = %q", k1)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs produced the same hash")
	}
	if n := len(Hash([]byte("hello"))); n != 64 {
		t.Errorf("hash length = %d, want 64", n)
	}
}

func newFileCache(t *testing.T) Cache {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCaches(t *testing.T) {
	tests := []struct {
		name string
		new  func(t *testing.T) Cache
	}{
		{"memory", func(*testing.T) Cache { return NewMemoryCache(8) }},
		{"file", newFileCache},
		{"scoped", func(*testing.T) Cache { return Scoped(NewMemoryCache(8), "tenant:") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := tt.new(t)
			defer c.Close()

			if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
				t.Fatalf("empty cache: hit=%v err=%v", hit, err)
			}
			if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			data, hit, err := c.Get(ctx, "k")
			if !hit || err != nil || string(data) != "v1" {
				t.Fatalf("Get = %q %v %v", data, hit, err)
			}

			if err := c.Set(ctx, "k", []byte("v2"), 0); err != nil {
				t.Fatal(err)
			}
			if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
				t.Errorf("overwrite: got %q", data)
			}

			if err := c.Delete(ctx, "k"); err != nil {
				t.Fatal(err)
			}
			if _, hit, _ := c.Get(ctx, "k"); hit {
				t.Error("hit after Delete")
			}
			if err := c.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete missing: %v", err)
			}

			if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
				t.Fatal(err)
			}
			time.Sleep(time.Millisecond)
			if _, hit, _ := c.Get(ctx, "old"); hit {
				t.Error("expired entry returned")
			}
		})
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("NullCache stored data")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	c.Set(ctx, "a", []byte("a"), 0)
	c.Set(ctx, "b", []byte("b"), 0)
	c.Get(ctx, "a")
	c.Set(ctx, "c", []byte("c"), 0)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Errorf("%s evicted", k)
		}
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(16)
	done := make(chan struct{})
	for i := range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := range 100 {
				k := fmt.Sprintf("%d-%d", i, j%20)
				c.Set(ctx, k, []byte(k), 0)
				c.Get(ctx, k)
			}
		}()
	}
	for range 8 {
		<-done
	}
	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds bound", c.Len())
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
	if filepath.Dir(filepath.Dir(path)) != dir {
		t.Errorf("entry %s not fanned out under %s", path, dir)
	}
}

func TestScopedIsolation(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryCache(8)
	a, b := Scoped(shared, "a:"), Scoped(shared, "b:")

	a.Set(ctx, "k", []byte("from a"), 0)
	if _, hit, _ := b.Get(ctx, "k"); hit {
		t.Error("scope b sees scope a's entry")
	}
	if data, hit, _ := shared.Get(ctx, "a:k"); !hit || string(data) != "from a" {
		t.Errorf("backing entry = %q %v", data, hit)
	}
}
