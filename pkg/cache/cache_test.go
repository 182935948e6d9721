package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("roundtrip", func(t *testing.T) {
		if err := c.Set(ctx, "a", []byte(`{"layers":[]}`), time.Hour); err != nil {
			t.Fatal(err)
		}
		data, hit, err := c.Get(ctx, "a")
		if err != nil || !hit || string(data) != `{"layers":[]}` {
			t.Errorf("Get() = %q, %v, %v", data, hit, err)
		}
	})

	t.Run("miss", func(t *testing.T) {
		if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
			t.Errorf("Get(missing) = %v, %v", hit, err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, hit, _ := c.Get(ctx, "short"); hit {
			t.Error("expired entry should miss")
		}
		if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
			t.Error("expired entry should be removed")
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		if err := c.Set(ctx, "bad", []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(c.path("bad"), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
			t.Errorf("Get(corrupt) = %v, %v; want silent miss", hit, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", []byte("x"), 0)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatal(err)
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("second Delete should be a no-op: %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		for _, k := range []string{"c1", "c2", "c3"} {
			_ = c.Set(ctx, k, []byte(k), 0)
		}
		n, err := c.Clear()
		if err != nil {
			t.Fatal(err)
		}
		if n < 3 {
			t.Errorf("Clear() removed %d entries, want at least 3", n)
		}
		if _, hit, _ := c.Get(ctx, "c1"); hit {
			t.Error("entry survived Clear")
		}
	})
}

func TestNewFileCacheDefaultDir(t *testing.T) {
	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CACHE_HOME", "")
		c, err := NewFileCache("")
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(home, ".cache", "cardcomposer", "artifacts"); c.Dir() != want {
			t.Errorf("Dir() = %s, want %s", c.Dir(), want)
		}
	})
	t.Run("xdg", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)
		c, err := NewFileCache("")
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(xdg, "cardcomposer", "artifacts"); c.Dir() != want {
			t.Errorf("Dir() = %s, want %s", c.Dir(), want)
		}
	})
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	type doc struct {
		Width  int               `json:"width"`
		Labels map[string]string `json:"labels"`
	}
	a, err := HashJSON(doc{Width: 300, Labels: map[string]string{"b": "2", "a": "1"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(doc{Width: 300, Labels: map[string]string{"a": "1", "b": "2"}})
	if a != b {
		t.Error("map order should not change the hash")
	}
	c, _ := HashJSON(doc{Width: 301})
	if a == c {
		t.Error("different values should hash differently")
	}
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("unencodable value should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	json := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"})
	html := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "html"})
	prefixed := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "html", ClassPrefix: "card"})
	other := k.ArtifactKey("abd", ArtifactKeyOpts{Format: "json"})

	seen := map[string]bool{}
	for _, key := range []string{json, html, prefixed, other} {
		if !strings.HasPrefix(key, "artifact:") {
			t.Errorf("key %q lacks artifact prefix", key)
		}
		if seen[key] {
			t.Errorf("duplicate key %q", key)
		}
		seen[key] = true
	}
	if json != k.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"}) {
		t.Error("ArtifactKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "session:42:")
	inner := NewDefaultKeyer().ArtifactKey("abc", ArtifactKeyOpts{Format: "json"})
	if got := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"}); got != "session:42:"+inner {
		t.Errorf("ArtifactKey() = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"}); got != "p:"+inner {
		t.Errorf("nil inner ArtifactKey() = %q", got)
	}
}

// TestRedisCache runs against a live server when CARDCOMPOSER_TEST_REDIS
// names one.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CARDCOMPOSER_TEST_REDIS")
	if addr == "" {
		t.Skip("CARDCOMPOSER_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "cardcomposer-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
	if n, err := c.Clear(ctx); err != nil || n < 1 {
		t.Errorf("Clear() = %d, %v", n, err)
	}
}
