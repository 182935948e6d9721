package config

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/cardcomposer/pkg/cache"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"CARDCOMPOSER_CACHE_DIR", "CARDCOMPOSER_CACHE_TTL", "CARDCOMPOSER_REMOTE_CACHE_TTL",
		"CARDCOMPOSER_REDIS_ADDR", "CARDCOMPOSER_REDIS_PASSWORD", "CARDCOMPOSER_REDIS_DB", "CARDCOMPOSER_LISTEN_ADDR",
		"CARDCOMPOSER_CLASS_PREFIX", "CARDCOMPOSER_FETCH_TIMEOUT", "CARDCOMPOSER_MAX_UPLOAD_BYTES",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Config{
		CacheTTL:       168 * time.Hour,
		RemoteCacheTTL: 24 * time.Hour,
		ListenAddr:     "127.0.0.1:8080",
		ClassPrefix:    "asset-container",
		FetchTimeout:   30 * time.Second,
		MaxUploadBytes: 16 << 20,
	}
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.UseRedis() {
		t.Error("UseRedis() should be false without an address")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CARDCOMPOSER_CACHE_TTL", "2h")
	t.Setenv("CARDCOMPOSER_REDIS_ADDR", "redis:6379")
	t.Setenv("CARDCOMPOSER_REDIS_DB", "3")
	t.Setenv("CARDCOMPOSER_LISTEN_ADDR", ":9000")
	t.Setenv("CARDCOMPOSER_CLASS_PREFIX", "hero-card")
	t.Setenv("CARDCOMPOSER_MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CacheTTL != 2*time.Hour || cfg.RedisDB != 3 || cfg.ListenAddr != ":9000" ||
		cfg.ClassPrefix != "hero-card" || cfg.MaxUploadBytes != 1024 || !cfg.UseRedis() {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "CARDCOMPOSER_FETCH_TIMEOUT", "soon"},
		{"zero timeout", "CARDCOMPOSER_FETCH_TIMEOUT", "0s"},
		{"bad int", "CARDCOMPOSER_REDIS_DB", "one"},
		{"negative db", "CARDCOMPOSER_REDIS_DB", "-1"},
		{"bad prefix", "CARDCOMPOSER_CLASS_PREFIX", "a b"},
		{"zero upload", "CARDCOMPOSER_MAX_UPLOAD_BYTES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	cfg := Config{CacheDir: t.TempDir()}

	c, err := cfg.OpenCache(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("disabled cache = %T, want NullCache", c)
	}

	c, err = cfg.OpenCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok || fc.Dir() != cfg.CacheDir {
		t.Errorf("file cache = %T", c)
	}
}
