// Package config reads cardcomposer settings from the environment.
//
// Every setting has a CARDCOMPOSER_* variable and a default; command-line
// flags override the environment.
//
//	CARDCOMPOSER_CACHE_DIR         artifact cache directory (default: XDG cache dir)
//	CARDCOMPOSER_CACHE_TTL         artifact lifetime (default: 168h)
//	CARDCOMPOSER_REMOTE_CACHE_TTL  fetched image lifetime (default: 24h)
//	CARDCOMPOSER_REDIS_ADDR        use Redis for artifacts when set
//	CARDCOMPOSER_REDIS_PASSWORD    Redis password
//	CARDCOMPOSER_REDIS_DB          Redis database (default: 0)
//	CARDCOMPOSER_LISTEN_ADDR       serve address (default: 127.0.0.1:8080)
//	CARDCOMPOSER_CLASS_PREFIX      HTML export class prefix (default: asset-container)
//	CARDCOMPOSER_FETCH_TIMEOUT     remote image timeout (default: 30s)
//	CARDCOMPOSER_MAX_UPLOAD_BYTES  largest accepted image (default: 16 MiB)
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/errors"
)

// Config holds the environment settings.
type Config struct {
	CacheDir       string        `env:"CARDCOMPOSER_CACHE_DIR"`
	CacheTTL       time.Duration `env:"CARDCOMPOSER_CACHE_TTL"        envDefault:"168h"`
	RemoteCacheTTL time.Duration `env:"CARDCOMPOSER_REMOTE_CACHE_TTL" envDefault:"24h"`
	RedisAddr      string        `env:"CARDCOMPOSER_REDIS_ADDR"`
	RedisPassword  string        `env:"CARDCOMPOSER_REDIS_PASSWORD"`
	RedisDB        int           `env:"CARDCOMPOSER_REDIS_DB"         envDefault:"0"`
	ListenAddr     string        `env:"CARDCOMPOSER_LISTEN_ADDR"      envDefault:"127.0.0.1:8080"`
	ClassPrefix    string        `env:"CARDCOMPOSER_CLASS_PREFIX"     envDefault:"asset-container"`
	FetchTimeout   time.Duration `env:"CARDCOMPOSER_FETCH_TIMEOUT"    envDefault:"30s"`
	MaxUploadBytes int64         `env:"CARDCOMPOSER_MAX_UPLOAD_BYTES" envDefault:"16777216"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env parsing cannot express.
func (c Config) Validate() error {
	if c.CacheTTL < 0 || c.RemoteCacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache TTLs must not be negative")
	}
	if c.FetchTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "redis db must not be negative, got %d", c.RedisDB)
	}
	return errors.ValidateClassPrefix(c.ClassPrefix)
}

// UseRedis reports whether artifacts go to Redis.
func (c Config) UseRedis() bool { return c.RedisAddr != "" }

// OpenCache returns the artifact cache the settings select: a NullCache
// when disabled, Redis when an address is set, the file cache otherwise.
func (c Config) OpenCache(ctx context.Context, disabled bool) (cache.Cache, error) {
	switch {
	case disabled:
		return cache.NewNullCache(), nil
	case c.UseRedis():
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	default:
		return cache.NewFileCache(c.CacheDir)
	}
}
