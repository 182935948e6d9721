package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/observability"
)

// Runner exports compositions through an artifact cache.
//
// The Runner keeps no per-export state, so one Runner can serve concurrent
// exports.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// selects the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		TTL:    DefaultArtifactTTL,
		Logger: logger,
	}
}

// WithKeyer returns a copy of r that derives keys with k. The cache is
// shared.
func (r *Runner) WithKeyer(k cache.Keyer) *Runner {
	cp := *r
	cp.Keyer = k
	return &cp
}

// Export renders st in every requested format. Cached artifacts are reused
// unless opts.Refresh is set; freshly rendered ones are written back.
func (r *Runner) Export(ctx context.Context, st composition.State, opts Options) (result *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	hooks := observability.Export()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err) }()

	hash, err := StateHash(st)
	if err != nil {
		return nil, fmt.Errorf("hash state: %w", err)
	}
	result = &Result{
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		StateHash: hash,
		Stats:     Stats{LayerCount: len(st.Layers)},
	}

	cacheHooks := observability.Cache()
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))

		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				logger.Warn("artifact cache read failed", "format", format, "error", err)
			}
			if hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				result.Artifacts[format] = data
				result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}

		renderStart := time.Now()
		data, err := opts.render(format, st)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Stats.RenderTime += time.Since(renderStart)
		result.Artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			logger.Warn("artifact cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	result.CacheInfo.RenderHit = len(result.CacheInfo.Hits) == len(opts.Formats)

	logger.Debug("exported composition",
		"formats", opts.Formats,
		"layers", result.Stats.LayerCount,
		"cached", result.CacheInfo.Hits,
		"duration", time.Since(start))
	return result, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// StateHash hashes the parts of st that exports read. Asset refs and the
// selection are left out.
func StateHash(st composition.State) (string, error) {
	v := st.Clone()
	v.Selected = composition.SelectNone
	v.Background.Image.Src = ""
	for i := range v.Layers {
		v.Layers[i].Image.Src = ""
	}
	return cache.HashJSON(v)
}
