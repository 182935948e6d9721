// Package session bundles everything one editing session owns.
//
// A session holds the composition [store.Store], the registry of uploaded
// image bodies, the loader that fills it, and a live preview kept in sync
// with the store. Sessions live in memory and are discarded with the
// process; nothing is persisted.
//
// # Usage
//
//	sess := session.New(session.WithLogger(logger))
//	defer sess.Close()
//
//	img, err := sess.Loader.Load(ctx, "hero.png")
//	if err != nil {
//	    return err
//	}
//	sess.Store.AddLayer(img)
//
//	// The preview tree already reflects the new layer.
//	sess.WritePreview(w)
//
// # Assets
//
// Image sources in the state are opaque "asset:<uuid>" refs. [Session.AssetURL]
// maps them below the path the HTTP API serves assets from. Assets that no
// layer or background references any more are dropped by
// [Session.PruneAssets].
package session

import (
	"io"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/ingest"
	"github.com/matzehuels/cardcomposer/pkg/render/live"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// DefaultAssetPath is where asset refs are served from.
const DefaultAssetPath = "/assets/"

// Session is one in-memory editing session.
type Session struct {
	ID        string
	CreatedAt time.Time

	Store   *store.Store
	Assets  *ingest.Assets
	Loader  *ingest.Loader
	Tree    *live.Tree
	Preview *live.Renderer

	assetPath   string
	logger      *log.Logger
	unsubscribe func()
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger     *log.Logger
	assetPath  string
	loaderOpts []ingest.Option
	storeOpts  []store.Option
}

// WithLogger sets the logger shared by the store, loader and preview.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAssetPath sets the URL path prefix used by AssetURL.
func WithAssetPath(p string) Option {
	return func(o *options) {
		if p != "" {
			o.assetPath = p
		}
	}
}

// WithLoaderOptions passes options through to the image loader.
func WithLoaderOptions(opts ...ingest.Option) Option {
	return func(o *options) { o.loaderOpts = append(o.loaderOpts, opts...) }
}

// WithStoreOptions passes options through to the store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// New creates a session with an empty composition and a preview that
// follows every mutation.
func New(opts ...Option) *Session {
	o := options{logger: log.Default(), assetPath: DefaultAssetPath}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Assets:    ingest.NewAssets(),
		Tree:      live.NewTree(),
		assetPath: o.assetPath,
	}
	s.logger = o.logger.With("session", s.ID[:8])
	s.Store = store.New(append([]store.Option{store.WithLogger(s.logger)}, o.storeOpts...)...)
	s.Loader = ingest.NewLoader(s.Assets, append([]ingest.Option{ingest.WithLogger(s.logger)}, o.loaderOpts...)...)
	s.Preview = live.NewRenderer(s.Tree,
		live.WithLogger(s.logger),
		live.WithBackgroundSource(func(bg composition.Background) string { return s.AssetURL(bg.Image.Src) }),
	)

	s.Preview.Render(s.Store.State())
	s.unsubscribe = s.Store.Subscribe(s.Preview.Listener())
	s.logger.Debug("session started")
	return s
}

// Close detaches the preview from the store and drops all assets.
func (s *Session) Close() {
	s.unsubscribe()
	s.Assets.Retain(func(string) bool { return false })
	s.logger.Debug("session closed", "age", time.Since(s.CreatedAt).Round(time.Millisecond))
}

// Keyer scopes export cache keys to this session.
func (s *Session) Keyer(inner cache.Keyer) cache.Keyer {
	return cache.NewScopedKeyer(inner, "session:"+s.ID+":")
}

// AssetURL returns the URL an image source is served from. Sources that
// are not asset refs are returned unchanged.
func (s *Session) AssetURL(src string) string {
	if !ingest.IsRef(src) {
		return src
	}
	return s.assetPath + url.PathEscape(src)
}

// WritePreview writes the current preview tree as an HTML page with image
// sources pointing at AssetURL.
func (s *Session) WritePreview(w io.Writer) error {
	return s.Tree.WriteHTML(w, func(img composition.Image) string { return s.AssetURL(img.Src) })
}

// PruneAssets drops every asset the current state no longer references
// and returns how many were dropped.
func (s *Session) PruneAssets() int {
	used := referenced(s.Store.State())
	n := s.Assets.Retain(func(ref string) bool { return used[ref] })
	if n > 0 {
		s.logger.Debug("pruned assets", "count", n)
	}
	return n
}

func referenced(st composition.State) map[string]bool {
	used := make(map[string]bool, len(st.Layers)+1)
	for _, l := range st.Layers {
		used[l.Image.Src] = true
	}
	if st.Background.Image.Src != "" {
		used[st.Background.Image.Src] = true
	}
	return used
}
