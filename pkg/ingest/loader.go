package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/httputil"
)

// DefaultConcurrency bounds parallel loads in LoadAll.
const DefaultConcurrency = 4

// Loader reads images from disk or the network, registers their bodies in
// an [Assets] registry and reports their natural size.
type Loader struct {
	assets      *Assets
	fetcher     *httputil.Fetcher
	root        string
	maxBytes    int64
	concurrency int
	logger      *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFetcher sets the fetcher used for http(s) sources.
func WithFetcher(f *httputil.Fetcher) Option { return func(l *Loader) { l.fetcher = f } }

// WithRoot confines file sources to relative paths below dir.
func WithRoot(dir string) Option { return func(l *Loader) { l.root = dir } }

// WithMaxBytes limits the size of a single image.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithConcurrency bounds parallel loads in LoadAll.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader returns a Loader that registers images in assets.
func NewLoader(assets *Assets, opts ...Option) *Loader {
	l := &Loader{
		assets:      assets,
		maxBytes:    httputil.DefaultMaxBytes,
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fetcher == nil {
		l.fetcher = httputil.NewFetcher(httputil.WithMaxBytes(l.maxBytes), httputil.WithLogger(l.logger))
	}
	return l
}

// Assets returns the registry images are stored in.
func (l *Loader) Assets() *Assets { return l.assets }

// Load reads source, a file path or http(s) URL, and returns the image to
// hand to the store. Nothing is registered when decoding fails.
func (l *Loader) Load(ctx context.Context, source string) (composition.Image, error) {
	var (
		data []byte
		err  error
	)
	if errors.IsURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = l.readFile(source)
	}
	if err != nil {
		return composition.Image{}, err
	}
	return l.Put(Filename(source), data)
}

// Put decodes data and registers it under a new ref.
func (l *Loader) Put(filename string, data []byte) (composition.Image, error) {
	if int64(len(data)) > l.maxBytes {
		return composition.Image{}, errors.New(errors.ErrCodeAssetLoad, "%s: image larger than %d bytes", filename, l.maxBytes)
	}
	meta, err := Decode(filename, data)
	if err != nil {
		return composition.Image{}, err
	}
	ref := l.assets.Put(Asset{Filename: filename, ContentType: ContentType(meta.Format), Data: data})
	l.logger.Debug("asset loaded", "file", filename, "format", meta.Format, "size", fmt.Sprintf("%dx%d", meta.Width, meta.Height), "ref", ref)
	return composition.Image{Src: ref, Filename: filename, Width: meta.Width, Height: meta.Height}, nil
}

// PutReader is Put for a stream, reading at most the size limit plus one byte.
func (l *Loader) PutReader(filename string, r io.Reader) (composition.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return composition.Image{}, errors.Wrap(errors.ErrCodeAssetLoad, err, "read %s", filename)
	}
	return l.Put(filename, data)
}

// LoadAll loads every source concurrently. Results keep the order of
// sources; the first failure cancels the rest and is returned.
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([]composition.Image, error) {
	images := make([]composition.Image, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			img, err := l.Load(ctx, src)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// Release drops the assets behind images that never reached the store.
func (l *Loader) Release(images ...composition.Image) {
	for _, img := range images {
		if IsRef(img.Src) {
			l.assets.Delete(img.Src)
		}
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
	}
	return resp.Body, nil
}

func (l *Loader) readFile(source string) ([]byte, error) {
	path := source
	if l.root != "" {
		if err := errors.ValidatePath(source); err != nil {
			return nil, err
		}
		path = filepath.Join(l.root, filepath.FromSlash(source))
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "image not found: %s", source)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "stat %s", source)
	}
	if info.Size() > l.maxBytes {
		return nil, errors.New(errors.ErrCodeAssetLoad, "%s: image larger than %d bytes", source, l.maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetLoad, err, "read %s", source)
	}
	return data, nil
}
