package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/observability"
)

// DefaultMaxBytes caps the size of a fetched body.
const DefaultMaxBytes = 16 << 20

// ErrTooLarge is returned when a body exceeds the fetcher's size limit.
var ErrTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Response is a fetched body and its content type.
type Response struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Fetcher downloads small remote resources.
type Fetcher struct {
	client   *http.Client
	cache    *Cache
	maxBytes int64
	backoff  Backoff
	logger   *log.Logger
}

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) FetchOption { return func(f *Fetcher) { f.client = c } }

// WithCache stores fetched responses in c. Nil disables caching.
func WithCache(c *Cache) FetchOption { return func(f *Fetcher) { f.cache = c } }

// WithMaxBytes limits the accepted body size.
func WithMaxBytes(n int64) FetchOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, delay time.Duration) FetchOption {
	return func(f *Fetcher) { f.backoff.Attempts, f.backoff.Delay = attempts, delay }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) FetchOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher returns a Fetcher with a 30 second client timeout, three
// attempts and no cache unless configured otherwise.
func NewFetcher(opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		backoff:  DefaultBackoff,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs rawURL, consulting and filling the cache when one is set.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Response, error) {
	if f.cache != nil {
		var cached Response
		ok, err := f.cache.Get(rawURL, &cached)
		switch {
		case ok && err == nil:
			f.logger.Debug("remote cache hit", "url", rawURL)
			return cached, nil
		case err != nil && !errors.Is(err, ErrExpired):
			f.logger.Debug("remote cache read failed", "url", rawURL, "error", err)
		}
	}

	var resp Response
	err := Retry(ctx, f.backoff, func() error {
		r, err := f.get(ctx, rawURL)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return Response{}, err
	}

	if f.cache != nil {
		if err := f.cache.Set(rawURL, resp); err != nil {
			f.logger.Debug("remote cache write failed", "url", rawURL, "error", err)
		}
	}
	return resp, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Response{}, err
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, err
	}
	res, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, &RetryableError{Err: err}
	}
	defer res.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, u.Host, u.Path, res.StatusCode, time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		serr := &StatusError{URL: rawURL, StatusCode: res.StatusCode}
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return Response{}, &RetryableError{Err: serr}
		}
		return Response{}, serr
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes+1))
	if err != nil {
		return Response{}, &RetryableError{Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return Response{}, ErrTooLarge
	}
	return Response{ContentType: res.Header.Get("Content-Type"), Body: body}, nil
}
