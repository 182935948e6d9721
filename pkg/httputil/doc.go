// Package httputil fetches remote images for composition documents.
//
// # Overview
//
// Layers and backgrounds may reference images by http(s) URL. This package
// provides the plumbing used by the ingest loader:
//
//   - [Fetcher]: bounded GET with retries and an optional response cache
//   - [Cache]: file-based response caching with a TTL
//   - [Retry]: retry with exponential backoff
//
// # Fetching
//
// [Fetcher.Fetch] retries network failures, 429 and 5xx responses. Any other
// status is returned immediately as an error. Bodies larger than the
// configured limit are rejected:
//
//	f := httputil.NewFetcher(httputil.WithCache(cache), httputil.WithMaxBytes(8<<20))
//	resp, err := f.Fetch(ctx, "https://example.com/hero.png")
//
// # Caching
//
// [Cache] stores responses in the filesystem (~/.cache/cardcomposer/remote/)
// keyed by a SHA-256 of the URL. Re-running an export against the same
// document then does not touch the network.
//
// # Configuration
//
// Defaults:
//
//   - Cache directory: ~/.cache/cardcomposer/remote/
//   - Max attempts: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `cardcomposer cache clear`.
package httputil
