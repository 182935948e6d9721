// Package cache stores rendered export artifacts.
//
// Exports are pure functions of the composition state and the export
// options, so an artifact can be reused whenever the same state is exported
// again with the same options. The [Keyer] turns those inputs into a key;
// a [Cache] backend stores the bytes.
//
// Backends:
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one file per entry under ~/.cache/cardcomposer/artifacts
//   - [RedisCache]: shared cache for several servers
//
// Keys from a [ScopedKeyer] carry a prefix, which the HTTP API uses to keep
// sessions apart.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey is the key of one export format rendered from the state
	// with the given hash.
	ArtifactKey(stateHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the export options that change the output bytes.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	ClassPrefix string `json:"class_prefix,omitempty"`
	MinHeight   int    `json:"min_height,omitempty"`
	Indent      string `json:"indent,omitempty"`
}

// DefaultKeyer hashes key inputs into "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(stateHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", stateHash, opts)
}

var _ Keyer = DefaultKeyer{}
