package ingest

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// RefPrefix starts every asset ref.
const RefPrefix = "asset:"

// Asset is a stored image body.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Assets holds decoded image bodies for the lifetime of a session.
// It is safe for concurrent use.
type Assets struct {
	mu    sync.RWMutex
	items map[string]Asset
}

// NewAssets returns an empty registry.
func NewAssets() *Assets {
	return &Assets{items: make(map[string]Asset)}
}

// Put stores a and returns its ref.
func (a *Assets) Put(asset Asset) string {
	ref := RefPrefix + uuid.NewString()
	a.mu.Lock()
	a.items[ref] = asset
	a.mu.Unlock()
	return ref
}

// Get returns the asset stored under ref.
func (a *Assets) Get(ref string) (Asset, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	asset, ok := a.items[ref]
	return asset, ok
}

// Delete drops ref. Unknown refs are ignored.
func (a *Assets) Delete(ref string) {
	a.mu.Lock()
	delete(a.items, ref)
	a.mu.Unlock()
}

// Retain drops every asset whose ref keep rejects and returns how many
// were dropped.
func (a *Assets) Retain(keep func(ref string) bool) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for ref := range a.items {
		if !keep(ref) {
			delete(a.items, ref)
			n++
		}
	}
	return n
}

// Len returns the number of stored assets.
func (a *Assets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// IsRef reports whether src names a registry entry.
func IsRef(src string) bool {
	if !strings.HasPrefix(src, RefPrefix) {
		return false
	}
	return uuid.Validate(strings.TrimPrefix(src, RefPrefix)) == nil
}
