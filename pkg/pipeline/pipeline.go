// Package pipeline exports compositions with artifact caching.
//
// Both the CLI and the HTTP API export through a [Runner] so the two agree
// on defaults, validation and cache keys.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Export(ctx, store.State(), pipeline.Options{
//	    Formats:     []string{pipeline.FormatJSON, pipeline.FormatHTML},
//	    ClassPrefix: "hero-card",
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifacts[pipeline.FormatHTML])
//
// # Caching
//
// Artifacts are keyed by the hash of the exported parts of the state plus
// the options that change the output. Asset refs and the selection are not
// part of the key, so exporting the same document twice hits the cache even
// though its images were loaded under fresh refs.
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/render/sink"
)

// Format names.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// DefaultFormats are exported when none are requested.
var DefaultFormats = []string{FormatJSON, FormatHTML}

// DefaultArtifactTTL is how long cached artifacts live.
const DefaultArtifactTTL = 7 * 24 * time.Hour

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatHTML: true,
}

// Options configures an export. It supports JSON for API requests.
type Options struct {
	Formats     []string `json:"formats,omitempty"`
	ClassPrefix string   `json:"class_prefix,omitempty"`
	MinHeight   int      `json:"min_height,omitempty"`
	Indent      *string  `json:"indent,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result holds the artifacts of an export.
type Result struct {
	// Artifacts maps format to bytes.
	Artifacts map[string][]byte

	// StateHash identifies the exported state.
	StateHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describes an export run.
type Stats struct {
	LayerCount int
	RenderTime time.Duration
}

// CacheInfo reports which formats came from the cache.
type CacheInfo struct {
	Hits []string
	// RenderHit is true when every format came from the cache.
	RenderHit bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, html)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, dropping blanks and
// duplicates.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ValidateAndSetDefaults fills defaults and validates the options.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.ClassPrefix == "" {
		o.ClassPrefix = sink.DefaultClassPrefix
	}
	if err := errors.ValidateClassPrefix(o.ClassPrefix); err != nil {
		return err
	}
	if o.MinHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min_height must not be negative, got %d", o.MinHeight)
	}
	if o.MinHeight == 0 {
		o.MinHeight = sink.DefaultMinHeight
	}
	return nil
}

func (o *Options) indent() string {
	if o.Indent == nil {
		return sink.DefaultJSONIndent
	}
	return *o.Indent
}

// ArtifactKeyOpts returns the cache key options for one format. Only the
// options that affect that format are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatJSON:
		k.Indent = o.indent()
	case FormatHTML:
		k.ClassPrefix = o.ClassPrefix
		k.MinHeight = o.MinHeight
	}
	return k
}

func (o *Options) render(format string, st composition.State) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sink.RenderJSON(st, sink.WithJSONIndent(o.indent()))
	case FormatHTML:
		return sink.RenderHTML(st, sink.WithClassPrefix(o.ClassPrefix), sink.WithMinHeight(o.MinHeight)), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
