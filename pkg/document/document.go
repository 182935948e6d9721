// Package document reads composition documents: TOML files describing a
// container, a background and a stack of image layers.
//
// A document is never written into the store directly. [Document.Apply]
// loads every referenced image first and then replays the document through
// the ordinary store operations, so a document can only produce states the
// interactive editor could have produced.
//
// Example:
//
//	container_width = 600
//
//	[background]
//	type = "gradient"
//	gradient_start = "#0f172a"
//	gradient_end = "#334155"
//
//	[[layers]]
//	image = "images/hero.png"
//	x_align = "center"
//	y_align = "bottom"
//	y_position = 12
//	scale = 2
//
//	[[layers]]
//	image = "https://example.com/badge.webp"
//	x_align = "right"
//	x_position = 16
//	width = 64
//	selected = true
package document

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// Document is a parsed composition document.
type Document struct {
	ContainerWidth *int       `toml:"container_width"`
	Background     Background `toml:"background"`
	Layers         []Layer    `toml:"layers"`

	// Dir resolves relative image paths. Load sets it to the file's
	// directory.
	Dir string `toml:"-"`
}

// Background describes the backdrop. Image is a file path or URL.
type Background struct {
	Type              *composition.BackgroundType `toml:"type"`
	Color             *string                     `toml:"color"`
	GradientStart     *string                     `toml:"gradient_start"`
	GradientEnd       *string                     `toml:"gradient_end"`
	GradientDirection *string                     `toml:"gradient_direction"`
	Image             string                      `toml:"image"`
	Sizing            *composition.Sizing         `toml:"sizing"`
}

// Layer describes one image layer. Image is a file path or URL; unset
// fields keep the defaults of a freshly added layer.
type Layer struct {
	Image             string                   `toml:"image"`
	XAlign            *composition.XAlign      `toml:"x_align"`
	YAlign            *composition.YAlign      `toml:"y_align"`
	XPosition         *int                     `toml:"x_position"`
	YPosition         *int                     `toml:"y_position"`
	Width             *composition.Dimension   `toml:"width"`
	Height            *composition.Dimension   `toml:"height"`
	Scale             *float64                 `toml:"scale"`
	ScaleTarget       *composition.ScaleTarget `toml:"scale_target"`
	Retina            *bool                    `toml:"retina"`
	AspectRatioLocked *bool                    `toml:"aspect_ratio_locked"`
	AnimSpeed         *int                     `toml:"anim_speed"`
	Visible           *bool                    `toml:"visible"`
	Selected          bool                     `toml:"selected"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "document not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", path)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	doc.Dir = filepath.Dir(path)
	return doc, nil
}

// Parse decodes and validates a document. Unknown keys are an error.
func Parse(data string) (*Document, error) {
	var doc Document
	md, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse document")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks every field that the store would otherwise reject.
func (d *Document) Validate() error {
	if err := d.Background.update().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "background")
	}
	if d.Background.Type != nil && d.Background.Image == "" &&
		(*d.Background.Type == composition.BackgroundImage || *d.Background.Type == composition.BackgroundTile) {
		return errors.New(errors.ErrCodeInvalidDocument, "background: type %q needs an image", *d.Background.Type)
	}
	selected := 0
	for i, l := range d.Layers {
		if strings.TrimSpace(l.Image) == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "layers[%d]: image is required", i)
		}
		flags, geometry := l.updates()
		if err := flags.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "layers[%d]", i)
		}
		if err := geometry.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "layers[%d]", i)
		}
		if l.Selected {
			selected++
		}
	}
	if selected > 1 {
		return errors.New(errors.ErrCodeInvalidDocument, "at most one layer can be selected, got %d", selected)
	}
	return nil
}

// Sources returns every image reference in load order: layers first, then
// the background image if any.
func (d *Document) Sources() []string {
	srcs := make([]string, 0, len(d.Layers)+1)
	for _, l := range d.Layers {
		srcs = append(srcs, d.resolve(l.Image))
	}
	if d.Background.Image != "" {
		srcs = append(srcs, d.resolve(d.Background.Image))
	}
	return srcs
}

func (d *Document) resolve(src string) string {
	if errors.IsURL(src) || filepath.IsAbs(src) || d.Dir == "" {
		return src
	}
	return filepath.Join(d.Dir, filepath.FromSlash(src))
}

func (b Background) update() store.BackgroundUpdate {
	return store.BackgroundUpdate{
		Type:              b.Type,
		Color:             b.Color,
		GradientStart:     b.GradientStart,
		GradientEnd:       b.GradientEnd,
		GradientDirection: b.GradientDirection,
		Sizing:            b.Sizing,
	}
}

// updates splits a layer into two updates. The flags go first so that the
// aspect lock and scale target the document asks for govern how the
// geometry is derived.
func (l Layer) updates() (flags, geometry store.LayerUpdate) {
	flags = store.LayerUpdate{
		AspectRatioLocked: l.AspectRatioLocked,
		ScaleTarget:       l.ScaleTarget,
		Retina:            l.Retina,
	}
	geometry = store.LayerUpdate{
		XAlign:    l.XAlign,
		YAlign:    l.YAlign,
		XPosition: l.XPosition,
		YPosition: l.YPosition,
		Width:     l.Width,
		Height:    l.Height,
		Scale:     l.Scale,
		AnimSpeed: l.AnimSpeed,
		Visible:   l.Visible,
	}
	return flags, geometry
}

func isEmpty(u store.LayerUpdate) bool {
	return u == store.LayerUpdate{}
}

// selectedIndex returns the index of the selected layer, or -1.
func (d *Document) selectedIndex() int {
	return slices.IndexFunc(d.Layers, func(l Layer) bool { return l.Selected })
}
