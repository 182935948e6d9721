// Package live keeps a retained rendering surface in sync with composition
// snapshots.
//
// A [Renderer] owns a persistent mapping from layer id to [Handle]. Each call
// to [Renderer.Render] creates handles for new layers, destroys handles of
// removed ones and updates the rest in place. Layout comes from
// [layout.Resolve] and is applied one declaration at a time through
// [Handle.SetStyle], which is what keeps the preview identical to exported
// CSS.
//
//	tree := live.NewTree()
//	r := live.NewRenderer(tree)
//	st.Subscribe(r.Listener())
//
// [layout.Resolve]: github.com/matzehuels/cardcomposer/pkg/render/layout.Resolve
package live

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// Renderer reconciles a Surface against composition snapshots.
type Renderer struct {
	mu      sync.Mutex
	surface Surface
	handles map[string]Handle
	bgSrc   layout.SourceFunc
	logger  *log.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBackgroundSource sets how the background image is referenced. The
// default uses the image source as is.
func WithBackgroundSource(fn layout.SourceFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.bgSrc = fn
		}
	}
}

// NewRenderer returns a renderer drawing onto s.
func NewRenderer(s Surface, opts ...Option) *Renderer {
	r := &Renderer{
		surface: s,
		handles: make(map[string]Handle),
		bgSrc:   layout.DataSource,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Listener adapts the renderer to a store subscription.
func (r *Renderer) Listener() store.Listener {
	return func(_ store.Event, st composition.State) { r.Render(st) }
}

// Render brings the surface in line with st.
func (r *Renderer) Render(st composition.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.surface.SetContainerWidth(st.ContainerWidth)

	bg := layout.ResolveBackground(st.Background, r.bgSrc)
	if len(bg) == 0 {
		bg = layout.NeutralBackground()
	}
	r.surface.SetBackground(bg)

	live := make(map[string]bool, len(st.Layers))
	for _, l := range st.Layers {
		live[l.ID] = true
	}
	for id, h := range r.handles {
		if !live[id] {
			h.Destroy()
			delete(r.handles, id)
		}
	}

	layers := st.StackOrder()
	order := make([]string, 0, len(layers))
	created := 0
	for _, l := range layers {
		h, ok := r.handles[l.ID]
		if !ok {
			h = r.surface.CreateLayer(l.ID, l.Image)
			r.handles[l.ID] = h
			created++
		}
		apply(h, l, st.Selected == composition.Selection(l.ID))
		order = append(order, l.ID)
	}
	r.surface.Arrange(order)

	r.logger.Debug("preview rendered", "layers", len(order), "created", created)
}

func apply(h Handle, l composition.Layer, selected bool) {
	h.SetImage(l.Image)
	h.SetVisible(l.Visible)
	h.SetSelected(selected)
	h.SetAnimSpeed(l.AnimSpeed)

	d := layout.Resolve(l)
	h.ResetStyle(TargetBox)
	for _, decl := range d.Box() {
		h.SetStyle(TargetBox, decl.Property, decl.Value)
	}
	h.ResetStyle(TargetImage)
	for _, decl := range d.Image() {
		h.SetStyle(TargetImage, decl.Property, decl.Value)
	}
}

// Reset clears the surface and forgets every handle.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface.Clear()
	clear(r.handles)
}

// Len returns the number of live layer handles.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
