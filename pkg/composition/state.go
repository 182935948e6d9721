package composition

import (
	"cmp"
	"slices"
)

// Container width bounds in pixels.
const (
	MinContainerWidth     = 300
	MaxContainerWidth     = 1200
	DefaultContainerWidth = 768
)

// Selection is empty (nothing selected), SelectBackground, or a layer id.
type Selection string

const (
	SelectNone       Selection = ""
	SelectBackground Selection = "background"
)

// IsLayer reports whether s refers to a layer id.
func (s Selection) IsLayer() bool { return s != SelectNone && s != SelectBackground }

// State is the complete composition at one point in time.
type State struct {
	Background     Background `json:"background"`
	Layers         []Layer    `json:"layers"`
	Selected       Selection  `json:"selected"`
	ContainerWidth int        `json:"containerWidth"`
}

// NewState returns the initial empty composition.
func NewState() State {
	return State{
		Background:     DefaultBackground(),
		Layers:         []Layer{},
		ContainerWidth: DefaultContainerWidth,
	}
}

// Clone returns a copy sharing no memory with s.
func (s State) Clone() State {
	c := s
	c.Layers = slices.Clone(s.Layers)
	if c.Layers == nil {
		c.Layers = []Layer{}
	}
	return c
}

// Layer returns the layer with the given id.
func (s State) Layer(id string) (Layer, bool) {
	if i := s.Index(id); i >= 0 {
		return s.Layers[i], true
	}
	return Layer{}, false
}

// Index returns the list position of the layer with the given id, or -1.
func (s State) Index(id string) int {
	return slices.IndexFunc(s.Layers, func(l Layer) bool { return l.ID == id })
}

// StackOrder returns the layers sorted by ascending zIndex. Layers sharing a
// zIndex keep their list order, so the later one stacks on top.
func (s State) StackOrder() []Layer {
	out := slices.Clone(s.Layers)
	slices.SortStableFunc(out, func(a, b Layer) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
	return out
}

// ClampContainerWidth limits px to [MinContainerWidth, MaxContainerWidth].
func ClampContainerWidth(px int) int {
	return min(max(px, MinContainerWidth), MaxContainerWidth)
}
