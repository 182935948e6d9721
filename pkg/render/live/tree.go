package live

import (
	"fmt"
	"html"
	"io"
	"slices"
	"sync"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
)

// Tree is an in-memory Surface. It records what a DOM would hold and can
// write itself out as an HTML page with inline styles.
type Tree struct {
	mu         sync.Mutex
	width      int
	background layout.Style
	elements   map[string]*Element
	order      []string
}

// Element is the recorded state of one layer element.
type Element struct {
	ID        string            `json:"id"`
	Image     composition.Image `json:"image"`
	Box       layout.Style      `json:"box"`
	ImgStyle  layout.Style      `json:"img"`
	Visible   bool              `json:"visible"`
	Selected  bool              `json:"selected"`
	AnimSpeed int               `json:"animSpeed"`
}

// View is a point-in-time copy of a Tree.
type View struct {
	ContainerWidth int          `json:"containerWidth"`
	Background     layout.Style `json:"background"`
	Elements       []Element    `json:"elements"`
}

// NewTree returns an empty tree with the neutral background.
func NewTree() *Tree {
	return &Tree{
		width:      composition.DefaultContainerWidth,
		background: layout.NeutralBackground(),
		elements:   make(map[string]*Element),
	}
}

func (t *Tree) SetContainerWidth(px int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width = px
}

func (t *Tree) SetBackground(s layout.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.background = slices.Clone(s)
}

func (t *Tree) CreateLayer(id string, img composition.Image) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elements[id] = &Element{ID: id, Image: img, Visible: true, AnimSpeed: composition.DefaultAnimSpeed}
	t.order = append(t.order, id)
	return &treeHandle{tree: t, id: id}
}

func (t *Tree) Arrange(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = slices.Clone(ids)
}

func (t *Tree) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.elements)
	t.order = nil
	t.background = layout.NeutralBackground()
}

// View returns a copy of the current tree in stacking order.
func (t *Tree) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := View{
		ContainerWidth: t.width,
		Background:     slices.Clone(t.background),
		Elements:       make([]Element, 0, len(t.order)),
	}
	for _, id := range t.order {
		if e, ok := t.elements[id]; ok {
			c := *e
			c.Box = slices.Clone(e.Box)
			c.ImgStyle = slices.Clone(e.ImgStyle)
			v.Elements = append(v.Elements, c)
		}
	}
	return v
}

// Element returns a copy of the element for id.
func (t *Tree) Element(id string) (Element, bool) {
	for _, e := range t.View().Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// WriteHTML writes the tree as a standalone preview page. src maps layer
// images to URLs; nil uses the image source as is.
func (t *Tree) WriteHTML(w io.Writer, src func(composition.Image) string) error {
	if src == nil {
		src = func(img composition.Image) string { return img.Src }
	}
	v := t.View()

	bg := append(layout.Style{
		{Property: "position", Value: "absolute"},
		{Property: "inset", Value: "0"},
		{Property: "z-index", Value: "0"},
	}, v.Background...)

	ew := &errWriter{w: w}
	ew.printf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Preview</title></head>\n<body>\n")
	ew.printf("<div class=\"preview\" style=\"position: relative; overflow: hidden; border-radius: 16px; width: %dpx; min-height: %dpx;\">\n",
		v.ContainerWidth, layout.DefaultContainerHeight)
	ew.printf("  <div class=\"preview__background\" style=\"%s\"></div>\n", html.EscapeString(bg.Inline()))
	for _, e := range v.Elements {
		display := "block"
		if !e.Visible {
			display = "none"
		}
		class := "preview-layer"
		if e.Selected {
			class += " selected"
		}
		box := append(layout.Style{{Property: "position", Value: "absolute"}, {Property: "display", Value: display}}, e.Box...)
		img := append(layout.Style{{Property: "display", Value: "block"}, {Property: "max-width", Value: "100%"}}, e.ImgStyle...)
		ew.printf("  <div class=\"%s\" data-layer-id=\"%s\" data-anim-speed=\"%d\" style=\"%s\">",
			class, html.EscapeString(e.ID), e.AnimSpeed, html.EscapeString(box.Inline()))
		ew.printf("<img src=\"%s\" alt=\"%s\" style=\"%s\"></div>\n",
			html.EscapeString(src(e.Image)), html.EscapeString(e.Image.Filename), html.EscapeString(img.Inline()))
	}
	ew.printf("</div>\n</body>\n</html>\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// treeHandle edits one element of a Tree.
type treeHandle struct {
	tree *Tree
	id   string
}

func (h *treeHandle) edit(fn func(*Element)) {
	h.tree.mu.Lock()
	defer h.tree.mu.Unlock()
	if e, ok := h.tree.elements[h.id]; ok {
		fn(e)
	}
}

func (h *treeHandle) SetImage(img composition.Image) { h.edit(func(e *Element) { e.Image = img }) }
func (h *treeHandle) SetVisible(v bool)              { h.edit(func(e *Element) { e.Visible = v }) }
func (h *treeHandle) SetSelected(s bool)             { h.edit(func(e *Element) { e.Selected = s }) }
func (h *treeHandle) SetAnimSpeed(n int)             { h.edit(func(e *Element) { e.AnimSpeed = n }) }

func (h *treeHandle) SetStyle(target Target, property, value string) {
	h.edit(func(e *Element) {
		s := e.style(target)
		for i := range *s {
			if (*s)[i].Property == property {
				(*s)[i].Value = value
				return
			}
		}
		*s = append(*s, layout.Declaration{Property: property, Value: value})
	})
}

func (h *treeHandle) ResetStyle(target Target) {
	h.edit(func(e *Element) { *e.style(target) = nil })
}

func (h *treeHandle) Destroy() {
	h.tree.mu.Lock()
	defer h.tree.mu.Unlock()
	delete(h.tree.elements, h.id)
	h.tree.order = slices.DeleteFunc(h.tree.order, func(id string) bool { return id == h.id })
}

func (e *Element) style(target Target) *layout.Style {
	if target == TargetImage {
		return &e.ImgStyle
	}
	return &e.Box
}
