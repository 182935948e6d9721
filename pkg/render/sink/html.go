package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
)

// Defaults for exported markup.
const (
	DefaultClassPrefix = "asset-container"
	DefaultMinHeight   = 400
)

const animationGuide = `<!--
ANIMATION SPEEDS:
00 Background: no movement
01 Bottom: 5px up
02 Mid: 10px up
03 Top: 15px up

Example hover effect:
.%[1]s:hover [data-anim-speed="1"] { transform: translateY(-5px); }
.%[1]s:hover [data-anim-speed="2"] { transform: translateY(-10px); }
.%[1]s:hover [data-anim-speed="3"] { transform: translateY(-15px); }
-->`

// HTMLOption configures HTML rendering via [RenderHTML].
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	prefix    string
	minHeight int
}

// WithClassPrefix sets the root class name. Element classes derive from it
// in BEM style, e.g. "<prefix>__layer--<id>".
func WithClassPrefix(prefix string) HTMLOption {
	return func(r *htmlRenderer) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithMinHeight sets the minimum card height in pixels.
func WithMinHeight(px int) HTMLOption {
	return func(r *htmlRenderer) {
		if px > 0 {
			r.minHeight = px
		}
	}
}

// RenderHTML exports the composition as a self-contained HTML fragment with
// an embedded stylesheet. Every layer is emitted, hidden ones included, in
// ascending zIndex order. The output is byte-identical for equal states.
func RenderHTML(st composition.State, opts ...HTMLOption) []byte {
	r := htmlRenderer{prefix: DefaultClassPrefix, minHeight: DefaultMinHeight}
	for _, opt := range opts {
		opt(&r)
	}
	p := html.EscapeString(r.prefix)
	layers := st.StackOrder()

	var buf bytes.Buffer
	buf.WriteString("<!-- Asset Container Component -->\n")
	fmt.Fprintf(&buf, "<div class=\"%s\" style=\"width: %dpx;\">\n", p, st.ContainerWidth)
	buf.WriteString("  <!-- Background -->\n")
	fmt.Fprintf(&buf, "  <div class=\"%s__background\"></div>\n", p)
	buf.WriteString("\n  <!-- Layers -->\n")
	fmt.Fprintf(&buf, "  <div class=\"%s__layers\">\n", p)
	if len(layers) == 0 {
		buf.WriteString("    <!-- Add your image layers here -->\n")
	}
	for _, l := range layers {
		renderLayerMarkup(&buf, p, l)
	}
	buf.WriteString("  </div>\n</div>\n\n")

	buf.WriteString("<style>\n")
	renderBaseCSS(&buf, p, r.minHeight, st.Background)
	for _, l := range layers {
		buf.WriteString("\n")
		renderLayerCSS(&buf, p, l)
	}
	buf.WriteString("</style>\n\n")

	fmt.Fprintf(&buf, animationGuide, p)
	return buf.Bytes()
}

func renderLayerMarkup(buf *bytes.Buffer, p string, l composition.Layer) {
	id := html.EscapeString(l.ID)
	fmt.Fprintf(buf, "    <div class=\"%s__layer %s__layer--%s\" data-anim-speed=\"%d\">\n", p, p, id, l.AnimSpeed)
	fmt.Fprintf(buf, "      <img src=\"%s\" alt=\"\">\n", html.EscapeString(l.Image.Filename))
	buf.WriteString("    </div>\n")
}

func renderBaseCSS(buf *bytes.Buffer, p string, minHeight int, bg composition.Background) {
	background := layout.Style{
		{Property: "position", Value: "absolute"},
		{Property: "inset", Value: "0"},
		{Property: "z-index", Value: "0"},
	}
	background = append(background, layout.ResolveBackground(bg, layout.FilenameSource)...)

	fmt.Fprintf(buf, `.%[1]s {
  position: relative;
  overflow: hidden;
  border-radius: 16px;
  min-height: %[2]dpx;
}

.%[1]s__background {
%[3]s
}

.%[1]s__layers {
  position: relative;
  width: 100%%;
  height: 100%%;
  min-height: %[2]dpx;
}

/* Layer base styles */
.%[1]s__layer {
  position: absolute;
  transition: transform 0.3s ease;
}

.%[1]s__layer img {
  display: block;
  max-width: 100%%;
}
`, p, minHeight, background.CSS("  "))
}

func renderLayerCSS(buf *bytes.Buffer, p string, l composition.Layer) {
	d := layout.Resolve(l)
	selector := fmt.Sprintf(".%s__layer--%s", p, html.EscapeString(l.ID))

	fmt.Fprintf(buf, "%s {\n%s\n}\n", selector, d.Box().CSS("  "))
	if img := d.Image(); len(img) > 0 {
		fmt.Fprintf(buf, "\n%s img {\n%s\n}\n", selector, img.CSS("  "))
	}
}
