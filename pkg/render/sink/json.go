package sink

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/cardcomposer/pkg/composition"
)

// DefaultJSONIndent is the indentation of exported JSON.
const DefaultJSONIndent = "  "

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent string
}

// WithJSONIndent sets the indentation string. An empty indent produces
// compact single-line output.
func WithJSONIndent(indent string) JSONOption { return func(r *jsonRenderer) { r.indent = indent } }

type jsonOutput struct {
	Container  jsonContainer  `json:"container"`
	Background jsonBackground `json:"background"`
	Layers     []jsonLayer    `json:"layers"`
}

type jsonContainer struct {
	Width  int    `json:"width"`
	Height string `json:"height"`
}

// jsonBackground carries only the fields of the active type; pointers keep
// an empty src present for image backgrounds without a file.
type jsonBackground struct {
	Type              composition.BackgroundType `json:"type"`
	Color             *string                    `json:"color,omitempty"`
	Gradient          *string                    `json:"gradient,omitempty"`
	GradientStart     *string                    `json:"gradientStart,omitempty"`
	GradientEnd       *string                    `json:"gradientEnd,omitempty"`
	GradientDirection *string                    `json:"gradientDirection,omitempty"`
	Src               *string                    `json:"src,omitempty"`
	Sizing            *composition.Sizing        `json:"sizing,omitempty"`
}

type jsonLayer struct {
	ID                string                `json:"id"`
	Src               string                `json:"src"`
	XAlign            composition.XAlign    `json:"xAlign"`
	XPosition         int                   `json:"xPosition"`
	YAlign            composition.YAlign    `json:"yAlign"`
	YPosition         int                   `json:"yPosition"`
	AspectRatioLocked bool                  `json:"aspectRatioLocked"`
	ZIndex            int                   `json:"zIndex"`
	AnimSpeed         int                   `json:"animSpeed"`
	Width             composition.Dimension `json:"width"`
	Height            composition.Dimension `json:"height"`
}

// RenderJSON exports the composition as a JSON configuration. Layers keep
// list order. The output is byte-identical for equal states.
func RenderJSON(st composition.State, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{indent: DefaultJSONIndent}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Container:  jsonContainer{Width: st.ContainerWidth, Height: "auto"},
		Background: buildJSONBackground(st.Background),
		Layers:     make([]jsonLayer, 0, len(st.Layers)),
	}
	for _, l := range st.Layers {
		out.Layers = append(out.Layers, jsonLayer{
			ID:                l.ID,
			Src:               l.Image.Filename,
			XAlign:            l.XAlign,
			XPosition:         l.XPosition,
			YAlign:            l.YAlign,
			YPosition:         l.YPosition,
			AspectRatioLocked: l.AspectRatioLocked,
			ZIndex:            l.ZIndex,
			AnimSpeed:         l.AnimSpeed,
			Width:             l.Width,
			Height:            l.Height,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func buildJSONBackground(bg composition.Background) jsonBackground {
	out := jsonBackground{Type: bg.Type}
	switch bg.Type {
	case composition.BackgroundColor:
		out.Color = &bg.Color
	case composition.BackgroundGradient:
		gradient := bg.Gradient()
		out.Gradient = &gradient
		out.GradientStart = &bg.GradientStart
		out.GradientEnd = &bg.GradientEnd
		out.GradientDirection = &bg.GradientDirection
	case composition.BackgroundImage, composition.BackgroundTile:
		out.Src = &bg.Image.Filename
		out.Sizing = &bg.Sizing
	}
	return out
}
