package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/cardcomposer/pkg/composition"
)

func testState() composition.State {
	st := composition.NewState()
	st.ContainerWidth = 640

	a := composition.NewLayer("layer-1", composition.Image{Src: "asset:a", Filename: "back.png", Width: 200, Height: 100}, 2)
	a.XAlign, a.YAlign = composition.AlignLeft, composition.AlignBottom
	a.XPosition, a.YPosition = 12, 8
	a.Width, a.Height = composition.Px(100), composition.Px(50)

	b := composition.NewLayer("layer-2", composition.Image{Src: "asset:b", Filename: "front.png", Width: 80, Height: 80}, 1)
	b.AnimSpeed = 3
	b.Visible = false

	st.Layers = []composition.Layer{a, b}
	st.Selected = "layer-2"
	return st
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testState())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	container := out["container"].(map[string]any)
	if container["width"] != float64(640) || container["height"] != "auto" {
		t.Errorf("container = %v", container)
	}

	layers := out["layers"].([]any)
	if len(layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(layers))
	}
	first := layers[0].(map[string]any)
	if first["id"] != "layer-1" {
		t.Errorf("layers are not in list order: first id = %v", first["id"])
	}
	if first["src"] != "back.png" || first["width"] != float64(100) || first["height"] != float64(50) {
		t.Errorf("first layer = %v", first)
	}
	second := layers[1].(map[string]any)
	if second["width"] != "auto" || second["height"] != "auto" || second["animSpeed"] != float64(3) {
		t.Errorf("second layer = %v", second)
	}
	for _, key := range []string{"visible", "scale", "retina", "selected"} {
		if _, ok := second[key]; ok {
			t.Errorf("layer exports internal field %q", key)
		}
	}
}

func TestRenderJSONKeyOrder(t *testing.T) {
	data, err := RenderJSON(testState())
	if err != nil {
		t.Fatal(err)
	}
	keys := []string{`"id"`, `"src"`, `"xAlign"`, `"xPosition"`, `"yAlign"`, `"yPosition"`,
		`"aspectRatioLocked"`, `"zIndex"`, `"animSpeed"`, `"width"`, `"height"`}
	s := string(data)
	last := -1
	for _, k := range keys {
		i := strings.Index(s[strings.Index(s, `"layers"`):], k)
		if i <= last {
			t.Errorf("key %s out of order", k)
		}
		last = i
	}
	if !strings.HasPrefix(s, "{\n  \"container\": {\n    \"width\": 640,") {
		t.Errorf("unexpected prefix:\n%s", s[:40])
	}
	if strings.HasSuffix(s, "\n") {
		t.Error("output ends with a newline")
	}
}

func TestRenderJSONBackground(t *testing.T) {
	tests := []struct {
		name string
		edit func(*composition.Background)
		want string
	}{
		{
			name: "color",
			edit: func(bg *composition.Background) {},
			want: `{"type":"color","color":"#f5f5f5"}`,
		},
		{
			name: "gradient",
			edit: func(bg *composition.Background) {
				bg.Type = composition.BackgroundGradient
				bg.GradientStart, bg.GradientEnd, bg.GradientDirection = "#111111", "#222222", "to right"
			},
			want: `{"type":"gradient","gradient":"linear-gradient(to right, #111111, #222222)","gradientStart":"#111111","gradientEnd":"#222222","gradientDirection":"to right"}`,
		},
		{
			name: "image",
			edit: func(bg *composition.Background) {
				bg.Type = composition.BackgroundImage
				bg.Sizing = composition.SizingContain
				bg.Image = composition.Image{Src: "asset:x", Filename: "sky.jpg"}
			},
			want: `{"type":"image","src":"sky.jpg","sizing":"contain"}`,
		},
		{
			name: "tile without image",
			edit: func(bg *composition.Background) { bg.Type = composition.BackgroundTile },
			want: `{"type":"tile","src":"","sizing":"fill"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := composition.NewState()
			tt.edit(&st.Background)
			data, err := RenderJSON(st, WithJSONIndent(""))
			if err != nil {
				t.Fatal(err)
			}
			var out struct {
				Background json.RawMessage `json:"background"`
			}
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatal(err)
			}
			if got := string(out.Background); got != tt.want {
				t.Errorf("background = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderJSONGradientRoundTrip(t *testing.T) {
	st := composition.NewState()
	st.Background.Type = composition.BackgroundGradient
	st.Background.GradientStart, st.Background.GradientEnd = "#111111", "#222222"
	before, _ := RenderJSON(st)

	st.Background.Type = composition.BackgroundColor
	st.Background.Type = composition.BackgroundGradient
	after, _ := RenderJSON(st)

	if !bytes.Equal(before, after) {
		t.Errorf("gradient export changed after switching type:\n%s\n%s", before, after)
	}
}

func TestRenderJSONDeterministic(t *testing.T) {
	st := testState()
	a, err := RenderJSON(st)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := RenderJSON(st.Clone())
	if !bytes.Equal(a, b) {
		t.Error("exporting the same snapshot twice differed")
	}
}

func TestRenderJSONNoHTMLEscaping(t *testing.T) {
	st := composition.NewState()
	st.Layers = []composition.Layer{composition.NewLayer("layer-1", composition.Image{Filename: "a&b<c>.png"}, 1)}
	data, err := RenderJSON(st)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"a&b<c>.png"`)) {
		t.Errorf("filename was escaped:\n%s", data)
	}
}
