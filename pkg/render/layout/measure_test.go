package layout

import (
	"testing"

	"github.com/matzehuels/cardcomposer/pkg/composition"
)

func TestMeasure(t *testing.T) {
	container := Size{Width: 800, Height: DefaultContainerHeight}

	tests := []struct {
		name string
		edit func(*composition.Layer)
		want Rect
	}{
		{
			name: "centred natural",
			edit: func(l *composition.Layer) {},
			want: Rect{X: 300, Y: 150, W: 200, H: 100},
		},
		{
			name: "centred with margin",
			edit: func(l *composition.Layer) { l.XPosition, l.YPosition = 20, -10 },
			want: Rect{X: 320, Y: 140, W: 200, H: 100},
		},
		{
			name: "left top",
			edit: func(l *composition.Layer) {
				l.XAlign, l.YAlign = composition.AlignLeft, composition.AlignTop
				l.XPosition, l.YPosition = 10, 20
			},
			want: Rect{X: 10, Y: 20, W: 200, H: 100},
		},
		{
			name: "right bottom",
			edit: func(l *composition.Layer) {
				l.XAlign, l.YAlign = composition.AlignRight, composition.AlignBottom
				l.XPosition, l.YPosition = 10, 20
			},
			want: Rect{X: 590, Y: 280, W: 200, H: 100},
		},
		{
			name: "fixed width keeps ratio",
			edit: func(l *composition.Layer) {
				l.XAlign, l.YAlign = composition.AlignLeft, composition.AlignTop
				l.Width = composition.Px(100)
			},
			want: Rect{X: 0, Y: 0, W: 100, H: 50},
		},
		{
			name: "stretch",
			edit: func(l *composition.Layer) {
				l.XAlign, l.YAlign = composition.AlignLeftRight, composition.AlignTopBottom
				l.XPosition, l.YPosition = 50, 25
			},
			want: Rect{X: 50, Y: 25, W: 700, H: 350},
		},
		{
			name: "band",
			edit: func(l *composition.Layer) { l.XAlign, l.YAlign = composition.AlignScaleX, composition.AlignScaleY },
			want: Rect{X: 144, Y: 40, W: 512, H: 256},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := layer(composition.AlignCenterX, composition.AlignCenterY)
			tt.edit(&l)
			if got := Measure(Resolve(l), l, container); got != tt.want {
				t.Errorf("Measure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
