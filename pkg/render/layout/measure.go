package layout

import "github.com/matzehuels/cardcomposer/pkg/composition"

// DefaultContainerHeight is the card height assumed when measuring; it
// matches the min-height of exported markup.
const DefaultContainerHeight = 400

// Size is a container size in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an approximate pixel box inside the container.
type Rect struct {
	X, Y, W, H float64
}

// Measure approximates where the image of l lands inside a container of the
// given size. It mirrors how a browser lays out the descriptor closely
// enough for terminal previews; it is not pixel exact.
func Measure(d Descriptor, l composition.Layer, c Size) Rect {
	w, wKnown := measureWidth(d, l, c)
	h, hKnown := measureHeight(d, l, c)

	ratio := l.Image.AspectRatio()
	switch {
	case !wKnown && hKnown && ratio > 0:
		w = h * ratio
	case wKnown && !hKnown && ratio > 0:
		h = w / ratio
	}

	return Rect{
		X: place(d.Left, d.Right, d.CenterX, d.MarginLeft, d.WidthMode == WidthBand, c.Width, w),
		Y: place(d.Top, d.Bottom, d.CenterY, d.MarginTop, false, c.Height, h),
		W: w,
		H: h,
	}
}

func measureWidth(d Descriptor, l composition.Layer, c Size) (float64, bool) {
	switch d.WidthMode {
	case WidthFixed, WidthRetinaHalf:
		return float64(d.Width), true
	case WidthFill:
		return c.Width - d.Left.Resolve(c.Width) - d.Right.Resolve(c.Width), true
	case WidthBand:
		band := c.Width * (100 - 2*BandInsetPercent) / 100
		return band * BandContentPercent / 100, true
	}
	return float64(l.Image.Width), false
}

func measureHeight(d Descriptor, l composition.Layer, c Size) (float64, bool) {
	switch d.HeightMode {
	case HeightFixed, HeightRetinaHalf:
		return float64(d.Height), true
	case HeightFill:
		return c.Height - d.Top.Resolve(c.Height) - d.Bottom.Resolve(c.Height), true
	case HeightAspectFit:
		band := c.Height * (100 - 2*BandInsetPercent) / 100
		return band * BandContentPercent / 100, true
	}
	return float64(l.Image.Height), false
}

// place returns the leading offset of a span of the given extent along one
// axis of length total.
func place(lead, trail Length, centred bool, margin int, band bool, total, extent float64) float64 {
	switch {
	case centred:
		return total/2 - extent/2 + float64(margin)
	case band:
		inset := total * BandInsetPercent / 100
		return inset + (total-2*inset-extent)/2
	case lead.IsSet():
		return lead.Resolve(total)
	case trail.IsSet():
		return total - trail.Resolve(total) - extent
	}
	return 0
}
