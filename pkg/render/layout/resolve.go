package layout

import (
	"strconv"

	"github.com/matzehuels/cardcomposer/pkg/composition"
)

// Band geometry for the "scale" alignment.
const (
	BandInsetPercent   = 10
	BandContentPercent = 80
)

// WidthMode says how the image width is determined.
type WidthMode string

const (
	WidthNatural    WidthMode = "natural"
	WidthFixed      WidthMode = "fixed"
	WidthFill       WidthMode = "fill"
	WidthRetinaHalf WidthMode = "retina-half"
	WidthBand       WidthMode = "band"
)

// HeightMode says how the image height is determined.
type HeightMode string

const (
	HeightNatural    HeightMode = "natural"
	HeightFixed      HeightMode = "fixed"
	HeightFill       HeightMode = "fill"
	HeightRetinaHalf HeightMode = "retina-half"
	HeightAspectFit  HeightMode = "aspect-fit"
)

// ObjectFit is the object-fit applied to the image, if any.
type ObjectFit string

const (
	ObjectFitNone    ObjectFit = ""
	ObjectFitContain ObjectFit = "contain"
	ObjectFitFill    ObjectFit = "fill"
)

// Descriptor is the resolved layout of one layer.
type Descriptor struct {
	Left, Right, Top, Bottom Length

	CenterX, CenterY bool

	// MarginLeft and MarginTop offset a centred axis. They are zero for
	// every other alignment.
	MarginLeft, MarginTop int

	WidthMode  WidthMode
	HeightMode HeightMode

	// Width and Height hold the pixel size for fixed and retina-half modes.
	Width, Height int

	ObjectFit ObjectFit
	ZIndex    int
}

// Resolve computes the descriptor for l.
func Resolve(l composition.Layer) Descriptor {
	d := Descriptor{
		WidthMode:  WidthNatural,
		HeightMode: HeightNatural,
		ZIndex:     l.ZIndex,
	}

	switch l.XAlign {
	case composition.AlignLeft:
		d.Left = Px(l.XPosition)
	case composition.AlignRight:
		d.Right = Px(l.XPosition)
	case composition.AlignLeftRight:
		d.Left, d.Right = Px(l.XPosition), Px(l.XPosition)
		d.WidthMode = WidthFill
	case composition.AlignCenterX:
		d.Left = Percent(50)
		d.CenterX = true
		d.MarginLeft = l.XPosition
	case composition.AlignScaleX:
		d.Left, d.Right = Percent(BandInsetPercent), Percent(BandInsetPercent)
		d.WidthMode = WidthBand
	}

	switch l.YAlign {
	case composition.AlignTop:
		d.Top = Px(l.YPosition)
	case composition.AlignBottom:
		d.Bottom = Px(l.YPosition)
	case composition.AlignTopBottom:
		d.Top, d.Bottom = Px(l.YPosition), Px(l.YPosition)
		d.HeightMode = HeightFill
		d.ObjectFit = ObjectFitFill
		if l.AspectRatioLocked {
			d.ObjectFit = ObjectFitContain
		}
	case composition.AlignCenterY:
		d.Top = Percent(50)
		d.CenterY = true
		d.MarginTop = l.YPosition
	case composition.AlignScaleY:
		d.Top, d.Bottom = Percent(BandInsetPercent), Percent(BandInsetPercent)
		d.HeightMode = HeightAspectFit
		d.ObjectFit = ObjectFitContain
	}

	if d.WidthMode == WidthNatural {
		d.WidthMode, d.Width = sizeMode(l.Width, l.Retina, l.Image.Width, WidthFixed, WidthRetinaHalf, WidthNatural)
	}
	if d.HeightMode == HeightNatural {
		d.HeightMode, d.Height = sizeMode(l.Height, l.Retina, l.Image.Height, HeightFixed, HeightRetinaHalf, HeightNatural)
	}
	return d
}

func sizeMode[M ~string](dim composition.Dimension, retina bool, natural int, fixed, half, none M) (M, int) {
	if px, ok := dim.Value(); ok {
		return fixed, px
	}
	if retina && natural > 0 {
		return half, composition.Round(float64(natural) * composition.RetinaFactor)
	}
	return none, 0
}

// Transform returns the translate that centres the box, or "".
func (d Descriptor) Transform() string {
	switch {
	case d.CenterX && d.CenterY:
		return "translate(-50%, -50%)"
	case d.CenterX:
		return "translateX(-50%)"
	case d.CenterY:
		return "translateY(-50%)"
	}
	return ""
}

// Box returns the declarations for the positioned wrapper element.
func (d Descriptor) Box() Style {
	var s Style
	s.add("z-index", strconv.Itoa(d.ZIndex))
	for _, in := range []struct {
		prop string
		l    Length
	}{{"left", d.Left}, {"right", d.Right}, {"top", d.Top}, {"bottom", d.Bottom}} {
		if in.l.IsSet() {
			s.add(in.prop, in.l.String())
		}
	}
	if t := d.Transform(); t != "" {
		s.add("transform", t)
	}
	if d.CenterX && d.MarginLeft != 0 {
		s.add("margin-left", Px(d.MarginLeft).String())
	}
	if d.CenterY && d.MarginTop != 0 {
		s.add("margin-top", Px(d.MarginTop).String())
	}
	return s
}

// Image returns the declarations for the image element. It is empty for a
// naturally sized layer.
func (d Descriptor) Image() Style {
	var s Style
	switch d.WidthMode {
	case WidthFixed, WidthRetinaHalf:
		s.add("width", Px(d.Width).String())
	case WidthFill:
		s.add("width", "100%")
	case WidthBand:
		s.add("width", Percent(BandContentPercent).String())
		s.add("margin-left", "auto")
		s.add("margin-right", "auto")
	}
	switch d.HeightMode {
	case HeightFixed, HeightRetinaHalf:
		s.add("height", Px(d.Height).String())
	case HeightFill:
		s.add("height", "100%")
	case HeightAspectFit:
		s.add("height", Percent(BandContentPercent).String())
	}
	if d.ObjectFit != ObjectFitNone {
		s.add("object-fit", string(d.ObjectFit))
	}
	return s
}
