package composition

import "fmt"

// XAlign selects the horizontal anchor a layer's xPosition is measured from.
type XAlign string

const (
	AlignLeft      XAlign = "left"
	AlignRight     XAlign = "right"
	AlignLeftRight XAlign = "left+right"
	AlignCenterX   XAlign = "center"
	AlignScaleX    XAlign = "scale"
)

// YAlign selects the vertical anchor a layer's yPosition is measured from.
type YAlign string

const (
	AlignTop       YAlign = "top"
	AlignBottom    YAlign = "bottom"
	AlignTopBottom YAlign = "top+bottom"
	AlignCenterY   YAlign = "center"
	AlignScaleY    YAlign = "scale"
)

// ScaleTarget selects which derived dimension(s) a scale change writes.
type ScaleTarget string

const (
	ScaleWidth  ScaleTarget = "width"
	ScaleHeight ScaleTarget = "height"
	ScaleBoth   ScaleTarget = "both"
)

// BackgroundType selects which background fields are active.
type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
	BackgroundTile     BackgroundType = "tile"
)

// Sizing controls how a background image fills the container.
type Sizing string

const (
	SizingFill    Sizing = "fill"
	SizingContain Sizing = "contain"
)

// Valid reports whether a is a known horizontal alignment.
func (a XAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignRight, AlignLeftRight, AlignCenterX, AlignScaleX:
		return true
	}
	return false
}

// Valid reports whether a is a known vertical alignment.
func (a YAlign) Valid() bool {
	switch a {
	case AlignTop, AlignBottom, AlignTopBottom, AlignCenterY, AlignScaleY:
		return true
	}
	return false
}

// Valid reports whether t is a known scale target.
func (t ScaleTarget) Valid() bool {
	switch t {
	case ScaleWidth, ScaleHeight, ScaleBoth:
		return true
	}
	return false
}

// Writes reports whether a scale change with this target writes width and height.
func (t ScaleTarget) Writes() (width, height bool) {
	switch t {
	case ScaleWidth:
		return true, false
	case ScaleHeight:
		return false, true
	default:
		return true, true
	}
}

// Valid reports whether t is a known background type.
func (t BackgroundType) Valid() bool {
	switch t {
	case BackgroundColor, BackgroundGradient, BackgroundImage, BackgroundTile:
		return true
	}
	return false
}

// Valid reports whether s is a known sizing mode.
func (s Sizing) Valid() bool { return s == SizingFill || s == SizingContain }

func (a *XAlign) UnmarshalText(b []byte) error {
	v := XAlign(b)
	if !v.Valid() {
		return fmt.Errorf("invalid x alignment %q", b)
	}
	*a = v
	return nil
}

func (a *YAlign) UnmarshalText(b []byte) error {
	v := YAlign(b)
	if !v.Valid() {
		return fmt.Errorf("invalid y alignment %q", b)
	}
	*a = v
	return nil
}

func (t *ScaleTarget) UnmarshalText(b []byte) error {
	v := ScaleTarget(b)
	if !v.Valid() {
		return fmt.Errorf("invalid scale target %q", b)
	}
	*t = v
	return nil
}

func (t *BackgroundType) UnmarshalText(b []byte) error {
	v := BackgroundType(b)
	if !v.Valid() {
		return fmt.Errorf("invalid background type %q", b)
	}
	*t = v
	return nil
}

func (s *Sizing) UnmarshalText(b []byte) error {
	v := Sizing(b)
	if !v.Valid() {
		return fmt.Errorf("invalid sizing %q", b)
	}
	*s = v
	return nil
}
