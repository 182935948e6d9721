package store

import (
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
)

// Ptr returns a pointer to v. It keeps partial updates readable:
//
//	s.UpdateLayer(id, store.LayerUpdate{XPosition: store.Ptr(12)})
func Ptr[T any](v T) *T { return &v }

// LayerUpdate is a partial layer update. Nil fields are left untouched.
//
// Scale is not stored as a render-time multiplier: it derives
// round(natural × Scale) into the width and/or height selected by
// ScaleTarget (or the layer's current target) unless the update supplies
// that dimension explicitly.
type LayerUpdate struct {
	XAlign            *composition.XAlign
	YAlign            *composition.YAlign
	XPosition         *int
	YPosition         *int
	Width             *composition.Dimension
	Height            *composition.Dimension
	Scale             *float64
	ScaleTarget       *composition.ScaleTarget
	Retina            *bool
	AspectRatioLocked *bool
	ZIndex            *int
	AnimSpeed         *int
	Visible           *bool
}

// Validate reports the first invalid field of u.
func (u LayerUpdate) Validate() error {
	if u.Scale != nil {
		if err := errors.ValidateScale(*u.Scale); err != nil {
			return err
		}
	}
	if u.XAlign != nil && !u.XAlign.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid x alignment %q", *u.XAlign)
	}
	if u.YAlign != nil && !u.YAlign.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid y alignment %q", *u.YAlign)
	}
	if u.ScaleTarget != nil && !u.ScaleTarget.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale target %q", *u.ScaleTarget)
	}
	for _, d := range []*composition.Dimension{u.Width, u.Height} {
		if d != nil && !d.InRange() {
			return errors.New(errors.ErrCodeInvalidInput, "size %s exceeds %dpx", d, composition.MaxDimension)
		}
	}
	return nil
}

// derive fills in the dimensions implied by a scale change and by the
// aspect-ratio lock of l. The returned update is what gets merged. An
// explicit zero size means auto. Derived sizes past MaxDimension are an
// error.
func (u LayerUpdate) derive(l composition.Layer) (LayerUpdate, error) {
	u.Width = normalized(u.Width)
	u.Height = normalized(u.Height)

	if u.Scale != nil {
		target := l.ScaleTarget
		if u.ScaleTarget != nil {
			target = *u.ScaleTarget
		}
		writeW, writeH := target.Writes()
		if writeW && u.Width == nil && l.Image.Width > 0 {
			w, err := scaled(l.Image.Width, *u.Scale, errors.ErrCodeInvalidScale)
			if err != nil {
				return u, err
			}
			u.Width = &w
		}
		if writeH && u.Height == nil && l.Image.Height > 0 {
			h, err := scaled(l.Image.Height, *u.Scale, errors.ErrCodeInvalidScale)
			if err != nil {
				return u, err
			}
			u.Height = &h
		}
	}

	if !l.AspectRatioLocked || !l.Image.HasNaturalSize() {
		return u, nil
	}
	ratio := l.Image.AspectRatio()
	switch {
	case u.Width != nil && u.Height == nil:
		h, err := coupled(*u.Width, 1/ratio)
		if err != nil {
			return u, err
		}
		u.Height = &h
	case u.Height != nil && u.Width == nil:
		w, err := coupled(*u.Height, ratio)
		if err != nil {
			return u, err
		}
		u.Width = &w
	}
	return u, nil
}

func normalized(d *composition.Dimension) *composition.Dimension {
	if d == nil {
		return nil
	}
	return Ptr(d.Normalize())
}

func scaled(px int, factor float64, code errors.Code) (composition.Dimension, error) {
	v, ok := composition.ScaleSize(px, factor)
	if !ok {
		return composition.Dimension{}, errors.New(code, "derived size exceeds %dpx", composition.MaxDimension)
	}
	return composition.Px(v).Normalize(), nil
}

func coupled(d composition.Dimension, factor float64) (composition.Dimension, error) {
	px, ok := d.Value()
	if !ok {
		return composition.Auto(), nil
	}
	return scaled(px, factor, errors.ErrCodeInvalidInput)
}

func (u LayerUpdate) apply(l *composition.Layer) {
	if u.XAlign != nil {
		l.XAlign = *u.XAlign
	}
	if u.YAlign != nil {
		l.YAlign = *u.YAlign
	}
	if u.XPosition != nil {
		l.XPosition = *u.XPosition
	}
	if u.YPosition != nil {
		l.YPosition = *u.YPosition
	}
	if u.Width != nil {
		l.Width = *u.Width
	}
	if u.Height != nil {
		l.Height = *u.Height
	}
	if u.Scale != nil {
		l.Scale = *u.Scale
	}
	if u.ScaleTarget != nil {
		l.ScaleTarget = *u.ScaleTarget
	}
	if u.Retina != nil {
		l.Retina = *u.Retina
	}
	if u.AspectRatioLocked != nil {
		l.AspectRatioLocked = *u.AspectRatioLocked
	}
	if u.ZIndex != nil {
		l.ZIndex = composition.ClampZIndex(*u.ZIndex)
	}
	if u.AnimSpeed != nil {
		l.AnimSpeed = *u.AnimSpeed
	}
	if u.Visible != nil {
		l.Visible = *u.Visible
	}
}

// BackgroundUpdate is a partial background update. Nil fields are left
// untouched; there is no coupling between fields.
type BackgroundUpdate struct {
	Type              *composition.BackgroundType
	Color             *string
	GradientStart     *string
	GradientEnd       *string
	GradientDirection *string
	Image             *composition.Image
	Sizing            *composition.Sizing
}

// Validate reports the first invalid field of u.
func (u BackgroundUpdate) Validate() error {
	if u.Type != nil && !u.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid background type %q", *u.Type)
	}
	if u.Sizing != nil && !u.Sizing.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid sizing %q", *u.Sizing)
	}
	for _, c := range []*string{u.Color, u.GradientStart, u.GradientEnd} {
		if c == nil {
			continue
		}
		if err := errors.ValidateHexColor(*c); err != nil {
			return err
		}
	}
	return nil
}

func (u BackgroundUpdate) apply(bg *composition.Background) {
	if u.Type != nil {
		bg.Type = *u.Type
	}
	if u.Color != nil {
		bg.Color = *u.Color
	}
	if u.GradientStart != nil {
		bg.GradientStart = *u.GradientStart
	}
	if u.GradientEnd != nil {
		bg.GradientEnd = *u.GradientEnd
	}
	if u.GradientDirection != nil {
		bg.GradientDirection = *u.GradientDirection
	}
	if u.Image != nil {
		bg.Image = *u.Image
	}
	if u.Sizing != nil {
		bg.Sizing = *u.Sizing
	}
}
