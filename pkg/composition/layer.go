package composition

import "math"

// Stacking and animation bounds.
const (
	MinZIndex        = 1
	MaxZIndex        = 15
	MinAnimSpeed     = 0
	MaxAnimSpeed     = 3
	DefaultAnimSpeed = 2

	// RetinaFactor is applied to natural size when retina mode sizes an auto dimension.
	RetinaFactor = 0.5
)

// Image is an opaque pixel-data reference plus its display name and natural size.
// Src is never interpreted by the core.
type Image struct {
	Src      string `json:"src"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// HasNaturalSize reports whether both natural dimensions are known.
func (i Image) HasNaturalSize() bool { return i.Width > 0 && i.Height > 0 }

// AspectRatio returns width/height, or 0 when the natural size is unknown.
func (i Image) AspectRatio() float64 {
	if !i.HasNaturalSize() {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// Layer is one positioned image in the composition.
type Layer struct {
	ID                string      `json:"id"`
	Image             Image       `json:"image"`
	XAlign            XAlign      `json:"xAlign"`
	YAlign            YAlign      `json:"yAlign"`
	XPosition         int         `json:"xPosition"`
	YPosition         int         `json:"yPosition"`
	Width             Dimension   `json:"width"`
	Height            Dimension   `json:"height"`
	Scale             float64     `json:"scale"`
	ScaleTarget       ScaleTarget `json:"scaleTarget"`
	Retina            bool        `json:"retina"`
	AspectRatioLocked bool        `json:"aspectRatioLocked"`
	ZIndex            int         `json:"zIndex"`
	AnimSpeed         int         `json:"animSpeed"`
	Visible           bool        `json:"visible"`
}

// NewLayer returns a layer with the defaults applied to freshly added images.
func NewLayer(id string, img Image, zIndex int) Layer {
	return Layer{
		ID:                id,
		Image:             img,
		XAlign:            AlignCenterX,
		YAlign:            AlignCenterY,
		Scale:             1,
		ScaleTarget:       ScaleBoth,
		AspectRatioLocked: true,
		ZIndex:            ClampZIndex(zIndex),
		AnimSpeed:         DefaultAnimSpeed,
		Visible:           true,
	}
}

// ClampZIndex limits z to [MinZIndex, MaxZIndex].
func ClampZIndex(z int) int {
	return min(max(z, MinZIndex), MaxZIndex)
}

// MaxDimension bounds explicit and derived pixel sizes.
const MaxDimension = math.MaxInt32

// Round rounds half away from zero, matching the pixel rounding used for
// derived sizes.
func Round(v float64) int {
	return int(math.Round(v))
}

// ScaleSize returns round(natural × factor) and whether the result lies
// within ±MaxDimension.
func ScaleSize(natural int, factor float64) (int, bool) {
	v := math.Round(float64(natural) * factor)
	if math.IsNaN(v) || math.Abs(v) > MaxDimension {
		return 0, false
	}
	return int(v), true
}
