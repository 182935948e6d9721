package composition

import "fmt"

// Default background values for a fresh session.
const (
	DefaultBackgroundColor   = "#f5f5f5"
	DefaultGradientStart     = "#8b5cf6"
	DefaultGradientEnd       = "#d946ef"
	DefaultGradientDirection = "to right"
)

// Background is the singleton backdrop of the composition. Fields of inactive
// types are retained so switching Type back restores earlier values.
type Background struct {
	Type              BackgroundType `json:"type"`
	Color             string         `json:"color"`
	GradientStart     string         `json:"gradientStart"`
	GradientEnd       string         `json:"gradientEnd"`
	GradientDirection string         `json:"gradientDirection"`
	Image             Image          `json:"image"`
	Sizing            Sizing         `json:"sizing"`
}

// DefaultBackground returns the background of an empty composition.
func DefaultBackground() Background {
	return Background{
		Type:              BackgroundColor,
		Color:             DefaultBackgroundColor,
		GradientStart:     DefaultGradientStart,
		GradientEnd:       DefaultGradientEnd,
		GradientDirection: DefaultGradientDirection,
		Sizing:            SizingFill,
	}
}

// Gradient composes the CSS linear-gradient value from the gradient fields.
func (b Background) Gradient() string {
	return fmt.Sprintf("linear-gradient(%s, %s, %s)", b.GradientDirection, b.GradientStart, b.GradientEnd)
}

// HasImage reports whether an image has been assigned.
func (b Background) HasImage() bool { return b.Image.Src != "" || b.Image.Filename != "" }
