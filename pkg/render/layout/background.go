package layout

import (
	"strings"

	"github.com/matzehuels/cardcomposer/pkg/composition"
)

// Placeholder image names used when a background image has no filename.
const (
	PlaceholderImage   = "your-image.png"
	PlaceholderPattern = "your-pattern.png"
)

// SourceFunc picks the URL a background image is referenced by. An empty
// result means the image is not available to this consumer.
type SourceFunc func(composition.Background) string

// FilenameSource references the image by filename, falling back to a
// placeholder name. Exported markup uses it.
func FilenameSource(bg composition.Background) string {
	if bg.Image.Filename != "" {
		return bg.Image.Filename
	}
	if bg.Type == composition.BackgroundTile {
		return PlaceholderPattern
	}
	return PlaceholderImage
}

// DataSource references the image by its opaque source.
func DataSource(bg composition.Background) string { return bg.Image.Src }

// NeutralBackground is the fill of an empty or unresolvable background.
func NeutralBackground() Style {
	return Style{{Property: "background", Value: composition.DefaultBackgroundColor}}
}

// ResolveBackground returns the declarations for the background element.
// Image and tile backgrounds without a source resolve to an empty Style.
func ResolveBackground(bg composition.Background, src SourceFunc) Style {
	var s Style
	switch bg.Type {
	case composition.BackgroundColor:
		s.add("background", bg.Color)
	case composition.BackgroundGradient:
		s.add("background", bg.Gradient())
	case composition.BackgroundImage:
		u := src(bg)
		if u == "" {
			return nil
		}
		s.add("background", cssURL(u))
		size := "contain"
		if bg.Sizing == composition.SizingFill {
			size = "cover"
		}
		s.add("background-size", size)
		s.add("background-position", "center")
		s.add("background-repeat", "no-repeat")
	case composition.BackgroundTile:
		u := src(bg)
		if u == "" {
			return nil
		}
		s.add("background", cssURL(u))
		s.add("background-size", "auto")
		s.add("background-repeat", "repeat")
	default:
		return NeutralBackground()
	}
	return s
}

var urlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\a `)

func cssURL(u string) string {
	return "url('" + urlEscaper.Replace(u) + "')"
}
