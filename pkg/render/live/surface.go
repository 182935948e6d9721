package live

import (
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
)

// Target selects which element of a layer a style assignment applies to.
type Target int

const (
	// TargetBox is the positioned wrapper element.
	TargetBox Target = iota
	// TargetImage is the image inside the wrapper.
	TargetImage
)

func (t Target) String() string {
	if t == TargetImage {
		return "image"
	}
	return "box"
}

// Surface is a retained rendering target, such as a DOM subtree.
type Surface interface {
	SetContainerWidth(px int)
	SetBackground(layout.Style)
	// CreateLayer adds an element for a new layer and returns its handle.
	CreateLayer(id string, img composition.Image) Handle
	// Arrange orders layer elements bottom to top. It lists every live id.
	Arrange(ids []string)
	// Clear removes every layer element and resets the background.
	Clear()
}

// Handle is the rendering handle of one layer element.
type Handle interface {
	SetImage(img composition.Image)
	SetStyle(target Target, property, value string)
	// ResetStyle removes every style property previously set on target.
	ResetStyle(target Target)
	SetVisible(visible bool)
	SetSelected(selected bool)
	SetAnimSpeed(speed int)
	Destroy()
}
