// Package composition defines the data model of a layered card: a single
// [Background] plus an ordered stack of image [Layer] values, the current
// [Selection] and the container width.
//
// # Value semantics
//
// Every type in this package is a plain value. A [State] holds its layers in a
// slice of [Layer] structs that contain no pointers, maps or nested slices, so
// [State.Clone] yields a snapshot that can never observe later mutation of the
// original. The [store] package relies on this to hand immutable snapshots to
// its subscribers.
//
// # Sizes
//
// Explicit pixel sizes and the "auto" sentinel are modelled by [Dimension], a
// small tagged union:
//
//	w := composition.Px(320)
//	h := composition.Auto()
//	if px, ok := w.Value(); ok {
//	    fmt.Println(px) // 320
//	}
//
// Dimensions encode to JSON as a number or the string "auto".
//
// # Stacking
//
// Layers carry a dense zIndex in [MinZIndex, MaxZIndex]. The list order of
// [State.Layers] is bookkeeping for reorder operations; consumers stack layers
// with [State.StackOrder], which sorts by zIndex and keeps list order for ties.
//
// [store]: github.com/matzehuels/cardcomposer/pkg/store
package composition
