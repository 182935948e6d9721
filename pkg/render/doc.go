// Package render groups the consumers of a composition.
//
// # Overview
//
// Rendering is split by what reads the layout decision:
//
//   - [layout]: resolves a layer's alignment, size and scale into a
//     descriptor and its box and image declarations
//   - [sink]: serializes a state to the exported JSON or HTML/CSS
//   - [live]: keeps a preview tree in step with the store
//
// Both [sink] and [live] take their declarations from [layout], so the
// exported snippet and the preview place layers identically.
//
// [layout]: github.com/matzehuels/cardcomposer/pkg/render/layout
// [sink]: github.com/matzehuels/cardcomposer/pkg/render/sink
// [live]: github.com/matzehuels/cardcomposer/pkg/render/live
package render
