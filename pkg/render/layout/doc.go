// Package layout resolves layer alignment into positioning declarations.
//
// # Overview
//
// [Resolve] turns a [composition.Layer] into a [Descriptor]: the insets,
// centring, margins, size modes and object-fit that place the layer inside
// the card. The descriptor is the only layout decision in the module. Both
// consumers read it through the same two [Style] lists:
//
//   - [Descriptor.Box] styles the positioned wrapper element
//   - [Descriptor.Image] styles the image inside it
//
// The HTML exporter prints those declarations as CSS text and the live
// renderer assigns them one property at a time, so preview and export cannot
// drift apart.
//
// # Alignment
//
// Each axis is resolved independently:
//
//   - left / right / top / bottom: a single pixel inset from that edge
//   - left+right / top+bottom: both insets, and the image fills the box
//   - center: 50% inset, a -50% translate and an optional pixel margin
//   - scale: a symmetric 10% band with content occupying 80% of it
//
// When both axes are centred the translates compose into one
// translate(-50%, -50%).
//
// # Sizing
//
// Alignment-derived sizes (fill, band, aspect-fit) take precedence. Otherwise
// an explicit dimension is used as is, retina mode halves the natural size of
// an auto dimension, and anything else keeps the natural image size.
//
// [composition.Layer]: github.com/matzehuels/cardcomposer/pkg/composition.Layer
package layout
