// Package sink exports a composition snapshot as JSON or HTML/CSS.
//
// # Overview
//
// A "sink" transforms a [composition.State] into a final output format:
//
//   - JSON: a configuration document for external tools
//   - HTML: a self-contained component with an embedded stylesheet
//
// Both are pure functions of the snapshot. Rendering the same state twice
// produces byte-identical output; there are no timestamps or generated ids.
//
// # JSON Output
//
// [RenderJSON] emits the container, the fields of the active background type
// and every layer in list order. Unset sizes are written as "auto":
//
//	data, err := sink.RenderJSON(st)
//
// # HTML Output
//
// [RenderHTML] emits one element per layer in ascending zIndex order, each
// paired with a CSS block built from [layout.Resolve]. The live preview uses
// the same resolver, so the exported card matches what was composed:
//
//	page := sink.RenderHTML(st,
//	    sink.WithClassPrefix("hero-card"),
//	    sink.WithMinHeight(320),
//	)
//
// Layers carry a data-anim-speed attribute; a trailing comment documents the
// suggested hover offsets for each speed.
//
// [composition.State]: github.com/matzehuels/cardcomposer/pkg/composition.State
// [layout.Resolve]: github.com/matzehuels/cardcomposer/pkg/render/layout.Resolve
package sink
