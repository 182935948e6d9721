package store

import "github.com/matzehuels/cardcomposer/pkg/composition"

// Tag names the kind of mutation a notification reports.
type Tag string

// Notification tags, one per mutation family.
const (
	TagLayerAdd         Tag = "layer-add"
	TagLayerRemove      Tag = "layer-remove"
	TagLayerUpdate      Tag = "layer-update"
	TagLayerReorder     Tag = "layer-reorder"
	TagLayerSelect      Tag = "layer-select"
	TagBackgroundUpdate Tag = "background-update"
	TagContainerResize  Tag = "container-resize"
	TagClear            Tag = "clear"
)

// Event describes one applied mutation. Seq increases by one per mutation of
// a store and starts at 1.
type Event struct {
	Tag Tag
	Seq uint64
}

// Listener receives every mutation together with a snapshot of the state
// right after it. The snapshot is owned by the listener.
type Listener func(Event, composition.State)

type subscription struct {
	id int
	fn Listener
}

type notification struct {
	event Event
	state composition.State
}
