// Package store holds the single authoritative composition state and the
// mutation operations on it.
//
// Every successful mutation produces exactly one notification. Listeners are
// invoked synchronously, in subscription order, with an [Event] and a deep
// copy of the state as it stood right after that mutation. A mutation issued
// from inside a listener is applied immediately, but its notification is
// queued and delivered after the current delivery finishes, so every
// listener sees notifications in mutation order and never nested.
//
// Rejected updates (an invalid scale or hex color) leave the state untouched
// and notify nobody.
//
// # Concurrency
//
// A Store is safe for concurrent use. Notifications are always delivered in
// mutation order; when several goroutines mutate at once, whichever one is
// already dispatching delivers the queued notifications of the others.
package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/observability"
)

// Store is the composition state store.
type Store struct {
	mu     sync.Mutex
	state  composition.State
	nextID int
	seq    uint64

	subs    []subscription
	nextSub int

	pending     []notification
	dispatching bool

	logger *log.Logger
	hooks  observability.StoreHooks
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output about mutations.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the store hooks. It defaults to [observability.Store].
func WithHooks(h observability.StoreHooks) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = h
		}
	}
}

// New returns a store holding the initial empty composition.
func New(opts ...Option) *Store {
	s := &Store{
		state:  composition.NewState(),
		logger: log.Default(),
		hooks:  observability.Store(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Subscription
// =============================================================================

// Subscribe registers fn for all future notifications. The returned function
// removes the registration; calling it more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// =============================================================================
// Reads
// =============================================================================

// State returns a deep copy of the current composition.
func (s *Store) State() composition.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SelectedLayer returns the selected layer, if a layer is selected.
func (s *Store) SelectedLayer() (composition.Layer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Selected.IsLayer() {
		return composition.Layer{}, false
	}
	return s.state.Layer(string(s.state.Selected))
}

// =============================================================================
// Layer mutations
// =============================================================================

// AddLayer appends a layer for img with default properties, selects it and
// returns it. Ids are "layer-N" from a counter that is never reset.
func (s *Store) AddLayer(img composition.Image) composition.Layer {
	var added composition.Layer
	s.mutate(TagLayerAdd, func(st *composition.State) bool {
		s.nextID++
		added = composition.NewLayer(fmt.Sprintf("layer-%d", s.nextID), img, len(st.Layers)+1)
		st.Layers = append(st.Layers, added)
		st.Selected = composition.Selection(added.ID)
		return true
	})
	return added
}

// RemoveLayer deletes the layer with the given id. If it was selected, the
// selection moves to the last remaining layer, or to nothing. Removing an
// unknown id is a silent no-op and reports false.
func (s *Store) RemoveLayer(id string) bool {
	return s.mutate(TagLayerRemove, func(st *composition.State) bool {
		i := st.Index(id)
		if i < 0 {
			return false
		}
		st.Layers = slices.Delete(st.Layers, i, i+1)
		restack(st.Layers)
		if st.Selected == composition.Selection(id) {
			st.Selected = composition.SelectNone
			if len(st.Layers) > 0 {
				st.Selected = composition.Selection(st.Layers[len(st.Layers)-1].ID)
			}
		}
		return true
	})
}

// UpdateLayer merges u into the layer with the given id, deriving sizes from
// a scale change and keeping the aspect ratio when the layer is locked.
// It reports false, without notifying, for an unknown id or invalid update.
func (s *Store) UpdateLayer(id string, u LayerUpdate) bool {
	if err := u.Validate(); err != nil {
		s.reject("update-layer", err)
		return false
	}
	var derr error
	ok := s.mutate(TagLayerUpdate, func(st *composition.State) bool {
		i := st.Index(id)
		if i < 0 {
			return false
		}
		l := &st.Layers[i]
		merged, err := u.derive(*l)
		if err != nil {
			derr = err
			return false
		}
		merged.apply(l)
		return true
	})
	if derr != nil {
		s.reject("update-layer", derr)
	}
	return ok
}

// CheckLayerUpdate reports why UpdateLayer would reject u for the layer
// with the given id, or nil when it would apply.
func (s *Store) CheckLayerUpdate(id string, u LayerUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	l, ok := s.state.Layer(id)
	s.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeLayerNotFound, "layer %q not found", id)
	}
	_, err := u.derive(l)
	return err
}

// ReplaceLayerImage swaps the image of a layer and resets its explicit
// width and height to auto. Everything else is kept.
func (s *Store) ReplaceLayerImage(id string, img composition.Image) bool {
	return s.mutate(TagLayerUpdate, func(st *composition.State) bool {
		i := st.Index(id)
		if i < 0 {
			return false
		}
		l := &st.Layers[i]
		l.Image = img
		l.Width = composition.Auto()
		l.Height = composition.Auto()
		return true
	})
}

// ReorderLayers moves the layer at from to position to and renormalises
// every zIndex to min(position+1, MaxZIndex). Equal or out-of-range indices
// are a no-op and report false.
func (s *Store) ReorderLayers(from, to int) bool {
	return s.mutate(TagLayerReorder, func(st *composition.State) bool {
		n := len(st.Layers)
		if from == to || from < 0 || to < 0 || from >= n || to >= n {
			return false
		}
		l := st.Layers[from]
		st.Layers = slices.Insert(slices.Delete(st.Layers, from, from+1), to, l)
		restack(st.Layers)
		return true
	})
}

// ToggleVisibility flips the visibility flag of a layer.
func (s *Store) ToggleVisibility(id string) bool {
	return s.mutate(TagLayerUpdate, func(st *composition.State) bool {
		i := st.Index(id)
		if i < 0 {
			return false
		}
		st.Layers[i].Visible = !st.Layers[i].Visible
		return true
	})
}

// SelectLayer sets the selection and returns the value actually stored.
// An id that names no layer clears the selection. Selecting always notifies.
func (s *Store) SelectLayer(sel composition.Selection) composition.Selection {
	var stored composition.Selection
	s.mutate(TagLayerSelect, func(st *composition.State) bool {
		if sel.IsLayer() && st.Index(string(sel)) < 0 {
			sel = composition.SelectNone
		}
		st.Selected = sel
		stored = sel
		return true
	})
	return stored
}

// =============================================================================
// Background and container
// =============================================================================

// UpdateBackground merges u into the background. Fields that belong to
// other background types are retained. It reports false, without
// notifying, when a color is not a "#rrggbb" hex string.
func (s *Store) UpdateBackground(u BackgroundUpdate) bool {
	if err := u.Validate(); err != nil {
		s.reject("update-background", err)
		return false
	}
	return s.mutate(TagBackgroundUpdate, func(st *composition.State) bool {
		u.apply(&st.Background)
		return true
	})
}

// SetContainerWidth clamps px to the allowed container range, stores it and
// returns the stored width.
func (s *Store) SetContainerWidth(px int) int {
	var stored int
	s.mutate(TagContainerResize, func(st *composition.State) bool {
		stored = composition.ClampContainerWidth(px)
		st.ContainerWidth = stored
		return true
	})
	return stored
}

// ClearAll restores the initial composition. The layer id counter keeps
// counting, so ids are never reused.
func (s *Store) ClearAll() {
	s.mutate(TagClear, func(st *composition.State) bool {
		*st = composition.NewState()
		return true
	})
}

// =============================================================================
// Internals
// =============================================================================

// mutate applies fn under the lock. When fn reports a change, a notification
// is queued and the queue is drained.
func (s *Store) mutate(tag Tag, fn func(*composition.State) bool) bool {
	start := time.Now()

	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.seq++
	ev := Event{Tag: tag, Seq: s.seq}
	s.pending = append(s.pending, notification{event: ev, state: s.state.Clone()})
	count := len(s.state.Layers)
	s.mu.Unlock()

	s.logger.Debug("store mutation", "tag", tag, "seq", ev.Seq, "layers", count)
	s.hooks.OnMutation(string(tag), count, time.Since(start))

	s.flush()
	return true
}

// flush delivers queued notifications until the queue is empty. Only one
// caller dispatches at a time; nested or concurrent callers leave their
// notifications for it.
func (s *Store) flush() {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.dispatching = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			sub.fn(n.event, n.state.Clone())
		}

		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

func (s *Store) reject(op string, err error) {
	s.logger.Debug("store update rejected", "op", op, "error", err)
	s.hooks.OnRejected(op, err)
}

// restack sets every zIndex from list position.
func restack(layers []composition.Layer) {
	for i := range layers {
		layers[i].ZIndex = composition.ClampZIndex(i + 1)
	}
}
