package document

import (
	"context"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// Loader resolves image sources. [ingest.Loader] implements it.
//
// [ingest.Loader]: github.com/matzehuels/cardcomposer/pkg/ingest.Loader
type Loader interface {
	LoadAll(ctx context.Context, sources []string) ([]composition.Image, error)
}

// Apply loads every image of d and replays the document onto s. Layers are
// appended above any existing ones in document order. As in the editor,
// the last added layer ends up selected unless a layer is marked selected.
//
// Loading is all-or-nothing: if any image fails, s is left untouched and
// the error is returned.
func (d *Document) Apply(ctx context.Context, s *store.Store, loader Loader) error {
	if err := d.Validate(); err != nil {
		return err
	}
	images, err := loader.LoadAll(ctx, d.Sources())
	if err != nil {
		return err
	}

	if d.ContainerWidth != nil {
		s.SetContainerWidth(*d.ContainerWidth)
	}

	bg := d.Background.update()
	if d.Background.Image != "" {
		bg.Image = &images[len(images)-1]
	}
	if bg != (store.BackgroundUpdate{}) && !s.UpdateBackground(bg) {
		return errors.New(errors.ErrCodeInternal, "background rejected by store")
	}

	ids := make([]string, len(d.Layers))
	for i, l := range d.Layers {
		layer := s.AddLayer(images[i])
		ids[i] = layer.ID
		flags, geometry := l.updates()
		for _, u := range []store.LayerUpdate{flags, geometry} {
			if isEmpty(u) {
				continue
			}
			if !s.UpdateLayer(layer.ID, u) {
				return errors.New(errors.ErrCodeInternal, "layers[%d]: update rejected by store", i)
			}
		}
	}
	if i := d.selectedIndex(); i >= 0 {
		s.SelectLayer(composition.Selection(ids[i]))
	}
	return nil
}
