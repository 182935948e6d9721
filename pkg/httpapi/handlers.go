package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardcomposer/pkg/buildinfo"
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// layerPatch is the body of PATCH /layers/{id}. Its fields mirror
// store.LayerUpdate.
type layerPatch struct {
	XAlign            *composition.XAlign      `json:"xAlign"`
	YAlign            *composition.YAlign      `json:"yAlign"`
	XPosition         *int                     `json:"xPosition"`
	YPosition         *int                     `json:"yPosition"`
	Width             dimensionField           `json:"width"`
	Height            dimensionField           `json:"height"`
	Scale             *float64                 `json:"scale"`
	ScaleTarget       *composition.ScaleTarget `json:"scaleTarget"`
	Retina            *bool                    `json:"retina"`
	AspectRatioLocked *bool                    `json:"aspectRatioLocked"`
	ZIndex            *int                     `json:"zIndex"`
	AnimSpeed         *int                     `json:"animSpeed"`
	Visible           *bool                    `json:"visible"`
}

func (p layerPatch) update() store.LayerUpdate {
	return store.LayerUpdate{
		XAlign:            p.XAlign,
		YAlign:            p.YAlign,
		XPosition:         p.XPosition,
		YPosition:         p.YPosition,
		Width:             p.Width.ptr(),
		Height:            p.Height.ptr(),
		Scale:             p.Scale,
		ScaleTarget:       p.ScaleTarget,
		Retina:            p.Retina,
		AspectRatioLocked: p.AspectRatioLocked,
		ZIndex:            p.ZIndex,
		AnimSpeed:         p.AnimSpeed,
		Visible:           p.Visible,
	}
}

// dimensionField is a patch dimension that remembers whether the body
// named it, so that null resets to auto instead of being skipped.
type dimensionField struct {
	present bool
	value   composition.Dimension
}

func (f *dimensionField) UnmarshalJSON(data []byte) error {
	f.present = true
	return f.value.UnmarshalJSON(data)
}

func (f dimensionField) ptr() *composition.Dimension {
	if !f.present {
		return nil
	}
	return &f.value
}

type backgroundPatch struct {
	Type              *composition.BackgroundType `json:"type"`
	Color             *string                     `json:"color"`
	GradientStart     *string                     `json:"gradientStart"`
	GradientEnd       *string                     `json:"gradientEnd"`
	GradientDirection *string                     `json:"gradientDirection"`
	Sizing            *composition.Sizing         `json:"sizing"`
}

func (p backgroundPatch) update() store.BackgroundUpdate {
	return store.BackgroundUpdate{
		Type:              p.Type,
		Color:             p.Color,
		GradientStart:     p.GradientStart,
		GradientEnd:       p.GradientEnd,
		GradientDirection: p.GradientDirection,
		Sizing:            p.Sizing,
	}
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type selectionBody struct {
	Selected composition.Selection `json:"selected"`
}

type containerBody struct {
	Width *int `json:"width"`
}

// =============================================================================
// State and layers
// =============================================================================

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Store.State())
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleGetLayer(w http.ResponseWriter, r *http.Request) {
	l, err := s.layer(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleAddLayer(w http.ResponseWriter, r *http.Request) {
	img, err := s.upload(w, r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	l := s.sess.Store.AddLayer(img)
	s.logger.Info("layer added", "id", l.ID, "filename", img.Filename, "size", [2]int{img.Width, img.Height})
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdateLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p layerPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	u := p.update()
	if err := s.sess.Store.CheckLayerUpdate(id, u); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if !s.sess.Store.UpdateLayer(id, u) {
		writeError(w, r, s.logger, errLayerNotFound(id))
		return
	}
	s.respondLayer(w, r, id)
}

func (s *Server) handleRemoveLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sess.Store.RemoveLayer(id) {
		writeError(w, r, s.logger, errLayerNotFound(id))
		return
	}
	s.sess.PruneAssets()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.layer(id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	img, err := s.upload(w, r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if !s.sess.Store.ReplaceLayerImage(id, img) {
		s.sess.Loader.Release(img)
		writeError(w, r, s.logger, errLayerNotFound(id))
		return
	}
	s.sess.PruneAssets()
	s.respondLayer(w, r, id)
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sess.Store.ToggleVisibility(id) {
		writeError(w, r, s.logger, errLayerNotFound(id))
		return
	}
	s.respondLayer(w, r, id)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	n := len(s.sess.Store.State().Layers)
	if req.From < 0 || req.From >= n || req.To < 0 || req.To >= n {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput,
			"reorder %d -> %d out of range for %d layers", req.From, req.To, n))
		return
	}
	s.sess.Store.ReorderLayers(req.From, req.To)
	writeJSON(w, http.StatusOK, s.sess.Store.State())
}

// =============================================================================
// Selection, background, container
// =============================================================================

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body selectionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if body.Selected.IsLayer() {
		if _, err := s.layer(string(body.Selected)); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
	}
	stored := s.sess.Store.SelectLayer(body.Selected)
	writeJSON(w, http.StatusOK, selectionBody{Selected: stored})
}

func (s *Server) handleUpdateBackground(w http.ResponseWriter, r *http.Request) {
	var p backgroundPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	u := p.update()
	if err := u.Validate(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.sess.Store.UpdateBackground(u)
	writeJSON(w, http.StatusOK, s.sess.Store.State().Background)
}

func (s *Server) handleBackgroundImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.upload(w, r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	s.sess.Store.UpdateBackground(store.BackgroundUpdate{Image: &img})
	s.sess.PruneAssets()
	writeJSON(w, http.StatusOK, s.sess.Store.State().Background)
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	var body containerBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if body.Width == nil {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "width is required"))
		return
	}
	stored := s.sess.Store.SetContainerWidth(*body.Width)
	writeJSON(w, http.StatusOK, containerBody{Width: &stored})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.sess.Store.ClearAll()
	n := s.sess.PruneAssets()
	s.logger.Info("composition cleared", "assets", n)
	writeJSON(w, http.StatusOK, s.sess.Store.State())
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) layer(id string) (composition.Layer, error) {
	l, ok := s.sess.Store.State().Layer(id)
	if !ok {
		return composition.Layer{}, errLayerNotFound(id)
	}
	return l, nil
}

// respondLayer writes the current version of a layer after a mutation.
func (s *Server) respondLayer(w http.ResponseWriter, r *http.Request, id string) {
	l, err := s.layer(id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// upload reads the image field of a multipart request and registers it as
// an asset.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) (composition.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return composition.Image{}, errors.New(errors.ErrCodeInvalidInput, "read %q upload: %v", uploadField, err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if err := errors.ValidateFilename(name); err != nil {
		return composition.Image{}, err
	}
	return s.sess.Loader.PutReader(name, file)
}
