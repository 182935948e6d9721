package httpapi

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatHTML: "text/html; charset=utf-8",
}

// handleExport renders one format. Query parameters: class_prefix,
// min_height, compact (JSON without indentation), refresh (bypass the
// cache) and download (attachment disposition).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, s.logger, errNotFound("unknown export format %q", format))
		return
	}
	q := r.URL.Query()
	opts, err := exportOptions(q, format)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	opts.Logger = s.logger

	res, err := s.runner.Export(r.Context(), s.sess.Store.State(), opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("ETag", strconv.Quote(res.StateHash))
	if download, _ := strconv.ParseBool(q.Get("download")); download {
		w.Header().Set("Content-Disposition", `attachment; filename="composition.`+format+`"`)
	}
	_, _ = w.Write(res.Artifacts[format])
}

func exportOptions(q url.Values, format string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Formats:     []string{format},
		ClassPrefix: q.Get("class_prefix"),
	}
	if v := q.Get("min_height"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "min_height must be an integer, got %q", v)
		}
		opts.MinHeight = n
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = b
	}
	if compact, _ := strconv.ParseBool(q.Get("compact")); compact {
		none := ""
		opts.Indent = &none
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.sess.WritePreview(&buf); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "render preview"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleAsset serves an uploaded image. Refs are never reused, so the
// body is cacheable forever.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	asset, ok := s.sess.Assets.Get(ref)
	if !ok {
		writeError(w, r, s.logger, errNotFound("asset %q not found", ref))
		return
	}
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	_, _ = w.Write(asset.Data)
}
