// Package httpapi exposes a session over HTTP.
//
// The API is a thin JSON layer over the store operations. Layer and
// background images are uploaded as multipart forms under the "image"
// field; the returned state references them as asset refs, which are
// served back under /assets/.
//
// # Routes
//
//	GET    /state                   current composition
//	POST   /layers                  upload an image and add a layer
//	GET    /layers/{id}             one layer
//	PATCH  /layers/{id}             partial layer update
//	DELETE /layers/{id}             remove a layer
//	PUT    /layers/{id}/image       replace the image of a layer
//	POST   /layers/{id}/visibility  toggle visibility
//	POST   /layers/reorder          move a layer {"from": i, "to": j}
//	PUT    /selection               {"selected": "layer-1" | "background" | ""}
//	PATCH  /background              partial background update
//	PUT    /background/image        upload the background image
//	PUT    /container               {"width": px}
//	POST   /clear                   restore the empty composition
//	GET    /export/json             JSON export
//	GET    /export/html             HTML/CSS export
//	GET    /preview                 live preview page
//	GET    /assets/{ref}            uploaded image bodies
//	GET    /version                 build information
//
// Errors are answered as {"error": {"code": ..., "message": ...}}. Unknown
// layer ids answer 404 and invalid input answers 422.
package httpapi

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cardcomposer/pkg/httputil"
	"github.com/matzehuels/cardcomposer/pkg/observability"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
	"github.com/matzehuels/cardcomposer/pkg/session"
)

// uploadField is the multipart field carrying an image.
const uploadField = "image"

// multipartOverhead is allowed on top of the image size for form framing.
const multipartOverhead = 1 << 20

// Server serves one session.
type Server struct {
	sess      *session.Session
	runner    *pipeline.Runner
	logger    *log.Logger
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes limits the size of an uploaded image.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New returns the router for sess. Exports go through runner with cache
// keys scoped to the session.
func New(sess *session.Session, runner *pipeline.Runner, logger *log.Logger, opts ...Option) chi.Router {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		sess:      sess,
		runner:    runner.WithKeyer(sess.Keyer(runner.Keyer)),
		logger:    logger,
		maxUpload: httputil.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/state", s.handleState)
	r.Get("/version", s.handleVersion)

	r.Route("/layers", func(r chi.Router) {
		r.Post("/", s.handleAddLayer)
		r.Post("/reorder", s.handleReorder)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetLayer)
			r.Patch("/", s.handleUpdateLayer)
			r.Delete("/", s.handleRemoveLayer)
			r.Put("/image", s.handleReplaceImage)
			r.Post("/visibility", s.handleToggleVisibility)
		})
	})

	r.Put("/selection", s.handleSelect)
	r.Patch("/background", s.handleUpdateBackground)
	r.Put("/background/image", s.handleBackgroundImage)
	r.Put("/container", s.handleContainer)
	r.Post("/clear", s.handleClear)

	r.Get("/export/{format}", s.handleExport)
	r.Get("/preview", s.handlePreview)
	r.Get("/assets/{ref}", s.handleAsset)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// logRequests echoes the request id, reports every request to the HTTP
// hooks and logs it at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		w.Header().Set(middleware.RequestIDHeader, reqID)
		hooks.OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Microsecond),
			"request_id", reqID,
		)
	})
}
