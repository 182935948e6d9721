package httpapi

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
	"github.com/matzehuels/cardcomposer/pkg/render/sink"
	"github.com/matzehuels/cardcomposer/pkg/session"
)

type fixture struct {
	t    *testing.T
	sess *session.Session
	h    http.Handler
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	sess := session.New(session.WithLogger(logger))
	t.Cleanup(sess.Close)
	return &fixture{t: t, sess: sess, h: New(sess, pipeline.NewRunner(c, nil, logger), logger)}
}

func (f *fixture) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) json(method, path, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(method, path, strings.NewReader(body), "application/json")
}

func (f *fixture) upload(method, path, filename string, data []byte) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		f.t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	return f.do(method, path, &buf, mw.FormDataContentType())
}

func (f *fixture) addLayer(name string, w, h int) composition.Layer {
	f.t.Helper()
	rec := f.upload(http.MethodPost, "/layers", name, encodePNG(f.t, w, h))
	if rec.Code != http.StatusCreated {
		f.t.Fatalf("POST /layers = %d: %s", rec.Code, rec.Body)
	}
	var l composition.Layer
	decode(f.t, rec, &l)
	return l
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body, err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) errors.Code {
	t.Helper()
	var body errorBody
	decode(t, rec, &body)
	return body.Error.Code
}

func TestState(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/state", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var st composition.State
	decode(t, rec, &st)
	if len(st.Layers) != 0 || st.ContainerWidth != composition.DefaultContainerWidth {
		t.Errorf("state = %+v", st)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
}

func TestAddLayer(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("hero.png", 200, 100)

	if l.ID != "layer-1" || l.Image.Filename != "hero.png" || l.Image.Width != 200 || l.Image.Height != 100 {
		t.Errorf("layer = %+v", l)
	}
	if st := f.sess.Store.State(); st.Selected != composition.Selection(l.ID) {
		t.Errorf("selected = %q", st.Selected)
	}

	rec := f.do(http.MethodGet, "/assets/"+l.Image.Src, nil, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("GET asset = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestAddLayerRejectsBadUploads(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name string
		rec  *httptest.ResponseRecorder
	}{
		{"not an image", f.upload(http.MethodPost, "/layers", "notes.png", []byte("hello"))},
		{"no file", f.json(http.MethodPost, "/layers", `{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d: %s", tt.rec.Code, tt.rec.Body)
			}
		})
	}
	if n := len(f.sess.Store.State().Layers); n != 0 {
		t.Errorf("layers = %d, want 0", n)
	}
}

func TestUpdateLayer(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("hero.png", 200, 100)

	rec := f.json(http.MethodPatch, "/layers/"+l.ID, `{"scale": 2, "xAlign": "left", "xPosition": 12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got composition.Layer
	decode(t, rec, &got)
	if w, _ := got.Width.Value(); w != 400 {
		t.Errorf("width = %v, want 400", got.Width)
	}
	if h, _ := got.Height.Value(); h != 200 {
		t.Errorf("height = %v, want 200", got.Height)
	}
	if got.XAlign != composition.AlignLeft || got.XPosition != 12 {
		t.Errorf("layer = %+v", got)
	}

	rec = f.json(http.MethodPatch, "/layers/"+l.ID, `{"width": "auto"}`)
	decode(t, rec, &got)
	if !got.Width.IsAuto() {
		t.Errorf("width = %v, want auto", got.Width)
	}

	rec = f.json(http.MethodPatch, "/layers/"+l.ID, `{"height": 50.6}`)
	decode(t, rec, &got)
	if h, _ := got.Height.Value(); h != 51 {
		t.Errorf("height = %v, want 51px", got.Height)
	}

	rec = f.json(http.MethodPatch, "/layers/"+l.ID, `{"height": null}`)
	decode(t, rec, &got)
	if !got.Height.IsAuto() {
		t.Errorf("null height = %v, want auto", got.Height)
	}
}

func TestUpdateLayerErrors(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("hero.png", 200, 100)

	tests := []struct {
		name       string
		path, body string
		status     int
		code       errors.Code
	}{
		{"unknown id", "/layers/layer-99", `{"xPosition": 1}`, http.StatusNotFound, errors.ErrCodeLayerNotFound},
		{"invalid scale", "/layers/" + l.ID, `{"scale": 0}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidScale},
		{"scale overflows size", "/layers/" + l.ID, `{"scale": 1e300}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidScale},
		{"invalid alignment", "/layers/" + l.ID, `{"xAlign": "middle"}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
		{"unknown field", "/layers/" + l.ID, `{"rotation": 45}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
		{"malformed", "/layers/" + l.ID, `{`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.json(http.MethodPatch, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}

	if got, _ := f.sess.Store.State().Layer(l.ID); got.Scale != 1 {
		t.Errorf("rejected updates changed the layer: %+v", got)
	}
}

func TestRemoveLayer(t *testing.T) {
	f := newFixture(t, nil)
	a := f.addLayer("a.png", 10, 10)
	b := f.addLayer("b.png", 10, 10)

	if rec := f.do(http.MethodDelete, "/layers/"+b.ID, nil, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", rec.Code)
	}
	st := f.sess.Store.State()
	if len(st.Layers) != 1 || st.Selected != composition.Selection(a.ID) {
		t.Errorf("state after remove = %+v", st)
	}
	if _, ok := f.sess.Assets.Get(b.Image.Src); ok {
		t.Error("asset of removed layer should be pruned")
	}
	if rec := f.do(http.MethodGet, "/assets/"+b.Image.Src, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET pruned asset = %d", rec.Code)
	}
	if rec := f.do(http.MethodDelete, "/layers/"+b.ID, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d", rec.Code)
	}
}

func TestReplaceImage(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("a.png", 10, 10)
	f.json(http.MethodPatch, "/layers/"+l.ID, `{"width": 50}`)

	rec := f.upload(http.MethodPut, "/layers/"+l.ID+"/image", "b.png", encodePNG(t, 30, 20))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got composition.Layer
	decode(t, rec, &got)
	if got.Image.Filename != "b.png" || !got.Width.IsAuto() {
		t.Errorf("layer = %+v", got)
	}
	if f.sess.Assets.Len() != 1 {
		t.Errorf("assets = %d, want 1", f.sess.Assets.Len())
	}

	rec = f.upload(http.MethodPut, "/layers/layer-9/image", "c.png", encodePNG(t, 1, 1))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown layer status = %d", rec.Code)
	}
	if f.sess.Assets.Len() != 1 {
		t.Error("upload for an unknown layer should not register an asset")
	}
}

func TestToggleVisibility(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("a.png", 10, 10)

	rec := f.do(http.MethodPost, "/layers/"+l.ID+"/visibility", nil, "")
	var got composition.Layer
	decode(t, rec, &got)
	if got.Visible {
		t.Error("layer should be hidden after toggle")
	}
	if rec := f.do(http.MethodPost, "/layers/nope/visibility", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown layer status = %d", rec.Code)
	}
}

func TestReorder(t *testing.T) {
	f := newFixture(t, nil)
	for _, n := range []string{"a.png", "b.png", "c.png"} {
		f.addLayer(n, 10, 10)
	}

	rec := f.json(http.MethodPost, "/layers/reorder", `{"from": 0, "to": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var st composition.State
	decode(t, rec, &st)
	var ids []string
	for _, l := range st.Layers {
		ids = append(ids, l.ID)
		if want := len(ids); l.ZIndex != want {
			t.Errorf("%s zIndex = %d, want %d", l.ID, l.ZIndex, want)
		}
	}
	if strings.Join(ids, ",") != "layer-2,layer-3,layer-1" {
		t.Errorf("order = %v", ids)
	}

	if rec := f.json(http.MethodPost, "/layers/reorder", `{"from": 0, "to": 3}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("out of range status = %d", rec.Code)
	}
}

func TestSelection(t *testing.T) {
	f := newFixture(t, nil)
	a := f.addLayer("a.png", 10, 10)
	f.addLayer("b.png", 10, 10)

	tests := []struct {
		body   string
		status int
		want   composition.Selection
	}{
		{`{"selected": "` + a.ID + `"}`, http.StatusOK, composition.Selection(a.ID)},
		{`{"selected": "background"}`, http.StatusOK, composition.SelectBackground},
		{`{"selected": ""}`, http.StatusOK, composition.SelectNone},
		{`{"selected": "layer-42"}`, http.StatusNotFound, composition.SelectNone},
	}
	for _, tt := range tests {
		rec := f.json(http.MethodPut, "/selection", tt.body)
		if rec.Code != tt.status {
			t.Errorf("PUT %s = %d, want %d", tt.body, rec.Code, tt.status)
		}
		if got := f.sess.Store.State().Selected; got != tt.want {
			t.Errorf("after %s selected = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestBackground(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.json(http.MethodPatch, "/background", `{"type": "gradient", "gradientStart": "#000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var bg composition.Background
	decode(t, rec, &bg)
	if bg.Type != composition.BackgroundGradient || bg.GradientStart != "#000000" || bg.GradientEnd != composition.DefaultGradientEnd {
		t.Errorf("background = %+v", bg)
	}

	rec = f.json(http.MethodPatch, "/background", `{"color": "red"}`)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != errors.ErrCodeInvalidColor {
		t.Errorf("invalid color = %d: %s", rec.Code, rec.Body)
	}

	rec = f.upload(http.MethodPut, "/background/image", "bg.png", encodePNG(t, 8, 8))
	decode(t, rec, &bg)
	if bg.Image.Filename != "bg.png" {
		t.Errorf("background image = %+v", bg.Image)
	}
	old := bg.Image.Src
	f.upload(http.MethodPut, "/background/image", "bg2.png", encodePNG(t, 8, 8))
	if _, ok := f.sess.Assets.Get(old); ok {
		t.Error("replaced background image should be pruned")
	}
}

func TestContainer(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		body   string
		status int
		want   int
	}{
		{`{"width": 1000}`, http.StatusOK, 1000},
		{`{"width": 5000}`, http.StatusOK, composition.MaxContainerWidth},
		{`{"width": 10}`, http.StatusOK, composition.MinContainerWidth},
		{`{}`, http.StatusUnprocessableEntity, 0},
	}
	for _, tt := range tests {
		rec := f.json(http.MethodPut, "/container", tt.body)
		if rec.Code != tt.status {
			t.Errorf("PUT %s = %d, want %d", tt.body, rec.Code, tt.status)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var body containerBody
		decode(t, rec, &body)
		if body.Width == nil || *body.Width != tt.want {
			t.Errorf("PUT %s width = %v, want %d", tt.body, body.Width, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t, nil)
	f.addLayer("a.png", 10, 10)
	f.addLayer("b.png", 10, 10)

	rec := f.do(http.MethodPost, "/clear", nil, "")
	var st composition.State
	decode(t, rec, &st)
	if len(st.Layers) != 0 || f.sess.Assets.Len() != 0 {
		t.Errorf("after clear: layers = %d, assets = %d", len(st.Layers), f.sess.Assets.Len())
	}
	if l := f.addLayer("c.png", 10, 10); l.ID != "layer-3" {
		t.Errorf("id after clear = %s, want layer-3", l.ID)
	}
}

func TestExport(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, fc)
	f.addLayer("hero.png", 200, 100)

	rec := f.do(http.MethodGet, "/export/json", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	want, _ := sink.RenderJSON(f.sess.Store.State())
	if !bytes.Equal(rec.Body.Bytes(), want) {
		t.Errorf("json export differs from sink output:\n%s", rec.Body)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("first export X-Cache = %q", rec.Header().Get("X-Cache"))
	}
	if rec := f.do(http.MethodGet, "/export/json", nil, ""); rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("second export X-Cache = %q", rec.Header().Get("X-Cache"))
	}

	rec = f.do(http.MethodGet, "/export/html?class_prefix=hero-card&download=true", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("html status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `class="hero-card"`) {
		t.Error("class prefix not applied")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "composition.html") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = f.do(http.MethodGet, "/export/json?compact=true", nil, "")
	if bytes.Contains(bytes.TrimSpace(rec.Body.Bytes()), []byte("\n")) {
		t.Error("compact export should be a single line")
	}
}

func TestExportErrors(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		path   string
		status int
	}{
		{"/export/svg", http.StatusNotFound},
		{"/export/html?min_height=tall", http.StatusUnprocessableEntity},
		{"/export/html?class_prefix=a%20b", http.StatusUnprocessableEntity},
		{"/export/json?refresh=maybe", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		if rec := f.do(http.MethodGet, tt.path, nil, ""); rec.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t, nil)
	l := f.addLayer("hero.png", 20, 10)

	rec := f.do(http.MethodGet, "/preview", nil, "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("preview = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	for _, want := range []string{`data-layer-id="` + l.ID + `"`, `src="/assets/` + l.Image.Src + `"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("preview missing %s", want)
		}
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, nil)
	for _, path := range []string{"/nope", "/assets/asset:missing", "/layers/layer-1"} {
		rec := f.do(http.MethodGet, path, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d", path, rec.Code)
			continue
		}
		if code := errorCode(t, rec); code == "" {
			t.Errorf("GET %s: error body has no code", path)
		}
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/version", nil, "")
	var info map[string]string
	decode(t, rec, &info)
	if info["version"] == "" {
		t.Errorf("version = %v", info)
	}
}
