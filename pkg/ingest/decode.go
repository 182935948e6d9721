// Package ingest turns image files and URLs into composition images.
//
// Decoding only reads the image header to learn the natural size; pixel
// data is kept as opaque bytes in an [Assets] registry and referenced from
// [composition.Image.Src] by an "asset:<uuid>" ref. Nothing reaches the
// store until an image is fully decoded, so a half-loaded layer is never
// observable.
//
// Supported formats: PNG, JPEG, GIF, WebP, BMP and TIFF.
//
// [composition.Image.Src]: github.com/matzehuels/cardcomposer/pkg/composition.Image
package ingest

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"path"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/cardcomposer/pkg/errors"
)

// Meta is the decoded header of an image.
type Meta struct {
	Format string
	Width  int
	Height int
}

// Decode reads the natural size of the image in data. name is only used in
// error messages.
func Decode(name string, data []byte) (Meta, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Meta{}, errors.Wrap(errors.ErrCodeAssetLoad, err, "decode %s", name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Meta{}, errors.New(errors.ErrCodeAssetLoad, "decode %s: empty image", name)
	}
	return Meta{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ContentType returns the MIME type for a decoded format name.
func ContentType(format string) string {
	switch format {
	case "png", "gif", "jpeg", "webp", "bmp", "tiff":
		return "image/" + format
	}
	return "application/octet-stream"
}

// Filename returns the display name for a source path or URL. URLs
// without a path segment are named "image".
func Filename(source string) string {
	if errors.IsURL(source) {
		u, err := url.Parse(source)
		if err != nil {
			return "image"
		}
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
		return "image"
	}
	return path.Base(source)
}
