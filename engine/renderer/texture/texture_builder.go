package texture

import (
	"github.com/Carmen-Shannon/oxy-render/common"
)

// TextureBuilderOption is a function that configures a texture instance during construction.
type TextureBuilderOption func(*texture)

// WithPixels stages already-decoded RGBA pixels and marks the texture ready.
//
// Parameters:
//   - data: RGBA8 pixel data and dimensions
//
// Returns:
//   - TextureBuilderOption: a function that applies the pixel option to a texture
func WithPixels(data common.TextureStagingData) TextureBuilderOption {
	return func(t *texture) {
		t.staging.Store(&data)
		t.MarkReady()
	}
}

// WithSource sets encoded image bytes to decode later.
//
// Parameters:
//   - data: encoded PNG, JPEG, BMP, TIFF or WebP bytes
//
// Returns:
//   - TextureBuilderOption: a function that applies the source option to a texture
func WithSource(data []byte) TextureBuilderOption {
	return func(t *texture) {
		t.source = &common.ImportedTexture{Name: t.name, Data: data}
	}
}

// WithFile sets an image file to decode later.
//
// Parameters:
//   - path: path to the image on disk
//
// Returns:
//   - TextureBuilderOption: a function that applies the file option to a texture
func WithFile(path string) TextureBuilderOption {
	return func(t *texture) {
		t.source = &common.ImportedTexture{Name: t.name, Path: path}
	}
}

// Solid returns 1x1 RGBA staging data of a single colour.
func Solid(r, g, b, a uint8) common.TextureStagingData {
	return common.TextureStagingData{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}
