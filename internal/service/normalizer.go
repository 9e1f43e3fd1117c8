package service

import (
	"bytes"
	"fmt"

	"github.com/h2non/bimg"
)

// Normalizer converts arbitrary upload bytes into a raster the engine's
// decoders handle reliably. The service treats it as optional: when
// normalization fails or no normalizer is configured, the original bytes
// go to the engine as-is.
type Normalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// VipsNormalizer uses bimg (Go bindings for libvips) to flatten any
// supported upload — HEIC, SVG, AVIF, CMYK JPEG — into sRGB PNG. libvips
// is a C library and a system dependency; that trade-off buys format
// coverage the pure-Go decoders don't have.
type VipsNormalizer struct{}

// Normalize re-encodes the upload as an sRGB PNG.
func (VipsNormalizer) Normalize(data []byte) ([]byte, error) {
	img := bimg.NewImage(data)

	out, err := img.Process(bimg.Options{
		Type:           bimg.PNG,
		Interpretation: bimg.InterpretationSRGB,
	})
	if err != nil {
		return nil, fmt.Errorf("normalizing upload: %w", err)
	}
	return out, nil
}

// isPDF sniffs the paged-document magic; PDFs bypass normalization and go
// straight to the engine's page rasterizer.
func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}
