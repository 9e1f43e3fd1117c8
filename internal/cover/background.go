package cover

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	// Register the common raster decoders so image.Decode can sniff any
	// of them from the source bytes.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/bookforge/cover-service/internal/model"
)

// loadBackground normalizes the spec's source into a bitmap at exactly
// target size. Raster sources and PDF first pages are cover-fitted:
// scaled uniformly by max(tw/sw, th/sh) and center-cropped, never
// stretched. With no source, the background is generated from the style
// tag instead.
func (e *Engine) loadBackground(spec model.CoverSpec, widthPx, heightPx int) (image.Image, error) {
	if len(spec.Source) == 0 {
		return e.proceduralBackground(spec, widthPx, heightPx)
	}

	src, err := e.decodeSource(spec.Source)
	if err != nil {
		return nil, err
	}

	// Fill = uniform scale to cover + center crop. Non-uniform scaling
	// distorts cover art and is deliberately impossible here.
	return imaging.Fill(src, widthPx, heightPx, imaging.Center, imaging.Lanczos), nil
}

func (e *Engine) decodeSource(data []byte) (image.Image, error) {
	if isPDF(data) {
		if e.rasterizer == nil {
			return nil, fmt.Errorf("%w: PDF source but no page rasterizer configured", ErrUnsupportedSource)
		}
		img, err := e.rasterizer.FirstPage(data, e.platform.DPI)
		if err != nil {
			return nil, fmt.Errorf("%w: rasterizing PDF first page: %v", ErrUnsupportedSource, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	return img, nil
}

// proceduralBackground renders the style-tag fallback at exactly the
// target size: a vertical blend of the accent colors, a solid fill, or a
// near-white field with a thin accent border.
func (e *Engine) proceduralBackground(spec model.CoverSpec, widthPx, heightPx int) (image.Image, error) {
	primary := parseHexColor(spec.PrimaryHex, color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff})
	secondary := parseHexColor(spec.SecondaryHex, color.NRGBA{R: 0x76, G: 0x4b, B: 0xa2, A: 0xff})

	dc := gg.NewContext(widthPx, heightPx)

	switch spec.Style {
	case model.StyleSolid:
		dc.SetColor(primary)
		dc.Clear()
	case model.StyleMinimal:
		dc.SetColor(color.NRGBA{R: 0xfa, G: 0xfa, B: 0xf7, A: 0xff})
		dc.Clear()
		border := float64(minInt(widthPx, heightPx)) * 0.01
		dc.SetColor(primary)
		dc.SetLineWidth(border)
		inset := border * 2
		dc.DrawRectangle(inset, inset, float64(widthPx)-2*inset, float64(heightPx)-2*inset)
		dc.Stroke()
	default: // gradient is also the fallback when no style is set
		grad := gg.NewLinearGradient(0, 0, 0, float64(heightPx))
		grad.AddColorStop(0, primary)
		grad.AddColorStop(1, secondary)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(widthPx), float64(heightPx))
		dc.Fill()
	}

	return dc.Image(), nil
}

// parseHexColor reads a #rrggbb accent color, falling back to a default
// on anything malformed — accent colors are cosmetic, not part of the
// validation contract.
func parseHexColor(hex string, fallback color.NRGBA) color.NRGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
