package cover

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/bookforge/cover-service/internal/model"
)

// SafeAreaBox is the reserved rectangle where the vendor overlays the
// barcode. Derived per request from the canvas geometry, never persisted.
type SafeAreaBox struct {
	Rect image.Rectangle
}

// SafeArea computes the barcode box for print geometries: a fixed
// 2.0"x1.2" rectangle in the lower-right of the back panel, held off the
// bottom trim edge and the spine boundary by the class's clearance.
// ok is false for digital covers, which carry no barcode.
func (e *Engine) SafeArea(geo CanvasGeometry) (SafeAreaBox, bool) {
	if !geo.Class.IsPrint() {
		return SafeAreaBox{}, false
	}
	p := e.platform

	clearanceIn := p.PaperbackClearanceIn
	if geo.Class == model.ClassHardback {
		clearanceIn = p.HardbackClearanceIn
	}

	dpi := float64(geo.DPI)
	w := roundPx(p.SafeAreaWidthIn * dpi)
	h := roundPx(p.SafeAreaHeightIn * dpi)
	clearance := roundPx(clearanceIn * dpi)

	back := geo.BackRect()
	x2 := back.Max.X - clearance          // clearance from the spine boundary
	y2 := geo.HeightPx - geo.BleedPx - clearance // clearance from the bottom trim edge

	return SafeAreaBox{Rect: image.Rect(x2-w, y2-h, x2, y2)}, true
}

// StampSafeArea draws the safe-area box onto the canvas: an opaque white
// rectangle plus a 1px gray border. The border is a design-time visual
// aid only and is called out in the result warnings so reviewers of
// vendor-submitted files know it is deliberate.
//
// Stamping is idempotent: the box is recomputed from geometry alone, so
// repeated calls redraw the identical rectangle with no drift.
func (e *Engine) StampSafeArea(canvas image.Image, geo CanvasGeometry) image.Image {
	box, ok := e.SafeArea(geo)
	if !ok {
		return canvas
	}

	r := box.Rect
	dc := gg.NewContextForImage(canvas)

	dc.SetColor(color.White)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff})
	dc.SetLineWidth(1)
	dc.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5, float64(r.Dx())-1, float64(r.Dy())-1)
	dc.Stroke()

	return dc.Image()
}
