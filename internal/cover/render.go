package cover

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/bookforge/cover-service/internal/model"
)

const jpegQuality = 95

// render serializes the composed canvas into the artifact the cover class
// requires: a high-quality JPEG for digital covers, or a single-page PDF
// sized exactly to the physical wrap dimensions with the raster embedded
// 1:1 for print covers. Exceeding the platform's byte ceiling is a hard
// error, checked before anything is returned.
func (e *Engine) render(canvas image.Image, geo CanvasGeometry, spec model.CoverSpec) ([]byte, string, error) {
	jpg, err := encodeJPEG(canvas, geo.DPI)
	if err != nil {
		return nil, "", renderErr("encoding jpeg", err)
	}

	if !geo.Class.IsPrint() {
		if len(jpg) > e.platform.MaxDigitalBytes {
			return nil, "", fmt.Errorf("%w: digital cover is %d bytes, ceiling %d",
				ErrOutputTooLarge, len(jpg), e.platform.MaxDigitalBytes)
		}
		return jpg, "jpg", nil
	}

	pdf, err := embedInPDF(jpg, geo, spec.Title)
	if err != nil {
		return nil, "", renderErr("building pdf", err)
	}
	if len(pdf) > e.platform.MaxPrintBytes {
		return nil, "", fmt.Errorf("%w: print cover is %d bytes, ceiling %d",
			ErrOutputTooLarge, len(pdf), e.platform.MaxPrintBytes)
	}
	return pdf, "pdf", nil
}

// encodeJPEG produces sRGB JPEG bytes with the resolution recorded in the
// JFIF header so print tooling reads the intended DPI.
func encodeJPEG(img image.Image, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return withJFIFDensity(buf.Bytes(), dpi)
}

// withJFIFDensity inserts a JFIF APP0 segment declaring the pixel density
// in dots per inch. The standard library encoder emits no APP0 at all, so
// the segment is spliced in directly after SOI.
func withJFIFDensity(jpg []byte, dpi int) ([]byte, error) {
	if len(jpg) < 2 || jpg[0] != 0xff || jpg[1] != 0xd8 {
		return nil, fmt.Errorf("not a JPEG stream")
	}

	app0 := []byte{
		0xff, 0xe0, // APP0 marker
		0x00, 0x10, // segment length (16)
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x02, // JFIF 1.02
		0x01,                                 // density units: dots per inch
		byte(dpi >> 8), byte(dpi), // X density
		byte(dpi >> 8), byte(dpi), // Y density
		0x00, 0x00, // no thumbnail
	}

	out := make([]byte, 0, len(jpg)+len(app0))
	out = append(out, jpg[:2]...)
	out = append(out, app0...)
	out = append(out, jpg[2:]...)
	return out, nil
}

// embedInPDF wraps the JPEG in a one-page PDF whose page size equals the
// canvas's physical dimensions; the image fills the page edge to edge
// with no rescaling of the print intent.
func embedInPDF(jpg []byte, geo CanvasGeometry, title string) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "in",
		Size:    gofpdf.SizeType{Wd: geo.TotalWidthIn, Ht: geo.TotalHeightIn},
	})
	pdf.SetTitle(title, true)
	pdf.SetCreator("cover-service", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("cover", opts, bytes.NewReader(jpg))
	pdf.ImageOptions("cover", 0, 0, geo.TotalWidthIn, geo.TotalHeightIn, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
