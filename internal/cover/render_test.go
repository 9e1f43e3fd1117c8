package cover

import (
	"bytes"
	"errors"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/bookforge/cover-service/internal/model"
)

func TestEncodeJPEGDensityHeader(t *testing.T) {
	data, err := encodeJPEG(uniformImage(32, 32, color.White), 300)
	if err != nil {
		t.Fatalf("encodeJPEG failed: %v", err)
	}

	// SOI, then the spliced APP0 with JFIF identifier, inch units, and
	// 300x300 density.
	want := []byte{
		0xff, 0xd8,
		0xff, 0xe0, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x02,
		0x01,
		0x01, 0x2c, 0x01, 0x2c,
		0x00, 0x00,
	}
	if !bytes.HasPrefix(data, want) {
		t.Errorf("JPEG header = % x, want prefix % x", data[:24], want)
	}

	// The stream must still decode.
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding spliced JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("decoded size %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestWithJFIFDensityRejectsGarbage(t *testing.T) {
	if _, err := withJFIFDensity([]byte("PNG stream"), 300); err == nil {
		t.Error("expected error for non-JPEG input")
	}
	if _, err := withJFIFDensity(nil, 300); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDigitalCeilingEnforced(t *testing.T) {
	p := testPlatform()
	p.MaxDigitalBytes = 64 // below any real encoding
	e := newTestEngine(t, p)

	_, err := e.GenerateCover(model.CoverSpec{Class: model.ClassDigital, Title: "Over Budget"})
	if !errors.Is(err, ErrOutputTooLarge) {
		t.Errorf("got %v, want ErrOutputTooLarge", err)
	}
}

func TestPrintCeilingEnforced(t *testing.T) {
	p := testPlatform()
	p.MaxPrintBytes = 64
	e := newTestEngine(t, p)

	_, err := e.GenerateCover(paperbackSpec())
	if !errors.Is(err, ErrOutputTooLarge) {
		t.Errorf("got %v, want ErrOutputTooLarge", err)
	}
}

func TestPrintOutputIsPDF(t *testing.T) {
	e := newTestEngine(t, testPlatform())

	res, err := e.GenerateCover(paperbackSpec())
	if err != nil {
		t.Fatalf("GenerateCover failed: %v", err)
	}
	if res.Format != "pdf" {
		t.Errorf("format = %q, want pdf", res.Format)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: % x", res.Data[:8])
	}
}
