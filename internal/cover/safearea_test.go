package cover

import (
	"image"
	"testing"

	"github.com/bookforge/cover-service/internal/model"
)

func TestSafeAreaPlacementPaperback(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	for pages := 24; pages <= 828; pages += 101 {
		spec := paperbackSpec()
		spec.PageCount = pages
		geo, err := e.ComputeGeometry(spec)
		if err != nil {
			t.Fatalf("pages %d: %v", pages, err)
		}

		box, ok := e.SafeArea(geo)
		if !ok {
			t.Fatalf("pages %d: no safe area for paperback", pages)
		}

		back := geo.BackRect()
		spine := geo.SpineRect()

		// 0.25in clearance at 300 DPI.
		if got, want := back.Max.X-box.Rect.Max.X, 75; got != want {
			t.Errorf("pages %d: spine-side clearance %dpx, want %d", pages, got, want)
		}
		if got, want := geo.HeightPx-geo.BleedPx-box.Rect.Max.Y, 75; got != want {
			t.Errorf("pages %d: bottom clearance %dpx, want %d", pages, got, want)
		}
		if box.Rect.Max.X > spine.Min.X {
			t.Errorf("pages %d: safe area %v overlaps spine %v", pages, box.Rect, spine)
		}
		if !box.Rect.In(back) {
			t.Errorf("pages %d: safe area %v escapes back panel %v", pages, box.Rect, back)
		}

		// 2.0in x 1.2in box.
		if box.Rect.Dx() != 600 || box.Rect.Dy() != 360 {
			t.Errorf("pages %d: safe area %dx%d px, want 600x360", pages, box.Rect.Dx(), box.Rect.Dy())
		}
	}
}

func TestSafeAreaHardbackClearance(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	spec := paperbackSpec()
	spec.Class = model.ClassHardback
	geo, err := e.ComputeGeometry(spec)
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}

	box, ok := e.SafeArea(geo)
	if !ok {
		t.Fatal("no safe area for hardback")
	}

	// 0.76in clearance at 300 DPI.
	if got, want := geo.BackRect().Max.X-box.Rect.Max.X, 228; got != want {
		t.Errorf("spine-side clearance %dpx, want %d", got, want)
	}
}

func TestSafeAreaDigitalAbsent(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	geo, err := e.ComputeGeometry(model.CoverSpec{Class: model.ClassDigital})
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}
	if _, ok := e.SafeArea(geo); ok {
		t.Error("digital covers must not get a safe area")
	}
}

func TestStampSafeAreaIdempotent(t *testing.T) {
	e := newTestEngine(t, testPlatform())

	geo, err := e.ComputeGeometry(paperbackSpec())
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}

	canvas := image.Image(uniformImage(geo.WidthPx, geo.HeightPx, darkInk))
	once := e.StampSafeArea(canvas, geo)
	twice := e.StampSafeArea(once, geo)

	b := once.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r1, g1, b1, a1 := once.At(x, y).RGBA()
			r2, g2, b2, a2 := twice.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) drifted after second stamp", x, y)
			}
		}
	}

	// The stamped box interior is white.
	box, _ := e.SafeArea(geo)
	mid := box.Rect.Min.Add(box.Rect.Size().Div(2))
	if l := Luminance(once.At(mid.X, mid.Y)); l < 0.99 {
		t.Errorf("safe area interior luminance %.3f, want white", l)
	}
}
