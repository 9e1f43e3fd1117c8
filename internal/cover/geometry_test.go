package cover

import (
	"errors"
	"math"
	"testing"

	"github.com/bookforge/cover-service/internal/model"
)

func newTestEngine(t *testing.T, p PlatformSpec) *Engine {
	t.Helper()
	e, err := New(p)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return e
}

// testPlatform is the default platform with the resolution lowered so
// print canvases stay small enough for fast tests. Physical constants are
// unchanged.
func testPlatform() PlatformSpec {
	p := DefaultPlatform()
	p.DPI = 30
	p.DigitalWidthPx = 320
	p.DigitalHeightPx = 512
	return p
}

func paperbackSpec() model.CoverSpec {
	return model.CoverSpec{
		Class:        model.ClassPaperback,
		TrimWidthIn:  6.0,
		TrimHeightIn: 9.0,
		PageCount:    300,
		PaperStock:   model.StockWhite,
		Title:        "The Test Title",
		Author:       "A. Author",
	}
}

func TestPaperbackGeometry(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	geo, err := e.ComputeGeometry(paperbackSpec())
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}

	// 300 white pages at 0.0025in/page.
	if math.Abs(geo.SpineIn-0.75) > 0.01 {
		t.Errorf("spine width = %.4fin, want 0.75 +/- 0.01", geo.SpineIn)
	}

	// 2*0.125 bleed + 2*6.0 panels + 0.75 spine = 13.0in at 300 DPI.
	if geo.WidthPx != 3900 {
		t.Errorf("canvas width = %dpx, want 3900", geo.WidthPx)
	}
	// 2*0.125 bleed + 9.0 trim = 9.25in.
	if geo.HeightPx != 2775 {
		t.Errorf("canvas height = %dpx, want 2775", geo.HeightPx)
	}
	if geo.FlapPx != 0 {
		t.Errorf("paperback flap = %dpx, want 0", geo.FlapPx)
	}
}

func TestSpineAdditivity(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	for _, stock := range []model.PaperStock{model.StockWhite, model.StockCream, model.StockColor} {
		for pages := 24; pages <= 828; pages += 67 {
			spec := paperbackSpec()
			spec.PaperStock = stock
			spec.PageCount = pages

			geo, err := e.ComputeGeometry(spec)
			if err != nil {
				t.Fatalf("stock %s pages %d: %v", stock, pages, err)
			}

			sum := geo.FrontPx + geo.SpinePx + geo.BackPx + 2*geo.BleedPx
			if sum != geo.WidthPx {
				t.Errorf("stock %s pages %d: panels sum to %dpx, canvas is %dpx",
					stock, pages, sum, geo.WidthPx)
			}
		}
	}
}

func TestHardbackAdditivity(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	spec := paperbackSpec()
	spec.Class = model.ClassHardback

	geo, err := e.ComputeGeometry(spec)
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}

	sum := geo.FrontPx + geo.SpinePx + geo.BackPx + 2*geo.FlapPx + 2*geo.BleedPx
	if sum != geo.WidthPx {
		t.Errorf("panels sum to %dpx, canvas is %dpx", sum, geo.WidthPx)
	}

	// Each flap is half the trim width.
	if geo.FlapPx != 900 {
		t.Errorf("flap = %dpx, want 900", geo.FlapPx)
	}
}

func TestSpineMonotonicity(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	prev := -1.0
	for pages := 24; pages <= 828; pages += 13 {
		spec := paperbackSpec()
		spec.PageCount = pages

		geo, err := e.ComputeGeometry(spec)
		if err != nil {
			t.Fatalf("pages %d: %v", pages, err)
		}
		if geo.SpineIn < prev {
			t.Errorf("pages %d: spine %.4fin shrank from %.4fin", pages, geo.SpineIn, prev)
		}
		prev = geo.SpineIn
	}
}

func TestHardbackSpineIncludesBoard(t *testing.T) {
	p := DefaultPlatform()

	w, err := p.SpineWidthIn(300, model.StockCream, model.ClassHardback)
	if err != nil {
		t.Fatalf("SpineWidthIn failed: %v", err)
	}
	// 300 * 0.0027 + 0.25 board.
	if math.Abs(w-1.06) > 0.001 {
		t.Errorf("hardback cream spine = %.4fin, want 1.06", w)
	}
}

func TestDigitalIgnoresPrintFields(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	// No page count, no stock, no trim: all irrelevant for screens.
	geo, err := e.ComputeGeometry(model.CoverSpec{Class: model.ClassDigital})
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}
	if geo.WidthPx != 1600 || geo.HeightPx != 2560 {
		t.Errorf("digital canvas = %dx%d, want 1600x2560", geo.WidthPx, geo.HeightPx)
	}
	if geo.BleedPx != 0 || geo.SpinePx != 0 {
		t.Errorf("digital canvas has print margins: bleed=%d spine=%d", geo.BleedPx, geo.SpinePx)
	}
}

func TestPanelRectsTile(t *testing.T) {
	e := newTestEngine(t, DefaultPlatform())

	spec := paperbackSpec()
	spec.Class = model.ClassHardback
	geo, err := e.ComputeGeometry(spec)
	if err != nil {
		t.Fatalf("ComputeGeometry failed: %v", err)
	}

	left := geo.LeftFlapRect()
	back := geo.BackRect()
	spine := geo.SpineRect()
	front := geo.FrontRect()
	right := geo.RightFlapRect()

	if left.Max.X != back.Min.X || back.Max.X != spine.Min.X ||
		spine.Max.X != front.Min.X || front.Max.X != right.Min.X {
		t.Errorf("panels do not tile: flap %v back %v spine %v front %v flap %v",
			left, back, spine, front, right)
	}
	if left.Min.X != geo.BleedPx {
		t.Errorf("left flap starts at %d, want bleed %d", left.Min.X, geo.BleedPx)
	}
	if right.Max.X != geo.WidthPx-geo.BleedPx {
		t.Errorf("right flap ends at %d, want %d", right.Max.X, geo.WidthPx-geo.BleedPx)
	}
}

func TestValidateSpecRejections(t *testing.T) {
	p := DefaultPlatform()

	cases := []struct {
		name   string
		mutate func(*model.CoverSpec)
	}{
		{"unknown class", func(s *model.CoverSpec) { s.Class = "poster" }},
		{"unknown stock", func(s *model.CoverSpec) { s.PaperStock = "vellum" }},
		{"zero pages", func(s *model.CoverSpec) { s.PageCount = 0 }},
		{"too few pages", func(s *model.CoverSpec) { s.PageCount = 12 }},
		{"too many pages", func(s *model.CoverSpec) { s.PageCount = 2000 }},
		{"zero trim", func(s *model.CoverSpec) { s.TrimWidthIn = 0 }},
		{"negative trim", func(s *model.CoverSpec) { s.TrimHeightIn = -9 }},
		{"unknown style", func(s *model.CoverSpec) { s.Style = "baroque" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := paperbackSpec()
			tc.mutate(&spec)
			if err := validateSpec(p, spec); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("got %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestValidateDigitalSkipsPrintChecks(t *testing.T) {
	// A digital spec with no trim, stock, or page count is valid.
	if err := validateSpec(DefaultPlatform(), model.CoverSpec{Class: model.ClassDigital}); err != nil {
		t.Errorf("digital spec rejected: %v", err)
	}
}

func TestStandardTrimLookup(t *testing.T) {
	if _, ok := StandardTrim(6.0, 9.0); !ok {
		t.Error("6x9 should be in the standard catalog")
	}
	if _, ok := StandardTrim(6.004, 8.996); !ok {
		t.Error("lookup should tolerate a hundredth of an inch")
	}
	if _, ok := StandardTrim(5.9, 8.8); ok {
		t.Error("5.9x8.8 should be off-catalog")
	}
}
