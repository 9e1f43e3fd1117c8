package cover

import (
	"image"
	"math"

	"github.com/bookforge/cover-service/internal/model"
)

// CanvasGeometry is the exact pixel layout for one cover, derived fresh
// per request and never cached. Panel widths always sum to WidthPx:
// any remainder from integer pixel rounding is absorbed into the spine,
// which is the panel least sensitive to a one-pixel shift.
type CanvasGeometry struct {
	Class model.CoverClass

	WidthPx  int
	HeightPx int
	DPI      int

	BleedPx int
	FrontPx int
	BackPx  int
	SpinePx int
	FlapPx  int // per flap, hardback only

	SpineIn       float64
	TotalWidthIn  float64
	TotalHeightIn float64
}

// Panel x-offsets, left to right. Digital covers are a single front panel
// with no bleed; print wraps run [flap_l] back spine front [flap_r] inside
// the bleed margin.

// BackRect returns the back panel bounds. Zero rectangle for digital.
func (g CanvasGeometry) BackRect() image.Rectangle {
	if !g.Class.IsPrint() {
		return image.Rectangle{}
	}
	x := g.BleedPx + g.FlapPx
	return image.Rect(x, g.BleedPx, x+g.BackPx, g.HeightPx-g.BleedPx)
}

// SpineRect returns the spine panel bounds. Zero rectangle for digital.
func (g CanvasGeometry) SpineRect() image.Rectangle {
	if !g.Class.IsPrint() {
		return image.Rectangle{}
	}
	x := g.BleedPx + g.FlapPx + g.BackPx
	return image.Rect(x, g.BleedPx, x+g.SpinePx, g.HeightPx-g.BleedPx)
}

// FrontRect returns the front panel bounds; for digital this is the whole
// canvas.
func (g CanvasGeometry) FrontRect() image.Rectangle {
	if !g.Class.IsPrint() {
		return image.Rect(0, 0, g.WidthPx, g.HeightPx)
	}
	x := g.BleedPx + g.FlapPx + g.BackPx + g.SpinePx
	return image.Rect(x, g.BleedPx, x+g.FrontPx, g.HeightPx-g.BleedPx)
}

// LeftFlapRect and RightFlapRect return the dust-jacket flap bounds;
// zero rectangles for anything but hardback.
func (g CanvasGeometry) LeftFlapRect() image.Rectangle {
	if g.Class != model.ClassHardback {
		return image.Rectangle{}
	}
	return image.Rect(g.BleedPx, g.BleedPx, g.BleedPx+g.FlapPx, g.HeightPx-g.BleedPx)
}

func (g CanvasGeometry) RightFlapRect() image.Rectangle {
	if g.Class != model.ClassHardback {
		return image.Rectangle{}
	}
	x := g.WidthPx - g.BleedPx - g.FlapPx
	return image.Rect(x, g.BleedPx, x+g.FlapPx, g.HeightPx-g.BleedPx)
}

// SpineWidthIn derives spine thickness from page count and paper stock,
// plus the board allowance for hardback bindings. Pure function of its
// inputs; fails on unknown stock or non-positive page count.
func (p PlatformSpec) SpineWidthIn(pageCount int, stock model.PaperStock, class model.CoverClass) (float64, error) {
	perPage, ok := p.ThicknessPerPage[stock]
	if !ok {
		return 0, invalidSpecf("unknown paper stock %q", stock)
	}
	if pageCount <= 0 {
		return 0, invalidSpecf("page count must be positive, got %d", pageCount)
	}
	w := float64(pageCount) * perPage
	if class == model.ClassHardback {
		w += p.HardbackBoardIn
	}
	return w, nil
}

// ComputeGeometry derives the full pixel layout for a spec. It is a pure
// function: same spec and platform always yield the same geometry.
//
// Digital covers are a fixed absolute pixel size and deliberately ignore
// page count and paper stock — a screen cover is not a physical object.
func (e *Engine) ComputeGeometry(spec model.CoverSpec) (CanvasGeometry, error) {
	return computeGeometry(e.platform, spec)
}

func computeGeometry(p PlatformSpec, spec model.CoverSpec) (CanvasGeometry, error) {
	switch spec.Class {
	case model.ClassDigital:
		return CanvasGeometry{
			Class:         model.ClassDigital,
			WidthPx:       p.DigitalWidthPx,
			HeightPx:      p.DigitalHeightPx,
			DPI:           p.DPI,
			FrontPx:       p.DigitalWidthPx,
			TotalWidthIn:  float64(p.DigitalWidthPx) / float64(p.DPI),
			TotalHeightIn: float64(p.DigitalHeightPx) / float64(p.DPI),
		}, nil
	case model.ClassPaperback, model.ClassHardback:
		return computePrintGeometry(p, spec)
	default:
		return CanvasGeometry{}, invalidSpecf("unknown cover class %q", spec.Class)
	}
}

func computePrintGeometry(p PlatformSpec, spec model.CoverSpec) (CanvasGeometry, error) {
	if spec.TrimWidthIn <= 0 || spec.TrimHeightIn <= 0 {
		return CanvasGeometry{}, invalidSpecf("trim size must be positive, got %gx%g",
			spec.TrimWidthIn, spec.TrimHeightIn)
	}

	spineIn, err := p.SpineWidthIn(spec.PageCount, spec.PaperStock, spec.Class)
	if err != nil {
		return CanvasGeometry{}, err
	}

	bleedIn := p.PaperbackBleedIn
	flapIn := 0.0
	if spec.Class == model.ClassHardback {
		bleedIn = p.HardbackBleedIn
		flapIn = p.FlapFraction * spec.TrimWidthIn
	}

	totalWidthIn := 2*bleedIn + 2*flapIn + 2*spec.TrimWidthIn + spineIn
	totalHeightIn := 2*bleedIn + spec.TrimHeightIn

	dpi := float64(p.DPI)
	widthPx := roundPx(totalWidthIn * dpi)
	heightPx := roundPx(totalHeightIn * dpi)
	bleedPx := roundPx(bleedIn * dpi)
	panelPx := roundPx(spec.TrimWidthIn * dpi)
	flapPx := roundPx(flapIn * dpi)

	// The spine takes whatever is left so the panel sum is exact.
	spinePx := widthPx - 2*bleedPx - 2*flapPx - 2*panelPx

	return CanvasGeometry{
		Class:         spec.Class,
		WidthPx:       widthPx,
		HeightPx:      heightPx,
		DPI:           p.DPI,
		BleedPx:       bleedPx,
		FrontPx:       panelPx,
		BackPx:        panelPx,
		SpinePx:       spinePx,
		FlapPx:        flapPx,
		SpineIn:       spineIn,
		TotalWidthIn:  totalWidthIn,
		TotalHeightIn: totalHeightIn,
	}, nil
}

func roundPx(v float64) int {
	return int(math.Round(v))
}

// validateSpec applies the platform's input contract before any geometry
// or drawing work happens. Digital covers skip the print-only checks
// entirely so absent page counts and stocks do not error.
func validateSpec(p PlatformSpec, spec model.CoverSpec) error {
	if !model.ValidClass(string(spec.Class)) {
		return invalidSpecf("unknown cover class %q", spec.Class)
	}
	if spec.Style != "" && !model.ValidStyle(string(spec.Style)) {
		return invalidSpecf("unknown style %q", spec.Style)
	}
	if spec.Class == model.ClassDigital {
		return nil
	}
	if spec.TrimWidthIn <= 0 || spec.TrimHeightIn <= 0 {
		return invalidSpecf("trim size must be positive, got %gx%g",
			spec.TrimWidthIn, spec.TrimHeightIn)
	}
	if !model.ValidStock(string(spec.PaperStock)) {
		return invalidSpecf("unknown paper stock %q", spec.PaperStock)
	}
	if spec.PageCount <= 0 {
		return invalidSpecf("page count must be positive, got %d", spec.PageCount)
	}
	if spec.PageCount < p.MinPageCount || spec.PageCount > p.MaxPageCount {
		return invalidSpecf("page count %d outside platform bounds %d-%d",
			spec.PageCount, p.MinPageCount, p.MaxPageCount)
	}
	return nil
}
