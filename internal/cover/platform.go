package cover

import "github.com/bookforge/cover-service/internal/model"

// PlatformSpec carries every physical constant the print-on-demand
// platform mandates. It is passed to the engine at construction instead of
// living in package-level globals, so tests and future platform revisions
// can substitute alternate tables without touching the geometry code.
//
// Both the generate and convert paths read this one table; the legacy tool
// this replaces kept two diverging hardback size sets in different code
// paths, which is exactly the defect this layout prevents.
type PlatformSpec struct {
	// DPI is the fixed output resolution for every cover class.
	DPI int

	// ThicknessPerPage maps paper stock to spine inches contributed per
	// page. Platform spine formulas: white 0.0025, cream 0.0027,
	// premium color 0.002347.
	ThicknessPerPage map[model.PaperStock]float64

	// HardbackBoardIn is added to the spine width for hardback bindings.
	HardbackBoardIn float64

	// PaperbackBleedIn and HardbackBleedIn are the wrap margins beyond
	// trim size on every edge.
	PaperbackBleedIn float64
	HardbackBleedIn  float64

	// FlapFraction sizes each dust-jacket flap as a fraction of trim
	// width. Flap width never depends on page count.
	FlapFraction float64

	// DigitalWidthPx and DigitalHeightPx fix the screen cover size
	// (1:1.6 portrait) regardless of trim or page count.
	DigitalWidthPx  int
	DigitalHeightPx int

	// Barcode safe area: physical box size plus per-class clearance from
	// the bottom trim edge and from the spine boundary.
	SafeAreaWidthIn          float64
	SafeAreaHeightIn         float64
	PaperbackClearanceIn     float64
	HardbackClearanceIn      float64

	// MinPageCount and MaxPageCount bound print-class page counts.
	MinPageCount int
	MaxPageCount int

	// Byte ceilings per artifact kind; exceeding one is a hard error.
	MaxDigitalBytes int
	MaxPrintBytes   int
}

// DefaultPlatform returns the platform constants current as of the V5
// print file setup calculator.
func DefaultPlatform() PlatformSpec {
	return PlatformSpec{
		DPI: 300,
		ThicknessPerPage: map[model.PaperStock]float64{
			model.StockWhite: 0.0025,
			model.StockCream: 0.0027,
			model.StockColor: 0.002347,
		},
		HardbackBoardIn:      0.25,
		PaperbackBleedIn:     0.125,
		HardbackBleedIn:      0.25,
		FlapFraction:         0.5,
		DigitalWidthPx:       1600,
		DigitalHeightPx:      2560,
		SafeAreaWidthIn:      2.0,
		SafeAreaHeightIn:     1.2,
		PaperbackClearanceIn: 0.25,
		HardbackClearanceIn:  0.76,
		MinPageCount:         24,
		MaxPageCount:         828,
		MaxDigitalBytes:      50 << 20,
		MaxPrintBytes:        650 << 20,
	}
}

// TrimSize is one entry of the platform's standard trim catalog.
type TrimSize struct {
	Name     string
	WidthIn  float64
	HeightIn float64
}

// StandardTrims is the platform's published trim-size catalog. Requests
// with off-catalog trims are still rendered, but flagged with a warning so
// the caller knows the vendor may reject the file.
var StandardTrims = []TrimSize{
	{"5x8", 5.0, 8.0},
	{"5.06x7.81", 5.06, 7.81},
	{"5.25x8", 5.25, 8.0},
	{"5.5x8.5", 5.5, 8.5},
	{"6x9", 6.0, 9.0},
	{"6.14x9.21", 6.14, 9.21},
	{"6.69x9.61", 6.69, 9.61},
	{"7x10", 7.0, 10.0},
	{"7.44x9.69", 7.44, 9.69},
	{"7.5x9.25", 7.5, 9.25},
	{"8x10", 8.0, 10.0},
	{"8.25x6", 8.25, 6.0},
	{"8.25x8.25", 8.25, 8.25},
	{"8.5x11", 8.5, 11.0},
}

// StandardTrim looks up the catalog entry matching the given trim within
// a hundredth of an inch. ok is false for off-catalog sizes.
func StandardTrim(widthIn, heightIn float64) (TrimSize, bool) {
	const tol = 0.01
	for _, t := range StandardTrims {
		if abs(t.WidthIn-widthIn) < tol && abs(t.HeightIn-heightIn) < tol {
			return t, true
		}
	}
	return TrimSize{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
