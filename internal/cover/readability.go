package cover

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Ink is the foreground decision for one text block: the text color plus
// an optional translucent scrim drawn behind the block to guarantee
// contrast over busy backgrounds.
type Ink struct {
	Text     color.Color
	Scrim    color.Color
	UseScrim bool
}

var (
	darkInk  = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	lightInk = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

const (
	// Midpoint decision threshold on BT.709 luminance. Exactly at the
	// threshold the dark ink wins, keeping the choice deterministic.
	luminanceThreshold = 0.5

	// Luminance variance above this marks a region as busy enough to
	// need a scrim regardless of its mean.
	varianceThreshold = 0.03

	scrimAlpha = 0.40

	// Sampling stride cap: regions are inspected on a grid of at most
	// sampleGrid x sampleGrid pixels, which is plenty for a mean and
	// variance while keeping huge panels cheap.
	sampleGrid = 64
)

// ChooseInk picks a legible foreground for text drawn over region.
// userSupplied marks backgrounds that came from a caller image rather
// than a procedural fill; those always get a scrim since their texture is
// unknown. Pure function of the pixels: no I/O, no randomness.
func ChooseInk(region image.Image, userSupplied bool) Ink {
	mean, variance := regionLuminance(region)

	ink := Ink{}
	if mean >= luminanceThreshold {
		ink.Text = darkInk
	} else {
		ink.Text = lightInk
	}

	if userSupplied || variance > varianceThreshold {
		ink.UseScrim = true
		// Scrim sits opposite the ink so the text pops either way.
		if ink.Text == color.Color(darkInk) {
			ink.Scrim = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(scrimAlpha * 255)}
		} else {
			ink.Scrim = color.NRGBA{A: uint8(scrimAlpha * 255)}
		}
	}
	return ink
}

// Luminance returns the BT.709 relative luminance of a color on
// normalized channels: 0.2126 R + 0.7152 G + 0.0722 B.
func Luminance(c color.Color) float64 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent pixel; treat as black.
		return 0
	}
	return 0.2126*cf.R + 0.7152*cf.G + 0.0722*cf.B
}

// regionLuminance samples the region on a coarse grid and returns the
// mean and variance of its luminance.
func regionLuminance(region image.Image) (mean, variance float64) {
	b := region.Bounds()
	if b.Empty() {
		return 0, 0
	}

	stepX := b.Dx() / sampleGrid
	if stepX < 1 {
		stepX = 1
	}
	stepY := b.Dy() / sampleGrid
	if stepY < 1 {
		stepY = 1
	}

	var sum, sumSq float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			l := Luminance(region.At(x, y))
			sum += l
			sumSq += l * l
			n++
		}
	}

	mean = sum / float64(n)
	variance = sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0 // float noise
	}
	return mean, variance
}
