package cover

import (
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/bookforge/cover-service/internal/model"
)

// The compositor is a plan-based builder: planning appends draw steps and
// computes all fitting decisions (wrapping, font shrinking, ink choice)
// against the background bitmap, then Finalize rasterizes the whole plan
// onto one canvas in a single pass. Intermediate decisions stay
// inspectable without re-running the pipeline.
type composition struct {
	engine   *Engine
	geo      CanvasGeometry
	spec     model.CoverSpec
	bg       image.Image
	userBG   bool
	steps    []drawStep
	warnings []string
}

type drawStep struct {
	name string
	draw func(dc *gg.Context)
}

// Fixed-step font shrinking. Sizes start per cover class and walk down
// until the wrapped block fits, stopping at the floor; past the floor the
// text is clipped and a warning is recorded instead of failing.
const (
	fontStepPx    = 10.0
	titleFloorPx  = 42.0
	bodyFloorPx   = 24.0
	spineStepPx   = 3.0
	spineFloorPx  = 18.0
	lineSpacing   = 1.3
	scrimPadRatio = 0.35 // scrim padding as a fraction of font size
)

var titleStartPx = map[model.CoverClass]float64{
	model.ClassDigital:   140,
	model.ClassPaperback: 180,
	model.ClassHardback:  200,
}

// compose lays out every panel for the spec and rasterizes the result.
func (e *Engine) compose(geo CanvasGeometry, bg image.Image, spec model.CoverSpec, userBG bool) (image.Image, []string, error) {
	c := &composition{engine: e, geo: geo, spec: spec, bg: bg, userBG: userBG}

	c.planFront()
	if geo.Class.IsPrint() {
		if spec.AddSpineText {
			c.planSpine()
		}
		c.planBack()
	}

	return c.finalize()
}

func (c *composition) finalize() (image.Image, []string, error) {
	dc := gg.NewContext(c.geo.WidthPx, c.geo.HeightPx)
	dc.DrawImage(c.bg, 0, 0)
	for _, s := range c.steps {
		s.draw(dc)
	}
	return dc.Image(), c.warnings, nil
}

func (c *composition) add(name string, fn func(dc *gg.Context)) {
	c.steps = append(c.steps, drawStep{name: name, draw: fn})
}

func (c *composition) warnf(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// planFront places title, subtitle, and author on the front panel, each
// centered horizontally. Blocks are stacked: title in the upper third,
// subtitle under it, author near the bottom edge.
func (c *composition) planFront() {
	front := c.geo.FrontRect()
	fw := float64(front.Dx())
	fh := float64(front.Dy())
	maxW := fw * 0.84

	titleStart := titleStartPx[c.geo.Class]

	titleTop := float64(front.Min.Y) + fh*0.18
	if c.spec.Title != "" {
		block := c.planTextBlock(c.spec.Title, true, titleStart, titleFloorPx, maxW, fh*0.30, front, titleTop)

		// Digital covers get a thin accent rule above the title, except
		// in the minimal style.
		if c.geo.Class == model.ClassDigital && c.spec.Style != model.StyleMinimal {
			c.planTitleRule(front, titleTop, block.ink.Text)
		}
		titleTop += block.heightPx + fh*0.04
	}

	if c.spec.Subtitle != "" {
		c.planTextBlock(c.spec.Subtitle, false, titleStart*0.55, bodyFloorPx, maxW, fh*0.18, front, titleTop)
	}

	if c.spec.Author != "" {
		authorSize := titleStart * 0.45
		authorTop := float64(front.Max.Y) - fh*0.12 - authorSize*lineSpacing
		c.planTextBlock(c.spec.Author, false, authorSize, bodyFloorPx, maxW, authorSize*lineSpacing*2, front, authorTop)
	}
}

// planBack places the description block on the back panel, leaving the
// lower-right region free for the barcode safe area.
func (c *composition) planBack() {
	if c.spec.Description == "" {
		return
	}
	back := c.geo.BackRect()
	bw := float64(back.Dx())
	bh := float64(back.Dy())

	top := float64(back.Min.Y) + bh*0.12
	c.planTextBlock(c.spec.Description, false, titleStartPx[c.geo.Class]*0.30, bodyFloorPx, bw*0.72, bh*0.45, back, top)
}

// textBlock is the planned placement of one wrapped run of text.
type textBlock struct {
	lines    []string
	sizePx   float64
	heightPx float64
	ink      Ink
}

// planTextBlock wraps text at word boundaries, shrinks it in fixed steps
// until the block fits maxH (or the floor is hit, which clips and warns),
// asks the readability selector for ink sampled from the exact region the
// block will occupy, and appends the draw step.
func (c *composition) planTextBlock(text string, bold bool, startPx, floorPx, maxW, maxH float64, panel image.Rectangle, topY float64) textBlock {
	lines, sizePx, fits := c.fitWrapped(text, bold, startPx, floorPx, maxW, maxH)
	if !fits {
		c.warnf("text %q clipped at minimum font size %.0fpx", truncate(text, 40), sizePx)
	}

	blockH := float64(len(lines)) * sizePx * lineSpacing
	cx := float64(panel.Min.X+panel.Max.X) / 2

	// Ink is sampled from the exact region the text occupies, not a
	// panel-wide average, so a dark title never lands on a dark patch of
	// an otherwise light cover.
	region := image.Rect(
		int(cx-maxW/2), int(topY),
		int(cx+maxW/2), int(topY+blockH),
	).Intersect(c.bg.Bounds())
	ink := ChooseInk(imaging.Crop(c.bg, region), c.userBG)

	face := c.engine.fonts.Face(sizePx, bold)
	pad := sizePx * scrimPadRatio
	clipH := maxH

	c.add("text:"+truncate(text, 20), func(dc *gg.Context) {
		if ink.UseScrim {
			dc.SetColor(ink.Scrim)
			h := blockH
			if !fits {
				h = clipH
			}
			dc.DrawRectangle(float64(region.Min.X)-pad, topY-pad, float64(region.Dx())+2*pad, h+2*pad)
			dc.Fill()
		}

		dc.SetFontFace(face)
		dc.SetColor(ink.Text)
		y := topY
		for _, line := range lines {
			if !fits && y+sizePx*lineSpacing > topY+clipH {
				break // clip past the floor; already warned
			}
			dc.DrawStringAnchored(line, cx, y+sizePx*lineSpacing/2, 0.5, 0.4)
			y += sizePx * lineSpacing
		}
	})

	return textBlock{lines: lines, sizePx: sizePx, heightPx: blockH, ink: ink}
}

// planTitleRule draws the digital cover's accent rule above the title.
func (c *composition) planTitleRule(panel image.Rectangle, titleTop float64, ink color.Color) {
	fw := float64(panel.Dx())
	ruleW := fw * 0.38
	x := float64(panel.Min.X) + (fw-ruleW)/2
	y := titleTop - 40
	c.add("title-rule", func(dc *gg.Context) {
		dc.SetColor(ink)
		dc.DrawRectangle(x, y, ruleW, 6)
		dc.Fill()
	})
}

// planSpine renders the spine text rotated 90 degrees, centered along
// both spine axes. The rendered text height (the font size) must fit the
// spine width and the text run must fit the spine height; both shrink
// together using the same stepping rule as the front panel.
func (c *composition) planSpine() {
	spine := c.geo.SpineRect()
	if spine.Empty() {
		return
	}

	text := c.spec.Title
	if c.spec.Author != "" {
		text = c.spec.Title + "  ·  " + c.spec.Author
	}
	if text == "" {
		return
	}

	maxRun := float64(spine.Dy()) * 0.9  // along the spine, post-rotation
	maxRise := float64(spine.Dx()) * 0.72 // across the spine

	sizePx := 45.0
	fits := false
	var runW float64
	measure := gg.NewContext(1, 1)
	for {
		measure.SetFontFace(c.engine.fonts.Face(sizePx, true))
		runW, _ = measure.MeasureString(text)
		if runW <= maxRun && sizePx <= maxRise {
			fits = true
			break
		}
		if sizePx-spineStepPx < spineFloorPx {
			break
		}
		sizePx -= spineStepPx
	}
	if !fits {
		c.warnf("spine text %q clipped: spine %dpx too narrow at minimum font size", truncate(text, 40), spine.Dx())
	}

	ink := ChooseInk(imaging.Crop(c.bg, spine), c.userBG)
	face := c.engine.fonts.Face(sizePx, true)
	cx := float64(spine.Min.X+spine.Max.X) / 2
	cy := float64(spine.Min.Y+spine.Max.Y) / 2

	c.add("spine-text", func(dc *gg.Context) {
		// Clip to the spine so an over-long run (or its scrim) never
		// bleeds into the neighboring panels.
		dc.DrawRectangle(float64(spine.Min.X), float64(spine.Min.Y), float64(spine.Dx()), float64(spine.Dy()))
		dc.Clip()

		if ink.UseScrim {
			scrimW := sizePx * 1.6
			scrimH := runW + sizePx
			if scrimH > float64(spine.Dy()) {
				scrimH = float64(spine.Dy())
			}
			dc.SetColor(ink.Scrim)
			dc.DrawRectangle(cx-scrimW/2, cy-scrimH/2, scrimW, scrimH)
			dc.Fill()
		}

		dc.Push()
		dc.RotateAbout(gg.Radians(90), cx, cy)
		dc.SetFontFace(face)
		dc.SetColor(ink.Text)
		dc.DrawStringAnchored(text, cx, cy, 0.5, 0.35)
		dc.Pop()
		dc.ResetClip()
	})
}

// fitWrapped wraps at word boundaries (never mid-word) and steps the font
// size down until the wrapped block height fits maxH or the floor is
// reached. fits is false when even the floor size overflows.
func (c *composition) fitWrapped(text string, bold bool, startPx, floorPx, maxW, maxH float64) (lines []string, sizePx float64, fits bool) {
	measure := gg.NewContext(1, 1)
	sizePx = startPx
	for {
		measure.SetFontFace(c.engine.fonts.Face(sizePx, bold))
		lines = measure.WordWrap(text, maxW)
		blockH := float64(len(lines)) * sizePx * lineSpacing
		if blockH <= maxH {
			return lines, sizePx, true
		}
		if sizePx-fontStepPx < floorPx {
			return lines, sizePx, false
		}
		sizePx -= fontStepPx
	}
}

// truncate shortens s to at most n runes. Cutting on rune boundaries
// keeps multi-byte text valid UTF-8.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
