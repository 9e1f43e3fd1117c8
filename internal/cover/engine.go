package cover

import (
	"fmt"

	"github.com/bookforge/cover-service/internal/model"
)

// Engine turns a CoverSpec into a finished cover artifact. It is stateless
// beyond its configuration and safe for concurrent use; every request runs
// the same pipeline: validate, compute geometry, load background, compose
// panels, stamp the safe area, encode.
type Engine struct {
	platform   PlatformSpec
	rasterizer PageRasterizer
	fonts      *fontSet
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithPageRasterizer installs a renderer for PDF background sources.
// Without one, PDF sources fail with ErrUnsupportedSource.
func WithPageRasterizer(r PageRasterizer) Option {
	return func(e *Engine) { e.rasterizer = r }
}

// New builds an engine for the given platform constants.
func New(platform PlatformSpec, opts ...Option) (*Engine, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	e := &Engine{platform: platform, fonts: fonts}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Platform exposes the constants the engine was built with.
func (e *Engine) Platform() PlatformSpec {
	return e.platform
}

// Result is one finished cover artifact.
type Result struct {
	Data     []byte
	Format   string // "jpg" or "pdf"
	Geometry CanvasGeometry
	Warnings []string
}

// GenerateCover runs the full pipeline for a spec. The spec's Source, when
// present, is cover-fitted as the background; otherwise a procedural
// background is generated from the style tag.
func (e *Engine) GenerateCover(spec model.CoverSpec) (*Result, error) {
	return e.generate(spec, len(spec.Source) > 0)
}

// ConvertCover re-targets an existing cover image (or PDF) to another
// cover class: the source becomes the background of a freshly computed
// canvas and the text layers are re-set on top. Because the source already
// carries artwork of unknown contrast, text always gets a scrim.
func (e *Engine) ConvertCover(source []byte, target model.CoverClass, spec model.CoverSpec) (*Result, error) {
	if len(source) == 0 {
		return nil, invalidSpecf("convert requires a source document")
	}
	spec.Class = target
	spec.Source = source
	return e.generate(spec, true)
}

func (e *Engine) generate(spec model.CoverSpec, userBG bool) (*Result, error) {
	if err := validateSpec(e.platform, spec); err != nil {
		return nil, err
	}

	var warnings []string
	if spec.Class.IsPrint() {
		if _, ok := StandardTrim(spec.TrimWidthIn, spec.TrimHeightIn); !ok {
			warnings = append(warnings,
				fmt.Sprintf("trim %gx%g is not in the standard catalog; the vendor may reject the file",
					spec.TrimWidthIn, spec.TrimHeightIn))
		}
	}

	geo, err := computeGeometry(e.platform, spec)
	if err != nil {
		return nil, err
	}

	bg, err := e.loadBackground(spec, geo.WidthPx, geo.HeightPx)
	if err != nil {
		return nil, err
	}

	canvas, composeWarnings, err := e.compose(geo, bg, spec, userBG)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, composeWarnings...)

	if spec.AddSafeArea && geo.Class.IsPrint() {
		canvas = e.StampSafeArea(canvas, geo)
		warnings = append(warnings,
			"safe-area box stamped with a visible border; remove before final submission if the vendor overlays its own barcode")
	}

	data, format, err := e.render(canvas, geo, spec)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:     data,
		Format:   format,
		Geometry: geo,
		Warnings: warnings,
	}, nil
}
