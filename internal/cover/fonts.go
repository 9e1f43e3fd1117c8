package cover

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds the parsed typefaces the compositor draws with. The Go
// fonts ship inside golang.org/x/image, so covers render identically on
// every host with no font-path probing.
type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func loadFonts() (*fontSet, error) {
	reg, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bld, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}
	return &fontSet{regular: reg, bold: bld}, nil
}

// Face builds a face at the given pixel size. Faces are cheap to create,
// so the compositor makes one per size step while shrinking text to fit.
func (f *fontSet) Face(sizePx float64, bold bool) font.Face {
	ft := f.regular
	if bold {
		ft = f.bold
	}
	return truetype.NewFace(ft, &truetype.Options{Size: sizePx})
}
