package cover

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
)

// PageRasterizer renders the first page of a paged document to a bitmap
// at the given resolution. The engine treats it as a black box so tests
// and embedders can substitute their own renderer.
type PageRasterizer interface {
	FirstPage(doc []byte, dpi int) (image.Image, error)
}

// PopplerRasterizer shells out to pdftoppm (poppler-utils) to render the
// first PDF page. It needs a temp file because pdftoppm reads paths, not
// pipes.
type PopplerRasterizer struct{}

// FirstPage renders page one of a PDF at the requested DPI.
func (PopplerRasterizer) FirstPage(doc []byte, dpi int) (image.Image, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "cover-pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(src, doc, 0644); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	outBase := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm",
		"-png",
		"-r", fmt.Sprint(dpi),
		"-f", "1", "-l", "1",
		src, outBase)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, bytes.TrimSpace(out))
	}

	// pdftoppm suffixes the page number; accept any page-*.png it wrote.
	matches, _ := filepath.Glob(outBase + "*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no output")
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("opening rendered page: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered page: %w", err)
	}
	return img, nil
}

// isPDF sniffs the paged-document magic.
func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}
