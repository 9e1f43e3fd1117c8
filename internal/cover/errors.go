package cover

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes the engine can surface.
// Callers check with errors.Is; details are attached via %w wrapping.
var (
	// ErrInvalidSpec means the CoverSpec is malformed or out of range:
	// unknown paper stock, non-positive page count, non-positive trim size.
	ErrInvalidSpec = errors.New("invalid cover spec")

	// ErrUnsupportedSource means the background bytes could not be decoded
	// as a raster image or as a PDF.
	ErrUnsupportedSource = errors.New("unsupported source format")

	// ErrOutputTooLarge means the encoded artifact exceeds the platform's
	// byte ceiling for the requested cover class.
	ErrOutputTooLarge = errors.New("encoded output exceeds platform ceiling")

	// ErrRender wraps unexpected failures inside the drawing or encoding
	// libraries.
	ErrRender = errors.New("render failure")
)

func invalidSpecf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...))
}

func renderErr(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRender, stage, err)
}
