// Package model defines the core data types for the cover service.
package model

import "time"

// CoverClass selects which kind of cover artifact to produce.
type CoverClass string

const (
	ClassDigital   CoverClass = "digital"   // screen cover, fixed 1600x2560
	ClassPaperback CoverClass = "paperback" // full wrap: back | spine | front
	ClassHardback  CoverClass = "hardback"  // dust jacket with folded flaps
)

// AllClasses is the ordered list of cover classes for iteration.
var AllClasses = []CoverClass{ClassDigital, ClassPaperback, ClassHardback}

// ValidClass checks if a string is a known CoverClass.
func ValidClass(s string) bool {
	switch CoverClass(s) {
	case ClassDigital, ClassPaperback, ClassHardback:
		return true
	}
	return false
}

// IsPrint reports whether the class produces a physical print wrap.
func (c CoverClass) IsPrint() bool {
	return c == ClassPaperback || c == ClassHardback
}

// PaperStock is the interior paper class. Spine thickness per page depends
// on it, so an unknown stock is a validation error, never a silent default.
type PaperStock string

const (
	StockWhite PaperStock = "white"
	StockCream PaperStock = "cream"
	StockColor PaperStock = "color"
)

// ValidStock checks if a string is a known PaperStock.
func ValidStock(s string) bool {
	switch PaperStock(s) {
	case StockWhite, StockCream, StockColor:
		return true
	}
	return false
}

// Style selects the procedural background when no source image is supplied.
type Style string

const (
	StyleGradient Style = "gradient" // linear blend between the accent colors
	StyleSolid    Style = "solid"    // primary accent only
	StyleMinimal  Style = "minimal"  // near-white with a thin accent border
)

// ValidStyle checks if a string is a known Style.
func ValidStyle(s string) bool {
	switch Style(s) {
	case StyleGradient, StyleSolid, StyleMinimal:
		return true
	}
	return false
}

// CoverSpec is the immutable input describing one cover to produce.
// Trim dimensions are in inches. Source, when set, holds either raster
// image bytes or a PDF whose first page becomes the background.
type CoverSpec struct {
	Class        CoverClass `json:"class"`
	TrimWidthIn  float64    `json:"trim_width_in"`
	TrimHeightIn float64    `json:"trim_height_in"`
	PageCount    int        `json:"page_count"`
	PaperStock   PaperStock `json:"paper_stock"`
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle"`
	Author       string     `json:"author"`
	Description  string     `json:"description"`
	PrimaryHex   string     `json:"primary_color"`
	SecondaryHex string     `json:"secondary_color"`
	Style        Style      `json:"style"`
	Source       []byte     `json:"-"`
	AddSafeArea  bool       `json:"add_safe_area"`
	AddSpineText bool       `json:"add_spine_text"`
}

// CoverStatus represents the processing state of a cached cover.
type CoverStatus string

const (
	StatusPending CoverStatus = "pending"
	StatusReady   CoverStatus = "ready"
	StatusFailed  CoverStatus = "failed"
)

// Cover is the persistence entity for one generated artifact. The digest
// is a hash of the canonical spec (plus source bytes on the convert path),
// so identical requests hit the cache instead of re-rendering.
type Cover struct {
	ID           int64       `db:"id" json:"id"`
	Digest       string      `db:"digest" json:"digest"`
	Class        CoverClass  `db:"class" json:"class"`
	Title        string      `db:"title" json:"title"`
	Author       string      `db:"author" json:"author"`
	Format       string      `db:"format" json:"format"`
	ByteSize     int64       `db:"byte_size" json:"byte_size"`
	Status       CoverStatus `db:"status" json:"status"`
	Warning      *string     `db:"warning" json:"warning,omitempty"`
	ErrorMessage *string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
