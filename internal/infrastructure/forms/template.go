// Package forms renders court forms by overlaying text onto a pinned official
// PDF template at calibrated coordinates.  Interactive form fields are never
// used: the official template's fillable structure is not stable across
// revisions, while page geometry is verifiable.
package forms

import "context"

// TemplateStore supplies the bytes of the pinned official template.  The
// MinIO implementation lives alongside the other storage adapters; tests use
// in-memory stores.
type TemplateStore interface {
	// LoadTemplate returns the template PDF bytes, or an error when the
	// asset is absent.
	LoadTemplate(ctx context.Context) ([]byte, error)
}

// Pinned describes the exact template revision the coordinate map was
// calibrated against.  A loaded template that deviates fails verification;
// overlaying text at calibrated positions onto a different revision would
// scatter it across the wrong boxes.
type Pinned struct {
	// PageCount is the template's expected page count.
	PageCount int

	// PageWidthPt and PageHeightPt are the expected first-page dimensions
	// in PDF points (A4 is 595 x 842).
	PageWidthPt  float64
	PageHeightPt float64

	// TolerancePt absorbs sub-point rounding differences between PDF
	// producers.
	TolerancePt float64
}

// DefaultPinned returns the expectation for the calibrated N1 revision.
func DefaultPinned() Pinned {
	return Pinned{
		PageCount:    3,
		PageWidthPt:  595,
		PageHeightPt: 842,
		TolerancePt:  1.0,
	}
}
