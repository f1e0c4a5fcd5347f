package forms

import "github.com/paidup/paidup/internal/domain/document"

// CalibrationVersion names the template revision the coordinate map below
// was measured against.  Bump it together with the pinned expectation when
// recalibrating for a new official release.
const CalibrationVersion = "n1-1022"

// FieldPosition places one field's text on the template.  Coordinates are in
// PDF points with the origin at the bottom-left of the page; Page is
// 1-based.  WrapAt soft-wraps longer values into lines of at most that many
// runes; zero means no wrapping.
type FieldPosition struct {
	Page   int
	X      float64
	Y      float64
	Size   float64
	WrapAt int
}

// n1Coordinates maps every field the N1 assembly produces to its calibrated
// position.  Measured against the pinned template revision; values here move
// only with a recalibration.
var n1Coordinates = map[string]FieldPosition{
	document.FieldClaimantName:     {Page: 1, X: 60, Y: 688, Size: 10, WrapAt: 40},
	document.FieldClaimantAddress:  {Page: 1, X: 60, Y: 674, Size: 9, WrapAt: 44},
	document.FieldDefendantName:    {Page: 1, X: 60, Y: 590, Size: 10, WrapAt: 40},
	document.FieldDefendantAddress: {Page: 1, X: 60, Y: 576, Size: 9, WrapAt: 44},
	document.FieldBriefDetails:     {Page: 1, X: 60, Y: 480, Size: 10, WrapAt: 78},
	document.FieldAmountClaimed:    {Page: 1, X: 440, Y: 230, Size: 10},
	document.FieldInterestAmount:   {Page: 1, X: 440, Y: 214, Size: 10},
	document.FieldCompensation:     {Page: 1, X: 440, Y: 198, Size: 10},
	document.FieldTotalAmount:      {Page: 1, X: 440, Y: 166, Size: 10},
	document.FieldParticulars:      {Page: 2, X: 60, Y: 740, Size: 10, WrapAt: 86},
	document.FieldStatementOfTruth: {Page: 3, X: 60, Y: 600, Size: 9, WrapAt: 90},
	document.FieldSignatureName:    {Page: 3, X: 60, Y: 480, Size: 10},
	document.FieldSignatureDate:    {Page: 3, X: 400, Y: 480, Size: 10},
}

// N1Coordinates returns the calibrated coordinate map.
func N1Coordinates() map[string]FieldPosition {
	out := make(map[string]FieldPosition, len(n1Coordinates))
	for k, v := range n1Coordinates {
		out[k] = v
	}
	return out
}
