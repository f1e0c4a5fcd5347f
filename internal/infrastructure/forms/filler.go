package forms

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
)

// Filler overlays field values onto the pinned court-form template.
type Filler struct {
	store  TemplateStore
	pinned Pinned
	coords map[string]FieldPosition
	logger logging.Logger
}

// NewFiller constructs a Filler over the given template source and pinned
// expectation, using the calibrated N1 coordinate map.
func NewFiller(store TemplateStore, pinned Pinned, logger logging.Logger) *Filler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Filler{
		store:  store,
		pinned: pinned,
		coords: n1Coordinates,
		logger: logger.Named("forms"),
	}
}

// Fill loads the template, verifies it against the pinned expectation, and
// overlays every field at its calibrated position.  Verification failure
// yields a template-mismatch error and zero output bytes; a partially
// overlaid court form is worse than none.
func (f *Filler) Fill(ctx context.Context, fields map[string]string) ([]byte, error) {
	template, err := f.store.LoadTemplate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateMismatch, "court form template is unavailable")
	}

	conf := model.NewDefaultConfiguration()
	if err := f.verify(template, conf); err != nil {
		f.logger.Error("template verification failed", logging.Err(err))
		return nil, err
	}

	overlays, err := f.overlays(fields)
	if err != nil {
		return nil, err
	}
	if len(overlays) == 0 {
		return nil, errors.NewValidation("no known fields to place on the form")
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(template), &out, overlays, conf); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to overlay fields onto the template")
	}
	return out.Bytes(), nil
}

// verify checks page count and first-page dimensions against the pinned
// expectation.
func (f *Filler) verify(template []byte, conf *model.Configuration) error {
	count, err := api.PageCount(bytes.NewReader(template), conf)
	if err != nil {
		return errors.Wrap(err, errors.CodeTemplateMismatch, "template is not a readable PDF")
	}
	if count != f.pinned.PageCount {
		return errors.NewTemplateMismatch(fmt.Sprintf(
			"template has %d pages, calibrated revision %s has %d",
			count, CalibrationVersion, f.pinned.PageCount))
	}

	dims, err := api.PageDims(bytes.NewReader(template), conf)
	if err != nil {
		return errors.Wrap(err, errors.CodeTemplateMismatch, "template page dimensions are unreadable")
	}
	if len(dims) == 0 {
		return errors.NewTemplateMismatch("template reports no page dimensions")
	}
	return verifyFirstPageDims(dims[0], f.pinned)
}

// verifyFirstPageDims compares the first page against the pinned geometry
// within tolerance.
func verifyFirstPageDims(dim types.Dim, pinned Pinned) error {
	if delta(dim.Width, pinned.PageWidthPt) > pinned.TolerancePt ||
		delta(dim.Height, pinned.PageHeightPt) > pinned.TolerancePt {
		return errors.NewTemplateMismatch(fmt.Sprintf(
			"template page size %.1fx%.1fpt differs from the calibrated %.0fx%.0fpt",
			dim.Width, dim.Height, pinned.PageWidthPt, pinned.PageHeightPt))
	}
	return nil
}

func delta(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// overlays builds the per-page watermark sets.  Unknown field names are
// rejected rather than dropped: a silently missing value on a court form is
// a calibration bug.
func (f *Filler) overlays(fields map[string]string) (map[int][]*model.Watermark, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[int][]*model.Watermark)
	for _, name := range names {
		value := strings.TrimSpace(fields[name])
		if value == "" {
			continue
		}
		pos, ok := f.coords[name]
		if !ok {
			return nil, errors.NewValidation("no calibrated position for field: " + name)
		}

		lineHeight := pos.Size * 1.3
		for i, line := range wrapLines(value, pos.WrapAt) {
			wm, err := textWatermark(line, pos.X, pos.Y-float64(i)*lineHeight, pos.Size)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "failed to build overlay for field: "+name)
			}
			out[pos.Page] = append(out[pos.Page], wm)
		}
	}
	return out, nil
}

func textWatermark(text string, x, y, size float64) (*model.Watermark, error) {
	desc := fmt.Sprintf(
		"fontname:Helvetica, points:%.0f, scale:1 abs, pos:bl, off:%.1f %.1f, rot:0, opacity:1, fillcolor:#000000",
		size, x, y)
	return api.TextWatermark(text, desc, true, false, types.POINTS)
}

// wrapLines soft-wraps text at word boundaries to at most width runes per
// line.  Words longer than the width stand alone on their own line.
func wrapLines(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len([]rune(current))+1+len([]rune(word)) > width {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
