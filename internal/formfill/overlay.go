package formfill

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// overlayPosition is a calibrated draw position on the official form layout.
// Offsets are in points from the top-left corner of the page.
type overlayPosition struct {
	logical string
	page    int
	x       float64
	y       float64
	size    int
}

// overlayPositions is calibrated against the current revision of the official
// form. A layout revision upstream requires re-measuring these.
var overlayPositions = []overlayPosition{
	{FieldSurname, 1, 140, 155, 10},
	{FieldGivenName, 1, 340, 155, 10},
	{FieldDateOfBirth, 1, 140, 185, 10},
	{FieldHomeCountry, 1, 340, 185, 10},
	{FieldPassportNumber, 1, 140, 215, 10},
	{FieldAdmissionNumber, 1, 340, 215, 10},
	{FieldMailingAddress, 1, 140, 250, 9},
	{FieldEmail, 1, 140, 280, 10},
	{FieldSchoolName, 2, 140, 120, 10},
	{FieldTotalFunds, 2, 140, 150, 10},
}

// buildOverlayWatermarks turns available values into per-page watermark
// groups so the whole overlay is applied in one parse of the document.
func buildOverlayWatermarks(values map[string]string) (map[int][]*model.Watermark, int, error) {
	byPage := make(map[int][]*model.Watermark)
	applied := 0

	for _, pos := range overlayPositions {
		value, ok := values[pos.logical]
		if !ok || value == "" {
			continue
		}

		desc := fmt.Sprintf("points:%d, scale:1 abs, pos:tl, off:%.0f -%.0f, rot:0, opacity:1, mode:0, fillc:#000000",
			pos.size, pos.x, pos.y)
		wm, err := api.TextWatermark(value, desc, true, false, types.POINTS)
		if err != nil {
			return nil, 0, fmt.Errorf("overlay %s: %w", pos.logical, err)
		}

		byPage[pos.page] = append(byPage[pos.page], wm)
		applied++
	}

	return byPage, applied, nil
}

// fillOverlay draws values at fixed positions when the form exposes no
// fillable fields. Each value is a text watermark anchored to the top-left
// corner with absolute offsets; all watermarks go in as one batch.
func (f *Filler) fillOverlay(formBytes []byte, values map[string]string) (*FillResult, error) {
	byPage, applied, err := buildOverlayWatermarks(values)
	if err != nil {
		return nil, err
	}
	if applied == 0 {
		return nil, fmt.Errorf("no values available for overlay")
	}

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.AddWatermarksSliceMap(bytes.NewReader(formBytes), &out, byPage, conf); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	f.logger.Info("filled form via coordinate overlay", zap.Int("fields", applied))

	return &FillResult{
		Bytes:  out.Bytes(),
		Filled: true,
		Method: MethodOverlay,
		Fields: applied,
	}, nil
}
