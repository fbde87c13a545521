package formfill

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/form"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/pkg/utils"
)

// Fill methods, reported alongside the output bytes so callers can tell the
// user how the form was produced.
const (
	MethodAcroForm = "acroform"
	MethodOverlay  = "overlay"
	MethodBlank    = "blank"
)

// FillResult carries the produced form. Filled is false only when both fill
// strategies failed and the original blank form is returned as-is.
type FillResult struct {
	Bytes  []byte
	Filled bool
	Method string
	Fields int
}

// Filler fills a government PDF form from aggregated application data. It
// tries AcroForm field matching first, then the coordinate overlay, and
// degrades to returning the blank form rather than failing the operation.
type Filler struct {
	logger *zap.Logger
}

// NewFiller creates a new Filler.
func NewFiller(logger *zap.Logger) *Filler {
	return &Filler{logger: logger}
}

// Fill produces a filled copy of formBytes. It returns an error only when
// data is missing entirely; form-level failures degrade to the next strategy.
func (f *Filler) Fill(formBytes []byte, data *models.AggregatedApplicationData) (*FillResult, error) {
	if data == nil {
		return nil, fmt.Errorf("fill form: no application data")
	}

	values := BuildValues(data)
	for logical, v := range values {
		values[logical] = utils.SanitizeRenderable(v)
	}

	if result, err := f.fillAcroForm(formBytes, values); err == nil {
		return result, nil
	} else {
		f.logger.Warn("acroform fill failed, trying overlay", zap.Error(err))
	}

	if result, err := f.fillOverlay(formBytes, values); err == nil {
		return result, nil
	} else {
		f.logger.Warn("overlay fill failed, returning blank form", zap.Error(err))
	}

	return &FillResult{Bytes: formBytes, Filled: false, Method: MethodBlank}, nil
}

func (f *Filler) fillAcroForm(formBytes []byte, values map[string]string) (*FillResult, error) {
	conf := model.NewDefaultConfiguration()

	fields, err := api.FormFields(bytes.NewReader(formBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("form has no fillable fields")
	}

	var names []string
	byName := make(map[string]form.Field)
	for _, field := range fields {
		if field.Typ != form.FTText || field.Locked {
			continue
		}
		names = append(names, field.Name)
		byName[field.Name] = field
	}

	matched := MatchFields(names)
	assignments := make(map[string]string)
	for logical, formName := range matched {
		if v, ok := values[logical]; ok && v != "" {
			assignments[formName] = v
		}
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no form fields matched application data")
	}

	payload, err := fillPayload(byName, assignments)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(formBytes), bytes.NewReader(payload), &out, conf); err != nil {
		return nil, fmt.Errorf("fill form fields: %w", err)
	}

	f.logger.Info("filled form via acroform fields",
		zap.Int("fields", len(assignments)),
		zap.Int("available", len(names)))

	return &FillResult{
		Bytes:  out.Bytes(),
		Filled: true,
		Method: MethodAcroForm,
		Fields: len(assignments),
	}, nil
}

// fillPayload builds the JSON document api.FillForm consumes.
func fillPayload(byName map[string]form.Field, assignments map[string]string) ([]byte, error) {
	type textField struct {
		Pages  []int  `json:"pages"`
		ID     string `json:"id"`
		Name   string `json:"name"`
		Value  string `json:"value"`
		Locked bool   `json:"locked"`
	}
	type formDoc struct {
		TextFields []textField `json:"textfield"`
	}

	doc := formDoc{}
	for name, value := range assignments {
		field := byName[name]
		doc.TextFields = append(doc.TextFields, textField{
			Pages: field.Pages,
			ID:    field.ID,
			Name:  field.Name,
			Value: value,
		})
	}

	payload, err := json.Marshal(struct {
		Forms []formDoc `json:"forms"`
	}{Forms: []formDoc{doc}})
	if err != nil {
		return nil, fmt.Errorf("marshal fill payload: %w", err)
	}
	return payload, nil
}
