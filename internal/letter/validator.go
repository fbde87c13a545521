package letter

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/visaflow/visa-assistant/internal/extraction"
	"go.uber.org/zap"
)

// ValidationResult reports whether the context can be trusted for assembly.
// Errors block letter generation; warnings are advisory only.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// requiredFields are the business fields that must be present and non-empty
// before the rendered letter may be used.
var requiredFields = []string{
	"entry_date",
	"current_status",
	"requested_status",
	"home_country",
	"signatory_name",
	"address_line1",
}

var dateFields = []string{"entry_date", "program_start_date"}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2 January 2006",
}

// knownStatusCodes is the expected set of nonimmigrant classifications. A
// value outside this set is flagged as a warning, not a failure, because the
// upstream extractor occasionally reports unusual but valid codes.
var knownStatusCodes = map[string]bool{
	"B-1": true, "B-2": true, "F-1": true, "F-2": true,
	"J-1": true, "J-2": true, "M-1": true, "M-2": true,
	"H-1B": true, "H-4": true, "L-1": true, "L-2": true,
	"O-1": true, "TN": true, "E-2": true,
}

var monetaryFields = []string{"total_funds", "savings_amount", "annual_income", "sponsor_funds"}

// lowFundsThreshold triggers an advisory warning; a figure this small almost
// always means a truncated extraction rather than real finances.
var lowFundsThreshold = decimal.NewFromInt(5000)

// Validator checks required-field presence and data-quality heuristics on a
// letter context before assembly is trusted.
type Validator struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{now: time.Now, logger: logger}
}

// Validate inspects the context and reports every failing field, not just
// the first one found.
func (v *Validator) Validate(context map[string]string) *ValidationResult {
	result := &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, field := range requiredFields {
		if context[field] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("required field %s is missing or empty", field))
		}
	}

	for _, field := range dateFields {
		value := context[field]
		if value == "" {
			continue
		}
		parsed, ok := parseDate(value)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("field %s has unparsable date %q", field, value))
			continue
		}
		// Only the entry date must be in the past; a program start date
		// normally lies in the future.
		if field == "entry_date" && parsed.After(v.now()) {
			result.Errors = append(result.Errors, fmt.Sprintf("field %s is in the future: %q", field, value))
		}
	}

	for _, field := range []string{"current_status", "requested_status"} {
		value := context[field]
		if value != "" && !knownStatusCodes[value] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("field %s has unexpected status code %q", field, value))
		}
	}

	for _, field := range monetaryFields {
		value := context[field]
		if value == "" {
			continue
		}
		amount, ok := extraction.ParseMoney(value)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("field %s has unparsable amount %q", field, value))
			continue
		}
		if amount.LessThan(lowFundsThreshold) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("field %s amount %s looks suspiciously low", field, amount.String()))
		}
	}

	if context["sponsor_name"] != "" && context["sponsor_funds"] == "" && context["total_funds"] == "" {
		result.Warnings = append(result.Warnings, "sponsor_name is present but no sponsor funds figure was found")
	}

	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		v.logger.Debug("Letter context failed validation",
			zap.Int("errors", len(result.Errors)),
			zap.Int("warnings", len(result.Warnings)))
	}
	return result
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
