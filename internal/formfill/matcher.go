// Package formfill fills third-party government PDF forms from application
// data, falling back to a coordinate overlay or a fill guide when the form
// offers no usable fields.
package formfill

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/visaflow/visa-assistant/internal/models"
)

// Logical form fields the backend knows how to supply.
const (
	FieldSurname         = "surname"
	FieldGivenName       = "given_name"
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldMailingAddress  = "mailing_address"
	FieldHomeCountry     = "home_country"
	FieldAdmissionNumber = "admission_number"
	FieldPassportNumber  = "passport_number"
	FieldDateOfBirth     = "date_of_birth"
	FieldSchoolName      = "school_name"
	FieldTotalFunds      = "total_funds"
)

// fieldLabels are the human-readable names used in fill guides.
var fieldLabels = map[string]string{
	FieldSurname:         "Family Name (Surname)",
	FieldGivenName:       "Given Name (First Name)",
	FieldFullName:        "Full Name",
	FieldEmail:           "Email Address",
	FieldMailingAddress:  "Mailing Address",
	FieldHomeCountry:     "Country of Citizenship",
	FieldAdmissionNumber: "I-94 Admission Number",
	FieldPassportNumber:  "Passport Number",
	FieldDateOfBirth:     "Date of Birth",
	FieldSchoolName:      "School Name",
	FieldTotalFunds:      "Total Available Funds",
}

// guideOrder fixes the presentation order of logical fields in guides and
// overlay output.
var guideOrder = []string{
	FieldSurname,
	FieldGivenName,
	FieldFullName,
	FieldDateOfBirth,
	FieldHomeCountry,
	FieldPassportNumber,
	FieldAdmissionNumber,
	FieldMailingAddress,
	FieldEmail,
	FieldSchoolName,
	FieldTotalFunds,
}

// matchRule maps one logical field onto a government form's unpredictable
// field names. Candidates are tried in order against the form's field names,
// first match wins; exclusions veto a candidate hit so that visually similar
// fields never cross-contaminate (an admission-number rule must not claim a
// mailing-address field even though both contain "number"-adjacent tokens).
type matchRule struct {
	logical    string
	candidates []*regexp.Regexp
	exclusions []*regexp.Regexp
}

var matchRules = []matchRule{
	{
		logical: FieldSurname,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)family.?name`),
			regexp.MustCompile(`(?i)sur.?name`),
			regexp.MustCompile(`(?i)last.?name`),
		},
	},
	{
		logical: FieldGivenName,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)given.?name`),
			regexp.MustCompile(`(?i)first.?name`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)family`),
			regexp.MustCompile(`(?i)middle`),
		},
	},
	{
		logical: FieldAdmissionNumber,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)i.?94`),
			regexp.MustCompile(`(?i)admission.?(record.?)?number`),
			regexp.MustCompile(`(?i)arrival.?departure`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)address`),
			regexp.MustCompile(`(?i)street`),
			regexp.MustCompile(`(?i)apt`),
		},
	},
	{
		logical: FieldPassportNumber,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)passport.?(number|no)`),
			regexp.MustCompile(`(?i)travel.?document`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)expir`),
			regexp.MustCompile(`(?i)issu`),
		},
	},
	{
		logical: FieldDateOfBirth,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)date.?of.?birth`),
			regexp.MustCompile(`(?i)\bdob\b`),
			regexp.MustCompile(`(?i)birth.?date`),
		},
	},
	{
		logical: FieldHomeCountry,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)country.?of.?(citizenship|nationality)`),
			regexp.MustCompile(`(?i)nationality`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)birth`),
			regexp.MustCompile(`(?i)residence`),
		},
	},
	{
		logical: FieldMailingAddress,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)mailing.?address`),
			regexp.MustCompile(`(?i)street.?(number.?and.?)?name`),
			regexp.MustCompile(`(?i)current.?address`),
			regexp.MustCompile(`(?i)address`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)sponsor`),
			regexp.MustCompile(`(?i)e.?mail`),
		},
	},
	{
		logical: FieldEmail,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)e.?mail`),
		},
	},
	{
		logical: FieldSchoolName,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)school.?name`),
			regexp.MustCompile(`(?i)name.?of.?(school|institution)`),
		},
	},
	{
		logical: FieldFullName,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)full.?name`),
			regexp.MustCompile(`(?i)name.?of.?applicant`),
			regexp.MustCompile(`(?i)applicant.?name`),
		},
		exclusions: []*regexp.Regexp{
			regexp.MustCompile(`(?i)school`),
			regexp.MustCompile(`(?i)sponsor`),
		},
	},
	{
		logical: FieldTotalFunds,
		candidates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)total.?(available.?)?funds`),
			regexp.MustCompile(`(?i)amount.?available`),
		},
	},
}

// MatchFields assigns each logical field to at most one of the form's field
// names. Candidate patterns are tried in rule order; a form field already
// claimed by an earlier rule is never reused.
func MatchFields(formFieldNames []string) map[string]string {
	matched := make(map[string]string)
	claimed := make(map[string]bool)

	for _, rule := range matchRules {
		name, ok := rule.match(formFieldNames, claimed)
		if !ok {
			continue
		}
		matched[rule.logical] = name
		claimed[name] = true
	}
	return matched
}

func (r matchRule) match(names []string, claimed map[string]bool) (string, bool) {
	for _, candidate := range r.candidates {
		for _, name := range names {
			if claimed[name] || !candidate.MatchString(name) {
				continue
			}
			if r.excluded(name) {
				continue
			}
			return name, true
		}
	}
	return "", false
}

func (r matchRule) excluded(name string) bool {
	for _, ex := range r.exclusions {
		if ex.MatchString(name) {
			return true
		}
	}
	return false
}

// admissionAliases and passportAliases cover the field-name variants the
// document AI collaborator has been observed to emit.
var (
	admissionAliases = []string{"admission_number", "i94_number", "admission_record_number", "i-94 number"}
	passportAliases  = []string{"passport_number", "document_number", "passport no"}
	dobAliases       = []string{"date_of_birth", "dob", "birth_date"}
	schoolAliases    = []string{"school_name", "institution_name", "school"}
)

// BuildValues flattens the aggregated application into logical field values.
// Absent data simply yields no entry; the filler skips unmatched and empty
// fields rather than writing placeholders into an official form.
func BuildValues(data *models.AggregatedApplicationData) map[string]string {
	values := make(map[string]string)
	if data == nil {
		return values
	}

	record := data.Record
	if record != nil {
		setValue(values, FieldFullName, record.ApplicantName)
		setValue(values, FieldEmail, record.Email)
		setValue(values, FieldMailingAddress, record.CurrentAddress)
		setValue(values, FieldHomeCountry, record.HomeCountry)

		surname, given := splitName(record.ApplicantName)
		setValue(values, FieldSurname, surname)
		setValue(values, FieldGivenName, given)

		setValue(values, FieldTotalFunds, totalFunds(record))
	}

	setValue(values, FieldAdmissionNumber, summaryValue(data.I94, admissionAliases))
	setValue(values, FieldPassportNumber, summaryValue(data.Passport, passportAliases))
	setValue(values, FieldDateOfBirth, summaryValue(data.Passport, dobAliases))
	setValue(values, FieldSchoolName, summaryValue(data.I20, schoolAliases))

	return values
}

func setValue(values map[string]string, logical, v string) {
	v = strings.TrimSpace(v)
	if v != "" {
		values[logical] = v
	}
}

// splitName treats the final whitespace-separated token as the surname.
func splitName(full string) (surname, given string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
}

func totalFunds(record *models.CanonicalApplicationRecord) string {
	amount := record.Financial.SavingsAmount
	if record.Financial.FundingSource == models.FundingSponsor && record.Financial.SponsorFunds != "" {
		amount = record.Financial.SponsorFunds
	}
	if amount == "" {
		return ""
	}
	if _, err := decimal.NewFromString(amount); err != nil {
		return ""
	}
	return amount
}

func summaryValue(summary *models.DocumentSummary, aliases []string) string {
	if summary == nil {
		return ""
	}
	for _, alias := range aliases {
		if raw, ok := summary.Fields[alias]; ok {
			switch v := raw.(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					return s
				}
			}
		}
	}
	return ""
}
