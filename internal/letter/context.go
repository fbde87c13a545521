package letter

import (
	"fmt"
	"strings"
	"time"

	"github.com/visaflow/visa-assistant/internal/extraction"
	"github.com/visaflow/visa-assistant/internal/models"
)

// DefaultServiceCenter is used when the caller does not override the
// destination office in the context.
const DefaultServiceCenter = "California Service Center"

// BuildContext flattens aggregated application data into the key/value map
// consumed by the template engine and validator. Keys with no available
// value are omitted so their placeholders stay visible in the rendered
// letter.
func BuildContext(data *models.AggregatedApplicationData, now time.Time) map[string]string {
	ctx := map[string]string{
		"letter_date":          now.Format("January 2, 2006"),
		"uscis_service_center": DefaultServiceCenter,
	}

	record := data.Record

	setIfPresent(ctx, "applicant_name", applicantName(data))
	setIfPresent(ctx, "home_country", record.HomeCountry)
	setIfPresent(ctx, "family_ties", record.Ties.FamilyTies)
	setIfPresent(ctx, "economic_ties", record.Ties.EconomicTies)
	setIfPresent(ctx, "return_plans", record.Ties.ReturnPlans)
	setIfPresent(ctx, "signatory_name", applicantName(data))

	line1, line2 := splitAddress(record.CurrentAddress)
	setIfPresent(ctx, "address_line1", line1)
	setIfPresent(ctx, "address_line2", line2)

	setIfPresent(ctx, "entry_date", summaryField(data.I94, "entryDate", "entry_date", "mostRecentEntry", "arrivalDate", "arrival_date"))
	setIfPresent(ctx, "current_status", summaryField(data.I94, "classOfAdmission", "class_of_admission", "status", "admissionClass"))
	setIfPresent(ctx, "i94_number", summaryField(data.I94, "admissionNumber", "admission_number", "i94Number", "i94_number"))

	setIfPresent(ctx, "school_name", summaryField(data.I20, "schoolName", "school_name", "institution"))
	setIfPresent(ctx, "program_name", summaryField(data.I20, "programName", "program_name", "program", "major"))
	setIfPresent(ctx, "program_start_date", summaryField(data.I20, "programStartDate", "program_start_date", "startDate", "start_date"))
	if data.I20 != nil {
		ctx["requested_status"] = "F-1"
	}

	setIfPresent(ctx, "sponsor_name", record.Financial.SponsorName)
	setIfPresent(ctx, "sponsor_relationship", record.Financial.SponsorRelationship)
	setIfPresent(ctx, "savings_amount", formatMoney(record.Financial.SavingsAmount))
	setIfPresent(ctx, "annual_income", formatMoney(record.Financial.AnnualIncome))
	setIfPresent(ctx, "sponsor_funds", formatMoney(record.Financial.SponsorFunds))
	setIfPresent(ctx, "total_funds", formatMoney(totalFunds(record)))
	setIfPresent(ctx, "funding_narrative", fundingNarrative(record))
	setIfPresent(ctx, "dependents_summary", dependentsSummary(record))

	return ctx
}

func setIfPresent(ctx map[string]string, key, value string) {
	if value != "" {
		ctx[key] = value
	}
}

func applicantName(data *models.AggregatedApplicationData) string {
	if data.Record.ApplicantName != "" {
		return data.Record.ApplicantName
	}
	name := strings.TrimSpace(data.User.FirstName + " " + data.User.LastName)
	return name
}

// splitAddress breaks a free-text address into two display lines at the
// first comma or newline.
func splitAddress(address string) (string, string) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ""
	}
	if i := strings.IndexAny(address, "\n"); i >= 0 {
		return strings.TrimSpace(address[:i]), strings.TrimSpace(address[i+1:])
	}
	if i := strings.Index(address, ","); i >= 0 {
		return strings.TrimSpace(address[:i]), strings.TrimSpace(address[i+1:])
	}
	return address, ""
}

func summaryField(s *models.DocumentSummary, keys ...string) string {
	if s == nil {
		return ""
	}
	for _, key := range keys {
		if v, ok := s.Fields[key]; ok {
			if str, ok := v.(string); ok && strings.TrimSpace(str) != "" {
				return strings.TrimSpace(str)
			}
		}
	}
	return ""
}

// totalFunds picks the figure matching the funding source.
func totalFunds(record *models.CanonicalApplicationRecord) string {
	switch record.Financial.FundingSource {
	case models.FundingSponsor:
		return record.Financial.SponsorFunds
	case models.FundingScholarship, models.FundingOther, models.FundingSelf:
		return record.Financial.SavingsAmount
	default:
		return record.Financial.SavingsAmount
	}
}

func fundingNarrative(record *models.CanonicalApplicationRecord) string {
	f := record.Financial
	switch f.FundingSource {
	case models.FundingSelf:
		return "These funds are held in my personal accounts."
	case models.FundingSponsor:
		if f.SponsorName != "" {
			rel := f.SponsorRelationship
			if rel == "" {
				rel = "sponsor"
			}
			return fmt.Sprintf("My studies will be funded by %s, my %s, whose financial documents are enclosed.", f.SponsorName, rel)
		}
		return "My studies will be funded by a sponsor whose financial documents are enclosed."
	case models.FundingScholarship:
		if f.ScholarshipName != "" {
			return fmt.Sprintf("My studies are funded by the %s scholarship; the award letter is enclosed.", f.ScholarshipName)
		}
		return "My studies are funded by a scholarship; the award letter is enclosed."
	case models.FundingOther:
		if f.OtherSourceDescription != "" {
			return fmt.Sprintf("My studies are funded as follows: %s.", strings.TrimSuffix(f.OtherSourceDescription, "."))
		}
	}
	return ""
}

func dependentsSummary(record *models.CanonicalApplicationRecord) string {
	if !record.HasDependents || len(record.Dependents) == 0 {
		return "not accompanied by any dependents"
	}
	names := make([]string, 0, len(record.Dependents))
	for _, d := range record.Dependents {
		names = append(names, d.FullName)
	}
	plural := "dependent"
	if len(names) > 1 {
		plural = "dependents"
	}
	return fmt.Sprintf("accompanied by %d %s (%s), for whom corresponding applications are enclosed",
		len(names), plural, strings.Join(names, ", "))
}

// formatMoney renders a stored monetary string as a rounded, thousands
// separated USD figure, e.g. "12345.67" becomes "USD $12,346". Unparsable
// input yields an empty string so the placeholder stays visible.
func formatMoney(raw string) string {
	if raw == "" {
		return ""
	}
	d, ok := extraction.ParseMoney(raw)
	if !ok {
		return ""
	}
	rounded := d.Round(0)
	return "USD $" + groupThousands(rounded.String())
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
