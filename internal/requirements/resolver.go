// Package requirements computes the supporting-document checklist for an
// application. The checklist is derived data: it is recomputed from the
// canonical record on every request and never stored.
package requirements

import "github.com/visaflow/visa-assistant/internal/models"

// docSlot is one fixed checklist entry. Whether a financial slot is required
// depends on the record's funding source; everything else is static.
type docSlot struct {
	id       string
	category string
	docType  string
	label    string
	quantity int
}

// slotTable is the complete checklist in its fixed category order. Output
// order is a correctness requirement: display and document numbering follow
// this sequence.
var slotTable = []docSlot{
	{id: "passport", category: models.CategoryApplicantRequired, docType: models.DocTypePassport, label: "Valid passport (biographical page)"},
	{id: "i94", category: models.CategoryApplicantRequired, docType: models.DocTypeI94, label: "Most recent I-94 arrival/departure record"},
	{id: "i20", category: models.CategoryApplicantRequired, docType: models.DocTypeI20, label: "Form I-20 certificate of eligibility"},

	{id: "ties_evidence", category: models.CategoryTiesToCountry, docType: models.DocTypeSupportingDocuments, label: "Evidence of ties to home country", quantity: 3},

	{id: "dependent_passports", category: models.CategoryDependents, docType: models.DocTypeDependentPassport, label: "Dependent passports"},
	{id: "dependent_i94s", category: models.CategoryDependents, docType: models.DocTypeDependentI94, label: "Dependent I-94 records"},

	{id: "bank_statements", category: models.CategoryFinancialSelf, docType: models.DocTypeBankStatement, label: "Personal bank statements (last 3 months)", quantity: 3},
	{id: "assets", category: models.CategoryFinancialSelf, docType: models.DocTypeAssets, label: "Evidence of personal assets"},

	{id: "sponsor_bank_statements", category: models.CategoryFinancialSponsor, docType: models.DocTypeSponsorBankStatement, label: "Sponsor bank statements (last 3 months)", quantity: 3},
	{id: "sponsor_assets", category: models.CategoryFinancialSponsor, docType: models.DocTypeSponsorAssets, label: "Evidence of sponsor assets"},

	{id: "scholarship_letter", category: models.CategoryFinancialScholarship, docType: models.DocTypeScholarshipDocument, label: "Scholarship or fellowship award letter"},

	{id: "other_funding", category: models.CategoryFinancialOther, docType: models.DocTypeOtherFunding, label: "Evidence of other funding source"},
}

// fundingCategory maps a funding source to the financial category whose
// slots become mandatory.
var fundingCategory = map[string]string{
	models.FundingSelf:        models.CategoryFinancialSelf,
	models.FundingSponsor:     models.CategoryFinancialSponsor,
	models.FundingScholarship: models.CategoryFinancialScholarship,
	models.FundingOther:       models.CategoryFinancialOther,
}

// Resolver computes document requirements from a canonical record.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the full checklist. The three applicant documents are
// always required; ties and dependent slots are always listed as optional so
// users are never blocked from attaching supporting evidence; all four
// financial categories are always listed, with exactly the category matching
// the funding source marked required. An empty record yields the same
// baseline with no financial slot required.
func (r *Resolver) Resolve(record *models.CanonicalApplicationRecord) *models.Requirements {
	requiredCategory := ""
	if record != nil {
		requiredCategory = fundingCategory[record.Financial.FundingSource]
	}

	out := &models.Requirements{
		Documents:  make([]models.RequiredDocument, 0, len(slotTable)),
		ByCategory: make(map[string][]models.RequiredDocument),
	}

	for _, slot := range slotTable {
		required := slot.category == models.CategoryApplicantRequired ||
			(requiredCategory != "" && slot.category == requiredCategory)

		doc := models.RequiredDocument{
			ID:       slot.id,
			Category: slot.category,
			Type:     slot.docType,
			Label:    slot.label,
			Required: required,
			Quantity: slot.quantity,
		}

		out.Documents = append(out.Documents, doc)
		out.ByCategory[slot.category] = append(out.ByCategory[slot.category], doc)
		if required {
			out.TotalRequired++
		}
	}

	return out
}
