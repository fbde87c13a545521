package models

// Document type vocabulary. Upstream extractors tag every processed upload
// with exactly one of these.
const (
	DocTypePassport             = "passport"
	DocTypeI94                  = "i94"
	DocTypeI20                  = "i20"
	DocTypeBankStatement        = "bank_statement"
	DocTypeSponsorBankStatement = "sponsor_bank_statement"
	DocTypeAssets               = "assets"
	DocTypeSponsorAssets        = "sponsor_assets"
	DocTypeSupportingDocuments  = "supporting_documents"
	DocTypeScholarshipDocument  = "scholarship_document"
	DocTypeOtherFunding         = "other_funding"
	DocTypeDependentPassport    = "dependent_passport"
	DocTypeDependentI94         = "dependent_i94"
)

// Document processing status
const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusCompleted  = "completed"
	DocStatusError      = "error"
)

// Funding source discriminant values
const (
	FundingSelf        = "self"
	FundingSponsor     = "sponsor"
	FundingScholarship = "scholarship"
	FundingOther       = "other"
)

// Requirement categories
const (
	CategoryApplicantRequired    = "applicant_required"
	CategoryTiesToCountry        = "ties_to_country"
	CategoryDependents           = "dependents"
	CategoryFinancialSelf        = "financial_self"
	CategoryFinancialSponsor     = "financial_sponsor"
	CategoryFinancialScholarship = "financial_scholarship"
	CategoryFinancialOther       = "financial_other"
)

// CategoryOrder is the fixed display and counting order for requirement
// categories. Downstream document numbering depends on this sequence.
var CategoryOrder = []string{
	CategoryApplicantRequired,
	CategoryTiesToCountry,
	CategoryDependents,
	CategoryFinancialSelf,
	CategoryFinancialSponsor,
	CategoryFinancialScholarship,
	CategoryFinancialOther,
}

// Application lifecycle status
const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusSubmitted = "submitted"
)

// Generated document types
const (
	GeneratedTypeCoverLetter       = "cover_letter"
	GeneratedTypePersonalStatement = "personal_statement"
)
