package models

import "time"

// User identifies the requesting account. Identity resolution itself is an
// external collaborator; only these fields flow into letters and forms.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Dependent is one family member accompanying the applicant.
type Dependent struct {
	FullName       string `json:"full_name"`
	Relationship   string `json:"relationship,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	CountryOfBirth string `json:"country_of_birth,omitempty"`
}

// TiesToCountry holds the three free-text answers about ties to the home
// country. The order is fixed: family, economic, return plans.
type TiesToCountry struct {
	FamilyTies   string `json:"family_ties,omitempty"`
	EconomicTies string `json:"economic_ties,omitempty"`
	ReturnPlans  string `json:"return_plans,omitempty"`
}

// FinancialSupport describes how the stay is funded. FundingSource decides
// which sub-fields the requirement resolver treats as mandatory; the record
// itself never enforces that.
type FinancialSupport struct {
	FundingSource          string `json:"funding_source,omitempty"`
	SponsorName            string `json:"sponsor_name,omitempty"`
	SponsorRelationship    string `json:"sponsor_relationship,omitempty"`
	SponsorAddress         string `json:"sponsor_address,omitempty"`
	SponsorFunds           string `json:"sponsor_funds,omitempty"`
	AnnualIncome           string `json:"annual_income,omitempty"`
	SavingsAmount          string `json:"savings_amount,omitempty"`
	ScholarshipName        string `json:"scholarship_name,omitempty"`
	OtherSourceDescription string `json:"other_source_description,omitempty"`
}

// CanonicalApplicationRecord is the single normalized representation of one
// visa application's form data. It starts as an empty draft and is mutated
// incrementally by form answers and document extraction merges.
type CanonicalApplicationRecord struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	ApplicantName  string           `json:"applicant_name,omitempty"`
	Email          string           `json:"email,omitempty"`
	CurrentAddress string           `json:"current_address,omitempty"`
	HomeCountry    string           `json:"home_country,omitempty"`
	Ties           TiesToCountry    `json:"ties_to_country"`
	HasDependents  bool             `json:"has_dependents"`
	Dependents     []Dependent      `json:"dependents,omitempty"`
	Financial      FinancialSupport `json:"financial_support"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Clone returns a deep copy. The merger works on a copy so its inputs stay
// untouched.
func (r *CanonicalApplicationRecord) Clone() *CanonicalApplicationRecord {
	out := *r
	if r.Dependents != nil {
		out.Dependents = make([]Dependent, len(r.Dependents))
		copy(out.Dependents, r.Dependents)
	}
	return &out
}
