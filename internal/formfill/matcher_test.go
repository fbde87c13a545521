package formfill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visaflow/visa-assistant/internal/models"
)

func TestMatchFields(t *testing.T) {
	t.Run("matches common government form field names", func(t *testing.T) {
		names := []string{
			"Pt1Line1a_FamilyName",
			"Pt1Line1b_GivenName",
			"Pt1Line4_DateOfBirth",
			"Pt1Line6_CountryOfCitizenship",
			"Pt1Line8_PassportNumber",
			"Pt1Line9_I94Number",
			"Pt1Line10_MailingAddress",
		}

		matched := MatchFields(names)

		assert.Equal(t, "Pt1Line1a_FamilyName", matched[FieldSurname])
		assert.Equal(t, "Pt1Line1b_GivenName", matched[FieldGivenName])
		assert.Equal(t, "Pt1Line4_DateOfBirth", matched[FieldDateOfBirth])
		assert.Equal(t, "Pt1Line6_CountryOfCitizenship", matched[FieldHomeCountry])
		assert.Equal(t, "Pt1Line8_PassportNumber", matched[FieldPassportNumber])
		assert.Equal(t, "Pt1Line9_I94Number", matched[FieldAdmissionNumber])
		assert.Equal(t, "Pt1Line10_MailingAddress", matched[FieldMailingAddress])
	})

	t.Run("admission number never claims an address field", func(t *testing.T) {
		// The address line mentions I-94 arrival context but is still an
		// address; the exclusion list has to veto the candidate hit.
		names := []string{
			"Pt2Line3_I94ArrivalAddressStreetNumber",
			"Pt2Line7_I94AdmissionNumber",
		}

		matched := MatchFields(names)

		assert.Equal(t, "Pt2Line7_I94AdmissionNumber", matched[FieldAdmissionNumber])
		assert.Equal(t, "Pt2Line3_I94ArrivalAddressStreetNumber", matched[FieldMailingAddress])
	})

	t.Run("first candidate pattern wins", func(t *testing.T) {
		names := []string{"LastName_Line2", "FamilyName_Line1"}

		matched := MatchFields(names)

		// family.?name is tried before last.?name.
		assert.Equal(t, "FamilyName_Line1", matched[FieldSurname])
	})

	t.Run("a claimed field is not reused by a later rule", func(t *testing.T) {
		names := []string{"ApplicantFamilyName"}

		matched := MatchFields(names)

		assert.Equal(t, "ApplicantFamilyName", matched[FieldSurname])
		_, ok := matched[FieldFullName]
		assert.False(t, ok, "full-name rule must not steal the surname field")
	})

	t.Run("given name excludes middle and family variants", func(t *testing.T) {
		names := []string{"Pt1_MiddleAndFirstName", "Pt1_FirstName"}

		matched := MatchFields(names)

		assert.Equal(t, "Pt1_FirstName", matched[FieldGivenName])
	})

	t.Run("no fields no matches", func(t *testing.T) {
		assert.Empty(t, MatchFields(nil))
	})
}

func TestBuildValues(t *testing.T) {
	data := &models.AggregatedApplicationData{
		Record: &models.CanonicalApplicationRecord{
			ApplicantName:  "Ana Maria Souza",
			Email:          "ana@example.com",
			CurrentAddress: "12 Elm Street, Springfield",
			HomeCountry:    "Brazil",
			Financial: models.FinancialSupport{
				FundingSource: models.FundingSponsor,
				SavingsAmount: "3000",
				SponsorFunds:  "25000.00",
			},
		},
		Passport: &models.DocumentSummary{
			Fields: map[string]interface{}{
				"passport_number": "FD123456",
				"date_of_birth":   "1998-04-12",
			},
		},
		I94: &models.DocumentSummary{
			Fields: map[string]interface{}{"admission_number": "9412345678A"},
		},
	}

	values := BuildValues(data)

	assert.Equal(t, "Souza", values[FieldSurname])
	assert.Equal(t, "Ana Maria", values[FieldGivenName])
	assert.Equal(t, "Ana Maria Souza", values[FieldFullName])
	assert.Equal(t, "FD123456", values[FieldPassportNumber])
	assert.Equal(t, "9412345678A", values[FieldAdmissionNumber])
	assert.Equal(t, "1998-04-12", values[FieldDateOfBirth])
	assert.Equal(t, "25000.00", values[FieldTotalFunds], "sponsor funding uses the sponsor total")
}

func TestBuildValues_SelfFundedUsesSavings(t *testing.T) {
	data := &models.AggregatedApplicationData{
		Record: &models.CanonicalApplicationRecord{
			Financial: models.FinancialSupport{
				FundingSource: models.FundingSelf,
				SavingsAmount: "18000.50",
			},
		},
	}

	values := BuildValues(data)

	assert.Equal(t, "18000.50", values[FieldTotalFunds])
}

func TestBuildValues_NilInputs(t *testing.T) {
	assert.Empty(t, BuildValues(nil))
	assert.Empty(t, BuildValues(&models.AggregatedApplicationData{}))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full    string
		surname string
		given   string
	}{
		{"Ana Souza", "Souza", "Ana"},
		{"Ana Maria Souza", "Souza", "Ana Maria"},
		{"Cher", "Cher", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		surname, given := splitName(tt.full)
		assert.Equal(t, tt.surname, surname)
		assert.Equal(t, tt.given, given)
	}
}

func TestGenerateGuide(t *testing.T) {
	data := &models.AggregatedApplicationData{
		Record: &models.CanonicalApplicationRecord{
			ApplicantName: "Ana Souza",
			HomeCountry:   "Brazil",
		},
	}

	guide := GenerateGuide(data)

	require.Contains(t, guide, "Family Name (Surname):")
	assert.Contains(t, guide, "Souza")
	assert.Contains(t, guide, "Brazil")
	assert.Contains(t, guide, "[not on file]", "missing fields are called out explicitly")

	// Field order is stable: surname before country, country before email.
	assert.Less(t, strings.Index(guide, "Family Name"), strings.Index(guide, "Country of Citizenship"))
}
