package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visaflow/visa-assistant/internal/models"
	"go.uber.org/zap"
)

func newTestMerger(t *testing.T) *Merger {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return NewMerger(logger)
}

func completedDoc(id, docType string, fields map[string]interface{}, rawText string) *models.ExtractedDocument {
	return &models.ExtractedDocument{
		ID:              id,
		Type:            docType,
		Status:          models.DocStatusCompleted,
		ExtractedFields: fields,
		RawText:         rawText,
	}
}

func TestMerger_SavingsSummation(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "1000"}, ""),
		completedDoc("d2", models.DocTypeBankStatement, map[string]interface{}{"closing_balance": "2,500.50"}, ""),
		completedDoc("d3", models.DocTypeSponsorBankStatement, map[string]interface{}{"closingBalance": "9999"}, ""),
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

	assert.Equal(t, "3500.50", result.Record.Financial.SavingsAmount,
		"sponsor balance must not contribute to applicant savings")
	assert.Equal(t, "9999", result.Record.Financial.SponsorFunds)
}

func TestMerger_BalanceCentPrecision(t *testing.T) {
	merger := newTestMerger(t)

	t.Run("trailing cent zero survives summation", func(t *testing.T) {
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "1000"}, ""),
			completedDoc("d2", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "2,500.50"}, ""),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})
		assert.Equal(t, "3500.50", result.Record.Financial.SavingsAmount)
	})

	t.Run("whole-dollar balances stay without cents", func(t *testing.T) {
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "1000"}, ""),
			completedDoc("d2", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "2500"}, ""),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})
		assert.Equal(t, "3500", result.Record.Financial.SavingsAmount)
	})

	t.Run("sponsor funds keep cents too", func(t *testing.T) {
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeSponsorBankStatement, map[string]interface{}{"closingBalance": "4000"}, ""),
			completedDoc("d2", models.DocTypeSponsorBankStatement, map[string]interface{}{"closingBalance": "1,500.30"}, ""),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})
		assert.Equal(t, "5500.30", result.Record.Financial.SponsorFunds)
	})
}

func TestMerger_RawTextBalanceFallback(t *testing.T) {
	merger := newTestMerger(t)

	// No structured field at all; the balance only exists in raw text.
	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeSponsorBankStatement, nil,
			"First National Bank\nAccount Holder: Carlos Silva\nClosing Balance: $12,345.67\n"),
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

	assert.Equal(t, "12345.67", result.Record.Financial.SponsorFunds)
	assert.Equal(t, "Carlos Silva", result.Record.Financial.SponsorName)
}

func TestMerger_DiscardsUnparsableBalances(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "N/A"}, ""),
		completedDoc("d2", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "-50"}, ""),
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

	assert.Empty(t, result.Record.Financial.SavingsAmount)
	assert.Len(t, result.Warnings, 2)
}

func TestMerger_SponsorNameFirstWins(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeSponsorBankStatement, map[string]interface{}{"accountHolder": "Ana Souza", "closingBalance": "100"}, ""),
		completedDoc("d2", models.DocTypeSponsorBankStatement, map[string]interface{}{"accountHolder": "Pedro Souza", "closingBalance": "200"}, ""),
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})
	assert.Equal(t, "Ana Souza", result.Record.Financial.SponsorName)

	// A name already on the record is never overwritten either.
	existing := &models.CanonicalApplicationRecord{}
	existing.Financial.SponsorName = "Laura Souza"
	result = merger.Merge(docs, existing)
	assert.Equal(t, "Laura Souza", result.Record.Financial.SponsorName)
}

func TestMerger_DependentDedup(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeDependentPassport, map[string]interface{}{"fullName": "Maria Silva"}, ""),
		completedDoc("d2", models.DocTypeDependentI94, map[string]interface{}{"fullName": "MARIA SILVA", "dateOfBirth": "2015-03-02"}, ""),
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

	require.Len(t, result.Record.Dependents, 1)
	dep := result.Record.Dependents[0]
	assert.Equal(t, "Maria Silva", dep.FullName, "first-seen casing is kept")
	assert.Equal(t, "2015-03-02", dep.DateOfBirth, "empty field filled from later document")
	assert.True(t, result.Record.HasDependents)
}

func TestMerger_DependentFieldsNeverOverwritten(t *testing.T) {
	merger := newTestMerger(t)

	existing := &models.CanonicalApplicationRecord{
		Dependents: []models.Dependent{
			{FullName: "Joao Silva", DateOfBirth: "2010-01-01"},
		},
	}
	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypeDependentPassport,
			map[string]interface{}{"fullName": "joao silva", "dateOfBirth": "1999-12-31", "countryOfBirth": "Brazil"}, ""),
	}

	result := merger.Merge(docs, existing)

	require.Len(t, result.Record.Dependents, 1)
	assert.Equal(t, "2010-01-01", result.Record.Dependents[0].DateOfBirth)
	assert.Equal(t, "Brazil", result.Record.Dependents[0].CountryOfBirth)
}

func TestMerger_TiesDistribution(t *testing.T) {
	merger := newTestMerger(t)

	t.Run("three texts fill the three questions in order", func(t *testing.T) {
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "My parents live in Recife."}, ""),
			completedDoc("d2", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "I own an apartment."}, ""),
			completedDoc("d3", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "I will return to my job."}, ""),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

		assert.Equal(t, "My parents live in Recife.", result.Record.Ties.FamilyTies)
		assert.Equal(t, "I own an apartment.", result.Record.Ties.EconomicTies)
		assert.Equal(t, "I will return to my job.", result.Record.Ties.ReturnPlans)
	})

	t.Run("fewer texts fill the first questions only", func(t *testing.T) {
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "Short note."}, ""),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

		assert.Equal(t, "Short note.", result.Record.Ties.FamilyTies)
		assert.Empty(t, result.Record.Ties.EconomicTies)
		assert.Empty(t, result.Record.Ties.ReturnPlans)
	})

	t.Run("single long text splits into sentence thirds", func(t *testing.T) {
		long := "My whole family lives in Curitiba. My parents depend on me. " +
			"I hold a permanent position at a hospital. I own my home outright. " +
			"My employer expects me back in June. I have a return ticket."
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeSupportingDocuments, nil, long),
		}

		result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

		assert.NotEmpty(t, result.Record.Ties.FamilyTies)
		assert.NotEmpty(t, result.Record.Ties.EconomicTies)
		assert.NotEmpty(t, result.Record.Ties.ReturnPlans)
		assert.Contains(t, result.Record.Ties.FamilyTies, "Curitiba")
		assert.Contains(t, result.Record.Ties.ReturnPlans, "return ticket")
	})

	t.Run("answered questions are not overwritten", func(t *testing.T) {
		existing := &models.CanonicalApplicationRecord{}
		existing.Ties.FamilyTies = "Written by the applicant."
		docs := []*models.ExtractedDocument{
			completedDoc("d1", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "Extracted text."}, ""),
		}

		result := merger.Merge(docs, existing)

		assert.Equal(t, "Written by the applicant.", result.Record.Ties.FamilyTies)
		assert.Empty(t, result.Record.Ties.EconomicTies,
			"texts are positional and never shift into other questions")
	})
}

func TestMerger_Idempotence(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		completedDoc("d1", models.DocTypePassport, map[string]interface{}{"fullName": "Maria Silva", "nationality": "Brazil"}, ""),
		completedDoc("d2", models.DocTypeBankStatement, map[string]interface{}{"closingBalance": "1000"}, ""),
		completedDoc("d3", models.DocTypeBankStatement, nil, "Closing Balance: $2,500.50"),
		completedDoc("d4", models.DocTypeSponsorBankStatement, map[string]interface{}{"accountHolder": "Carlos Silva", "closingBalance": "9999"}, ""),
		completedDoc("d5", models.DocTypeDependentPassport, map[string]interface{}{"fullName": "Joao Silva", "dateOfBirth": "2012-07-09"}, ""),
		completedDoc("d6", models.DocTypeSupportingDocuments, map[string]interface{}{"summary": "Family ties text."}, ""),
	}

	once := merger.Merge(docs, &models.CanonicalApplicationRecord{})
	twice := merger.Merge(docs, once.Record)

	assert.Equal(t, once.Record, twice.Record, "merge(docs, merge(docs, initial)) must equal merge(docs, initial)")
}

func TestMerger_IgnoresIncompleteDocuments(t *testing.T) {
	merger := newTestMerger(t)

	docs := []*models.ExtractedDocument{
		{ID: "d1", Type: models.DocTypeBankStatement, Status: models.DocStatusPending,
			ExtractedFields: map[string]interface{}{"closingBalance": "1000"}},
		{ID: "d2", Type: models.DocTypeBankStatement, Status: models.DocStatusError,
			ExtractedFields: map[string]interface{}{"closingBalance": "2000"}},
		{ID: "d3", Type: models.DocTypeBankStatement, Status: models.DocStatusCompleted},
	}

	result := merger.Merge(docs, &models.CanonicalApplicationRecord{})

	assert.Empty(t, result.Record.Financial.SavingsAmount)
	assert.Empty(t, result.Warnings)
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		found bool
	}{
		{"$12,345.67", "12345.67", true},
		{"1000", "1000", true},
		{"2,500.50", "2500.5", true},
		{"USD 3,000", "3000", true},
		{"0", "", false},
		{"-42", "", false},
		{"N/A", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		d, found := ParseMoney(tc.in)
		assert.Equal(t, tc.found, found, "input %q", tc.in)
		if tc.found {
			assert.Equal(t, tc.want, d.String(), "input %q", tc.in)
		}
	}
}
