package docai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visaflow/visa-assistant/internal/models"
)

func TestUpstreamError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewUpstreamError("document-extraction", cause)

	assert.Contains(t, err.Error(), "document-extraction")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause), "the upstream cause stays reachable through Unwrap")

	var upstream *UpstreamError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &upstream))
	assert.Equal(t, "document-extraction", upstream.Service)
}

func TestBuildExtractionPrompt(t *testing.T) {
	t.Run("known type lists expected fields", func(t *testing.T) {
		prompt := buildExtractionPrompt("PASSPORT\nSILVA, CARLOS", models.DocTypePassport)

		assert.Contains(t, prompt, "passport_number")
		assert.Contains(t, prompt, "date_of_birth")
		assert.Contains(t, prompt, "SILVA, CARLOS")
		assert.Contains(t, prompt, "Do not invent values")
	})

	t.Run("unknown type falls back to free-form extraction", func(t *testing.T) {
		prompt := buildExtractionPrompt("some text", "utility_bill")

		assert.Contains(t, prompt, "every labeled field")
		assert.NotContains(t, prompt, "passport_number")
	})

	t.Run("bank statement asks for the closing balance", func(t *testing.T) {
		prompt := buildExtractionPrompt("statement text", models.DocTypeBankStatement)

		assert.Contains(t, prompt, "closing_balance")
		assert.Contains(t, prompt, "account_holder")
	})
}

func TestBuildStatementPrompt(t *testing.T) {
	record := &models.CanonicalApplicationRecord{
		ApplicantName: "Ana Souza",
		HomeCountry:   "Brazil",
		Ties: models.TiesToCountry{
			FamilyTies: "My parents and two siblings live in Sao Paulo.",
		},
		Financial: models.FinancialSupport{
			FundingSource: models.FundingSponsor,
			SponsorName:   "Carlos Souza",
		},
		HasDependents: true,
		Dependents: []models.Dependent{
			{FullName: "Maria Souza"},
		},
	}

	prompt := buildStatementPrompt(record)

	assert.Contains(t, prompt, "Ana Souza")
	assert.Contains(t, prompt, "Carlos Souza")
	assert.Contains(t, prompt, "Maria Souza")
	assert.NotContains(t, prompt, "Scholarship", "absent facts never reach the prompt")
}
