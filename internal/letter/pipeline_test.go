package letter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visaflow/visa-assistant/internal/extraction"
	"github.com/visaflow/visa-assistant/internal/models"
	"github.com/visaflow/visa-assistant/internal/requirements"
	"go.uber.org/zap"
)

// Full pipeline scenario: sponsor-funded application where the sponsor's
// balance exists only in raw statement text, flowing through the merger, the
// requirement resolver, context building, and letter assembly.
func TestSponsorFundingPipeline(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	record := &models.CanonicalApplicationRecord{ID: "app-1", UserID: "user-1"}
	record.Financial.FundingSource = models.FundingSponsor

	docs := []*models.ExtractedDocument{
		{
			ID: "passport-1", Type: models.DocTypePassport, Status: models.DocStatusCompleted,
			ExtractedFields: map[string]interface{}{"fullName": "Maria Silva", "nationality": "Brazil"},
		},
		{
			ID: "sponsor-stmt-1", Type: models.DocTypeSponsorBankStatement, Status: models.DocStatusCompleted,
			RawText: "Account Holder: Carlos Silva\nClosing Balance: $12,345.67\n",
		},
	}

	// Resolver: the sponsor category is required, other financial slots stay
	// listed but optional.
	reqs := requirements.NewResolver().Resolve(record)
	var sponsorSlot, selfSlot *models.RequiredDocument
	for i := range reqs.Documents {
		switch reqs.Documents[i].ID {
		case "sponsor_bank_statements":
			sponsorSlot = &reqs.Documents[i]
		case "bank_statements":
			selfSlot = &reqs.Documents[i]
		}
	}
	require.NotNil(t, sponsorSlot)
	require.NotNil(t, selfSlot)
	assert.True(t, sponsorSlot.Required)
	assert.False(t, selfSlot.Required)

	// Merger: the balance comes out of raw text via the fallback patterns.
	merged := extraction.NewMerger(logger).Merge(docs, record)
	assert.Equal(t, "12345.67", merged.Record.Financial.SponsorFunds)
	assert.Equal(t, "Carlos Silva", merged.Record.Financial.SponsorName)

	// Aggregated view and letter context.
	data := &models.AggregatedApplicationData{
		Record: merged.Record,
		I94: &models.DocumentSummary{Fields: map[string]interface{}{
			"entry_date": "2025-09-14", "classOfAdmission": "B-2",
		}},
		I20: &models.DocumentSummary{Fields: map[string]interface{}{
			"schoolName": "Springfield University",
		}},
	}
	merged.Record.CurrentAddress = "100 Main St, Springfield, IL"
	ctx := BuildContext(data, testNow())
	assert.Equal(t, "USD $12,346", ctx["total_funds"])

	validator := NewValidator(logger)
	result := validator.Validate(ctx)
	require.True(t, result.Valid, "errors: %v", result.Errors)

	body, err := NewEngine(logger).Assemble(ctx)
	require.NoError(t, err)

	// The financial capacity section carries the formatted sponsor figure.
	financial := body[strings.Index(body, "sufficient financial resources"):]
	assert.Contains(t, financial, "USD $12,346")
	assert.Contains(t, financial, "Carlos Silva")
}
