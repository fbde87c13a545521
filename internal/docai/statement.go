package docai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
)

const serviceStatement = "statement-generation"

// StatementGenerator produces the personal statement draft from the
// canonical record. The output is prose, not JSON; the caller paginates and
// renders it like any other letter section.
type StatementGenerator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewStatementGenerator creates a new StatementGenerator.
func NewStatementGenerator(apiKey, model string, logger *zap.Logger) *StatementGenerator {
	return &StatementGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Generate drafts a personal statement for the application. Failures are
// wrapped as upstream errors carrying the collaborator's message.
func (g *StatementGenerator) Generate(ctx context.Context, record *models.CanonicalApplicationRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("generate statement: no application record")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   1500,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You draft personal statements for visa applications. " +
					"Write in the first person, in plain formal English, " +
					"four to six paragraphs. State only facts provided in the prompt.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildStatementPrompt(record),
			},
		},
	})
	if err != nil {
		g.logger.Error("statement generation failed", zap.Error(err))
		return "", NewUpstreamError(serviceStatement, err)
	}
	if len(resp.Choices) == 0 {
		return "", NewUpstreamError(serviceStatement, fmt.Errorf("empty completion"))
	}

	statement := strings.TrimSpace(resp.Choices[0].Message.Content)
	if statement == "" {
		return "", NewUpstreamError(serviceStatement, fmt.Errorf("blank statement"))
	}

	g.logger.Info("personal statement generated",
		zap.String("application_id", record.ID),
		zap.Int("length", len(statement)))

	return statement, nil
}

func buildStatementPrompt(record *models.CanonicalApplicationRecord) string {
	var b strings.Builder
	b.WriteString("Draft a personal statement from these application facts:\n\n")

	writeFact(&b, "Applicant name", record.ApplicantName)
	writeFact(&b, "Home country", record.HomeCountry)
	writeFact(&b, "Current address", record.CurrentAddress)
	writeFact(&b, "Family ties to home country", record.Ties.FamilyTies)
	writeFact(&b, "Economic ties to home country", record.Ties.EconomicTies)
	writeFact(&b, "Plans to return", record.Ties.ReturnPlans)
	writeFact(&b, "Funding source", record.Financial.FundingSource)
	writeFact(&b, "Sponsor name", record.Financial.SponsorName)
	writeFact(&b, "Sponsor relationship", record.Financial.SponsorRelationship)
	writeFact(&b, "Scholarship", record.Financial.ScholarshipName)

	if record.HasDependents && len(record.Dependents) > 0 {
		var names []string
		for _, d := range record.Dependents {
			names = append(names, d.FullName)
		}
		writeFact(&b, "Accompanying dependents", strings.Join(names, ", "))
	}

	b.WriteString("\nDo not mention facts that are absent above.")
	return b.String()
}

func writeFact(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}
