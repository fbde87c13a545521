package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/models"
)

const serviceExtraction = "document-extraction"

// docTypeFields lists, per document type, the fields the model is asked to
// return. The merger tolerates aliases and omissions, so this is a hint to
// the model rather than a schema the response is validated against.
var docTypeFields = map[string][]string{
	models.DocTypePassport: {
		"full_name", "passport_number", "date_of_birth", "nationality", "expiry_date",
	},
	models.DocTypeI94: {
		"admission_number", "entry_date", "class_of_admission", "admit_until_date",
	},
	models.DocTypeI20: {
		"school_name", "program_name", "sevis_id", "program_start_date", "program_end_date",
	},
	models.DocTypeBankStatement: {
		"account_holder", "bank_name", "closing_balance", "currency", "statement_period",
	},
	models.DocTypeSponsorBankStatement: {
		"account_holder", "bank_name", "closing_balance", "currency", "statement_period",
	},
	models.DocTypeDependentPassport: {
		"full_name", "date_of_birth", "country_of_birth", "passport_number",
	},
	models.DocTypeScholarshipDocument: {
		"scholarship_name", "award_amount", "award_period", "granting_institution",
	},
}

// ExtractionResult is the raw collaborator output: an arbitrary field bag
// plus the document's plain text.
type ExtractionResult struct {
	Fields  map[string]interface{}
	RawText string
}

// Extractor extracts structured fields from document text using the OpenAI
// chat API with JSON-object responses.
type Extractor struct {
	client *openai.Client
	model  string
	reader *PDFTextReader
	logger *zap.Logger
}

// NewExtractor creates a new document extractor.
func NewExtractor(apiKey, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		reader: NewPDFTextReader(logger),
		logger: logger,
	}
}

// ExtractFromFile reads the PDF at path and extracts fields for docType.
// When the model call fails, the raw text is still returned alongside the
// error so callers can persist a degraded result.
func (e *Extractor) ExtractFromFile(ctx context.Context, path, docType string) (*ExtractionResult, error) {
	rawText, err := e.reader.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", docType, err)
	}
	if rawText == "" {
		return nil, fmt.Errorf("extract %s: document contains no text", docType)
	}

	fields, err := e.extractFields(ctx, rawText, docType)
	if err != nil {
		return &ExtractionResult{RawText: rawText}, err
	}

	return &ExtractionResult{Fields: fields, RawText: rawText}, nil
}

func (e *Extractor) extractFields(ctx context.Context, text, docType string) (map[string]interface{}, error) {
	prompt := buildExtractionPrompt(text, docType)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You extract structured data from immigration and financial documents. " +
					"Extract exactly what the document states. Always respond with valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("extraction call failed",
			zap.String("doc_type", docType),
			zap.Error(err))
		return nil, NewUpstreamError(serviceExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewUpstreamError(serviceExtraction, fmt.Errorf("empty completion for %s", docType))
	}

	content := resp.Choices[0].Message.Content
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		e.logger.Error("failed to parse extraction result",
			zap.String("doc_type", docType),
			zap.String("content", content),
			zap.Error(err))
		return nil, NewUpstreamError(serviceExtraction, fmt.Errorf("parse extraction result: %w", err))
	}

	e.logger.Info("document fields extracted",
		zap.String("doc_type", docType),
		zap.Int("fields", len(fields)))

	return fields, nil
}

// buildExtractionPrompt names the expected fields for known document types
// and falls back to free-form key/value extraction for everything else.
func buildExtractionPrompt(text, docType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract data from this %s document.\n\n", strings.ReplaceAll(docType, "_", " "))

	if fields, ok := docTypeFields[docType]; ok {
		b.WriteString("Return a JSON object with these keys where present in the document:\n")
		for _, field := range fields {
			fmt.Fprintf(&b, "- %s\n", field)
		}
		b.WriteString("\nOmit keys you cannot find. Do not invent values.\n")
	} else {
		b.WriteString("Return a flat JSON object of every labeled field you can identify.\n")
		b.WriteString("Use lowercase snake_case keys. Do not invent values.\n")
	}

	b.WriteString("\nDocument text:\n")
	b.WriteString(text)
	return b.String()
}
