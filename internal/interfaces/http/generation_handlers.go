package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/export"
	"github.com/visaflow/visa-assistant/internal/formfill"
	"github.com/visaflow/visa-assistant/internal/layout"
	"github.com/visaflow/visa-assistant/internal/letter"
	"github.com/visaflow/visa-assistant/internal/models"
)

// aggregateFor loads the composed application view for the current user.
func (h *Handlers) aggregateFor(c *gin.Context) (*models.AggregatedApplicationData, error) {
	user := currentUser(c)
	if user == nil {
		return nil, models.ErrUnauthenticated
	}
	return h.aggregator.Aggregate(c.Request.Context(), c.Param("id"), user.ID)
}

// ValidateLetter reports whether the letter context is complete enough to
// generate, with every failing field listed.
func (h *Handlers) ValidateLetter(c *gin.Context) {
	data, err := h.aggregateFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result := h.validator.Validate(letter.BuildContext(data, time.Now()))
	c.JSON(http.StatusOK, result)
}

// GenerateLetter assembles the cover letter and stores it as the next
// version. Validation errors block generation.
func (h *Handlers) GenerateLetter(c *gin.Context) {
	data, err := h.aggregateFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	letterCtx := letter.BuildContext(data, time.Now())
	result := h.validator.Validate(letterCtx)
	if !result.Valid {
		writeValidationFailure(c, result.Errors)
		return
	}

	content, err := h.engine.Assemble(letterCtx)
	if err != nil {
		writeError(c, err)
		return
	}

	saved, err := h.generated.SaveNewVersion(c.Request.Context(),
		data.Record.ID, models.GeneratedTypeCoverLetter, content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": saved,
		"warnings": result.Warnings,
	})
}

// GetLetter returns the current cover letter version.
func (h *Handlers) GetLetter(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	doc, err := h.generated.GetCurrent(c.Request.Context(), record.ID, models.GeneratedTypeCoverLetter)
	if err != nil {
		writeError(c, err)
		return
	}
	if doc == nil {
		writeError(c, fmt.Errorf("cover letter: %w", models.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GenerateStatement drafts the personal statement via the LLM collaborator
// and stores it as the next version.
func (h *Handlers) GenerateStatement(c *gin.Context) {
	record, err := h.ownedApplication(c)
	if err != nil {
		writeError(c, err)
		return
	}

	statement, err := h.statements.Generate(c.Request.Context(), record)
	if err != nil {
		writeError(c, err)
		return
	}

	saved, err := h.generated.SaveNewVersion(c.Request.Context(),
		record.ID, models.GeneratedTypePersonalStatement, statement)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": saved})
}

// DownloadCombinedPDF renders the full application package as one PDF:
// cover letter pages, financial summary, signature, personal statement, and
// the exhibit list.
func (h *Handlers) DownloadCombinedPDF(c *gin.Context) {
	data, err := h.aggregateFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	output, result, err := h.renderCombined(c, data)
	if err != nil {
		writeError(c, err)
		return
	}
	if output == nil {
		writeValidationFailure(c, result.Errors)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="application_package.pdf"`)
	c.Data(http.StatusOK, "application/pdf", output)
}

// renderCombined produces the combined PDF, or a nil PDF with the blocking
// validation result.
func (h *Handlers) renderCombined(c *gin.Context, data *models.AggregatedApplicationData) ([]byte, *letter.ValidationResult, error) {
	letterCtx := letter.BuildContext(data, time.Now())
	result := h.validator.Validate(letterCtx)
	if !result.Valid {
		return nil, result, nil
	}

	content, err := h.engine.Assemble(letterCtx)
	if err != nil {
		return nil, nil, err
	}

	sections := layout.RenderedSections{
		CoverLetterParagraphs: layout.SplitParagraphs(content),
		Financial:             financialSummary(letterCtx),
		Signature: &layout.SignatureBlock{
			Name:    letterCtx["signatory_name"],
			Address: strings.TrimSpace(letterCtx["address_line1"] + "\n" + letterCtx["address_line2"]),
			Date:    letterCtx["letter_date"],
		},
		ExhibitItems: h.exhibitItems(data),
	}

	if statement, err := h.generated.GetCurrent(c.Request.Context(),
		data.Record.ID, models.GeneratedTypePersonalStatement); err == nil && statement != nil {
		sections.PersonalStatement = layout.SplitParagraphs(statement.Content)
	}

	output, err := h.renderer.Render(h.planner.Plan(sections))
	if err != nil {
		return nil, nil, err
	}
	return output, result, nil
}

// financialSummary lifts the monetary context values into the dedicated
// summary page.
func financialSummary(letterCtx map[string]string) *layout.FinancialSummary {
	summary := &layout.FinancialSummary{Title: "Summary of Financial Support"}
	add := func(label, key string) {
		if v := letterCtx[key]; v != "" {
			summary.Rows = append(summary.Rows, layout.SummaryRow{Label: label, Value: v})
		}
	}
	add("Total available funds", "total_funds")
	add("Personal savings", "savings_amount")
	add("Sponsor funds", "sponsor_funds")
	add("Annual income", "annual_income")

	if len(summary.Rows) == 0 {
		return nil
	}
	return summary
}

// exhibitItems numbers every uploaded document in checklist category order.
func (h *Handlers) exhibitItems(data *models.AggregatedApplicationData) []string {
	reqs := h.resolver.Resolve(data.Record)

	byType := make(map[string][]models.ExtractedDocument)
	for _, doc := range data.Documents {
		byType[doc.Type] = append(byType[doc.Type], doc)
	}

	var items []string
	n := 0
	for _, slot := range reqs.Documents {
		for _, doc := range byType[slot.Type] {
			n++
			items = append(items, fmt.Sprintf("Exhibit %d: %s (%s)", n, slot.Label, doc.FileName))
		}
	}
	return items
}

// DownloadForm returns the government form, filled when possible. A blank
// form with filled=false is a degraded success, not an error.
func (h *Handlers) DownloadForm(c *gin.Context) {
	data, err := h.aggregateFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	template, source, err := h.locator.Locate(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.filler.Fill(template, data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="immigration_form.pdf"`)
	c.Header("X-Form-Filled", fmt.Sprintf("%t", result.Filled))
	c.Header("X-Form-Fill-Method", result.Method)
	c.Header("X-Form-Template-Source", source)
	c.Data(http.StatusOK, "application/pdf", result.Bytes)
}

// DownloadPackage bundles every artifact into one zip.
func (h *Handlers) DownloadPackage(c *gin.Context) {
	data, err := h.aggregateFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	combined, result, err := h.renderCombined(c, data)
	if err != nil {
		writeError(c, err)
		return
	}
	if combined == nil {
		writeValidationFailure(c, result.Errors)
		return
	}

	letterCtx := letter.BuildContext(data, time.Now())
	sections, err := h.engine.AssembleSections(letterCtx)
	if err != nil {
		writeError(c, err)
		return
	}
	letterDocx, err := export.BuildLetterDocx(sections)
	if err != nil {
		writeError(c, err)
		return
	}

	workbook, err := export.BuildFinancialWorkbook(data)
	if err != nil {
		h.logger.Warn("financial workbook skipped", zap.Error(err))
		workbook = nil
	}

	input := export.PackageInput{
		CombinedPDF: combined,
		LetterDocx:  letterDocx,
		FillGuide:   formfill.GenerateGuide(data),
		Workbook:    workbook,
	}

	if template, _, err := h.locator.Locate(c.Request.Context()); err == nil {
		if fill, err := h.filler.Fill(template, data); err == nil {
			input.FormPDF = fill.Bytes
			input.FormFilled = fill.Filled
		}
	}

	archive, err := h.packager.Build(input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="application_package.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}
