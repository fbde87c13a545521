// Package pdf renders planned page content into PDF documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/layout"
	"github.com/visaflow/visa-assistant/pkg/utils"
)

// Page geometry in millimeters (A4 portrait).
const (
	marginLeft   = 25.0
	marginTop    = 25.0
	marginRight  = 25.0
	bodyWidth    = 210.0 - marginLeft - marginRight
	lineHeight   = 6.0
	paragraphGap = 4.0
)

// Renderer draws planned pages with the core Helvetica font family. Text is
// sanitized to the renderable subset before drawing; pagination decisions are
// taken upstream and honored exactly, one PageContent per PDF page.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a new Renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render produces a single PDF from the planned page sequence.
func (r *Renderer) Render(pages []layout.PageContent) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("render: no pages to render")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(false, marginTop)

	for _, page := range pages {
		doc.AddPage()
		r.renderPage(doc, page)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	r.logger.Debug("rendered pdf",
		zap.Int("pages", len(pages)),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *Renderer) renderPage(doc *fpdf.Fpdf, page layout.PageContent) {
	if page.Letterhead {
		r.drawLetterhead(doc, page.LetterheadTitle)
	}

	if page.Title != "" {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(bodyWidth, lineHeight+2, utils.SanitizeRenderable(page.Title), "", 1, "C", false, 0, "")
		doc.Ln(paragraphGap)
	}

	doc.SetFont("Helvetica", "", 11)
	for _, para := range page.Paragraphs {
		doc.MultiCell(bodyWidth, lineHeight, utils.SanitizeRenderable(para), "", "L", false)
		doc.Ln(paragraphGap)
	}

	if page.Financial != nil {
		r.drawFinancialSummary(doc, page.Financial)
	}
	if page.Signature != nil {
		r.drawSignature(doc, page.Signature)
	}

	if page.Heading != "" && len(page.Items) > 0 {
		r.drawItemList(doc, page)
	}
}

func (r *Renderer) drawLetterhead(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(bodyWidth, 8, utils.SanitizeRenderable(title), "", 1, "C", false, 0, "")
	doc.SetLineWidth(0.4)
	y := doc.GetY() + 2
	doc.Line(marginLeft, y, marginLeft+bodyWidth, y)
	doc.SetY(y + 6)
}

func (r *Renderer) drawFinancialSummary(doc *fpdf.Fpdf, summary *layout.FinancialSummary) {
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(bodyWidth, lineHeight+2, utils.SanitizeRenderable(summary.Title), "", 1, "C", false, 0, "")
	doc.Ln(paragraphGap)

	labelWidth := bodyWidth * 0.6
	valueWidth := bodyWidth - labelWidth
	for _, row := range summary.Rows {
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(labelWidth, lineHeight+2, utils.SanitizeRenderable(row.Label), "B", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(valueWidth, lineHeight+2, utils.SanitizeRenderable(row.Value), "B", 1, "R", false, 0, "")
	}
}

func (r *Renderer) drawSignature(doc *fpdf.Fpdf, sig *layout.SignatureBlock) {
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(bodyWidth, lineHeight, "Respectfully submitted,", "", "L", false)
	doc.Ln(lineHeight * 3)

	doc.SetLineWidth(0.2)
	y := doc.GetY()
	doc.Line(marginLeft, y, marginLeft+70, y)
	doc.Ln(2)

	doc.MultiCell(bodyWidth, lineHeight, utils.SanitizeRenderable(sig.Name), "", "L", false)
	if sig.Address != "" {
		doc.MultiCell(bodyWidth, lineHeight, utils.SanitizeRenderable(sig.Address), "", "L", false)
	}
	if sig.Date != "" {
		doc.MultiCell(bodyWidth, lineHeight, utils.SanitizeRenderable(sig.Date), "", "L", false)
	}
}

// drawItemList prints exhibit lines as given. Numbering is the planner's
// concern so it stays continuous across page breaks.
func (r *Renderer) drawItemList(doc *fpdf.Fpdf, page layout.PageContent) {
	doc.SetFont("Helvetica", "", 11)
	for _, item := range page.Items {
		doc.MultiCell(bodyWidth, lineHeight, utils.SanitizeRenderable(item), "", "L", false)
	}
}
