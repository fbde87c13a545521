package export

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/internal/letter"
	"github.com/visaflow/visa-assistant/internal/models"
)

func TestPackager_Build(t *testing.T) {
	p := NewPackager(zap.NewNop())

	out, err := p.Build(PackageInput{
		CombinedPDF: []byte("%PDF-1.4 fake"),
		FormPDF:     []byte("%PDF-1.4 form"),
		FormFilled:  false,
		FillGuide:   "FORM COMPLETION GUIDE",
	})
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "application_package.pdf")
	assert.Contains(t, names, "immigration_form_blank.pdf", "unfilled forms are labeled blank")
	assert.Contains(t, names, "form_fill_guide.txt")
	assert.NotContains(t, names, "financial_summary.xlsx", "absent artifacts are omitted")
}

func TestPackager_FilledFormName(t *testing.T) {
	p := NewPackager(zap.NewNop())

	out, err := p.Build(PackageInput{FormPDF: []byte("x"), FormFilled: true})
	require.NoError(t, err)

	r, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	require.Len(t, r.File, 1)
	assert.Equal(t, "immigration_form_filled.pdf", r.File[0].Name)
}

func TestPackager_EmptyInput(t *testing.T) {
	p := NewPackager(zap.NewNop())
	_, err := p.Build(PackageInput{})
	assert.ErrorContains(t, err, "nothing to include")
}

func TestBuildFinancialWorkbook(t *testing.T) {
	data := &models.AggregatedApplicationData{
		Record: &models.CanonicalApplicationRecord{
			Financial: models.FinancialSupport{
				FundingSource: models.FundingSponsor,
				SavingsAmount: "3500.50",
				SponsorFunds:  "25000",
			},
		},
		BankStatements: []models.DocumentSummary{
			{
				FileName: "statement_jan.pdf",
				Fields: map[string]interface{}{
					"account_holder":  "Ana Souza",
					"closing_balance": "3500.50",
				},
			},
		},
		SponsorBankStatements: []models.DocumentSummary{
			{
				FileName: "sponsor.pdf",
				Fields: map[string]interface{}{
					"account_holder":  "Carlos Souza",
					"closing_balance": float64(25000),
				},
			},
		},
	}

	out, err := BuildFinancialWorkbook(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(financialSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, "Document", rows[0][0])
	assert.Equal(t, "Applicant bank statement", rows[1][0])
	assert.Equal(t, "Ana Souza", rows[1][2])
	assert.Equal(t, "Sponsor bank statement", rows[2][0])

	flat := ""
	for _, row := range rows {
		for _, c := range row {
			flat += c + "|"
		}
	}
	assert.Contains(t, flat, "Total sponsor funds")
	assert.Contains(t, flat, "Total applicant savings")
}

func TestBuildFinancialWorkbook_NoData(t *testing.T) {
	_, err := BuildFinancialWorkbook(nil)
	assert.Error(t, err)
}

func TestBuildLetterDocx(t *testing.T) {
	sections := []letter.Section{
		{Name: "01_header", Body: "San Francisco, August 2026"},
		{Name: "08_financial_capacity", Body: "First paragraph.\n\nSecond paragraph."},
	}

	out, err := BuildLetterDocx(sections)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	// DOCX is a zip container.
	_, err = zip.NewReader(bytes.NewReader(out), int64(len(out)))
	assert.NoError(t, err)
}

func TestBuildLetterDocx_Empty(t *testing.T) {
	_, err := BuildLetterDocx(nil)
	assert.Error(t, err)
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Financial Capacity", sectionTitle("08_financial_capacity"))
	assert.Equal(t, "Header", sectionTitle("01_header"))
	assert.Equal(t, "Conclusion", sectionTitle("conclusion"))
}
