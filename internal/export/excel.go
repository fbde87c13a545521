package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/visaflow/visa-assistant/internal/models"
)

const financialSheet = "Financial Summary"

// BuildFinancialWorkbook produces an Excel worksheet listing every financial
// document with its closing balance, plus the funding totals the letter
// asserts, so reviewers can trace the claimed amounts back to evidence.
func BuildFinancialWorkbook(data *models.AggregatedApplicationData) ([]byte, error) {
	if data == nil || data.Record == nil {
		return nil, fmt.Errorf("build workbook: no application data")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", financialSheet); err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	headers := []string{"Document", "File", "Account Holder", "Closing Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(financialSheet, cell, h); err != nil {
			return nil, fmt.Errorf("build workbook: %w", err)
		}
	}
	if err := f.SetRowStyle(financialSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	row := 2
	writeStatements := func(label string, statements []models.DocumentSummary) {
		for _, s := range statements {
			f.SetCellValue(financialSheet, cell(1, row), label)
			f.SetCellValue(financialSheet, cell(2, row), s.FileName)
			f.SetCellValue(financialSheet, cell(3, row), summaryString(s, "account_holder"))
			f.SetCellValue(financialSheet, cell(4, row), summaryString(s, "closing_balance", "balance"))
			row++
		}
	}
	writeStatements("Applicant bank statement", data.BankStatements)
	writeStatements("Sponsor bank statement", data.SponsorBankStatements)
	writeStatements("Asset evidence", data.Assets)

	row++
	financial := data.Record.Financial
	writeTotal := func(label, amount string) {
		if amount == "" {
			return
		}
		f.SetCellValue(financialSheet, cell(1, row), label)
		if d, err := decimal.NewFromString(amount); err == nil {
			value, _ := d.Float64()
			f.SetCellValue(financialSheet, cell(4, row), value)
		} else {
			f.SetCellValue(financialSheet, cell(4, row), amount)
		}
		row++
	}
	writeTotal("Total applicant savings", financial.SavingsAmount)
	writeTotal("Total sponsor funds", financial.SponsorFunds)
	writeTotal("Annual income", financial.AnnualIncome)

	if err := f.SetColWidth(financialSheet, "A", "B", 32); err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}
	if err := f.SetColWidth(financialSheet, "C", "D", 22); err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func summaryString(s models.DocumentSummary, keys ...string) string {
	for _, key := range keys {
		if raw, ok := s.Fields[key]; ok {
			switch v := raw.(type) {
			case string:
				return v
			case float64:
				return decimal.NewFromFloat(v).String()
			}
		}
	}
	return ""
}
