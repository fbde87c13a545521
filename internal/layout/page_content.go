// Package layout turns rendered letter text into an ordered sequence of
// renderer-agnostic page descriptions.
package layout

// SummaryRow is one label/value line in a financial summary block.
type SummaryRow struct {
	Label string
	Value string
}

// FinancialSummary is the structured financial block. It always occupies a
// page of its own, never sharing with body text.
type FinancialSummary struct {
	Title string
	Rows  []SummaryRow
}

// SignatureBlock closes the cover letter.
type SignatureBlock struct {
	Name    string
	Address string
	Date    string
}

// PageContent describes one printable page. A full document is an ordered
// slice of these; the PDF backend consumes them without knowing anything
// about pagination rules.
type PageContent struct {
	Letterhead      bool
	LetterheadTitle string
	Title           string
	Paragraphs      []string
	Financial       *FinancialSummary
	Signature       *SignatureBlock
	Heading         string
	Items           []string
}

// RenderedSections is the planner input: the free text of each logical
// document section after template rendering.
type RenderedSections struct {
	CoverLetterParagraphs []string
	Financial             *FinancialSummary
	Signature             *SignatureBlock
	PersonalStatement     []string
	ExhibitItems          []string
}
