package models

// DocumentSummary is the merged per-type extraction view of one document
// exposed to letter templates and the review screen.
type DocumentSummary struct {
	DocumentID string                 `json:"document_id"`
	Type       string                 `json:"type"`
	FileName   string                 `json:"file_name,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	RawText    string                 `json:"raw_text,omitempty"`
}

// AggregatedApplicationData is the read-only composite consumed by letter
// templates, PDF export, and the review UI. Singleton types (passport, I-94,
// I-20) are first-wins; list types collect every completed document.
type AggregatedApplicationData struct {
	User   User                        `json:"user"`
	Record *CanonicalApplicationRecord `json:"record"`

	Passport *DocumentSummary `json:"passport,omitempty"`
	I94      *DocumentSummary `json:"i94,omitempty"`
	I20      *DocumentSummary `json:"i20,omitempty"`

	BankStatements        []DocumentSummary `json:"bank_statements,omitempty"`
	SponsorBankStatements []DocumentSummary `json:"sponsor_bank_statements,omitempty"`
	Assets                []DocumentSummary `json:"assets,omitempty"`
	TiesDocuments         []DocumentSummary `json:"ties_documents,omitempty"`
	ScholarshipDocuments  []DocumentSummary `json:"scholarship_documents,omitempty"`
	OtherFundingDocuments []DocumentSummary `json:"other_funding_documents,omitempty"`

	Documents []ExtractedDocument `json:"documents"`
}
