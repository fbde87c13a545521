package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/visaflow/visa-assistant/internal/models"
	"go.uber.org/zap"
)

// MergeResult carries the merged record plus every extraction problem
// encountered along the way. Individual document failures become warnings,
// never errors, so one bad upload cannot poison the whole merge.
type MergeResult struct {
	Record   *models.CanonicalApplicationRecord
	Warnings []string
}

// Merger folds AI-extracted document fields into the canonical application
// record. It is a pure function over its two inputs: re-running with the
// same document set produces the same record.
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a new Merger.
func NewMerger(logger *zap.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge applies extraction data from completed documents onto a copy of the
// existing record. Scalar fields are last-writer-wins in document order,
// except sponsor name (first-wins) and dependents (deduplicated by
// normalized full name, empty fields filled only).
func (m *Merger) Merge(documents []*models.ExtractedDocument, existing *models.CanonicalApplicationRecord) *MergeResult {
	result := &MergeResult{Record: existing.Clone()}

	docs := eligibleDocuments(documents)
	if len(docs) == 0 {
		return result
	}

	m.mergeIdentity(docs, result)
	m.mergeSavings(docs, result)
	m.mergeSponsor(docs, result)
	m.mergeDependents(docs, result)
	m.mergeTies(docs, result)
	m.mergeScholarship(docs, result)

	m.logger.Debug("Document merge complete",
		zap.String("application_id", result.Record.ID),
		zap.Int("documents", len(docs)),
		zap.Int("warnings", len(result.Warnings)))

	return result
}

// eligibleDocuments filters to completed documents that carry anything to
// extract from.
func eligibleDocuments(documents []*models.ExtractedDocument) []*models.ExtractedDocument {
	out := make([]*models.ExtractedDocument, 0, len(documents))
	for _, doc := range documents {
		if doc == nil || doc.Status != models.DocStatusCompleted {
			continue
		}
		if len(doc.ExtractedFields) == 0 && doc.RawText == "" {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func (m *Merger) mergeIdentity(docs []*models.ExtractedDocument, result *MergeResult) {
	for _, doc := range docs {
		if doc.Type != models.DocTypePassport {
			continue
		}
		if name, ok := resolveField(doc, fieldFullName); ok {
			result.Record.ApplicantName = name
		}
		if nat, ok := resolveField(doc, fieldNationality); ok {
			result.Record.HomeCountry = nat
		}
	}
}

// mergeSavings sums closing balances across the applicant's own bank
// statements. Sponsor-typed documents are excluded here.
func (m *Merger) mergeSavings(docs []*models.ExtractedDocument, result *MergeResult) {
	sum := decimal.Zero
	found := false
	cents := false

	for _, doc := range docs {
		if doc.Type != models.DocTypeBankStatement {
			continue
		}
		raw, ok := resolveField(doc, fieldClosingBalance)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("bank statement %s: no closing balance found", doc.ID))
			continue
		}
		amount, ok := ParseMoney(raw)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("bank statement %s: unparsable closing balance %q", doc.ID, raw))
			continue
		}
		sum = sum.Add(amount)
		found = true
		cents = cents || amount.Exponent() < 0
	}

	if found {
		result.Record.Financial.SavingsAmount = formatSum(sum, cents)
	}
}

// formatSum renders a summed balance. Cent precision is kept whenever any
// contributing balance carried a fractional part, so "1000" + "2500.50"
// stays "3500.50" rather than collapsing to "3500.5".
func formatSum(sum decimal.Decimal, cents bool) string {
	if cents {
		return sum.StringFixed(2)
	}
	return sum.String()
}

// mergeSponsor fills sponsor name first-wins and sums sponsor statement
// balances into the sponsor funds figure.
func (m *Merger) mergeSponsor(docs []*models.ExtractedDocument, result *MergeResult) {
	funds := decimal.Zero
	foundFunds := false
	cents := false

	for _, doc := range docs {
		if !doc.IsSponsorTyped() {
			continue
		}

		if result.Record.Financial.SponsorName == "" {
			if name, ok := resolveField(doc, fieldAccountHolder); ok {
				result.Record.Financial.SponsorName = name
			}
		}

		if doc.Type == models.DocTypeSponsorBankStatement {
			raw, ok := resolveField(doc, fieldClosingBalance)
			if !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("sponsor statement %s: no closing balance found", doc.ID))
				continue
			}
			amount, ok := ParseMoney(raw)
			if !ok {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("sponsor statement %s: unparsable closing balance %q", doc.ID, raw))
				continue
			}
			funds = funds.Add(amount)
			foundFunds = true
			cents = cents || amount.Exponent() < 0
		}
	}

	if foundFunds {
		result.Record.Financial.SponsorFunds = formatSum(funds, cents)
	}
}

// mergeDependents deduplicates by case-insensitive exact match on full name.
// A duplicate only fills fields that are still empty; the first-seen casing
// of the name is kept.
func (m *Merger) mergeDependents(docs []*models.ExtractedDocument, result *MergeResult) {
	for _, doc := range docs {
		if doc.Type != models.DocTypeDependentPassport && doc.Type != models.DocTypeDependentI94 {
			continue
		}
		name, ok := resolveField(doc, fieldFullName)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("dependent document %s: no name found", doc.ID))
			continue
		}

		incoming := models.Dependent{FullName: name}
		if dob, ok := resolveField(doc, fieldDateOfBirth); ok {
			incoming.DateOfBirth = dob
		}
		if cob, ok := resolveField(doc, fieldCountryOfBirth); ok {
			incoming.CountryOfBirth = cob
		}
		if rel, ok := resolveField(doc, fieldRelationship); ok {
			incoming.Relationship = rel
		}

		upsertDependent(result.Record, incoming)
	}
}

func upsertDependent(record *models.CanonicalApplicationRecord, incoming models.Dependent) {
	key := strings.ToLower(strings.TrimSpace(incoming.FullName))
	for i := range record.Dependents {
		if strings.ToLower(strings.TrimSpace(record.Dependents[i].FullName)) != key {
			continue
		}
		existing := &record.Dependents[i]
		if existing.DateOfBirth == "" {
			existing.DateOfBirth = incoming.DateOfBirth
		}
		if existing.CountryOfBirth == "" {
			existing.CountryOfBirth = incoming.CountryOfBirth
		}
		if existing.Relationship == "" {
			existing.Relationship = incoming.Relationship
		}
		return
	}

	record.Dependents = append(record.Dependents, incoming)
	record.HasDependents = true
}

// mergeTies distributes supporting-document free text across the three ties
// questions. Already-answered questions are left alone. A single long text
// is split at sentence boundaries into roughly equal thirds; this split is a
// preserved heuristic, not a guarantee of sensible prose.
func (m *Merger) mergeTies(docs []*models.ExtractedDocument, result *MergeResult) {
	var texts []string
	for _, doc := range docs {
		if doc.Type != models.DocTypeSupportingDocuments {
			continue
		}
		if text, ok := resolveField(doc, fieldTiesText); ok {
			texts = append(texts, text)
		} else if doc.RawText != "" {
			texts = append(texts, strings.TrimSpace(doc.RawText))
		}
	}
	if len(texts) == 0 {
		return
	}

	if len(texts) == 1 {
		if parts := splitIntoThirds(texts[0]); len(parts) == 3 {
			texts = parts
		}
	}

	// Positional assignment: text i answers question i, and an
	// already-answered question keeps its answer. Texts never shift between
	// questions, so re-merging the same documents is a no-op.
	ties := &result.Record.Ties
	slots := []*string{&ties.FamilyTies, &ties.EconomicTies, &ties.ReturnPlans}
	for i, slot := range slots {
		if i >= len(texts) {
			break
		}
		if *slot == "" {
			*slot = texts[i]
		}
	}
}

var sentenceBoundary = regexp.MustCompile(`[^.!?]+[.!?]+\s*|[^.!?]+$`)

// splitIntoThirds splits text at sentence boundaries into three
// roughly-equal groups. Texts with fewer than three sentences are returned
// as-is in a single element.
func splitIntoThirds(text string) []string {
	sentences := sentenceBoundary.FindAllString(text, -1)
	if len(sentences) < 3 {
		return []string{strings.TrimSpace(text)}
	}

	per := len(sentences) / 3
	rem := len(sentences) % 3

	parts := make([]string, 0, 3)
	pos := 0
	for i := 0; i < 3; i++ {
		n := per
		if i < rem {
			n++
		}
		chunk := strings.Join(sentences[pos:pos+n], "")
		parts = append(parts, strings.TrimSpace(chunk))
		pos += n
	}
	return parts
}

func (m *Merger) mergeScholarship(docs []*models.ExtractedDocument, result *MergeResult) {
	for _, doc := range docs {
		switch doc.Type {
		case models.DocTypeScholarshipDocument:
			if name, ok := resolveField(doc, fieldScholarship); ok {
				result.Record.Financial.ScholarshipName = name
			}
		case models.DocTypeOtherFunding:
			if desc, ok := resolveField(doc, fieldDescription); ok {
				result.Record.Financial.OtherSourceDescription = desc
			}
		}
	}
}
