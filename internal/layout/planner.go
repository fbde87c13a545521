package layout

import "strings"

// Per-section layout budgets.
const (
	coverParagraphsPerPage     = 3
	coverMaxParagraphsPerPage  = 4
	statementParagraphsPerPage = 4
	exhibitItemsPerPage        = 25
	shortParagraphWordCount    = 35
)

// Section titles drawn on each section's first (letterhead) page.
const (
	coverLetterTitle       = "Cover Letter"
	personalStatementTitle = "Personal Statement"
	exhibitListTitle       = "List of Exhibits"
)

// Planner lays rendered text out into pages. It is pure: the same input
// sections always produce the same page sequence.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan produces the full page sequence: cover letter body pages, a dedicated
// financial summary page, a signature page, personal statement pages, and
// exhibit list pages. The first page of each logical section carries a
// letterhead with that section's title.
func (p *Planner) Plan(sections RenderedSections) []PageContent {
	var pages []PageContent

	cover := mergeShortParagraphs(sections.CoverLetterParagraphs, shortParagraphWordCount)
	groups := groupWithOrphanAvoidance(cover, coverParagraphsPerPage, coverMaxParagraphsPerPage)
	for i, group := range groups {
		page := PageContent{Paragraphs: group}
		if i == 0 {
			page.Letterhead = true
			page.LetterheadTitle = coverLetterTitle
		}
		pages = append(pages, page)
	}

	if sections.Financial != nil {
		pages = append(pages, PageContent{Financial: sections.Financial})
	}
	if sections.Signature != nil {
		pages = append(pages, PageContent{Signature: sections.Signature})
	}

	statement := mergeShortParagraphs(sections.PersonalStatement, shortParagraphWordCount)
	for i, group := range groupParagraphs(statement, statementParagraphsPerPage) {
		page := PageContent{Paragraphs: group}
		if i == 0 {
			page.Letterhead = true
			page.LetterheadTitle = personalStatementTitle
		}
		pages = append(pages, page)
	}

	for i := 0; i < len(sections.ExhibitItems); i += exhibitItemsPerPage {
		end := i + exhibitItemsPerPage
		if end > len(sections.ExhibitItems) {
			end = len(sections.ExhibitItems)
		}
		page := PageContent{
			Heading: exhibitListTitle,
			Items:   sections.ExhibitItems[i:end],
		}
		if i == 0 {
			page.Letterhead = true
			page.LetterheadTitle = exhibitListTitle
		}
		pages = append(pages, page)
	}

	return pages
}

// SplitParagraphs breaks rendered free text into paragraphs at blank lines.
func SplitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// mergeShortParagraphs folds any paragraph under the word threshold into the
// paragraph that follows it. The final paragraph of a sequence is never
// merged away: it is always emitted standalone even when short.
func mergeShortParagraphs(paragraphs []string, threshold int) []string {
	if len(paragraphs) == 0 {
		return nil
	}

	var out []string
	carry := ""
	for i, para := range paragraphs {
		if carry != "" {
			para = carry + " " + para
			carry = ""
		}
		if i < len(paragraphs)-1 && wordCount(para) < threshold {
			carry = para
			continue
		}
		out = append(out, para)
	}
	if carry != "" {
		out = append(out, carry)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// groupParagraphs slices paragraphs into fixed-size page groups.
func groupParagraphs(paragraphs []string, perPage int) [][]string {
	var groups [][]string
	for i := 0; i < len(paragraphs); i += perPage {
		end := i + perPage
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		groups = append(groups, paragraphs[i:end])
	}
	return groups
}

// groupWithOrphanAvoidance groups like groupParagraphs, then folds a
// trailing single-paragraph group backward into the preceding group when
// that group still has room under the hard maximum.
func groupWithOrphanAvoidance(paragraphs []string, perPage, maxPerPage int) [][]string {
	groups := groupParagraphs(paragraphs, perPage)
	n := len(groups)
	if n < 2 {
		return groups
	}

	last := groups[n-1]
	prev := groups[n-2]
	if len(last) == 1 && len(prev) < maxPerPage {
		merged := make([]string, 0, len(prev)+1)
		merged = append(merged, prev...)
		merged = append(merged, last[0])
		groups[n-2] = merged
		groups = groups[:n-1]
	}
	return groups
}
