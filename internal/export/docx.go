// Package export produces the downloadable application package: the DOCX
// letter, the financial summary workbook, and the zip that bundles them with
// the rendered PDFs and fill guide.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/visaflow/visa-assistant/internal/letter"
	"github.com/visaflow/visa-assistant/pkg/utils"
)

// BuildLetterDocx renders assembled letter sections as a Word document so
// applicants can edit the draft before filing.
func BuildLetterDocx(sections []letter.Section) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("build docx: no letter sections")
	}

	doc := docx.New().WithDefaultTheme()

	for _, section := range sections {
		heading := doc.AddParagraph()
		heading.AddText(sectionTitle(section.Name)).Size("28").Bold()

		for _, para := range strings.Split(section.Body, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			p := doc.AddParagraph()
			p.AddText(utils.SanitizeString(para)).Size("22")
		}

		doc.AddParagraph()
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("build docx: %w", err)
	}
	return buf.Bytes(), nil
}

// sectionTitle turns a template file stem like "08_financial_capacity" into
// a display heading.
func sectionTitle(name string) string {
	name = strings.TrimSuffix(name, ".tmpl")
	if i := strings.Index(name, "_"); i >= 0 && i <= 2 {
		name = name[i+1:]
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
