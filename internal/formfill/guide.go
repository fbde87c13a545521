package formfill

import (
	"fmt"
	"strings"

	"github.com/visaflow/visa-assistant/internal/models"
)

// GenerateGuide renders a human-readable fill guide: every logical field the
// backend knows about, with the applicant's value or an explicit blank marker.
// It is the manual-completion companion for the blank-form degradation path.
func GenerateGuide(data *models.AggregatedApplicationData) string {
	values := BuildValues(data)

	var b strings.Builder
	b.WriteString("FORM COMPLETION GUIDE\n")
	b.WriteString("=====================\n\n")
	b.WriteString("Copy each value below into the matching field of the official form.\n")
	b.WriteString("Fields marked [not on file] must be completed from your own records.\n\n")

	for _, logical := range guideOrder {
		value, ok := values[logical]
		if !ok || value == "" {
			value = "[not on file]"
		}
		fmt.Fprintf(&b, "%-28s %s\n", fieldLabels[logical]+":", value)
	}

	b.WriteString("\nReview every entry against your source documents before submitting.\n")
	return b.String()
}
