package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/visaflow/visa-assistant/internal/models"
)

// fieldRule describes how one logical field is located in a document's
// extracted bag: structured aliases are tried in priority order, then the
// raw-text patterns. The table is data-driven so new upstream naming
// conventions are additive.
type fieldRule struct {
	aliases  []string
	patterns []*regexp.Regexp
}

// Logical field names used across the merger.
const (
	fieldFullName       = "full_name"
	fieldClosingBalance = "closing_balance"
	fieldAccountHolder  = "account_holder"
	fieldDateOfBirth    = "date_of_birth"
	fieldCountryOfBirth = "country_of_birth"
	fieldRelationship   = "relationship"
	fieldTiesText       = "ties_text"
	fieldScholarship    = "scholarship_name"
	fieldAwardAmount    = "award_amount"
	fieldDescription    = "description"
	fieldNationality    = "nationality"
)

var (
	balancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)closing\s+balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)ending\s+balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)current\s+balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)balance\s+as\s+of[^$\d]*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)total\s+balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
	}

	holderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)account\s+holder[:\s]+([A-Z][A-Za-z .'-]{2,60})`),
		regexp.MustCompile(`(?i)account\s+name[:\s]+([A-Z][A-Za-z .'-]{2,60})`),
		regexp.MustCompile(`(?i)statement\s+for[:\s]+([A-Z][A-Za-z .'-]{2,60})`),
	}

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)surname[:\s/]+([A-Z][A-Za-z '-]+)`),
		regexp.MustCompile(`(?i)name[:\s]+([A-Z][A-Za-z .'-]{2,60})`),
	}

	dobPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date\s+of\s+birth[:\s]+(\d{1,2}[\s/.-]\w{2,9}[\s/.-]\d{2,4})`),
		regexp.MustCompile(`(?i)birth\s+date[:\s]+(\d{4}-\d{2}-\d{2})`),
	}
)

// extractionRules maps document type -> logical field -> rule. Alias order
// is priority order: the first present, non-empty key wins.
var extractionRules = map[string]map[string]fieldRule{
	models.DocTypePassport: {
		fieldFullName: {
			aliases:  []string{"fullName", "full_name", "name", "holderName", "passport_holder"},
			patterns: namePatterns,
		},
		fieldNationality: {
			aliases: []string{"nationality", "country", "country_of_citizenship", "issuingCountry"},
		},
		fieldDateOfBirth: {
			aliases:  []string{"dateOfBirth", "date_of_birth", "dob", "birthDate"},
			patterns: dobPatterns,
		},
	},
	models.DocTypeBankStatement: {
		fieldClosingBalance: {
			aliases:  []string{"closingBalance", "closing_balance", "endingBalance", "ending_balance", "currentBalance", "current_balance", "balance"},
			patterns: balancePatterns,
		},
		fieldAccountHolder: {
			aliases:  []string{"accountHolder", "account_holder", "accountName", "account_name", "holderName", "name"},
			patterns: holderPatterns,
		},
	},
	models.DocTypeSponsorBankStatement: {
		fieldClosingBalance: {
			aliases:  []string{"closingBalance", "closing_balance", "endingBalance", "ending_balance", "currentBalance", "current_balance", "balance"},
			patterns: balancePatterns,
		},
		fieldAccountHolder: {
			aliases:  []string{"accountHolder", "account_holder", "accountName", "account_name", "sponsorName", "sponsor_name", "holderName", "name"},
			patterns: holderPatterns,
		},
	},
	models.DocTypeAssets: {
		fieldClosingBalance: {
			aliases:  []string{"estimatedValue", "estimated_value", "totalValue", "total_value", "value", "amount"},
			patterns: balancePatterns,
		},
	},
	models.DocTypeSponsorAssets: {
		fieldClosingBalance: {
			aliases:  []string{"estimatedValue", "estimated_value", "totalValue", "total_value", "value", "amount"},
			patterns: balancePatterns,
		},
		fieldAccountHolder: {
			aliases:  []string{"ownerName", "owner_name", "sponsorName", "sponsor_name", "name"},
			patterns: holderPatterns,
		},
	},
	models.DocTypeSupportingDocuments: {
		fieldTiesText: {
			aliases: []string{"summary", "description", "content", "text"},
		},
	},
	models.DocTypeScholarshipDocument: {
		fieldScholarship: {
			aliases: []string{"scholarshipName", "scholarship_name", "awardName", "award_name", "programName", "name"},
		},
		fieldAwardAmount: {
			aliases:  []string{"awardAmount", "award_amount", "annualAmount", "annual_amount", "amount"},
			patterns: balancePatterns,
		},
	},
	models.DocTypeOtherFunding: {
		fieldDescription: {
			aliases: []string{"description", "source", "fundingSource", "summary", "details"},
		},
		fieldClosingBalance: {
			aliases:  []string{"amount", "totalAmount", "total_amount", "value"},
			patterns: balancePatterns,
		},
	},
	models.DocTypeDependentPassport: {
		fieldFullName: {
			aliases:  []string{"fullName", "full_name", "name", "holderName"},
			patterns: namePatterns,
		},
		fieldDateOfBirth: {
			aliases:  []string{"dateOfBirth", "date_of_birth", "dob", "birthDate"},
			patterns: dobPatterns,
		},
		fieldCountryOfBirth: {
			aliases: []string{"countryOfBirth", "country_of_birth", "birthCountry", "nationality"},
		},
		fieldRelationship: {
			aliases: []string{"relationship", "relation"},
		},
	},
	models.DocTypeDependentI94: {
		fieldFullName: {
			aliases:  []string{"fullName", "full_name", "name"},
			patterns: namePatterns,
		},
		fieldDateOfBirth: {
			aliases: []string{"dateOfBirth", "date_of_birth", "dob", "birthDate"},
		},
	},
}

// resolveField tries the rule's structured aliases against the field bag,
// then its patterns against the raw text. First non-empty hit wins.
func resolveField(doc *models.ExtractedDocument, logical string) (string, bool) {
	rules, ok := extractionRules[doc.Type]
	if !ok {
		return "", false
	}
	rule, ok := rules[logical]
	if !ok {
		return "", false
	}

	for _, alias := range rule.aliases {
		if v, ok := doc.ExtractedFields[alias]; ok {
			if s := stringifyField(v); s != "" {
				return s, true
			}
		}
	}

	if doc.RawText != "" {
		for _, pat := range rule.patterns {
			if m := pat.FindStringSubmatch(doc.RawText); len(m) > 1 {
				if s := strings.TrimSpace(m[1]); s != "" {
					return s, true
				}
			}
		}
	}

	return "", false
}

// stringifyField normalizes a bag value to a trimmed string. Upstream
// extractors return numbers as JSON floats, so those are formatted without
// a trailing ".00" when integral.
func stringifyField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return ""
	}
}
