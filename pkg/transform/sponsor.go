package transform

import (
	"regexp"
	"strings"
)

type sponsorSub struct {
	re          *regexp.Regexp
	replacement string
}

func compileSponsorSubs(e *Engine) {
	for _, sub := range e.catalog.SponsorSubstitutions {
		e.sponsorSubs = append(e.sponsorSubs, sponsorSub{
			re:          regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(sub.Match) + `\b`),
			replacement: sub.Replacement,
		})
	}
}

// NormalizeSponsor expands whole-word abbreviations (inc -> Inc., univ ->
// University, ...) so the same organization hashes to the same dimension key.
func (e *Engine) NormalizeSponsor(name *string) *string {
	if name == nil {
		return nil
	}
	normalized := *name
	for _, sub := range e.sponsorSubs {
		normalized = sub.re.ReplaceAllString(normalized, sub.replacement)
	}
	return Clean(normalized)
}

// CategorizeSponsorType classifies from the provider's sponsor-class field.
func CategorizeSponsorType(sponsorClass *string) string {
	if sponsorClass == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*sponsorClass)
	switch {
	case strings.Contains(lower, "industry"):
		return "Industry"
	case strings.Contains(lower, "university") || strings.Contains(lower, "academic"):
		return "Academic"
	case strings.Contains(lower, "government") || strings.Contains(lower, "nih"):
		return "Government"
	case strings.Contains(lower, "hospital") || strings.Contains(lower, "medical"):
		return "Medical Center"
	default:
		return "Other"
	}
}

// CategorizeSponsorCategory classifies from the sponsor name itself.
func CategorizeSponsorCategory(sponsorName *string) string {
	if sponsorName == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*sponsorName)
	switch {
	case containsAny(lower, "pharma", "biotech", "pharmaceutical"):
		return "Pharmaceutical"
	case containsAny(lower, "university", "college", "institute"):
		return "Academic"
	case containsAny(lower, "hospital", "medical center", "clinic"):
		return "Medical"
	case containsAny(lower, "government", "national", "federal"):
		return "Government"
	default:
		return "Other"
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
