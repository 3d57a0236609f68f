package transform

import (
	"regexp"
	"strconv"
	"strings"
)

var phaseNumberRe = regexp.MustCompile(`(?i)phase\s*(\d+)`)

// CategorizeCondition buckets free-text conditions into the catalog's fixed
// categories; the first category with a matching keyword wins.
func (e *Engine) CategorizeCondition(condition *string) string {
	if condition == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*condition)
	for _, category := range e.catalog.ConditionCategories {
		for _, kw := range category.Keywords {
			if strings.Contains(lower, kw) {
				return category.Name
			}
		}
	}
	return "Other"
}

// CategorizeIntervention classifies the intervention-type text.
func CategorizeIntervention(interventionType *string) string {
	if interventionType == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*interventionType)
	switch {
	case strings.Contains(lower, "drug"):
		return "Drug"
	case strings.Contains(lower, "device"):
		return "Device"
	case strings.Contains(lower, "procedure") || strings.Contains(lower, "surgery"):
		return "Procedure"
	case strings.Contains(lower, "behavioral") || strings.Contains(lower, "lifestyle"):
		return "Behavioral"
	default:
		return "Other"
	}
}

// CategorizeEnrollment maps an enrollment count onto the fixed size buckets.
func CategorizeEnrollment(enrollment *int) string {
	if enrollment == nil || *enrollment <= 0 {
		return "Unknown"
	}
	switch {
	case *enrollment <= 50:
		return "Small (≤50)"
	case *enrollment <= 200:
		return "Medium (51-200)"
	case *enrollment <= 1000:
		return "Large (201-1000)"
	default:
		return "Very Large (>1000)"
	}
}

// ExtractPhaseNumber pulls the first integer following the word "phase".
func ExtractPhaseNumber(phase *string) *int {
	if phase == nil {
		return nil
	}
	match := phaseNumberRe.FindStringSubmatch(*phase)
	if match == nil {
		return nil
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &n
}

// StatusFlags are independent substring detections, not a state machine; a
// status text may set several flags or none.
func StatusFlags(status *string) (completed, recruiting, terminated bool) {
	if status == nil {
		return false, false, false
	}
	lower := strings.ToLower(*status)
	return strings.Contains(lower, "completed"),
		strings.Contains(lower, "recruiting"),
		strings.Contains(lower, "terminated")
}
