// Package quality computes deterministic per-record and dataset-level data
// quality measures that gate downstream loading.
package quality

import (
	"strings"

	"github.com/trialforge/platform/pkg/common/models"
)

// CompletenessScore weighs required-field presence at 0.7 and optional-field
// presence at 0.3. A record missing everything scores 0.0; a fully populated
// one scores 1.0.
func CompletenessScore(t *models.TransformedTrial) float64 {
	required := []bool{
		t.NCTID != nil,
		t.BriefTitle != nil,
		t.LeadSponsorName != nil,
		t.Condition != nil,
	}
	optional := []bool{
		t.EnrollmentCount != nil,
		t.Phase != nil,
		t.Status != nil,
		t.StudyStartDate != nil,
	}

	return fractionPresent(required)*0.7 + fractionPresent(optional)*0.3
}

// QualityScore combines completeness (0.6) with the mean of three quality
// factors (0.4): date ordering, enrollment plausibility, and phase validity.
func QualityScore(t *models.TransformedTrial) float64 {
	completeness := CompletenessScore(t)

	var factors []float64

	switch {
	case t.StudyStartDate != nil && t.StudyCompletionDate != nil:
		if t.StudyStartDate.Before(*t.StudyCompletionDate) {
			factors = append(factors, 1.0)
		} else {
			factors = append(factors, 0.5)
		}
	default:
		factors = append(factors, 0.0)
	}

	if t.EnrollmentCount != nil && *t.EnrollmentCount > 0 && *t.EnrollmentCount <= 100000 {
		factors = append(factors, 1.0)
	} else {
		factors = append(factors, 0.5)
	}

	if t.Phase != nil && strings.ToLower(*t.Phase) != "unknown" {
		factors = append(factors, 1.0)
	} else {
		factors = append(factors, 0.5)
	}

	var sum float64
	for _, f := range factors {
		sum += f
	}
	avg := sum / float64(len(factors))

	return completeness*0.6 + avg*0.4
}

func fractionPresent(present []bool) float64 {
	count := 0
	for _, p := range present {
		if p {
			count++
		}
	}
	return float64(count) / float64(len(present))
}
