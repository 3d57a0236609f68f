package quality

import (
	"math"
	"testing"
	"time"

	"github.com/trialforge/platform/pkg/common/models"
)

func strPtr(s string) *string        { return &s }
func intPtr(n int) *int              { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompletenessScoreBounds(t *testing.T) {
	empty := &models.TransformedTrial{}
	if got := CompletenessScore(empty); got != 0.0 {
		t.Fatalf("expected 0.0 for empty record, got %v", got)
	}

	full := &models.TransformedTrial{
		NCTID:           strPtr("NCT001"),
		BriefTitle:      strPtr("A Study"),
		LeadSponsorName: strPtr("Acme"),
		Condition:       strPtr("Cancer"),
		EnrollmentCount: intPtr(100),
		Phase:           strPtr("Phase 2"),
		Status:          strPtr("Recruiting"),
		StudyStartDate:  timePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	if got := CompletenessScore(full); got != 1.0 {
		t.Fatalf("expected 1.0 for fully populated record, got %v", got)
	}
}

func TestCompletenessScoreWeighting(t *testing.T) {
	// All required present, no optional: 1.0*0.7 + 0.0*0.3.
	trial := &models.TransformedTrial{
		NCTID:           strPtr("NCT001"),
		BriefTitle:      strPtr("A Study"),
		LeadSponsorName: strPtr("Acme"),
		Condition:       strPtr("Cancer"),
	}
	if got := CompletenessScore(trial); !almostEqual(got, 0.7) {
		t.Fatalf("expected 0.7, got %v", got)
	}
}

func TestQualityScoreFactors(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	best := &models.TransformedTrial{
		NCTID:               strPtr("NCT001"),
		BriefTitle:          strPtr("A Study"),
		LeadSponsorName:     strPtr("Acme"),
		Condition:           strPtr("Cancer"),
		EnrollmentCount:     intPtr(100),
		Phase:               strPtr("Phase 2"),
		Status:              strPtr("Recruiting"),
		StudyStartDate:      timePtr(start),
		StudyCompletionDate: timePtr(end),
	}
	if got := QualityScore(best); !almostEqual(got, 1.0) {
		t.Fatalf("expected 1.0 for a perfect record, got %v", got)
	}

	// Inverted dates drop the ordering factor to 0.5.
	inverted := *best
	inverted.StudyStartDate = timePtr(end)
	inverted.StudyCompletionDate = timePtr(start)
	want := 1.0*0.6 + ((0.5+1.0+1.0)/3.0)*0.4
	if got := QualityScore(&inverted); !almostEqual(got, want) {
		t.Fatalf("expected %v for inverted dates, got %v", want, got)
	}
}

func TestQualityScoreImplausibleEnrollment(t *testing.T) {
	trial := &models.TransformedTrial{
		NCTID:           strPtr("NCT001"),
		EnrollmentCount: intPtr(5000000),
	}
	huge := QualityScore(trial)

	trial.EnrollmentCount = intPtr(500)
	plausible := QualityScore(trial)

	if huge >= plausible {
		t.Fatalf("expected implausible enrollment to score lower: %v vs %v", huge, plausible)
	}
}

func TestQualityScoreUnknownPhase(t *testing.T) {
	trial := &models.TransformedTrial{NCTID: strPtr("NCT001"), Phase: strPtr("Unknown")}
	unknown := QualityScore(trial)

	trial.Phase = strPtr("Phase 1")
	known := QualityScore(trial)

	if unknown >= known {
		t.Fatalf("expected unknown phase to score lower: %v vs %v", unknown, known)
	}
}
