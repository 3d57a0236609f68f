package reconcile

import (
	"testing"

	"github.com/trialforge/platform/pkg/common/models"
)

func TestApplyAliasPrecedence(t *testing.T) {
	records := Apply([]models.RawTrialRecord{{
		"status":         "Recruiting",
		"overall_status": "Completed",
	}})
	if records[0]["status"] != "Recruiting" {
		t.Fatalf("expected first alias to win, got %v", records[0]["status"])
	}
}

func TestApplyBackfillsFromAlias(t *testing.T) {
	records := Apply([]models.RawTrialRecord{{
		"NCTId":         "NCT001",
		"BriefTitle":    "A Study",
		"trial_status":  "Terminated",
		"sponsor":       "Acme",
	}})
	rec := records[0]

	if rec["nct_id"] != "NCT001" {
		t.Fatalf("expected nct_id from NCTId, got %v", rec["nct_id"])
	}
	if rec["brief_title"] != "A Study" {
		t.Fatalf("expected brief_title from BriefTitle, got %v", rec["brief_title"])
	}
	if rec["status"] != "Terminated" {
		t.Fatalf("expected status from trial_status, got %v", rec["status"])
	}
	if rec["lead_sponsor_name"] != "Acme" {
		t.Fatalf("expected sponsor alias, got %v", rec["lead_sponsor_name"])
	}
}

func TestApplyDefaults(t *testing.T) {
	rec := Apply([]models.RawTrialRecord{{}})[0]

	// Categorical text columns default to empty string.
	if v, ok := rec["status"]; !ok || v != "" {
		t.Fatalf("expected empty-string status default, got %v", v)
	}
	if v, ok := rec["phase"]; !ok || v != "" {
		t.Fatalf("expected empty-string phase default, got %v", v)
	}

	// Everything else defaults to nil but the key must exist.
	if v, ok := rec["study_start_date"]; !ok || v != nil {
		t.Fatalf("expected nil start date default, got %v", v)
	}
	if v, ok := rec["enrollment_count"]; !ok || v != nil {
		t.Fatalf("expected nil enrollment default, got %v", v)
	}
}

func TestApplyNilAliasTreatedAsAbsent(t *testing.T) {
	rec := Apply([]models.RawTrialRecord{{
		"status":         nil,
		"overall_status": "Completed",
	}})[0]
	if rec["status"] != "Completed" {
		t.Fatalf("expected nil alias to be skipped, got %v", rec["status"])
	}
}

func TestApplyPassthroughLocation(t *testing.T) {
	rec := Apply([]models.RawTrialRecord{{
		"location": "Boston, MA, United States",
	}})[0]
	if rec["location"] != "Boston, MA, United States" {
		t.Fatalf("expected location passthrough, got %v", rec["location"])
	}
}

func TestApplyDropsUnknownColumns(t *testing.T) {
	rec := Apply([]models.RawTrialRecord{{
		"nct_id":     "NCT001",
		"mystery":    "value",
		"extraField": 42,
	}})[0]
	if _, ok := rec["mystery"]; ok {
		t.Fatal("expected unknown columns to be dropped")
	}
	if _, ok := rec["extraField"]; ok {
		t.Fatal("expected unknown columns to be dropped")
	}
}
