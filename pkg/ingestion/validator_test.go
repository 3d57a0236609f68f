package ingestion

import (
	"os"
	"testing"

	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestValidateRejectsMissingID(t *testing.T) {
	v := NewValidator()

	if _, ok := v.Validate(models.RawTrialRecord{"BriefTitle": "A Study"}); ok {
		t.Fatal("expected rejection when NCTId is absent")
	}
	if _, ok := v.Validate(models.RawTrialRecord{"NCTId": "   "}); ok {
		t.Fatal("expected rejection when NCTId is blank")
	}
	if _, ok := v.Validate(models.RawTrialRecord{"NCTId": nil}); ok {
		t.Fatal("expected rejection when NCTId is nil")
	}
}

func TestValidateCoercesValues(t *testing.T) {
	v := NewValidator()

	rec, ok := v.Validate(models.RawTrialRecord{
		"NCTId":           "NCT001",
		"BriefTitle":      "  A Study  ",
		"Condition":       "",
		"EnrollmentCount": "1,200",
	})
	if !ok {
		t.Fatal("expected record to pass validation")
	}

	if rec["BriefTitle"] != "A Study" {
		t.Fatalf("expected trimmed title, got %v", rec["BriefTitle"])
	}
	if rec["Condition"] != nil {
		t.Fatalf("expected empty string to become nil, got %v", rec["Condition"])
	}
	if rec["EnrollmentCount"] != 1200 {
		t.Fatalf("expected enrollment 1200, got %v", rec["EnrollmentCount"])
	}
}

func TestValidateNegativeNumericsBecomeNil(t *testing.T) {
	v := NewValidator()

	rec, ok := v.Validate(models.RawTrialRecord{
		"NCTId":           "NCT002",
		"EnrollmentCount": -5,
	})
	if !ok {
		t.Fatal("expected record to pass validation")
	}
	if rec["EnrollmentCount"] != nil {
		t.Fatalf("expected negative count to become nil, got %v", rec["EnrollmentCount"])
	}
}

func TestValidateUnparseableCountBecomesNil(t *testing.T) {
	v := NewValidator()

	rec, ok := v.Validate(models.RawTrialRecord{
		"NCTId":           "NCT003",
		"EnrollmentCount": "about a hundred",
	})
	if !ok {
		t.Fatal("expected record to pass validation")
	}
	if rec["EnrollmentCount"] != nil {
		t.Fatalf("expected unparseable count to become nil, got %v", rec["EnrollmentCount"])
	}
}
