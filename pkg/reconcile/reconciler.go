// Package reconcile backfills the canonical column set from known alias
// names so downstream stages never probe for alternates themselves.
package reconcile

import (
	"github.com/trialforge/platform/pkg/common/models"
)

// Rule maps one canonical field to its ordered alias precedence list and
// the default applied when no alias carries a value. A "" default marks
// categorical text the pipeline treats as unknown; a nil default propagates
// genuine missing data.
type Rule struct {
	Canonical string
	Aliases   []string
	Default   interface{}
}

// Rules is the declarative reconciliation table. Alias order is the
// precedence order.
var Rules = []Rule{
	{Canonical: "nct_id", Aliases: []string{"nct_id", "NCTId"}, Default: nil},
	{Canonical: "brief_title", Aliases: []string{"brief_title", "BriefTitle"}, Default: nil},
	{Canonical: "official_title", Aliases: []string{"official_title", "OfficialTitle"}, Default: nil},
	{Canonical: "status", Aliases: []string{"status", "Status", "overall_status", "trial_status"}, Default: ""},
	{Canonical: "phase", Aliases: []string{"phase", "Phase", "study_phase"}, Default: ""},
	{Canonical: "lead_sponsor_name", Aliases: []string{"lead_sponsor_name", "LeadSponsorName", "sponsor"}, Default: nil},
	{Canonical: "lead_sponsor_class", Aliases: []string{"lead_sponsor_class", "LeadSponsorClass", "sponsor_class"}, Default: ""},
	{Canonical: "condition", Aliases: []string{"condition", "Condition", "conditions"}, Default: ""},
	{Canonical: "intervention_name", Aliases: []string{"intervention_name", "InterventionName", "intervention"}, Default: ""},
	{Canonical: "intervention_type", Aliases: []string{"intervention_type", "InterventionType", "interventiontype"}, Default: ""},
	{Canonical: "enrollment_count", Aliases: []string{"enrollment_count", "EnrollmentCount", "enrollment", "enrollment_total"}, Default: nil},
	{Canonical: "study_start_date", Aliases: []string{"study_start_date", "StudyStartDate"}, Default: nil},
	{Canonical: "primary_completion_date", Aliases: []string{"primary_completion_date", "PrimaryCompletionDate"}, Default: nil},
	{Canonical: "study_completion_date", Aliases: []string{"study_completion_date", "StudyCompletionDate"}, Default: nil},
	{Canonical: "location_country", Aliases: []string{"location_country", "LocationCountry"}, Default: nil},
	{Canonical: "location_state", Aliases: []string{"location_state", "LocationState"}, Default: nil},
	{Canonical: "location_city", Aliases: []string{"location_city", "LocationCity"}, Default: nil},
	{Canonical: "location_facility", Aliases: []string{"location_facility", "LocationFacility"}, Default: nil},
	{Canonical: "study_type", Aliases: []string{"study_type", "StudyType"}, Default: nil},
	{Canonical: "allocation", Aliases: []string{"allocation", "Allocation"}, Default: nil},
	{Canonical: "intervention_model", Aliases: []string{"intervention_model", "InterventionModel"}, Default: nil},
	{Canonical: "primary_purpose", Aliases: []string{"primary_purpose", "PrimaryPurpose"}, Default: nil},
	{Canonical: "masking_info", Aliases: []string{"masking_info", "MaskingInfo"}, Default: nil},
	{Canonical: "outcome_measure_description", Aliases: []string{"outcome_measure_description", "OutcomeMeasureDescription"}, Default: nil},
}

// passthrough columns survive reconciliation untouched; "location" feeds the
// free-text fallback parse in the transformation engine.
var passthrough = []string{"location"}

// Apply reconciles a batch. Every output record carries the full canonical
// column set.
func Apply(records []models.RawTrialRecord) []models.RawTrialRecord {
	out := make([]models.RawTrialRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, applyOne(rec))
	}
	return out
}

func applyOne(rec models.RawTrialRecord) models.RawTrialRecord {
	reconciled := make(models.RawTrialRecord, len(Rules)+len(passthrough))

	for _, rule := range Rules {
		reconciled[rule.Canonical] = resolve(rec, rule)
	}
	for _, key := range passthrough {
		if v, ok := rec[key]; ok && v != nil {
			reconciled[key] = v
		}
	}
	return reconciled
}

func resolve(rec models.RawTrialRecord, rule Rule) interface{} {
	for _, alias := range rule.Aliases {
		if v, ok := rec[alias]; ok && v != nil {
			return v
		}
	}
	return rule.Default
}
