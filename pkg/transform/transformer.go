// Package transform turns reconciled records into the uniform trial schema:
// cleaned text, parsed dates, derived categorizations, dimension keys, and
// per-record quality scores. Pure computation; no I/O.
package transform

import (
	"time"

	"github.com/spf13/cast"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
	"github.com/trialforge/platform/pkg/quality"
	"github.com/trialforge/platform/pkg/taxonomy"
)

const dataVersion = "1.0"

// Sentinel dimension keys for entities with no identifying attributes.
const (
	sponsorUnknownKey      = "SPONSOR_UNKNOWN"
	conditionUnknownKey    = "COND_UNKNOWN"
	interventionUnknownKey = "INT_UNKNOWN"
)

type Engine struct {
	catalog     taxonomy.Catalog
	sponsorSubs []sponsorSub
}

func NewEngine(catalog taxonomy.Catalog) *Engine {
	e := &Engine{catalog: catalog}
	compileSponsorSubs(e)
	return e
}

// Transform maps a reconciled batch to transformed trial records, preserving
// input order. Each output record is immutable after creation.
func (e *Engine) Transform(records []models.RawTrialRecord) []models.TransformedTrial {
	now := time.Now().UTC()
	out := make([]models.TransformedTrial, 0, len(records))
	for _, rec := range records {
		out = append(out, e.transformOne(rec, now))
	}
	logger.Log.WithField("count", len(out)).Info("Transformation completed")
	return out
}

func (e *Engine) transformOne(rec models.RawTrialRecord, now time.Time) models.TransformedTrial {
	t := models.TransformedTrial{
		NCTID:            Clean(rec["nct_id"]),
		BriefTitle:       Clean(rec["brief_title"]),
		OfficialTitle:    Clean(rec["official_title"]),
		Status:           Clean(rec["status"]),
		Phase:            Clean(rec["phase"]),
		LeadSponsorClass: Clean(rec["lead_sponsor_class"]),
		Condition:        Clean(rec["condition"]),
		InterventionName: Clean(rec["intervention_name"]),
		InterventionType: Clean(rec["intervention_type"]),
		LocationCountry:  Clean(rec["location_country"]),
		LocationState:    Clean(rec["location_state"]),
		LocationCity:     Clean(rec["location_city"]),
		LocationFacility: Clean(rec["location_facility"]),
		StudyType:        Clean(rec["study_type"]),
		Allocation:       Clean(rec["allocation"]),

		InterventionModel: Clean(rec["intervention_model"]),
		PrimaryPurpose:    Clean(rec["primary_purpose"]),
		MaskingInfo:       Clean(rec["masking_info"]),
		OutcomeMeasures:   Clean(rec["outcome_measure_description"]),

		EnrollmentCount: intValue(rec["enrollment_count"]),

		StudyStartDate:        ParseDate(rec["study_start_date"]),
		PrimaryCompletionDate: ParseDate(rec["primary_completion_date"]),
		StudyCompletionDate:   ParseDate(rec["study_completion_date"]),

		TransformationDate: now,
		DataVersion:        dataVersion,
	}

	// Free-text fallback when no pre-split location columns exist.
	if t.LocationCountry == nil && t.LocationState == nil && t.LocationCity == nil {
		if loc := Clean(rec["location"]); loc != nil {
			t.LocationCity, t.LocationState, t.LocationCountry = ExtractLocation(*loc)
		}
	}

	t.LocationID = HashKey(t.LocationCountry, t.LocationState, t.LocationCity)
	t.LocationRegion = e.categorizeRegion(t.LocationCountry)
	t.LocationContinent = e.categorizeContinent(t.LocationCountry)

	t.LeadSponsorName = e.NormalizeSponsor(Clean(rec["lead_sponsor_name"]))
	if t.LeadSponsorName == nil {
		t.SponsorID = sponsorUnknownKey
	} else {
		t.SponsorID = HashKey(t.LeadSponsorName)
	}
	t.SponsorType = CategorizeSponsorType(t.LeadSponsorClass)
	t.SponsorCategory = CategorizeSponsorCategory(t.LeadSponsorName)

	t.ConditionCategory = e.CategorizeCondition(t.Condition)
	if t.Condition == nil {
		t.ConditionID = conditionUnknownKey
	} else {
		t.ConditionID = HashKey(t.Condition)
	}

	if t.InterventionName == nil {
		t.InterventionID = interventionUnknownKey
	} else {
		t.InterventionID = HashKey(t.InterventionName)
	}
	t.InterventionCategory = CategorizeIntervention(t.InterventionType)

	t.DurationDays = DurationDays(t.StudyStartDate, t.StudyCompletionDate)
	t.PhaseNumber = ExtractPhaseNumber(t.Phase)
	t.EnrollmentCategory = CategorizeEnrollment(t.EnrollmentCount)
	t.IsCompleted, t.IsRecruiting, t.IsTerminated = StatusFlags(t.Status)

	t.DataCompletenessScore = quality.CompletenessScore(&t)
	t.DataQualityScore = quality.QualityScore(&t)

	return t
}

func intValue(v interface{}) *int {
	if v == nil {
		return nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil
	}
	return &n
}
