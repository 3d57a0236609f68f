package models

import (
	"time"
)

// RawTrialRecord is one provider study flattened to canonical field names.
// Values are untyped scalars or nil; an empty map marks a study the mapper
// could not process.
type RawTrialRecord map[string]interface{}

// SearchCriteria describes one extraction request against the provider API.
type SearchCriteria struct {
	SearchTerms []string `json:"search_terms,omitempty"`
	Conditions  []string `json:"conditions,omitempty"`
	Sponsors    []string `json:"sponsors,omitempty"`
	Phases      []string `json:"phases,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// TransformedTrial is the immutable output of the transformation engine,
// one row per trial in the staging table.
type TransformedTrial struct {
	NCTID         *string `gorm:"column:nct_id" json:"nct_id"`
	BriefTitle    *string `gorm:"column:brief_title" json:"brief_title"`
	OfficialTitle *string `gorm:"column:official_title" json:"official_title"`

	Status *string `gorm:"column:status" json:"status"`
	Phase  *string `gorm:"column:phase" json:"phase"`

	LeadSponsorName  *string `gorm:"column:lead_sponsor_name" json:"lead_sponsor_name"`
	LeadSponsorClass *string `gorm:"column:lead_sponsor_class" json:"lead_sponsor_class"`

	Condition        *string `gorm:"column:condition" json:"condition"`
	InterventionName *string `gorm:"column:intervention_name" json:"intervention_name"`
	InterventionType *string `gorm:"column:intervention_type" json:"intervention_type"`

	EnrollmentCount *int `gorm:"column:enrollment_count" json:"enrollment_count"`

	StudyStartDate        *time.Time `gorm:"column:study_start_date" json:"study_start_date"`
	PrimaryCompletionDate *time.Time `gorm:"column:primary_completion_date" json:"primary_completion_date"`
	StudyCompletionDate   *time.Time `gorm:"column:study_completion_date" json:"study_completion_date"`

	LocationCountry  *string `gorm:"column:location_country" json:"location_country"`
	LocationState    *string `gorm:"column:location_state" json:"location_state"`
	LocationCity     *string `gorm:"column:location_city" json:"location_city"`
	LocationFacility *string `gorm:"column:location_facility" json:"location_facility"`

	StudyType         *string `gorm:"column:study_type" json:"study_type"`
	Allocation        *string `gorm:"column:allocation" json:"allocation"`
	InterventionModel *string `gorm:"column:intervention_model" json:"intervention_model"`
	PrimaryPurpose    *string `gorm:"column:primary_purpose" json:"primary_purpose"`
	MaskingInfo       *string `gorm:"column:masking_info" json:"masking_info"`
	OutcomeMeasures   *string `gorm:"column:outcome_measure_description" json:"outcome_measure_description"`

	// Derived attributes
	LocationID           string `gorm:"column:location_id" json:"location_id"`
	LocationRegion       string `gorm:"column:location_region" json:"location_region"`
	LocationContinent    string `gorm:"column:location_continent" json:"location_continent"`
	SponsorID            string `gorm:"column:sponsor_id" json:"sponsor_id"`
	SponsorType          string `gorm:"column:sponsor_type" json:"sponsor_type"`
	SponsorCategory      string `gorm:"column:sponsor_category" json:"sponsor_category"`
	ConditionID          string `gorm:"column:condition_id" json:"condition_id"`
	ConditionCategory    string `gorm:"column:condition_category" json:"condition_category"`
	InterventionID       string `gorm:"column:intervention_id" json:"intervention_id"`
	InterventionCategory string `gorm:"column:intervention_category" json:"intervention_category"`
	EnrollmentCategory   string `gorm:"column:enrollment_category" json:"enrollment_category"`

	DurationDays *int `gorm:"column:duration_days" json:"duration_days"`
	PhaseNumber  *int `gorm:"column:phase_number" json:"phase_number"`

	IsCompleted  bool `gorm:"column:is_completed" json:"is_completed"`
	IsRecruiting bool `gorm:"column:is_recruiting" json:"is_recruiting"`
	IsTerminated bool `gorm:"column:is_terminated" json:"is_terminated"`

	DataCompletenessScore float64 `gorm:"column:data_completeness_score" json:"data_completeness_score"`
	DataQualityScore      float64 `gorm:"column:data_quality_score" json:"data_quality_score"`

	TransformationDate time.Time `gorm:"column:transformation_date" json:"transformation_date"`
	DataVersion        string    `gorm:"column:data_version" json:"data_version"`
}

func (TransformedTrial) TableName() string {
	return "trials"
}

// TrialColumns is the fixed column order used for dataset-level metrics and
// duplicate fingerprinting.
var TrialColumns = []string{
	"nct_id", "brief_title", "official_title", "status", "phase",
	"lead_sponsor_name", "lead_sponsor_class", "condition",
	"intervention_name", "intervention_type", "enrollment_count",
	"study_start_date", "primary_completion_date", "study_completion_date",
	"location_country", "location_state", "location_city", "location_facility",
	"study_type", "allocation", "intervention_model", "primary_purpose",
	"masking_info", "outcome_measure_description",
	"location_id", "location_region", "location_continent",
	"sponsor_id", "sponsor_type", "sponsor_category",
	"condition_id", "condition_category",
	"intervention_id", "intervention_category", "enrollment_category",
	"duration_days", "phase_number",
	"is_completed", "is_recruiting", "is_terminated",
}

// AsRow exposes the record as column name -> value, with nil for missing
// scalars, in support of column-wise quality metrics.
func (t *TransformedTrial) AsRow() map[string]interface{} {
	row := map[string]interface{}{
		"nct_id":                      strVal(t.NCTID),
		"brief_title":                 strVal(t.BriefTitle),
		"official_title":              strVal(t.OfficialTitle),
		"status":                      strVal(t.Status),
		"phase":                       strVal(t.Phase),
		"lead_sponsor_name":           strVal(t.LeadSponsorName),
		"lead_sponsor_class":          strVal(t.LeadSponsorClass),
		"condition":                   strVal(t.Condition),
		"intervention_name":           strVal(t.InterventionName),
		"intervention_type":           strVal(t.InterventionType),
		"enrollment_count":            intVal(t.EnrollmentCount),
		"study_start_date":            timeVal(t.StudyStartDate),
		"primary_completion_date":     timeVal(t.PrimaryCompletionDate),
		"study_completion_date":       timeVal(t.StudyCompletionDate),
		"location_country":            strVal(t.LocationCountry),
		"location_state":              strVal(t.LocationState),
		"location_city":               strVal(t.LocationCity),
		"location_facility":           strVal(t.LocationFacility),
		"study_type":                  strVal(t.StudyType),
		"allocation":                  strVal(t.Allocation),
		"intervention_model":          strVal(t.InterventionModel),
		"primary_purpose":             strVal(t.PrimaryPurpose),
		"masking_info":                strVal(t.MaskingInfo),
		"outcome_measure_description": strVal(t.OutcomeMeasures),
		"location_id":                 t.LocationID,
		"location_region":             t.LocationRegion,
		"location_continent":          t.LocationContinent,
		"sponsor_id":                  t.SponsorID,
		"sponsor_type":                t.SponsorType,
		"sponsor_category":            t.SponsorCategory,
		"condition_id":                t.ConditionID,
		"condition_category":          t.ConditionCategory,
		"intervention_id":             t.InterventionID,
		"intervention_category":       t.InterventionCategory,
		"enrollment_category":         t.EnrollmentCategory,
		"duration_days":               intVal(t.DurationDays),
		"phase_number":                intVal(t.PhaseNumber),
		"is_completed":                t.IsCompleted,
		"is_recruiting":               t.IsRecruiting,
		"is_terminated":               t.IsTerminated,
	}
	return row
}

func strVal(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func intVal(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func timeVal(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// ColumnMissing summarizes missing values for one column.
type ColumnMissing struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QualityMetrics is the dataset-level aggregate computed for every
// transformation run.
type QualityMetrics struct {
	TotalRows           int                      `json:"total_rows"`
	QualityScore        float64                  `json:"quality_score"`
	MissingValues       map[string]ColumnMissing `json:"missing_values"`
	DuplicateRows       int                      `json:"duplicate_rows"`
	DuplicatePercentage float64                  `json:"duplicate_percentage"`
	Completeness        float64                  `json:"completeness"`
}

// ExtractionRun is the ephemeral metadata wrapping one ingestion invocation.
type ExtractionRun struct {
	ID             string         `json:"id"`
	Criteria       SearchCriteria `json:"search_criteria"`
	ExtractionDate time.Time      `json:"extraction_date"`
	TotalProcessed int            `json:"total_processed"`
	ValidTrials    int            `json:"valid_trials"`
	InvalidTrials  int            `json:"invalid_trials"`
	ValidationRate float64        `json:"validation_rate"`
}

// Event is the envelope published to the event bus after a run.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
