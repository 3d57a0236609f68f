package warehouse

import (
	"context"
)

// Read-only analytic aggregates consumed by the dashboard boundary.

type SponsorStats struct {
	SponsorName     string  `json:"sponsor_name"`
	TrialCount      int     `json:"trial_count"`
	AvgEnrollment   float64 `json:"avg_enrollment"`
	AvgDurationDays float64 `json:"avg_duration_days"`
}

func (r *Repository) TopSponsors(ctx context.Context, limit int) ([]SponsorStats, error) {
	if limit <= 0 {
		limit = 10
	}
	var stats []SponsorStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			lead_sponsor_name AS sponsor_name,
			COUNT(*) AS trial_count,
			COALESCE(AVG(enrollment_count), 0) AS avg_enrollment,
			COALESCE(AVG(duration_days), 0) AS avg_duration_days
		FROM trials
		WHERE lead_sponsor_name IS NOT NULL
		GROUP BY lead_sponsor_name
		ORDER BY trial_count DESC
		LIMIT ?`, limit).Scan(&stats).Error
	return stats, err
}

type ConditionCategoryStats struct {
	ConditionCategory string  `json:"condition_category"`
	TrialCount        int     `json:"trial_count"`
	UniqueSponsors    int     `json:"unique_sponsors"`
	AvgEnrollment     float64 `json:"avg_enrollment"`
	AvgDurationDays   float64 `json:"avg_duration_days"`
	TotalEnrollment   int     `json:"total_enrollment"`
}

func (r *Repository) ConditionCategories(ctx context.Context) ([]ConditionCategoryStats, error) {
	var stats []ConditionCategoryStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			condition_category,
			COUNT(*) AS trial_count,
			COUNT(DISTINCT sponsor_id) AS unique_sponsors,
			COALESCE(AVG(enrollment_count), 0) AS avg_enrollment,
			COALESCE(AVG(duration_days), 0) AS avg_duration_days,
			COALESCE(SUM(enrollment_count), 0) AS total_enrollment
		FROM trials
		GROUP BY condition_category
		ORDER BY trial_count DESC`).Scan(&stats).Error
	return stats, err
}

type PhaseStatusStats struct {
	Phase         string  `json:"phase"`
	Status        string  `json:"status"`
	TrialCount    int     `json:"trial_count"`
	AvgEnrollment float64 `json:"avg_enrollment"`
}

func (r *Repository) StatusByPhase(ctx context.Context) ([]PhaseStatusStats, error) {
	var stats []PhaseStatusStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			phase,
			status,
			COUNT(*) AS trial_count,
			COALESCE(AVG(enrollment_count), 0) AS avg_enrollment
		FROM trials
		WHERE phase IS NOT NULL AND status IS NOT NULL
		GROUP BY phase, status
		ORDER BY phase, trial_count DESC`).Scan(&stats).Error
	return stats, err
}

type QualitySummary struct {
	TotalTrials     int     `json:"total_trials"`
	HighQuality     int     `json:"high_quality"`
	MediumQuality   int     `json:"medium_quality"`
	LowQuality      int     `json:"low_quality"`
	AvgCompleteness float64 `json:"avg_completeness"`
	AvgQuality      float64 `json:"avg_quality"`
}

func (r *Repository) QualityOverview(ctx context.Context) (QualitySummary, error) {
	var summary QualitySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_trials,
			COUNT(CASE WHEN data_completeness_score >= 0.9 THEN 1 END) AS high_quality,
			COUNT(CASE WHEN data_completeness_score >= 0.7 AND data_completeness_score < 0.9 THEN 1 END) AS medium_quality,
			COUNT(CASE WHEN data_completeness_score < 0.7 THEN 1 END) AS low_quality,
			COALESCE(AVG(data_completeness_score), 0) AS avg_completeness,
			COALESCE(AVG(data_quality_score), 0) AS avg_quality
		FROM trials`).Scan(&summary).Error
	return summary, err
}
