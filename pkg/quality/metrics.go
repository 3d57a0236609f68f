package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/trialforge/platform/pkg/common/models"
)

// RequiredColumns drive the dataset completeness percentage.
var RequiredColumns = []string{"nct_id", "brief_title", "lead_sponsor_name"}

// DatasetMetrics computes the aggregate quality report for one transformed
// batch: per-column missingness, exact-duplicate rate, required-column
// completeness, and the composite quality score.
func DatasetMetrics(trials []models.TransformedTrial, requiredColumns []string) models.QualityMetrics {
	total := len(trials)
	if total == 0 {
		return models.QualityMetrics{
			MissingValues: map[string]models.ColumnMissing{},
		}
	}

	rows := make([]map[string]interface{}, total)
	for i := range trials {
		rows[i] = trials[i].AsRow()
	}

	missing := make(map[string]models.ColumnMissing, len(models.TrialColumns))
	for _, col := range models.TrialColumns {
		count := 0
		for _, row := range rows {
			if row[col] == nil {
				count++
			}
		}
		missing[col] = models.ColumnMissing{
			Count:      count,
			Percentage: round2(float64(count) / float64(total) * 100),
		}
	}

	seen := make(map[string]struct{}, total)
	duplicates := 0
	for _, row := range rows {
		fp := fingerprint(row)
		if _, dup := seen[fp]; dup {
			duplicates++
			continue
		}
		seen[fp] = struct{}{}
	}
	duplicatePct := float64(duplicates) / float64(total) * 100

	completeness := 100.0
	if len(requiredColumns) > 0 {
		var sum float64
		counted := 0
		for _, col := range requiredColumns {
			cm, ok := missing[col]
			if !ok {
				continue
			}
			sum += 100 - float64(cm.Count)/float64(total)*100
			counted++
		}
		if counted > 0 {
			completeness = sum / float64(counted)
		}
	}

	quality := math.Max(0, 100-duplicatePct*2-(100-completeness))

	return models.QualityMetrics{
		TotalRows:           total,
		QualityScore:        round2(quality),
		MissingValues:       missing,
		DuplicateRows:       duplicates,
		DuplicatePercentage: round2(duplicatePct),
		Completeness:        round2(completeness),
	}
}

// fingerprint joins every column value in the fixed column order so that
// exact row equality maps to string equality.
func fingerprint(row map[string]interface{}) string {
	parts := make([]string, 0, len(models.TrialColumns))
	for _, col := range models.TrialColumns {
		parts = append(parts, fmt.Sprintf("%v", row[col]))
	}
	return strings.Join(parts, "\x1f")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
