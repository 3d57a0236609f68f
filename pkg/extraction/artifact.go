package extraction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trialforge/platform/pkg/common/models"
)

type artifactMetadata struct {
	ExtractionDate string                `json:"extraction_date"`
	TotalTrials    int                   `json:"total_trials"`
	SearchCriteria models.SearchCriteria `json:"search_criteria"`
}

type artifactValidation struct {
	TotalProcessed int     `json:"total_processed"`
	ValidTrials    int     `json:"valid_trials"`
	InvalidTrials  int     `json:"invalid_trials"`
	ValidationRate float64 `json:"validation_rate"`
}

type artifactDocument struct {
	Metadata          artifactMetadata        `json:"metadata"`
	ValidationSummary artifactValidation      `json:"validation_summary"`
	Trials            []models.RawTrialRecord `json:"trials"`
}

// writeArtifact persists the validated raw records plus run metadata as a
// timestamped JSON file under the configured artifact directory.
func (s *Service) writeArtifact(run models.ExtractionRun, records []models.RawTrialRecord) (string, error) {
	doc := artifactDocument{
		Metadata: artifactMetadata{
			ExtractionDate: run.ExtractionDate.Format("2006-01-02T15:04:05Z"),
			TotalTrials:    len(records),
			SearchCriteria: run.Criteria,
		},
		ValidationSummary: artifactValidation{
			TotalProcessed: run.TotalProcessed,
			ValidTrials:    run.ValidTrials,
			InvalidTrials:  run.InvalidTrials,
			ValidationRate: run.ValidationRate,
		},
		Trials: records,
	}

	dir := s.artifactDir
	if dir == "" {
		dir = filepath.Join("data", "raw")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	name := fmt.Sprintf("trials_extraction_%s.json", run.ExtractionDate.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}
