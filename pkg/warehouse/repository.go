// Package warehouse is the load boundary: staging of validated raw records
// and replace/append loading of transformed trials into the relational
// store. The dimensional schema itself lives downstream.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LoadModeReplace = "replace"
	LoadModeAppend  = "append"

	batchInsertSize = 500
)

// RawTrial is one staged validated record with its extraction metadata.
type RawTrial struct {
	ID               string            `gorm:"column:id;primaryKey" json:"id"`
	NCTID            string            `gorm:"column:nct_id" json:"nct_id"`
	Payload          datatypes.JSONMap `gorm:"column:payload" json:"payload"`
	ExtractionDate   time.Time         `gorm:"column:extraction_date" json:"extraction_date"`
	DataSource       string            `gorm:"column:data_source" json:"data_source"`
	ValidationStatus string            `gorm:"column:validation_status" json:"validation_status"`
}

func (RawTrial) TableName() string {
	return "raw_trials"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&RawTrial{}, &models.TransformedTrial{})
}

// StageRawTrials persists the validated raw batch for reprocessing and
// lineage.
func (r *Repository) StageRawTrials(ctx context.Context, records []models.RawTrialRecord, run models.ExtractionRun) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]RawTrial, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RawTrial{
			ID:               uuid.New().String(),
			NCTID:            cast.ToString(rec["NCTId"]),
			Payload:          datatypes.JSONMap(rec),
			ExtractionDate:   run.ExtractionDate,
			DataSource:       "ClinicalTrials.gov API",
			ValidationStatus: "valid",
		})
	}

	if err := r.db.WithContext(ctx).CreateInBatches(rows, batchInsertSize).Error; err != nil {
		return fmt.Errorf("staging raw trials: %w", err)
	}

	logger.Log.WithField("count", len(rows)).Info("Raw trials staged")
	return nil
}

// LoadTrials writes the transformed batch with replace or append semantics.
func (r *Repository) LoadTrials(ctx context.Context, trials []models.TransformedTrial, mode string) error {
	switch mode {
	case LoadModeReplace:
		if err := r.db.WithContext(ctx).Exec("DELETE FROM trials").Error; err != nil {
			return fmt.Errorf("clearing trials table: %w", err)
		}
	case LoadModeAppend:
	default:
		return fmt.Errorf("unsupported load mode %q", mode)
	}

	if len(trials) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(trials, batchInsertSize).Error; err != nil {
		return fmt.Errorf("loading trials: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"count": len(trials),
		"mode":  mode,
	}).Info("Trials loaded")
	return nil
}

// EnsureIndexes creates the identifier and dimension-key indexes the
// analytic queries depend on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		table  string
		column string
	}{
		{"raw_trials", "nct_id"},
		{"trials", "nct_id"},
		{"trials", "location_id"},
		{"trials", "sponsor_id"},
		{"trials", "condition_id"},
		{"trials", "intervention_id"},
	}

	for _, idx := range indexes {
		stmt := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
			idx.table, idx.column, idx.table, idx.column,
		)
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating index on %s.%s: %w", idx.table, idx.column, err)
		}
	}
	return nil
}
