package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/trialforge/platform/pkg/common/config"
	"github.com/trialforge/platform/pkg/common/database"
	"github.com/trialforge/platform/pkg/common/kafka"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
	"github.com/trialforge/platform/pkg/extraction"
	"github.com/trialforge/platform/pkg/ingestion"
	"github.com/trialforge/platform/pkg/taxonomy"
	"github.com/trialforge/platform/pkg/transform"
	"github.com/trialforge/platform/pkg/warehouse"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()

	var (
		searchTerms = flag.String("search-terms", "", "comma-separated free-text search terms")
		conditions  = flag.String("conditions", "", "comma-separated condition filters")
		sponsors    = flag.String("sponsors", "", "comma-separated sponsor filters")
		phases      = flag.String("phases", "", "comma-separated phase filters")
		status      = flag.String("status", "", "comma-separated overall status filters")
		startDate   = flag.String("start-date", "", "only studies starting on or after this date (YYYY-MM-DD)")
		endDate     = flag.String("end-date", "", "only studies completing on or before this date (YYYY-MM-DD)")
		limit       = flag.Int("limit", 0, "maximum number of studies to fetch (0 = no limit)")
		recent      = flag.Int("recent", 0, "shortcut: studies starting within the last N days")
		saveFile    = flag.Bool("save-file", true, "write the raw extraction artifact to disk")
		loadDB      = flag.Bool("load-db", false, "stage and load results into postgres")
		loadMode    = flag.String("load-mode", warehouse.LoadModeReplace, "load mode: replace or append")
	)
	flag.Parse()

	criteria := models.SearchCriteria{
		SearchTerms: splitList(*searchTerms),
		Conditions:  splitList(*conditions),
		Sponsors:    splitList(*sponsors),
		Phases:      splitList(*phases),
		Statuses:    splitList(*status),
		StartDate:   *startDate,
		EndDate:     *endDate,
		Limit:       *limit,
	}
	if *recent > 0 {
		criteria.StartDate = time.Now().UTC().AddDate(0, 0, -*recent).Format("2006-01-02")
	}

	catalog, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load taxonomy catalog")
	}

	client := ingestion.NewClient(cfg)
	defer client.Close()

	var (
		db   *gorm.DB
		repo *warehouse.Repository
	)
	if *loadDB {
		db, err = database.NewPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to postgres")
		}
		defer database.ClosePostgres(db)

		repo = warehouse.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("failed to migrate warehouse tables")
		}
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.ExtractionEventTopic)
		defer producer.Close()
	}

	var cache *redis.Client
	if c := database.NewRedis(cfg); c != nil {
		cache = c
		defer database.CloseRedis(cache)
	}

	svc := extraction.NewService(
		client,
		ingestion.NewValidator(),
		transform.NewEngine(catalog),
		repo,
		producer,
		cache,
		cfg.ArtifactDir,
	)

	result, err := svc.Run(context.Background(), criteria, extraction.Options{
		SaveArtifact:  *saveFile,
		LoadWarehouse: *loadDB,
		LoadMode:      *loadMode,
	})
	if err != nil {
		logger.Log.WithError(err).Error("extraction run failed")
		os.Exit(1)
	}

	fmt.Printf("Extracted %d trials (%d invalid of %d processed), quality score %.2f\n",
		result.Run.ValidTrials,
		result.Run.InvalidTrials,
		result.Run.TotalProcessed,
		result.Metrics.QualityScore,
	)
	if result.ArtifactPath != "" {
		fmt.Printf("Raw artifact: %s\n", result.ArtifactPath)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
