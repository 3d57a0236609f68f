package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trialforge/platform/pkg/common/config"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
	"github.com/trialforge/platform/pkg/ingestion"
	"github.com/trialforge/platform/pkg/taxonomy"
	"github.com/trialforge/platform/pkg/transform"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func providerStudy(nctID string) map[string]interface{} {
	return map[string]interface{}{
		"protocolSection": map[string]interface{}{
			"identificationModule": map[string]interface{}{"nctId": nctID},
			"descriptionModule": map[string]interface{}{
				"briefSummary": "A study of immunotherapy in breast cancer",
			},
			"sponsorCollaboratorsModule": map[string]interface{}{
				"leadSponsor": map[string]interface{}{"name": "Acme Pharma", "class": "INDUSTRY"},
			},
			"statusModule": map[string]interface{}{
				"overallStatus":        "Recruiting",
				"startDateStruct":      map[string]interface{}{"date": "2023-01-01"},
				"completionDateStruct": map[string]interface{}{"date": "2023-06-01"},
			},
			"conditionsModule": map[string]interface{}{
				"conditions": []interface{}{"Breast Cancer"},
			},
			"armsInterventionsModule": map[string]interface{}{
				"interventions": []interface{}{
					map[string]interface{}{"name": "Acmezumab", "type": "Drug"},
				},
			},
			"designModule": map[string]interface{}{
				"phases": []interface{}{"Phase 3"},
			},
			"enrollmentModule": map[string]interface{}{"enrollmentCount": "1,200"},
		},
	}
}

func newTestService(t *testing.T, serverURL, artifactDir string) *Service {
	t.Helper()

	client := ingestion.NewClient(&config.Config{
		APIBaseURL:      serverURL,
		APITimeout:      5 * time.Second,
		APIMaxRetries:   3,
		APIBatchSize:    100,
		APIRequestDelay: 0,
		APIUserAgent:    "trialforge-test",
	})
	t.Cleanup(client.Close)

	catalog, err := taxonomy.Load("")
	if err != nil {
		t.Fatalf("failed to load default catalog: %v", err)
	}

	return NewService(
		client,
		ingestion.NewValidator(),
		transform.NewEngine(catalog),
		nil, nil, nil,
		artifactDir,
	)
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"studies": []interface{}{
				providerStudy("NCT001"),
				map[string]interface{}{"protocolSection": map[string]interface{}{}}, // no nct id
			},
		})
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, t.TempDir())

	result, err := svc.Run(context.Background(), models.SearchCriteria{Conditions: []string{"breast cancer"}}, Options{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Run.TotalProcessed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Run.TotalProcessed)
	}
	if result.Run.ValidTrials != 1 || result.Run.InvalidTrials != 1 {
		t.Fatalf("unexpected validation counts: %+v", result.Run)
	}
	if result.Run.ValidationRate != 50.0 {
		t.Fatalf("expected 50%% validation rate, got %v", result.Run.ValidationRate)
	}

	if len(result.Trials) != 1 {
		t.Fatalf("expected 1 transformed trial, got %d", len(result.Trials))
	}
	trial := result.Trials[0]

	if trial.NCTID == nil || *trial.NCTID != "NCT001" {
		t.Fatalf("unexpected nct id: %v", trial.NCTID)
	}
	if trial.EnrollmentCount == nil || *trial.EnrollmentCount != 1200 {
		t.Fatalf("expected enrollment 1200, got %v", trial.EnrollmentCount)
	}
	if trial.DurationDays == nil || *trial.DurationDays != 151 {
		t.Fatalf("expected 151 duration days, got %v", trial.DurationDays)
	}
	if trial.ConditionCategory != "cancer" {
		t.Fatalf("expected cancer category, got %q", trial.ConditionCategory)
	}
	if !trial.IsRecruiting || trial.IsCompleted {
		t.Fatalf("unexpected status flags: recruiting=%v completed=%v", trial.IsRecruiting, trial.IsCompleted)
	}
	if trial.EnrollmentCategory != "Very Large (>1000)" {
		t.Fatalf("unexpected enrollment category %q", trial.EnrollmentCategory)
	}
	if trial.PhaseNumber == nil || *trial.PhaseNumber != 3 {
		t.Fatalf("expected phase number 3, got %v", trial.PhaseNumber)
	}

	if result.Metrics.TotalRows != 1 {
		t.Fatalf("expected metrics over 1 row, got %d", result.Metrics.TotalRows)
	}
}

func TestRunAbortsOnProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, t.TempDir())

	if _, err := svc.Run(context.Background(), models.SearchCriteria{}, Options{}); err == nil {
		t.Fatal("expected run to abort when the provider keeps failing")
	}
}

func TestRunWritesArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"studies": []interface{}{providerStudy("NCT001")},
		})
	}))
	defer server.Close()

	dir := t.TempDir()
	svc := newTestService(t, server.URL, dir)

	result, err := svc.Run(context.Background(), models.SearchCriteria{}, Options{SaveArtifact: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.ArtifactPath == "" {
		t.Fatal("expected an artifact path")
	}
	if filepath.Dir(result.ArtifactPath) != dir {
		t.Fatalf("artifact written outside %s: %s", dir, result.ArtifactPath)
	}

	content, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	var doc struct {
		Metadata struct {
			TotalTrials int `json:"total_trials"`
		} `json:"metadata"`
		ValidationSummary struct {
			TotalProcessed int `json:"total_processed"`
			ValidTrials    int `json:"valid_trials"`
		} `json:"validation_summary"`
		Trials []map[string]interface{} `json:"trials"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatalf("invalid artifact JSON: %v", err)
	}
	if doc.Metadata.TotalTrials != 1 || doc.ValidationSummary.ValidTrials != 1 {
		t.Fatalf("unexpected artifact summary: %+v", doc)
	}
	if len(doc.Trials) != 1 {
		t.Fatalf("expected 1 trial in artifact, got %d", len(doc.Trials))
	}
}
