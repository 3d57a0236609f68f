package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trialforge/platform/pkg/common/config"
	"github.com/trialforge/platform/pkg/common/models"
)

func testClient(baseURL string, batchSize int) *Client {
	return NewClient(&config.Config{
		APIBaseURL:      baseURL,
		APITimeout:      5 * time.Second,
		APIMaxRetries:   3,
		APIBatchSize:    batchSize,
		APIRequestDelay: 0,
		APIUserAgent:    "trialforge-test",
	})
}

func pageResponse(nextToken string, ids ...string) map[string]interface{} {
	studies := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		studies = append(studies, sampleStudy(id))
	}
	resp := map[string]interface{}{"studies": studies}
	if nextToken != "" {
		resp["nextPageToken"] = nextToken
	}
	return resp
}

func TestSearchPaginatesToCompletion(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		requests = append(requests, token)
		switch token {
		case "":
			json.NewEncoder(w).Encode(pageResponse("page2", "NCT001", "NCT002"))
		case "page2":
			json.NewEncoder(w).Encode(pageResponse("", "NCT003"))
		default:
			t.Errorf("unexpected page token %q", token)
		}
	}))
	defer server.Close()

	client := testClient(server.URL, 2)
	defer client.Close()

	var ids []string
	it := client.Search(context.Background(), models.SearchCriteria{Conditions: []string{"cancer"}})
	for it.Next() {
		if id, ok := it.Record()["NCTId"].(string); ok {
			ids = append(ids, id)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("unexpected iterator error: %v", err)
	}

	if len(ids) != 3 {
		t.Fatalf("expected 3 records, got %d: %v", len(ids), ids)
	}
	if len(requests) != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", len(requests))
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always advertise another page; the limit must stop the walk.
		json.NewEncoder(w).Encode(pageResponse("more", "NCT001", "NCT002"))
	}))
	defer server.Close()

	client := testClient(server.URL, 2)
	defer client.Close()

	count := 0
	it := client.Search(context.Background(), models.SearchCriteria{Limit: 3})
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("unexpected iterator error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected exactly 3 records, got %d", count)
	}
}

func TestSearchRetriesTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(pageResponse("", "NCT001"))
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	defer client.Close()

	count := 0
	it := client.Search(context.Background(), models.SearchCriteria{})
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after retry, got %d", count)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestSearchExhaustedRetriesSurfaceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	defer client.Close()

	it := client.Search(context.Background(), models.SearchCriteria{})
	if it.Next() {
		t.Fatal("expected no records from a failing provider")
	}
	if it.Err() == nil {
		t.Fatal("expected iterator error after retries are exhausted")
	}
}

func TestGetTrial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pageResponse("", "NCT99999999"))
	}))
	defer server.Close()

	client := testClient(server.URL, 10)
	defer client.Close()

	rec, err := client.GetTrial(context.Background(), "NCT99999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["NCTId"] != "NCT99999999" {
		t.Fatalf("unexpected record: %v", rec["NCTId"])
	}
}

func TestBuildQueryTerm(t *testing.T) {
	term := BuildQueryTerm(models.SearchCriteria{
		SearchTerms: []string{"immunotherapy"},
		Conditions:  []string{"melanoma"},
		StartDate:   "2023-01-01",
		EndDate:     "2024-01-01",
	})
	want := "immunotherapy melanoma startDate:[2023-01-01 TO *] completionDate:[* TO 2024-01-01]"
	if term != want {
		t.Fatalf("unexpected query term:\n  got  %q\n  want %q", term, want)
	}
}
