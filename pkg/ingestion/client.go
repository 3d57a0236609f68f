package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trialforge/platform/pkg/common/config"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
)

// Client pulls study documents from the provider API v2. It owns a single
// pooled HTTP session for its lifetime; Close releases it.
type Client struct {
	baseURL      string
	userAgent    string
	httpClient   *http.Client
	maxRetries   int
	batchSize    int
	requestDelay time.Duration
	lastRequest  time.Time
}

func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:   cfg.APIBaseURL,
		userAgent: cfg.APIUserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.APITimeout,
			Transport: transport,
		},
		maxRetries:   cfg.APIMaxRetries,
		batchSize:    cfg.APIBatchSize,
		requestDelay: cfg.APIRequestDelay,
	}
}

type searchResponse struct {
	Studies       []map[string]interface{} `json:"studies"`
	NextPageToken string                   `json:"nextPageToken"`
}

// BuildQueryTerm renders all filter dimensions into the single combined
// query.term expression the provider expects.
func BuildQueryTerm(criteria models.SearchCriteria) string {
	var parts []string
	parts = append(parts, criteria.SearchTerms...)
	parts = append(parts, criteria.Conditions...)
	parts = append(parts, criteria.Sponsors...)
	parts = append(parts, criteria.Phases...)
	parts = append(parts, criteria.Statuses...)
	if criteria.StartDate != "" {
		parts = append(parts, fmt.Sprintf("startDate:[%s TO *]", criteria.StartDate))
	}
	if criteria.EndDate != "" {
		parts = append(parts, fmt.Sprintf("completionDate:[* TO %s]", criteria.EndDate))
	}
	return strings.Join(parts, " ")
}

// rateLimit enforces the minimum spacing between provider requests.
func (c *Client) rateLimit(ctx context.Context) error {
	if wait := c.requestDelay - time.Since(c.lastRequest); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// doRequest performs one API call with bounded retries and exponential
// backoff. Exhausting the attempts surfaces the last failure to the caller,
// which aborts the whole run.
func (c *Client) doRequest(ctx context.Context, params url.Values) (*searchResponse, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.rateLimit(ctx); err != nil {
			return nil, err
		}

		resp, err := c.get(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"params":  params.Encode(),
		}).Warn("API request failed")

		if attempt == c.maxRetries-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("API request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) get(ctx context.Context, params url.Values) (*searchResponse, error) {
	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &decoded, nil
}

// Search returns a lazy, finite, non-restartable sequence of raw trial
// records matching the criteria. Pages are fetched in provider order; at most
// one page is buffered.
func (c *Client) Search(ctx context.Context, criteria models.SearchCriteria) *TrialIterator {
	return &TrialIterator{
		client: c,
		ctx:    ctx,
		query:  BuildQueryTerm(criteria),
		limit:  criteria.Limit,
	}
}

// GetTrial fetches the flattened record for a single study id.
func (c *Client) GetTrial(ctx context.Context, nctID string) (models.RawTrialRecord, error) {
	params := url.Values{}
	params.Set("query.term", fmt.Sprintf("nctId:%q", nctID))
	params.Set("pageSize", "1")

	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Studies) == 0 {
		return nil, fmt.Errorf("trial %s not found", nctID)
	}

	rec, err := MapStudy(resp.Studies[0])
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Close releases the pooled HTTP session.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	logger.Log.Info("API client session closed")
}

// TrialIterator walks the paginated result set one record at a time.
// Usage follows the scanner idiom: Next / Record / Err.
type TrialIterator struct {
	client *Client
	ctx    context.Context
	query  string
	limit  int

	pageToken   string
	buffer      []models.RawTrialRecord
	pos         int
	fetched     int
	noMorePages bool

	record models.RawTrialRecord
	err    error
}

func (it *TrialIterator) Next() bool {
	if it.err != nil {
		return false
	}

	for {
		if it.limit > 0 && it.fetched >= it.limit {
			return false
		}
		if it.pos < len(it.buffer) {
			it.record = it.buffer[it.pos]
			it.pos++
			it.fetched++
			return true
		}
		if it.noMorePages {
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}
}

func (it *TrialIterator) Record() models.RawTrialRecord {
	return it.record
}

func (it *TrialIterator) Err() error {
	return it.err
}

func (it *TrialIterator) fetchPage() error {
	pageSize := it.client.batchSize
	if it.limit > 0 {
		if remaining := it.limit - it.fetched; remaining < pageSize {
			pageSize = remaining
		}
	}

	params := url.Values{}
	params.Set("query.term", it.query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if it.pageToken != "" {
		params.Set("pageToken", it.pageToken)
	}

	resp, err := it.client.doRequest(it.ctx, params)
	if err != nil {
		return err
	}

	it.buffer = it.buffer[:0]
	it.pos = 0

	if len(resp.Studies) == 0 {
		it.noMorePages = true
		return nil
	}

	for _, study := range resp.Studies {
		rec, mapErr := MapStudy(study)
		if mapErr != nil {
			// A broken study document must not abort the run; the
			// validator rejects the empty record downstream.
			logger.Log.WithError(mapErr).WithField("nct_id", studyID(study)).Warn("Failed to map study document")
			rec = models.RawTrialRecord{}
		}
		it.buffer = append(it.buffer, rec)
	}

	it.pageToken = resp.NextPageToken
	if it.pageToken == "" {
		it.noMorePages = true
	}
	return nil
}
