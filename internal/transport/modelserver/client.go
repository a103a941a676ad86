// Package modelserver calls a remote model serving endpoint over HTTP.
//
// Protocol:
//
//	POST {endpoint}/predict  {"columns": ["kms_driven","age","power"], "rows": [[...], ...]}
//	  -> 200 {"predictions": [...], "model_version": "..."}
//	GET  {endpoint}/health   -> 2xx when ready
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

var (
	_ domain.Predictor     = (*Client)(nil)
	_ domain.HealthChecker = (*Client)(nil)
	_ domain.Versioned     = (*Client)(nil)
)

const maxErrorBody = 512

// Config holds remote predictor settings.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// Version is used in cache keys; the server's model_version is not
	// known until the first response.
	Version string
}

// Client is a domain.Predictor backed by a model server.
type Client struct {
	endpoint string
	apiKey   string
	version  string
	http     *http.Client
}

type predictRequest struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions  []float64 `json:"predictions"`
	ModelVersion string    `json:"model_version,omitempty"`
}

// New creates a reusable HTTP client.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("model server endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	version := cfg.Version
	if version == "" {
		version = "remote:" + endpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		version:  version,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Predict sends all rows in one request and expects one prediction per row.
func (c *Client) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	payload := predictRequest{Columns: features.Columns, Rows: make([][]float64, len(rows))}
	for i, r := range rows {
		payload.Rows[i] = r.Values()
	}

	var resp predictResponse
	if err := c.post(ctx, "/predict", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) != len(rows) {
		return nil, fmt.Errorf("%w: model server returned %d predictions for %d rows",
			domain.ErrPredictorContract, len(resp.Predictions), len(rows))
	}
	return resp.Predictions, nil
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health: %w", domain.ErrPredictorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health status %s", domain.ErrPredictorUnavailable, resp.Status)
	}
	return nil
}

// ModelVersion identifies the remote model for cache keys.
func (c *Client) ModelVersion() string { return c.version }

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) post(ctx context.Context, path string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPredictorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: unexpected status %s: %s",
			domain.ErrPredictorUnavailable, resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrPredictorContract, err)
	}
	return nil
}
