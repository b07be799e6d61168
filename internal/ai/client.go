// Package ai talks to the external analysis service. Its output is opaque:
// scores and recommendations are stored and rendered as-is, never validated
// or re-derived.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/witthaya/prakan/internal/config"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
)

// GapItem is one identified coverage gap.
type GapItem struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// GapAnalysis is the analysis service's coverage assessment for a portfolio.
type GapAnalysis struct {
	Score           int       `json:"score"`
	Gaps            []GapItem `json:"gaps"`
	Recommendations []string  `json:"recommendations"`
}

// TaxAdvice is the analysis service's tax planning suggestion set.
type TaxAdvice struct {
	Advice            []string `json:"advice"`
	SuggestedProducts []string `json:"suggestedProducts"`
	EstimatedBenefit  float64  `json:"estimatedBenefit"`
}

// AnalysisRequest is the payload sent to the analysis service.
type AnalysisRequest struct {
	Policies []models.Policy    `json:"policies"`
	Profile  models.UserProfile `json:"profile"`
}

// Client calls the external analysis service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a new analysis service client.
func NewClient(cfg config.AIConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

// GapAnalysis requests a coverage gap analysis for the given portfolio.
func (c *Client) GapAnalysis(ctx context.Context, req AnalysisRequest) (*GapAnalysis, error) {
	var result GapAnalysis
	if err := c.post(ctx, "/v1/gap-analysis", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaxAdvice requests tax planning advice for the given portfolio.
func (c *Client) TaxAdvice(ctx context.Context, req AnalysisRequest) (*TaxAdvice, error) {
	var result TaxAdvice
	if err := c.post(ctx, "/v1/tax-advice", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post encodes the request, calls the service, and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode analysis request: %w", err)
	}

	url := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("analysis service call failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("Analysis service responded", map[string]interface{}{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		// Bounded read so a misbehaving service cannot flood the log
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return nil
}
