// Package serper queries the Serper.dev Google Search API for job postings.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
)

const defaultBaseURL = "https://google.serper.dev/search"

// Fallbacks for incomplete organic results.
const (
	fallbackTitle       = "Job Posting"
	fallbackDescription = "No details available"
	fallbackLink        = "#"
)

// Client searches job postings via the Serper API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	numResults int
	logger     *zap.Logger
}

// Config holds the Serper provider settings.
type Config struct {
	APIKey     string
	BaseURL    string // defaults to the public Serper endpoint
	NumResults int
	Logger     *zap.Logger
}

// NewClient creates a Serper search client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	numResults := cfg.NumResults
	if numResults <= 0 {
		numResults = 5
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		numResults: numResults,
		logger:     cfg.Logger,
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

// Search implements the job search contract. The query is phrased as a Google
// search ("<query> jobs in <location>") and organic results are mapped to
// postings.
func (c *Client) Search(ctx context.Context, query, location string) ([]domain.JobPosting, error) {
	body, err := json.Marshal(searchRequest{
		Q:   fmt.Sprintf("%s jobs in %s", query, location),
		Num: c.numResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w: %w", domain.ErrSearchProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API error %d: %s: %w",
			resp.StatusCode, string(payload), domain.ErrSearchProvider)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrSearchProvider, err)
	}

	postings := make([]domain.JobPosting, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		posting := domain.JobPosting{
			Title:       r.Title,
			Description: r.Snippet,
			Link:        r.Link,
		}
		if posting.Title == "" {
			posting.Title = fallbackTitle
		}
		if posting.Description == "" {
			posting.Description = fallbackDescription
		}
		if posting.Link == "" {
			posting.Link = fallbackLink
		}
		postings = append(postings, posting)
	}
	return postings, nil
}
