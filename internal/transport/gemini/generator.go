// Package gemini adapts the Google Gemini API to the Generator contract. It is
// the default generation driver; the original assistant runs every LLM task
// through gemini-1.5-flash.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/metrics"
)

// Generator produces text via Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Config holds the Gemini provider settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// NewGenerator creates a Gemini generation provider.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Generator{
		client: client,
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

// Generate implements the Generator contract.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	start := time.Now()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("gemini", g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("gemini", g.model, "api_error").Inc()
		return "", fmt.Errorf("generate content: %w: %w", domain.ErrGeneration, err)
	}

	text, err := extractText(resp)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("gemini", g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues("gemini", g.model, "empty_response").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("gemini", g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues("gemini", g.model).Observe(duration.Seconds())

	return text, nil
}

// HealthCheck verifies API availability with a minimal token count request.
func (g *Generator) HealthCheck(ctx context.Context) error {
	model := g.client.GenerativeModel(g.model)
	if _, err := model.CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("count tokens: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
