// Package parse turns raw resume text into a skills list and a structured
// document via generation calls. Both extractions degrade independently: a
// failed skills call yields an empty list, a failed structuring call yields a
// summary-only fallback, and neither fails the request.
package parse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/jsonext"
)

// inputTruncateRunes caps how much resume text goes into each prompt.
const inputTruncateRunes = 5000

// summaryFallbackRunes is the summary length used when structuring fails.
const summaryFallbackRunes = 200

var skillSeparator = regexp.MustCompile(`,|\n`)

// Generator produces text from a prompt via an LLM provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of parsing one resume.
type Result struct {
	Skills     []string
	Structured domain.StructuredResume
}

// Service extracts skills and structure from resume text.
type Service struct {
	generator  Generator
	genTimeout time.Duration
	logger     *zap.Logger
}

// New creates a parse service.
func New(generator Generator, logger *zap.Logger) *Service {
	return &Service{
		generator:  generator,
		genTimeout: 60 * time.Second,
		logger:     logger,
	}
}

// WithGenerateTimeout bounds each generation call.
func (s *Service) WithGenerateTimeout(d time.Duration) *Service {
	if d > 0 {
		s.genTimeout = d
	}
	return s
}

// ParseResume runs both extractions over the same text. Only blank input is an
// error; provider failures degrade per extraction.
func (s *Service) ParseResume(ctx context.Context, resumeText string) (Result, error) {
	if strings.TrimSpace(resumeText) == "" {
		return Result{}, fmt.Errorf("resume text is empty: %w", domain.ErrInvalidInput)
	}

	return Result{
		Skills:     s.ExtractSkills(ctx, resumeText),
		Structured: s.StructureResume(ctx, resumeText),
	}, nil
}

// ExtractSkills asks the generator for a skills list and splits the reply on
// commas and newlines. Any failure yields an empty list.
func (s *Service) ExtractSkills(ctx context.Context, resumeText string) []string {
	prompt := fmt.Sprintf("Extract a list of skills from the following resume:\n\n%s",
		truncateRunes(resumeText, inputTruncateRunes))

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Skill extraction failed", zap.Error(err))
		return []string{}
	}

	parts := skillSeparator.Split(strings.TrimSpace(raw), -1)
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if skill := strings.TrimSpace(p); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// StructureResume converts resume text into a structured document. On failure
// it falls back to a summary-only document built from the leading text.
func (s *Service) StructureResume(ctx context.Context, resumeText string) domain.StructuredResume {
	prompt := fmt.Sprintf("Convert this resume into structured JSON:\n\n%s",
		truncateRunes(resumeText, inputTruncateRunes))

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Resume structuring failed", zap.Error(err))
		return fallbackStructured(resumeText)
	}

	data, err := jsonext.Extract(raw)
	if err != nil {
		s.logger.Warn("Structured resume response not parseable", zap.Error(err))
		return fallbackStructured(resumeText)
	}

	var structured domain.StructuredResume
	if err := json.Unmarshal(data, &structured); err != nil {
		s.logger.Warn("Structured resume response not parseable", zap.Error(err))
		return fallbackStructured(resumeText)
	}

	if structured.Skills == nil {
		structured.Skills = []string{}
	}
	if structured.Experience == nil {
		structured.Experience = []map[string]any{}
	}
	if structured.Education == nil {
		structured.Education = []map[string]any{}
	}
	return structured
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	out, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return out, nil
}

func fallbackStructured(resumeText string) domain.StructuredResume {
	return domain.StructuredResume{
		Summary:    truncateRunes(resumeText, summaryFallbackRunes),
		Skills:     []string{},
		Experience: []map[string]any{},
		Education:  []map[string]any{},
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
