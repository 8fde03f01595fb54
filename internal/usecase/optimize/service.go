// Package optimize implements the LLM-backed resume operations: retrieval
// augmented enhancement, ATS scoring and before/after comparison. Enhancement
// fails hard on provider errors; the two scoring operations always return a
// report, degrading to fixed fallback values when generation or parsing fails.
package optimize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/jsonext"
)

// exampleTruncateRunes bounds how much of each retrieved resume goes into the
// enhancement prompt.
const exampleTruncateRunes = 500

// Service orchestrates generation calls for resume optimization.
type Service struct {
	retriever  Retriever
	generator  Generator
	contextK   int
	genTimeout time.Duration
	logger     *zap.Logger
}

// New creates an optimization service.
func New(retriever Retriever, generator Generator, logger *zap.Logger) *Service {
	return &Service{
		retriever:  retriever,
		generator:  generator,
		contextK:   2,
		genTimeout: 60 * time.Second,
		logger:     logger,
	}
}

// WithContextK overrides how many similar resumes feed the enhancement prompt.
func (s *Service) WithContextK(k int) *Service {
	if k > 0 {
		s.contextK = k
	}
	return s
}

// WithGenerateTimeout bounds each generation call.
func (s *Service) WithGenerateTimeout(d time.Duration) *Service {
	if d > 0 {
		s.genTimeout = d
	}
	return s
}

// EnhanceResume rewrites a resume against a job description, grounding the
// prompt on similar stored resumes. It makes two generation calls: one for the
// rewrite and one for the explanation of changes.
func (s *Service) EnhanceResume(ctx context.Context, resumeText, jobDescription string) (domain.EnhancementResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return domain.EnhancementResult{}, fmt.Errorf("resume text is empty: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return domain.EnhancementResult{}, fmt.Errorf("job description is empty: %w", domain.ErrInvalidInput)
	}

	similar, err := s.retriever.Similar(ctx, jobDescription, s.contextK)
	if err != nil {
		return domain.EnhancementResult{}, fmt.Errorf("retrieve similar resumes: %w", err)
	}

	enhanced, err := s.generate(ctx, enhancePrompt(jobDescription, examplesContext(similar), resumeText))
	if err != nil {
		return domain.EnhancementResult{}, fmt.Errorf("enhance resume: %w", err)
	}

	explanation, err := s.generate(ctx, explanationPrompt(resumeText, enhanced, jobDescription))
	if err != nil {
		return domain.EnhancementResult{}, fmt.Errorf("explain enhancement: %w", err)
	}

	return domain.EnhancementResult{
		EnhancedResume:      enhanced,
		Explanation:         explanation,
		SimilarResumesCount: len(similar),
	}, nil
}

// CalculateATSScore rates a structured resume against a job description. It
// never fails: any generation or parsing error produces a degraded report
// carrying the error text.
func (s *Service) CalculateATSScore(ctx context.Context, resume map[string]any, jobDescription string) domain.ScoreReport {
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return degradedScoreReport(err)
	}

	raw, err := s.generate(ctx, scorePrompt(string(resumeJSON), jobDescription))
	if err != nil {
		s.logger.Warn("ATS score generation failed", zap.Error(err))
		return degradedScoreReport(err)
	}

	data, err := jsonext.Extract(raw)
	if err != nil {
		s.logger.Warn("ATS score response not parseable", zap.Error(err))
		return degradedScoreReport(err)
	}

	var report domain.ScoreReport
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("ATS score response not parseable", zap.Error(err))
		return degradedScoreReport(err)
	}
	if err := report.Validate(); err != nil {
		s.logger.Warn("ATS score response out of range", zap.Error(err))
		return degradedScoreReport(err)
	}

	report.Normalize()
	return report
}

// CompareBeforeAfter contrasts an original and an optimized resume. Like
// scoring, it always returns a report.
func (s *Service) CompareBeforeAfter(ctx context.Context, originalResume, optimizedResume, jobDescription string) domain.ComparisonReport {
	raw, err := s.generate(ctx, comparePrompt(originalResume, optimizedResume, jobDescription))
	if err != nil {
		s.logger.Warn("Comparison generation failed", zap.Error(err))
		return degradedComparisonReport(err)
	}

	data, err := jsonext.Extract(raw)
	if err != nil {
		s.logger.Warn("Comparison response not parseable", zap.Error(err))
		return degradedComparisonReport(err)
	}

	var report domain.ComparisonReport
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("Comparison response not parseable", zap.Error(err))
		return degradedComparisonReport(err)
	}
	if err := report.Validate(); err != nil {
		s.logger.Warn("Comparison response out of range", zap.Error(err))
		return degradedComparisonReport(err)
	}

	report.Normalize()
	return report
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

// examplesContext formats retrieved resumes as prompt examples, truncated so a
// handful of long resumes cannot crowd out the candidate's own text.
func examplesContext(similar []domain.SimilarityResult) string {
	if len(similar) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Here are examples of successful resumes for similar roles:\n\n")
	for i, r := range similar {
		fmt.Fprintf(&b, "Example %d:\n%s...\n\n", i+1, truncateRunes(r.Text, exampleTruncateRunes))
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func degradedScoreReport(err error) domain.ScoreReport {
	return domain.ScoreReport{
		ATSScore:               5,
		MissingSkills:          []string{"Error extracting skills"},
		KeywordMatches:         []string{},
		ImprovementSuggestions: []string{"Please try again"},
		SectionScores: domain.SectionScores{
			Skills:        5,
			Experience:    5,
			Education:     5,
			OverallFormat: 5,
		},
		DetailedAnalysis: fmt.Sprintf("Error analyzing resume: %v", err),
		KeywordDensity:   domain.KeywordDensity{},
		Error:            err.Error(),
	}
}

func degradedComparisonReport(err error) domain.ComparisonReport {
	return domain.ComparisonReport{
		OriginalScore:       5,
		OptimizedScore:      7,
		ScoreImprovement:    2,
		KeyImprovements:     []string{"Error analyzing improvements"},
		AddedKeywords:       []string{},
		ReformattedSections: []string{},
		BeforeAfterAnalysis: fmt.Sprintf("Error analyzing differences: %v", err),
		Error:               err.Error(),
	}
}
