package optimize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
)

// mockGenerator replays queued responses and records prompts.
type mockGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("mock: no response queued")
	}
	out := m.responses[0]
	m.responses = m.responses[1:]
	return out, nil
}

type mockRetriever struct {
	results []domain.SimilarityResult
	err     error
}

func (m *mockRetriever) Similar(context.Context, string, int) ([]domain.SimilarityResult, error) {
	return m.results, m.err
}

func newTestService(t *testing.T, r Retriever, g Generator) *Service {
	t.Helper()
	return New(r, g, zap.NewNop())
}

// --- EnhanceResume ---

func TestEnhanceResume_Success(t *testing.T) {
	gen := &mockGenerator{responses: []string{"ENHANCED", "EXPLANATION"}}
	ret := &mockRetriever{results: []domain.SimilarityResult{
		{Text: "senior python engineer resume"},
		{Text: "staff backend engineer resume"},
	}}
	svc := newTestService(t, ret, gen)

	result, err := svc.EnhanceResume(context.Background(), "my resume", "python job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EnhancedResume != "ENHANCED" {
		t.Errorf("unexpected enhanced resume: %q", result.EnhancedResume)
	}
	if result.Explanation != "EXPLANATION" {
		t.Errorf("unexpected explanation: %q", result.Explanation)
	}
	if result.SimilarResumesCount != 2 {
		t.Errorf("expected 2 similar resumes, got %d", result.SimilarResumesCount)
	}

	if len(gen.prompts) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Example 1:") || !strings.Contains(gen.prompts[0], "Example 2:") {
		t.Errorf("enhancement prompt missing examples:\n%s", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[1], "ENHANCED") {
		t.Errorf("explanation prompt missing enhanced resume:\n%s", gen.prompts[1])
	}
}

func TestEnhanceResume_EmptyIndexStillWorks(t *testing.T) {
	gen := &mockGenerator{responses: []string{"ENHANCED", "EXPLANATION"}}
	svc := newTestService(t, &mockRetriever{}, gen)

	result, err := svc.EnhanceResume(context.Background(), "my resume", "python job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SimilarResumesCount != 0 {
		t.Errorf("expected 0 similar resumes, got %d", result.SimilarResumesCount)
	}
	if strings.Contains(gen.prompts[0], "examples of successful resumes") {
		t.Errorf("prompt must not carry an examples block when none were found:\n%s", gen.prompts[0])
	}
}

func TestEnhanceResume_TruncatesLongExamples(t *testing.T) {
	long := strings.Repeat("x", 800)
	gen := &mockGenerator{responses: []string{"ENHANCED", "EXPLANATION"}}
	ret := &mockRetriever{results: []domain.SimilarityResult{{Text: long}}}
	svc := newTestService(t, ret, gen)

	if _, err := svc.EnhanceResume(context.Background(), "resume", "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Repeat("x", 500) + "..."
	if !strings.Contains(gen.prompts[0], want) {
		t.Error("expected example truncated to 500 chars with ellipsis")
	}
	if strings.Contains(gen.prompts[0], strings.Repeat("x", 501)) {
		t.Error("example exceeded the 500 char budget")
	}
}

func TestEnhanceResume_BlankInput(t *testing.T) {
	svc := newTestService(t, &mockRetriever{}, &mockGenerator{})

	if _, err := svc.EnhanceResume(context.Background(), "  ", "job"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank resume, got %v", err)
	}
	if _, err := svc.EnhanceResume(context.Background(), "resume", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank job description, got %v", err)
	}
}

func TestEnhanceResume_GenerationError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := newTestService(t, &mockRetriever{}, gen)

	_, err := svc.EnhanceResume(context.Background(), "resume", "job")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestEnhanceResume_ExplanationError(t *testing.T) {
	// First call succeeds, second has nothing queued and fails.
	gen := &mockGenerator{responses: []string{"ENHANCED"}}
	svc := newTestService(t, &mockRetriever{}, gen)

	_, err := svc.EnhanceResume(context.Background(), "resume", "job")
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestEnhanceResume_RetrieverError(t *testing.T) {
	ret := &mockRetriever{err: errors.New("embedder down")}
	svc := newTestService(t, ret, &mockGenerator{})

	if _, err := svc.EnhanceResume(context.Background(), "resume", "job"); err == nil {
		t.Fatal("expected error")
	}
}

// --- CalculateATSScore ---

const validScoreJSON = "```json\n" + `{
  "ats_score": 8,
  "missing_skills": ["kubernetes"],
  "keyword_matches": ["python", "api"],
  "improvement_suggestions": ["add metrics to bullet points"],
  "section_scores": {"skills": 8, "experience": 7, "education": 9, "overall_format": 8},
  "detailed_analysis": "Strong technical match.",
  "keyword_density": {"resume_keyword_count": 14, "job_description_keyword_count": 20, "match_percentage": 70}
}` + "\n```"

func TestCalculateATSScore_Success(t *testing.T) {
	gen := &mockGenerator{responses: []string{validScoreJSON}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CalculateATSScore(context.Background(), map[string]any{"summary": "dev"}, "python job")
	if report.Error != "" {
		t.Fatalf("unexpected degraded report: %s", report.Error)
	}
	if report.ATSScore != 8 {
		t.Errorf("expected ats_score 8, got %d", report.ATSScore)
	}
	if report.SectionScores.Education != 9 {
		t.Errorf("expected education 9, got %d", report.SectionScores.Education)
	}
	if report.KeywordDensity.MatchPercentage != 70 {
		t.Errorf("expected match_percentage 70, got %f", report.KeywordDensity.MatchPercentage)
	}

	// The prompt carries the resume as indented JSON.
	if !strings.Contains(gen.prompts[0], `"summary": "dev"`) {
		t.Errorf("prompt missing resume JSON:\n%s", gen.prompts[0])
	}
}

func TestCalculateATSScore_GenerationErrorDegrades(t *testing.T) {
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CalculateATSScore(context.Background(), map[string]any{}, "job")
	assertDegradedScoreReport(t, report)
	if !strings.Contains(report.Error, "provider down") {
		t.Errorf("expected cause in error field, got %q", report.Error)
	}
}

func TestCalculateATSScore_UnparseableDegrades(t *testing.T) {
	gen := &mockGenerator{responses: []string{"I am sorry, I cannot score this resume."}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CalculateATSScore(context.Background(), map[string]any{}, "job")
	assertDegradedScoreReport(t, report)
}

func TestCalculateATSScore_OutOfRangeDegrades(t *testing.T) {
	bad := `{"ats_score": 15, "section_scores": {"skills": 5, "experience": 5, "education": 5, "overall_format": 5}}`
	gen := &mockGenerator{responses: []string{bad}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CalculateATSScore(context.Background(), map[string]any{}, "job")
	assertDegradedScoreReport(t, report)
}

func TestCalculateATSScore_NormalizesNilSlices(t *testing.T) {
	minimal := `{
		"ats_score": 6,
		"section_scores": {"skills": 6, "experience": 6, "education": 6, "overall_format": 6},
		"detailed_analysis": "ok"
	}`
	gen := &mockGenerator{responses: []string{minimal}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CalculateATSScore(context.Background(), map[string]any{}, "job")
	if report.Error != "" {
		t.Fatalf("unexpected degraded report: %s", report.Error)
	}
	if report.MissingSkills == nil || report.KeywordMatches == nil || report.ImprovementSuggestions == nil {
		t.Error("expected nil slices normalized to empty")
	}
}

func assertDegradedScoreReport(t *testing.T, report domain.ScoreReport) {
	t.Helper()
	if report.ATSScore != 5 {
		t.Errorf("expected fallback ats_score 5, got %d", report.ATSScore)
	}
	if len(report.MissingSkills) != 1 || report.MissingSkills[0] != "Error extracting skills" {
		t.Errorf("unexpected missing_skills: %v", report.MissingSkills)
	}
	if len(report.ImprovementSuggestions) != 1 || report.ImprovementSuggestions[0] != "Please try again" {
		t.Errorf("unexpected improvement_suggestions: %v", report.ImprovementSuggestions)
	}
	ss := report.SectionScores
	if ss.Skills != 5 || ss.Experience != 5 || ss.Education != 5 || ss.OverallFormat != 5 {
		t.Errorf("unexpected section_scores: %+v", ss)
	}
	if !strings.HasPrefix(report.DetailedAnalysis, "Error analyzing resume: ") {
		t.Errorf("unexpected detailed_analysis: %q", report.DetailedAnalysis)
	}
	if report.KeywordDensity != (domain.KeywordDensity{}) {
		t.Errorf("expected zero keyword_density, got %+v", report.KeywordDensity)
	}
	if report.Error == "" {
		t.Error("degraded report must carry the error")
	}
}

// --- CompareBeforeAfter ---

func TestCompareBeforeAfter_Success(t *testing.T) {
	raw := `{
		"original_score": 5,
		"optimized_score": 8,
		"score_improvement": 3,
		"key_improvements": ["quantified achievements"],
		"added_keywords": ["python"],
		"reformatted_sections": ["experience"],
		"before_after_analysis": "Much stronger keyword alignment."
	}`
	gen := &mockGenerator{responses: []string{raw}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CompareBeforeAfter(context.Background(), "old", "new", "job")
	if report.Error != "" {
		t.Fatalf("unexpected degraded report: %s", report.Error)
	}
	if report.OriginalScore != 5 || report.OptimizedScore != 8 || report.ScoreImprovement != 3 {
		t.Errorf("unexpected scores: %+v", report)
	}
	if !strings.Contains(gen.prompts[0], "old") || !strings.Contains(gen.prompts[0], "new") {
		t.Errorf("prompt missing resumes:\n%s", gen.prompts[0])
	}
}

func TestCompareBeforeAfter_GenerationErrorDegrades(t *testing.T) {
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CompareBeforeAfter(context.Background(), "old", "new", "job")
	if report.OriginalScore != 5 || report.OptimizedScore != 7 || report.ScoreImprovement != 2 {
		t.Errorf("unexpected fallback scores: %+v", report)
	}
	if len(report.KeyImprovements) != 1 || report.KeyImprovements[0] != "Error analyzing improvements" {
		t.Errorf("unexpected key_improvements: %v", report.KeyImprovements)
	}
	if len(report.AddedKeywords) != 0 || len(report.ReformattedSections) != 0 {
		t.Errorf("expected empty keyword lists, got %+v", report)
	}
	if !strings.HasPrefix(report.BeforeAfterAnalysis, "Error analyzing differences: ") {
		t.Errorf("unexpected before_after_analysis: %q", report.BeforeAfterAnalysis)
	}
	if report.Error == "" {
		t.Error("degraded report must carry the error")
	}
}

func TestCompareBeforeAfter_UnparseableDegrades(t *testing.T) {
	gen := &mockGenerator{responses: []string{"no json here"}}
	svc := newTestService(t, &mockRetriever{}, gen)

	report := svc.CompareBeforeAfter(context.Background(), "old", "new", "job")
	if report.Error == "" {
		t.Fatal("expected degraded report")
	}
	if report.OptimizedScore != 7 {
		t.Errorf("expected fallback optimized_score 7, got %d", report.OptimizedScore)
	}
}
