package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/index"
	healthuc "github.com/resumeforge/resumeforge/internal/usecase/health"
	jobsuc "github.com/resumeforge/resumeforge/internal/usecase/jobs"
	optimizeuc "github.com/resumeforge/resumeforge/internal/usecase/optimize"
	parseuc "github.com/resumeforge/resumeforge/internal/usecase/parse"
	retrievaluc "github.com/resumeforge/resumeforge/internal/usecase/retrieval"
)

// stubEmbedder produces a deterministic vector per input so retrieval ordering
// is stable across tests.
type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	vec := make([]float32, domain.EmbeddingDimensions)
	for i, r := range text {
		vec[i%domain.EmbeddingDimensions] += float32(r)
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: len(text)}, nil
}

// stubGenerator replays canned responses in order.
type stubGenerator struct {
	responses []string
	err       error
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", errors.New("no canned response")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

type stubSearcher struct {
	postings []domain.JobPosting
	err      error
}

func (s *stubSearcher) Search(_ context.Context, _, _ string) ([]domain.JobPosting, error) {
	return s.postings, s.err
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

type serverFixture struct {
	handler   http.Handler
	retrieval *retrievaluc.Service
	generator *stubGenerator
	searcher  *stubSearcher
	pinger    *stubPinger
	embedder  *stubEmbedder
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	logger := zap.NewNop()
	embedder := &stubEmbedder{}
	generator := &stubGenerator{}
	searcher := &stubSearcher{}
	pinger := &stubPinger{}

	retrieval := retrievaluc.New(index.NewFlat(domain.EmbeddingDimensions), embedder, nil, logger)
	optimize := optimizeuc.New(retrieval, generator, logger)
	parse := parseuc.New(generator, logger)
	jobs := jobsuc.New(searcher, logger)
	health := healthuc.New(pinger, nil, nil, retrieval)

	server := NewServer(retrieval, optimize, parse, jobs, health, logger)
	r := chirouter.NewRouter()
	server.Routes(r)

	return &serverFixture{
		handler:   r,
		retrieval: retrieval,
		generator: generator,
		searcher:  searcher,
		pinger:    pinger,
		embedder:  embedder,
	}
}

func (f *serverFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return v
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, code errorCode) {
	t.Helper()
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("error code: got %s, want %s", resp.Code, code)
	}
}

func TestCreateDocument(t *testing.T) {
	f := newServerFixture(t)

	rr := f.do(t, "POST", "/documents", createDocumentRequest{
		Text:     "Senior Go engineer with 10 years of experience",
		Metadata: map[string]any{"role": "backend"},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusCreated)
	}
	resp := decodeBody[createDocumentResponse](t, rr)
	if resp.ID != 0 {
		t.Errorf("first document id: got %d, want 0", resp.ID)
	}
}

func TestCreateDocument_BlankText(t *testing.T) {
	f := newServerFixture(t)

	rr := f.do(t, "POST", "/documents", createDocumentRequest{Text: "   "})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	assertErrorCode(t, rr, codeInvalidInput)
}

func TestCreateDocument_InvalidBody(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest("POST", "/documents", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	assertErrorCode(t, rr, codeBadRequest)
}

func TestSearchDocuments(t *testing.T) {
	f := newServerFixture(t)

	for _, text := range []string{"golang backend engineer", "pastry chef"} {
		if rr := f.do(t, "POST", "/documents", createDocumentRequest{Text: text}); rr.Code != http.StatusCreated {
			t.Fatalf("seed document: status %d", rr.Code)
		}
	}

	rr := f.do(t, "POST", "/search", searchRequest{Query: "golang backend engineer", K: 1})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[searchResponse](t, rr)
	if len(resp.Results) != 1 {
		t.Fatalf("results: got %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Text != "golang backend engineer" {
		t.Errorf("nearest text: got %q", resp.Results[0].Text)
	}
	if resp.Results[0].Score != 0 {
		t.Errorf("exact match score: got %f, want 0", resp.Results[0].Score)
	}
}

func TestSearchDocuments_EmbedderFailure(t *testing.T) {
	f := newServerFixture(t)
	f.embedder.err = errors.New("provider down")

	rr := f.do(t, "POST", "/search", searchRequest{Query: "anything"})

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
	assertErrorCode(t, rr, codeEmbeddingProviderError)
}

func TestEnhanceResume(t *testing.T) {
	f := newServerFixture(t)
	f.generator.responses = []string{"ENHANCED RESUME TEXT", "Reworded achievements with metrics."}

	rr := f.do(t, "POST", "/enhance", enhanceRequest{
		Resume:         "plain resume",
		JobDescription: "golang role",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[domain.EnhancementResult](t, rr)
	if resp.EnhancedResume != "ENHANCED RESUME TEXT" {
		t.Errorf("enhanced resume: got %q", resp.EnhancedResume)
	}
	if resp.Explanation != "Reworded achievements with metrics." {
		t.Errorf("explanation: got %q", resp.Explanation)
	}
}

func TestEnhanceResume_GenerationFailure(t *testing.T) {
	f := newServerFixture(t)
	f.generator.err = errors.New("model overloaded")

	rr := f.do(t, "POST", "/enhance", enhanceRequest{
		Resume:         "plain resume",
		JobDescription: "golang role",
	})

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
	assertErrorCode(t, rr, codeGenerationError)
}

func TestScoreResume_DegradedOn200(t *testing.T) {
	f := newServerFixture(t)
	f.generator.err = errors.New("model overloaded")

	rr := f.do(t, "POST", "/score", scoreRequest{
		Resume:         map[string]any{"summary": "go dev"},
		JobDescription: "golang role",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("degraded report status: got %d, want %d", rr.Code, http.StatusOK)
	}
	report := decodeBody[domain.ScoreReport](t, rr)
	if report.ATSScore != 5 {
		t.Errorf("degraded ats_score: got %d, want 5", report.ATSScore)
	}
	if report.Error == "" {
		t.Error("degraded report must carry error field")
	}
}

func TestCompareResumes(t *testing.T) {
	f := newServerFixture(t)
	f.generator.responses = []string{`{
		"original_score": 4,
		"optimized_score": 8,
		"score_improvement": 4,
		"key_improvements": ["quantified impact"],
		"added_keywords": ["golang"],
		"reformatted_sections": ["experience"],
		"before_after_analysis": "Much stronger alignment."
	}`}

	rr := f.do(t, "POST", "/compare", compareRequest{
		OriginalResume:  "old",
		OptimizedResume: "new",
		JobDescription:  "golang role",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	report := decodeBody[domain.ComparisonReport](t, rr)
	if report.OriginalScore != 4 || report.OptimizedScore != 8 {
		t.Errorf("scores: got %d/%d, want 4/8", report.OriginalScore, report.OptimizedScore)
	}
}

func TestParseResume(t *testing.T) {
	f := newServerFixture(t)
	f.generator.responses = []string{
		"Go, Kubernetes\nPostgreSQL",
		`{"summary": "Backend engineer", "skills": ["Go"], "experience": [], "education": []}`,
	}

	rr := f.do(t, "POST", "/resumes/parse", parseRequest{Text: "Backend engineer. Go, Kubernetes, PostgreSQL."})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[parseResponse](t, rr)
	if len(resp.Skills) != 3 {
		t.Errorf("skills: got %v, want 3 entries", resp.Skills)
	}
	if resp.Structured.Summary != "Backend engineer" {
		t.Errorf("summary: got %q", resp.Structured.Summary)
	}
}

func TestParseResume_BlankText(t *testing.T) {
	f := newServerFixture(t)

	rr := f.do(t, "POST", "/resumes/parse", parseRequest{Text: ""})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	assertErrorCode(t, rr, codeInvalidInput)
}

func TestSearchJobs(t *testing.T) {
	f := newServerFixture(t)
	f.searcher.postings = []domain.JobPosting{
		{Title: "Go Developer", Description: "Build services", Link: "https://example.com/1"},
	}

	rr := f.do(t, "GET", "/jobs?query=golang&location=Berlin", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[jobsResponse](t, rr)
	if len(resp.Jobs) != 1 || resp.Jobs[0].Title != "Go Developer" {
		t.Errorf("unexpected jobs payload: %+v", resp.Jobs)
	}
	if f.retrieval.Size() != 0 {
		t.Errorf("postings indexed without index=true: size %d", f.retrieval.Size())
	}
}

func TestSearchJobs_IndexesPostings(t *testing.T) {
	f := newServerFixture(t)
	f.searcher.postings = []domain.JobPosting{
		{Title: "Go Developer", Description: "Build services", Link: "https://example.com/1"},
		{Title: "SRE", Description: "Run services", Link: "https://example.com/2"},
	}

	rr := f.do(t, "GET", "/jobs?query=golang&location=Berlin&index=true", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if f.retrieval.Size() != 2 {
		t.Errorf("indexed postings: got %d, want 2", f.retrieval.Size())
	}
}

func TestSearchJobs_ProviderFailure_EmptyList(t *testing.T) {
	f := newServerFixture(t)
	f.searcher.err = fmt.Errorf("%w: connection refused", domain.ErrSearchProvider)

	rr := f.do(t, "GET", "/jobs?query=golang", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[jobsResponse](t, rr)
	if resp.Jobs == nil || len(resp.Jobs) != 0 {
		t.Errorf("expected empty list, got %+v", resp.Jobs)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newServerFixture(t)

	if rr := f.do(t, "POST", "/documents", createDocumentRequest{Text: "doc"}); rr.Code != http.StatusCreated {
		t.Fatalf("seed document: status %d", rr.Code)
	}

	rr := f.do(t, "GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "ok" {
		t.Errorf("status field: got %q, want ok", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database check: got %q", resp.Checks["database"])
	}
	if resp.IndexedDocuments == nil || *resp.IndexedDocuments != 1 {
		t.Errorf("indexed_documents: got %v, want 1", resp.IndexedDocuments)
	}
}

func TestHealthCheck_DegradedOn503(t *testing.T) {
	f := newServerFixture(t)
	f.pinger.err = errors.New("connection refused")

	rr := f.do(t, "GET", "/health", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "degraded" {
		t.Errorf("status field: got %q, want degraded", resp.Status)
	}
}
