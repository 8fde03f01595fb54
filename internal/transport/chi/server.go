// Package chi exposes the resume services over an HTTP JSON API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
	healthuc "github.com/resumeforge/resumeforge/internal/usecase/health"
	jobsuc "github.com/resumeforge/resumeforge/internal/usecase/jobs"
	optimizeuc "github.com/resumeforge/resumeforge/internal/usecase/optimize"
	parseuc "github.com/resumeforge/resumeforge/internal/usecase/parse"
	retrievaluc "github.com/resumeforge/resumeforge/internal/usecase/retrieval"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecase services into HTTP handlers.
type Server struct {
	retrieval     *retrievaluc.Service
	optimize      *optimizeuc.Service
	parse         *parseuc.Service
	jobs          *jobsuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retrieval *retrievaluc.Service,
	optimize *optimizeuc.Service,
	parse *parseuc.Service,
	jobs *jobsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retrieval: retrieval,
		optimize:  optimize,
		parse:     parse,
		jobs:      jobs,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, codeGenerationError),
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/documents", s.CreateDocument)
	r.Post("/search", s.SearchDocuments)
	r.Post("/enhance", s.EnhanceResume)
	r.Post("/score", s.ScoreResume)
	r.Post("/compare", s.CompareResumes)
	r.Post("/resumes/parse", s.ParseResume)
	r.Get("/jobs", s.SearchJobs)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.retrieval.AddDocument(r.Context(), req.Text, req.Metadata)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createDocumentResponse{ID: id})
}

// SearchDocuments handles POST /search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.retrieval.Similar(r.Context(), req.Query, req.K)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = searchResultItem{
			Text:     res.Text,
			Metadata: res.Metadata,
			Score:    res.Score,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: items})
}

// EnhanceResume handles POST /enhance.
func (s *Server) EnhanceResume(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.optimize.EnhanceResume(r.Context(), req.Resume, req.JobDescription)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ScoreResume handles POST /score. Generation failures surface as a degraded
// report with the error field set, never as an HTTP error.
func (s *Server) ScoreResume(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	report := s.optimize.CalculateATSScore(r.Context(), req.Resume, req.JobDescription)
	writeJSON(w, http.StatusOK, report)
}

// CompareResumes handles POST /compare.
func (s *Server) CompareResumes(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	report := s.optimize.CompareBeforeAfter(r.Context(), req.OriginalResume, req.OptimizedResume, req.JobDescription)
	writeJSON(w, http.StatusOK, report)
}

// ParseResume handles POST /resumes/parse.
func (s *Server) ParseResume(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.parse.ParseResume(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Skills:     result.Skills,
		Structured: result.Structured,
	})
}

// SearchJobs handles GET /jobs. Provider failures yield an empty list; with
// index=true each posting is also fed into the retrieval index.
func (s *Server) SearchJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	location := r.URL.Query().Get("location")

	postings, err := s.jobs.Search(r.Context(), query, location)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if shouldIndex, _ := strconv.ParseBool(r.URL.Query().Get("index")); shouldIndex {
		s.indexPostings(r, postings)
	}

	writeJSON(w, http.StatusOK, jobsResponse{Jobs: postings})
}

// indexPostings inserts job postings into the retrieval index. Failures are
// logged and skipped; search results are already in hand.
func (s *Server) indexPostings(r *http.Request, postings []domain.JobPosting) {
	for _, p := range postings {
		text := fmt.Sprintf("%s\n%s", p.Title, p.Description)
		metadata := map[string]any{
			"source": "job_search",
			"link":   p.Link,
		}
		if _, err := s.retrieval.AddDocument(r.Context(), text, metadata); err != nil {
			s.logger.Warn("Failed to index job posting",
				zap.String("title", p.Title),
				zap.Error(err),
			)
		}
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	resp := healthResponse{
		Status: string(report.Status),
		Checks: checks,
	}
	if report.HasIndexStats {
		count := report.IndexedDocs
		resp.IndexedDocuments = &count
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrEmbeddingProvider,
		domain.ErrGeneration,
		domain.ErrSearchProvider,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
