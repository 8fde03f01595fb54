package chi

import "github.com/resumeforge/resumeforge/internal/domain"

// errorCode is a machine-readable error discriminator carried in error payloads.
type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeInvalidInput           errorCode = "invalid_input"
	codeUnauthorized           errorCode = "unauthorized"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeGenerationError        errorCode = "generation_error"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type createDocumentRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type createDocumentResponse struct {
	ID int `json:"id"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type searchResultItem struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
}

type enhanceRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

type scoreRequest struct {
	Resume         map[string]any `json:"resume"`
	JobDescription string         `json:"job_description"`
}

type compareRequest struct {
	OriginalResume  string `json:"original_resume"`
	OptimizedResume string `json:"optimized_resume"`
	JobDescription  string `json:"job_description"`
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Skills     []string                `json:"skills"`
	Structured domain.StructuredResume `json:"structured"`
}

type jobsResponse struct {
	Jobs []domain.JobPosting `json:"jobs"`
}

type healthResponse struct {
	Status           string            `json:"status"`
	Checks           map[string]string `json:"checks"`
	IndexedDocuments *int              `json:"indexed_documents,omitempty"`
}
