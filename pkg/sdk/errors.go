package resumeforge

import "github.com/resumeforge/resumeforge/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrEmbeddingProvider = domain.ErrEmbeddingProvider
	ErrGeneration        = domain.ErrGeneration
	ErrSearchProvider    = domain.ErrSearchProvider
	ErrVectorDimMismatch = domain.ErrVectorDimMismatch
)
