package domain

import "errors"

var (
	// ErrInvalidInput signals rejected caller input (e.g. blank document text).
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGeneration signals a generation provider failure or an unparseable
	// structured response.
	ErrGeneration = errors.New("generation error")
	// ErrSearchProvider signals a job search provider failure. Callers treat it
	// as an empty result, never as fatal.
	ErrSearchProvider = errors.New("job search provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
