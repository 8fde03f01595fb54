package optimize

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/domain"
)

// Generator produces text from a prompt via an LLM provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever finds stored documents similar to a query text.
type Retriever interface {
	Similar(ctx context.Context, query string, k int) ([]domain.SimilarityResult, error)
}
