package retrieval

import (
	"context"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/repository/doclog"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// DocLog persists indexed documents for startup replay.
type DocLog interface {
	Append(ctx context.Context, rec doclog.Record) error
	Load(ctx context.Context) ([]doclog.Record, error)
}
