package resumeforge

import "context"

// Embedder converts text to vector embeddings. Required; every document
// insert and similarity query goes through it.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces text from a prompt. Required for Enhance, Score, Compare
// and ParseResume.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// JobSearcher queries an external job board. Optional; without it SearchJobs
// returns an error.
type JobSearcher interface {
	Search(ctx context.Context, query, location string) ([]JobPosting, error)
}
