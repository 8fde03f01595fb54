package domain

// Document is an indexed text record. IDs are ordinals assigned at insertion
// time; documents are append-only and never mutated after creation.
type Document struct {
	ID       int
	Text     string
	Metadata map[string]any
}

// SimilarityResult is a single retrieval hit. Score is the raw squared L2
// distance in embedding space: lower means more similar, and values are not
// normalized to [0,1].
type SimilarityResult struct {
	Text     string
	Metadata map[string]any
	Score    float64
}

// JobPosting is one result from the job search provider.
type JobPosting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}
