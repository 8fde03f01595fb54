package domain

import "context"

// Generator is the generation client contract. Responses are raw text: any
// structure (JSON) is the caller's parsing responsibility, and the provider
// may wrap payloads in commentary or code fences.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// JobSearcher is the job search provider contract. Empty results are valid.
type JobSearcher interface {
	Search(ctx context.Context, query, location string) ([]JobPosting, error)
}
