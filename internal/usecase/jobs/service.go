// Package jobs wraps the external job search provider. Search failures are
// soft: the caller gets an empty list and the error is logged, so a provider
// outage never breaks the rest of the assistant.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
)

// Searcher queries an external job posting provider.
type Searcher interface {
	Search(ctx context.Context, query, location string) ([]domain.JobPosting, error)
}

// Service finds job postings for a search query.
type Service struct {
	searcher      Searcher
	searchTimeout time.Duration
	logger        *zap.Logger
}

// New creates a job search service.
func New(searcher Searcher, logger *zap.Logger) *Service {
	return &Service{
		searcher:      searcher,
		searchTimeout: 15 * time.Second,
		logger:        logger,
	}
}

// WithSearchTimeout bounds each provider call.
func (s *Service) WithSearchTimeout(d time.Duration) *Service {
	if d > 0 {
		s.searchTimeout = d
	}
	return s
}

// Search returns job postings for the query. A provider failure yields an
// empty list, not an error.
func (s *Service) Search(ctx context.Context, query, location string) ([]domain.JobPosting, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty: %w", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	postings, err := s.searcher.Search(ctx, query, location)
	if err != nil {
		s.logger.Warn("Job search failed",
			zap.String("query", query), zap.String("location", location), zap.Error(err))
		return []domain.JobPosting{}, nil
	}
	if postings == nil {
		postings = []domain.JobPosting{}
	}
	return postings, nil
}
