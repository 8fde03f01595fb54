package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/index"
	"github.com/resumeforge/resumeforge/internal/metrics"
	"github.com/resumeforge/resumeforge/internal/repository/doclog"
)

// Service owns the in-process vector index and the document texts behind it.
// All mutation goes through AddDocument so ids, vectors and texts never drift
// apart.
type Service struct {
	index        *index.Flat
	embedder     Embedder
	log          DocLog // nil when persistence is disabled
	defaultK     int
	embedTimeout time.Duration
	logger       *zap.Logger
}

// New creates a retrieval service. log may be nil for a purely in-memory
// session.
func New(idx *index.Flat, embedder Embedder, log DocLog, logger *zap.Logger) *Service {
	return &Service{
		index:        idx,
		embedder:     embedder,
		log:          log,
		defaultK:     2,
		embedTimeout: 30 * time.Second,
		logger:       logger,
	}
}

// WithDefaultK overrides how many neighbours Similar returns when the caller
// passes k <= 0.
func (s *Service) WithDefaultK(k int) *Service {
	if k > 0 {
		s.defaultK = k
	}
	return s
}

// WithEmbedTimeout bounds each embedding call.
func (s *Service) WithEmbedTimeout(d time.Duration) *Service {
	if d > 0 {
		s.embedTimeout = d
	}
	return s
}

// AddDocument embeds text and stores it in the index. It returns the assigned
// id, or -1 with an error. A failed embedding leaves no partial state behind.
func (s *Service) AddDocument(ctx context.Context, text string, metadata map[string]any) (int, error) {
	if strings.TrimSpace(text) == "" {
		return -1, fmt.Errorf("document text is empty: %w", domain.ErrInvalidInput)
	}

	vec, err := s.embed(ctx, text)
	if err != nil {
		return -1, err
	}

	id, err := s.index.Insert(vec, text, metadata)
	if err != nil {
		return -1, fmt.Errorf("index document: %w", err)
	}
	metrics.IndexedDocuments.Set(float64(s.index.Size()))

	if s.log != nil {
		rec := doclog.Record{ID: id, Text: text, Metadata: metadata, Vector: vec}
		if appendErr := s.log.Append(ctx, rec); appendErr != nil {
			// The document is already searchable; losing the replay record
			// only affects the next restart.
			s.logger.Warn("Failed to persist document record",
				zap.Int("doc_id", id), zap.Error(appendErr))
		}
	}

	return id, nil
}

// Similar returns the k nearest stored documents for the query text, closest
// first. Score is squared L2 distance, so lower means more similar.
func (s *Service) Similar(ctx context.Context, query string, k int) ([]domain.SimilarityResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query text is empty: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.defaultK
	}

	start := time.Now()
	defer func() {
		metrics.RetrievalSearchDuration.Observe(time.Since(start).Seconds())
	}()

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	metrics.RetrievalSearchesTotal.Inc()

	results := make([]domain.SimilarityResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SimilarityResult{
			Text:     h.Text,
			Metadata: h.Metadata,
			Score:    h.Distance,
		}
	}
	return results, nil
}

// Size reports how many documents are indexed.
func (s *Service) Size() int {
	return s.index.Size()
}

// Rehydrate replays the persisted document log into the index. It must run
// before the service starts accepting writes, on an empty index.
func (s *Service) Rehydrate(ctx context.Context) (int, error) {
	if s.log == nil {
		return 0, nil
	}

	records, err := s.log.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load document log: %w", err)
	}

	for _, rec := range records {
		id, err := s.index.Insert(rec.Vector, rec.Text, rec.Metadata)
		if err != nil {
			return 0, fmt.Errorf("replay record %d: %w", rec.ID, err)
		}
		if id != rec.ID {
			s.logger.Warn("Replayed document got a different id",
				zap.Int("stored_id", rec.ID), zap.Int("new_id", id))
		}
	}

	metrics.IndexedDocuments.Set(float64(s.index.Size()))
	return len(records), nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	result, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w: %w", domain.ErrEmbeddingProvider, err)
	}
	return result.Embedding, nil
}
