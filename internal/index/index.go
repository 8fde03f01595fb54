// Package index provides an in-memory flat L2 vector index kept ordinal-aligned
// with an append-only document store. A single lock owns the pair: an insert
// commits the vector and its document together, and queries only ever observe
// committed pairs.
package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/resumeforge/resumeforge/internal/domain"
)

// Hit is a raw nearest-neighbor match. Distance is squared Euclidean: lower is
// closer.
type Hit struct {
	ID       int
	Text     string
	Metadata map[string]any
	Distance float64
}

// Flat is a brute-force L2 index over fixed-dimension vectors. Suited to the
// session-scale corpora this system handles (hundreds of documents, not
// millions); every query scans all vectors.
type Flat struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	docs    []domain.Document
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Insert appends a vector and its document atomically and returns the new
// ordinal id (0-based, equal to the prior size). A dimension mismatch leaves
// the index untouched.
func (f *Flat) Insert(vec []float32, text string, metadata map[string]any) (int, error) {
	if len(vec) != f.dim {
		return -1, fmt.Errorf(
			"got %d dimensions, want %d: %w", len(vec), f.dim, domain.ErrVectorDimMismatch,
		)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := len(f.docs)
	f.vectors = append(f.vectors, vec)
	f.docs = append(f.docs, domain.Document{ID: id, Text: text, Metadata: metadata})
	return id, nil
}

// Search returns up to k nearest neighbors ordered by ascending squared L2
// distance, equal distances ordered by lower id. k is clamped to the current
// size; k <= 0 or an empty index yields an empty slice.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf(
			"query has %d dimensions, want %d: %w", len(query), f.dim, domain.ErrVectorDimMismatch,
		)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.docs)
	if k > n {
		k = n
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, n)
	for i, vec := range f.vectors {
		hits[i] = Hit{
			ID:       f.docs[i].ID,
			Text:     f.docs[i].Text,
			Metadata: f.docs[i].Metadata,
			Distance: sqL2(query, vec),
		}
	}

	// Stable sort preserves insertion order among equal distances, which keeps
	// query results deterministic.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	return hits[:k], nil
}

// Size returns the number of stored documents. The vector count is identical
// by construction.
func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.docs)
}

func sqL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
