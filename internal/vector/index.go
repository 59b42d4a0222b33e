// Package vector provides the per-session vector index: in-memory
// inner-product similarity search over chunk embeddings, persisted as a
// binary artifact per session.
package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/docsense/docsense/internal/models"
)

var (
	// ErrIndexNotFound is returned when no persisted index exists for a session.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrDimensionMismatch is returned when vector dimensions disagree with the
	// index dimension fixed at construction.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index is an in-memory vector index over document chunks using brute-force
// inner product search. Embeddings are assumed normalized, so inner product
// equals cosine similarity.
type Index struct {
	dimensions int
	chunks     []models.Chunk
	mu         sync.RWMutex
}

// NewIndex creates an empty index with the given dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &Index{dimensions: dimensions}, nil
}

// Add appends chunks to the index. Every chunk's embedding must match the
// index dimension.
func (x *Index) Add(chunks []models.Chunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, ch := range chunks {
		if len(ch.Embedding) != x.dimensions {
			return fmt.Errorf("%w: chunk %s has %d, index expects %d",
				ErrDimensionMismatch, ch.ID, len(ch.Embedding), x.dimensions)
		}
	}
	for _, ch := range chunks {
		vec := make([]float32, x.dimensions)
		copy(vec, ch.Embedding)
		ch.Embedding = vec
		x.chunks = append(x.chunks, ch)
	}
	return nil
}

// Search returns the top-k chunks nearest to query, nearest first.
func (x *Index) Search(query []float32, k int) ([]models.ScoredChunk, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index expects %d",
			ErrDimensionMismatch, len(query), x.dimensions)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}
	scored := make([]models.ScoredChunk, len(x.chunks))
	for i, ch := range x.chunks {
		var dot float64
		for j := 0; j < x.dimensions; j++ {
			dot += float64(query[j] * ch.Embedding[j])
		}
		scored[i] = models.ScoredChunk{Chunk: ch, Score: dot}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Size returns the number of chunks in the index.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Dimensions returns the index dimension fixed at construction.
func (x *Index) Dimensions() int {
	return x.dimensions
}
