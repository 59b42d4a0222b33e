// Package embedding provides text embedding via a remote OpenAI-compatible
// service, plus a deterministic mock for tests and offline use.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrService is returned when the external embedding call fails.
	ErrService = errors.New("embedding service error")
	// ErrDimensionMismatch is returned when the service produces vectors of a
	// different dimension than configured.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
