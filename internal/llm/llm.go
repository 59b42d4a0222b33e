// Package llm provides the chat completion client used for query
// reformulation and answer synthesis.
package llm

import (
	"context"

	"github.com/docsense/docsense/internal/models"
)

// ChatModel generates a completion from a system instruction, prior
// conversation turns, and the latest user input.
type ChatModel interface {
	Complete(ctx context.Context, system string, history []models.Message, user string) (string, error)
}

// ModelFunc adapts a function to the ChatModel interface.
type ModelFunc func(ctx context.Context, system string, history []models.Message, user string) (string, error)

// Complete calls f.
func (f ModelFunc) Complete(ctx context.Context, system string, history []models.Message, user string) (string, error) {
	return f(ctx, system, history, user)
}
