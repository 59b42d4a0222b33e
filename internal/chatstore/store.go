// Package chatstore persists chat sessions and their message history.
package chatstore

import (
	"context"
	"errors"

	"github.com/docsense/docsense/internal/models"
)

// ErrSessionNotFound is returned when a session id has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions and conversation turns.
type Store interface {
	// CreateSession inserts a new session row.
	CreateSession(ctx context.Context, session models.Session) error
	// GetSession fetches a session by id, or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (models.Session, error)
	// AppendExchange writes one human message and its assistant reply in a
	// single transaction. Either both messages persist or neither does.
	AppendExchange(ctx context.Context, sessionID string, human, assistant models.Message) error
	// History returns the session's messages in chronological order.
	History(ctx context.Context, sessionID string) ([]models.Message, error)
	// ClearHistory deletes all messages for a session, keeping the session row.
	ClearHistory(ctx context.Context, sessionID string) error
	// Close releases the underlying storage.
	Close() error
}
