// Package session manages the lifecycle of chat sessions: issuing tokens,
// validating them, and resetting per-session state.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/models"
	"github.com/docsense/docsense/internal/vector"
)

// ErrNoActiveSession is returned when a request carries no session token.
var ErrNoActiveSession = errors.New("no active session")

// Manager creates and validates sessions.
type Manager struct {
	store   chatstore.Store
	vectors *vector.Store
	logger  *zap.Logger
}

// NewManager creates a session manager.
func NewManager(store chatstore.Store, vectors *vector.Store, logger *zap.Logger) *Manager {
	return &Manager{store: store, vectors: vectors, logger: logger}
}

// Create issues a fresh session: a new unguessable token, a session row, and
// a clean slate for the session's index. Existing sessions are unaffected.
func (m *Manager) Create(ctx context.Context) (models.Session, error) {
	token := uuid.NewString()
	sess := models.Session{
		ID:             token,
		CollectionName: "docs-" + token[:8],
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	if err := m.vectors.Wipe(token); err != nil {
		return models.Session{}, fmt.Errorf("reset session index: %w", err)
	}
	m.logger.Info("session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// Validate checks that sessionID names a live session. An empty id yields
// ErrNoActiveSession; an unknown id yields chatstore.ErrSessionNotFound.
func (m *Manager) Validate(ctx context.Context, sessionID string) (models.Session, error) {
	if sessionID == "" {
		return models.Session{}, ErrNoActiveSession
	}
	return m.store.GetSession(ctx, sessionID)
}
