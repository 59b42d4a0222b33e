package vector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsense/docsense/internal/models"
	"github.com/docsense/docsense/pkg/utils"
)

// Store maps sessions to persisted index artifacts. Each session's index
// lives in its own directory under indexDir; no operation ever touches
// another session's storage. Mutations are serialized per session so
// concurrent builds cannot lose each other's chunks.
type Store struct {
	indexDir   string
	dimensions int
	locks      *utils.KeyedMutex
}

// NewStore creates a store rooted at indexDir for indexes of the given dimension.
func NewStore(indexDir string, dimensions int) *Store {
	return &Store{
		indexDir:   indexDir,
		dimensions: dimensions,
		locks:      utils.NewKeyedMutex(),
	}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.indexDir, sessionID, "index.bin")
}

// Build adds chunks to the session's index, creating it if absent, and
// persists the updated artifact. Zero chunks is a valid no-op returning
// (nil, nil): an upload producing no chunks yields no index.
func (s *Store) Build(sessionID string, chunks []models.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	idx, err := s.Load(sessionID)
	if errors.Is(err, ErrIndexNotFound) {
		idx, err = NewIndex(s.dimensions)
	}
	if err != nil {
		return nil, err
	}
	if err := idx.Add(chunks); err != nil {
		return nil, err
	}
	if err := idx.SaveFile(s.path(sessionID)); err != nil {
		return nil, fmt.Errorf("persist index for session %s: %w", sessionID, err)
	}
	return idx, nil
}

// Load reconstructs the session's index from its persisted artifact. Safe to
// call concurrently with Build: the artifact is replaced atomically.
func (s *Store) Load(sessionID string) (*Index, error) {
	return LoadFile(s.path(sessionID), s.dimensions)
}

// Wipe removes the session's index directory. Only that session's storage is
// affected; wiping a session that has no index is a no-op.
func (s *Store) Wipe(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("empty session id")
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return os.RemoveAll(filepath.Join(s.indexDir, sessionID))
}
