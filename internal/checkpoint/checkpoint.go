// Package checkpoint persists the last spoken message timestamp per
// session, so a restarted watcher resumes after the last committed
// message instead of re-speaking history.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps one checkpoint file per session under a state directory.
// The file content is the last-spoken ordering key as a plain string.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created
// lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the last-spoken key for the session, or an empty string
// when no checkpoint exists yet.
func (s *Store) Load(sessionID string) (string, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read checkpoint: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save overwrites the session's checkpoint with key. The write completes
// before Save returns; a message counts as committed only once its key
// is durable here.
func (s *Store) Save(sessionID, key string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(s.path(sessionID), []byte(key+"\n"), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Clear removes the session's checkpoint. Removing a checkpoint that
// does not exist is not an error.
func (s *Store) Clear(sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".checkpoint")
}
