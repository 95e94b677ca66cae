package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ActivationFile is the cross-process "speaking is on" marker for a
// watch directory. Its content is the timestamp speaking was enabled
// at: messages ordered at or before that instant stay suppressed, so
// turning the monitor on never replays earlier conversation.
type ActivationFile struct {
	path string
}

// NewActivationFile returns the ActivationFile for watchDir under
// stateDir.
func NewActivationFile(stateDir, watchDir string) *ActivationFile {
	return &ActivationFile{
		path: filepath.Join(stateDir, "enable_"+watchDirTag(watchDir)+".timestamp"),
	}
}

// Path returns the activation file location.
func (a *ActivationFile) Path() string { return a.path }

// Enable marks speaking as active from now on.
func (a *ActivationFile) Enable() error {
	return a.EnableAt(time.Now().UTC())
}

// EnableAt marks speaking as active for messages after t.
func (a *ActivationFile) EnableAt(t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	key := t.UTC().Format(time.RFC3339Nano)
	if err := os.WriteFile(a.path, []byte(key+"\n"), 0o644); err != nil {
		return fmt.Errorf("write activation file: %w", err)
	}
	return nil
}

// Disable removes the marker; the monitor stops speaking but keeps
// tailing so no position is lost.
func (a *ActivationFile) Disable() error {
	err := os.Remove(a.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove activation file: %w", err)
	}
	return nil
}

// Read returns the activation timestamp key and whether speaking is
// currently active.
func (a *ActivationFile) Read() (string, bool) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
