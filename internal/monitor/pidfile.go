package monitor

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// watchDirTag derives a short stable identifier for a watch directory,
// used to key the PID and activation files so two monitors watching
// different directories do not collide.
func watchDirTag(watchDir string) string {
	h := fnv.New32a()
	h.Write([]byte(filepath.Clean(watchDir))) //nolint:errcheck
	return fmt.Sprintf("%08x", h.Sum32())
}

// PIDFile enforces the one-monitor-per-watch-directory singleton. The
// file holds the monitor's process id; a stale file whose process is
// gone is cleaned up on the next check.
type PIDFile struct {
	path string
}

// NewPIDFile returns the PIDFile for watchDir under stateDir.
func NewPIDFile(stateDir, watchDir string) *PIDFile {
	return &PIDFile{
		path: filepath.Join(stateDir, "monitor_"+watchDirTag(watchDir)+".pid"),
	}
}

// Path returns the PID file location.
func (p *PIDFile) Path() string { return p.path }

// IsRunning reports whether a live monitor owns this watch directory,
// and its pid. A PID file pointing at a dead process is removed.
func (p *PIDFile) IsRunning() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		os.Remove(p.path) //nolint:errcheck
		return 0, false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		os.Remove(p.path) //nolint:errcheck
		return 0, false
	}
	// Signal 0 probes for existence without delivering anything.
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		os.Remove(p.path) //nolint:errcheck
		return 0, false
	}

	return pid, true
}

// Write records the current process as the owning monitor.
func (p *PIDFile) Write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Remove deletes the PID file. Removing an absent file is not an error.
func (p *PIDFile) Remove() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}
