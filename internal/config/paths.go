package config

import (
	"os"
	"path/filepath"
)

// DefaultGlobalPath returns the global config file location
// (env: VOXTAIL_CONFIG, default: ~/.config/voxtail/config.json).
func DefaultGlobalPath() string {
	if path := os.Getenv("VOXTAIL_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "voxtail", "config.json")
}

// DefaultSessionsDir returns the directory holding per-session override
// files (env: VOXTAIL_SESSIONS_DIR).
func DefaultSessionsDir() string {
	if dir := os.Getenv("VOXTAIL_SESSIONS_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "voxtail", "sessions")
}

// DefaultStateDir returns the directory for runtime state: checkpoints,
// PID files, and activation markers (env: VOXTAIL_STATE_DIR).
func DefaultStateDir() string {
	if dir := os.Getenv("VOXTAIL_STATE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "voxtail")
}

// DefaultWatchDir returns the transcripts directory watched by the
// monitor (env: VOXTAIL_WATCH_DIR, default: ~/.claude/projects).
func DefaultWatchDir() string {
	if dir := os.Getenv("VOXTAIL_WATCH_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}
