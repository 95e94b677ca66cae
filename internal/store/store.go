// Package store provides transcript discovery and search under the
// watch directory.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voxtail/internal/transcript"
)

var errStop = errors.New("stop iteration")

// Session summarizes one transcript file for listing.
type Session struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	ModifiedAt    time.Time `json:"modified_at"`
	MessageCount  int       `json:"message_count"`
	LastTimestamp string    `json:"last_timestamp,omitempty"`
	LastText      string    `json:"last_text,omitempty"`
}

// ListOptions controls how transcripts are enumerated.
type ListOptions struct {
	Root       string
	Limit      int
	MaxSnippet int
}

// ListResult contains sessions and non-fatal warnings.
type ListResult struct {
	Sessions []Session
	Warnings []error
}

// ListSessions enumerates transcript files under Root, most recently
// modified first. Unreadable files become warnings, not failures.
func ListSessions(opts ListOptions) (ListResult, error) {
	root := opts.Root
	if root == "" {
		return ListResult{}, errors.New("root directory is required")
	}

	var result ListResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("stat %s: %w", path, err))
			return nil
		}

		messages, err := transcript.ExtractAll(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("read %s: %w", path, err))
			return nil
		}

		session := Session{
			ID:           strings.TrimSuffix(d.Name(), ".jsonl"),
			Path:         path,
			ModifiedAt:   info.ModTime(),
			MessageCount: len(messages),
		}
		if len(messages) > 0 {
			last := messages[len(messages)-1]
			session.LastTimestamp = last.Timestamp
			session.LastText = last.Text
			if opts.MaxSnippet > 0 {
				session.LastText = truncate(session.LastText, opts.MaxSnippet)
			}
		}

		result.Sessions = append(result.Sessions, session)
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].ModifiedAt.After(result.Sessions[j].ModifiedAt)
	})

	if opts.Limit > 0 && len(result.Sessions) > opts.Limit {
		result.Sessions = result.Sessions[:opts.Limit]
	}

	return result, nil
}

// FindSessionPath locates the transcript whose session id (base name
// without extension) matches id.
func FindSessionPath(root, id string) (string, error) {
	if root == "" {
		return "", errors.New("root directory is required")
	}
	if id == "" {
		return "", errors.New("session id is required")
	}

	var matched string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if strings.TrimSuffix(d.Name(), ".jsonl") == id {
			matched = path
			return errStop
		}
		return nil
	})

	if matched != "" {
		return matched, nil
	}
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return "", fmt.Errorf("session id %s not found under %s", id, root)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
