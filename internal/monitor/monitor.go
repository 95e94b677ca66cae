// Package monitor watches a directory of transcript files and speaks
// newly appended assistant messages. It bridges filesystem change
// notifications to the tail/extract pipeline, enforcing per-session
// ordering, at-most-once delivery within a run, and durable
// cross-restart position tracking.
package monitor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"voxtail/internal/checkpoint"
	"voxtail/internal/config"
	"voxtail/internal/tail"
	"voxtail/internal/transcript"
)

// SpeakFunc hands one message off for synthesis and playback. It blocks
// until the message has been spoken (or failed); the monitor does not
// attempt the next message before it returns.
type SpeakFunc func(ctx context.Context, cfg config.Config, sessionID, text string) error

// Options configures a Monitor.
type Options struct {
	// WatchDir is the transcripts directory, watched recursively.
	WatchDir string
	// StateDir holds checkpoints and the activation marker.
	StateDir string
	// ResolveConfig returns the effective configuration for a session.
	// Defaults to config.Default for every session.
	ResolveConfig func(sessionID string) config.Config
	// Speak delivers one message. Required.
	Speak SpeakFunc
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Monitor is the watch coordinator. One Monitor owns all tail readers
// under its watch directory; events are handled on a single goroutine,
// so reads for a path are never concurrent.
type Monitor struct {
	watchDir      string
	resolveConfig func(sessionID string) config.Config
	speak         SpeakFunc
	logger        *zap.Logger

	checkpoints *checkpoint.Store
	activation  *ActivationFile

	// readers holds one tail reader per transcript path, created on the
	// first observed change and kept across events.
	readers map[string]*tail.Reader

	// ready is closed once the watch tree is registered and events flow.
	ready chan struct{}
}

// New returns a Monitor for opts.
func New(opts Options) (*Monitor, error) {
	if opts.WatchDir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if opts.Speak == nil {
		return nil, fmt.Errorf("speak function is required")
	}

	resolve := opts.ResolveConfig
	if resolve == nil {
		resolve = func(string) config.Config { return config.Default() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		watchDir:      opts.WatchDir,
		resolveConfig: resolve,
		speak:         opts.Speak,
		logger:        logger,
		checkpoints:   checkpoint.NewStore(filepath.Join(opts.StateDir, "checkpoints")),
		activation:    NewActivationFile(opts.StateDir, opts.WatchDir),
		readers:       make(map[string]*tail.Reader),
		ready:         make(chan struct{}),
	}, nil
}

// Ready is closed once Run has registered the watch tree; changes made
// after that point are observed. Callers that create transcripts right
// after starting Run should wait on it to avoid missing create events.
func (m *Monitor) Ready() <-chan struct{} { return m.ready }

// Run watches until ctx is cancelled. It returns nil on cancellation
// and an error only when the watch subsystem itself fails.
func (m *Monitor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck
	defer m.closeReaders()

	if err := m.addWatchTree(watcher); err != nil {
		return err
	}
	close(m.ready)

	m.logger.Info("monitor started", zap.String("watch_dir", m.watchDir))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// addWatchTree registers the watch directory and its existing
// subdirectories. fsnotify is not recursive; new subdirectories are
// added as their create events arrive.
func (m *Monitor) addWatchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(m.watchDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == m.watchDir {
				return fmt.Errorf("watch %s: %w", path, walkErr)
			}
			m.logger.Warn("skipping unwatchable path", zap.String("path", path), zap.Error(walkErr))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent processes a single filesystem event. Reads are bounded to
// newly appended bytes, so per-event work stays small regardless of
// transcript size.
func (m *Monitor) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				m.logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".jsonl") {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		m.dropReader(event.Name)
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	reader, ok := m.readers[event.Name]
	if !ok {
		// First change for this path: open at EOF so only content
		// appended from here on is spoken.
		var err error
		reader, err = tail.Open(event.Name)
		if err != nil {
			m.logger.Warn("open transcript", zap.String("path", event.Name), zap.Error(err))
			return
		}
		m.readers[event.Name] = reader
		m.logger.Debug("tailing transcript", zap.String("path", event.Name))
	}

	lines, err := reader.ReadNewLines()
	if err != nil {
		m.logger.Warn("read transcript", zap.String("path", event.Name), zap.Error(err))
		return
	}
	if len(lines) == 0 {
		// Coalesced or spurious notification; nothing new.
		return
	}

	sessionID := sessionIDForPath(event.Name)
	activationKey, active := m.activation.Read()
	cfg := m.resolveConfig(sessionID)
	if !active || !cfg.Enabled {
		// The tail position has advanced so nothing is lost, but while
		// speaking is off no message is emitted or checkpointed.
		return
	}

	lastSpoken, err := m.checkpoints.Load(sessionID)
	if err != nil {
		m.logger.Warn("load checkpoint", zap.String("session", sessionID), zap.Error(err))
	}

	afterKey := lastSpoken
	if activationKey > afterKey {
		afterKey = activationKey
	}

	messages := transcript.ExtractFromLines(lines, afterKey)
	for _, msg := range messages {
		if err := m.speak(ctx, cfg, sessionID, msg.Text); err != nil {
			m.logger.Warn("speak message",
				zap.String("session", sessionID),
				zap.String("timestamp", msg.Timestamp),
				zap.Error(err))
			// The checkpoint stays where it was; later messages are
			// still attempted.
			continue
		}

		if err := m.checkpoints.Save(sessionID, msg.Timestamp); err != nil {
			m.logger.Warn("save checkpoint", zap.String("session", sessionID), zap.Error(err))
		}
		m.logger.Info("spoke message",
			zap.String("session", sessionID),
			zap.String("timestamp", msg.Timestamp))
	}
}

func (m *Monitor) dropReader(path string) {
	if reader, ok := m.readers[path]; ok {
		reader.Close() //nolint:errcheck
		delete(m.readers, path)
		m.logger.Debug("stopped tailing transcript", zap.String("path", path))
	}
}

func (m *Monitor) closeReaders() {
	for path, reader := range m.readers {
		reader.Close() //nolint:errcheck
		delete(m.readers, path)
	}
}

// sessionIDForPath derives the logical session id from a transcript
// path: its base name without the .jsonl extension.
func sessionIDForPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}
