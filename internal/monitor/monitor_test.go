package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"voxtail/internal/checkpoint"
	"voxtail/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// spokenLog collects messages handed to the speak function across
// goroutines.
type spokenLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *spokenLog) speak(_ context.Context, _ config.Config, _ string, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, text)
	return nil
}

func (l *spokenLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func assistantLine(ts, text string) string {
	return fmt.Sprintf(`{"message":{"role":"assistant","content":[{"type":"text","text":%q}]},"timestamp":%q}`, text, ts)
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	for _, line := range lines {
		_, err = f.WriteString(line + "\n")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
}

// startMonitor runs mon until the returned stop function is called. It
// blocks until the watch tree is registered so file changes made by the
// test cannot slip past the watcher.
func startMonitor(t *testing.T, mon *Monitor) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mon.Run(ctx)
	}()

	select {
	case <-mon.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("monitor exited before becoming ready: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("monitor never became ready")
	}

	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("monitor did not stop")
		}
	}
}

func TestMonitorSpeaksAppendedMessages(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.EnableAt(time.Unix(0, 0)))

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		Speak:    log.speak,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	path := filepath.Join(watchDir, "session-1.jsonl")
	appendLines(t, path)
	// Let the create event baseline the reader before appending.
	time.Sleep(300 * time.Millisecond)

	appendLines(t, path,
		assistantLine("2026-01-23T10:00:01Z", "first"),
		assistantLine("2026-01-23T10:00:02Z", "second"),
	)

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, log.snapshot())

	// The checkpoint tracks the last spoken message.
	store := checkpoint.NewStore(filepath.Join(stateDir, "checkpoints"))
	require.Eventually(t, func() bool {
		key, err := store.Load("session-1")
		return err == nil && key == "2026-01-23T10:00:02Z"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMonitorResumesAfterCheckpoint(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.EnableAt(time.Unix(0, 0)))

	// A previous run already spoke through T3.
	store := checkpoint.NewStore(filepath.Join(stateDir, "checkpoints"))
	require.NoError(t, store.Save("session-1", "2026-01-23T10:00:03Z"))

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		Speak:    log.speak,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	path := filepath.Join(watchDir, "session-1.jsonl")
	appendLines(t, path)
	time.Sleep(300 * time.Millisecond)

	appendLines(t, path,
		assistantLine("2026-01-23T10:00:02Z", "stale"),
		assistantLine("2026-01-23T10:00:03Z", "tie"),
		assistantLine("2026-01-23T10:00:04Z", "fresh"),
	)

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"fresh"}, log.snapshot(),
		"keys at or below the checkpoint stay suppressed across a restart")

	require.Eventually(t, func() bool {
		key, err := store.Load("session-1")
		return err == nil && key == "2026-01-23T10:00:04Z"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMonitorInactiveConsumesWithoutSpeaking(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		Speak:    log.speak,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	path := filepath.Join(watchDir, "session-1.jsonl")
	appendLines(t, path)
	time.Sleep(300 * time.Millisecond)

	appendLines(t, path, assistantLine("2026-01-23T10:00:01Z", "suppressed"))
	time.Sleep(300 * time.Millisecond)

	assert.Empty(t, log.snapshot(), "nothing speaks while the activation marker is absent")

	store := checkpoint.NewStore(filepath.Join(stateDir, "checkpoints"))
	key, err := store.Load("session-1")
	require.NoError(t, err)
	assert.Empty(t, key, "suppressed messages must not advance the checkpoint")

	// Enabling now speaks only messages that arrive after this instant.
	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.Enable())

	appendLines(t, path, assistantLine("2999-01-01T00:00:00Z", "audible"))

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"audible"}, log.snapshot())
}

func TestMonitorSessionConfigDisablesSpeaking(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.EnableAt(time.Unix(0, 0)))

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		ResolveConfig: func(sessionID string) config.Config {
			cfg := config.Default()
			cfg.Enabled = sessionID != "muted"
			return cfg
		},
		Speak:  log.speak,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	muted := filepath.Join(watchDir, "muted.jsonl")
	audible := filepath.Join(watchDir, "audible.jsonl")
	appendLines(t, muted)
	appendLines(t, audible)
	time.Sleep(300 * time.Millisecond)

	appendLines(t, muted, assistantLine("2026-01-23T10:00:01Z", "quiet"))
	appendLines(t, audible, assistantLine("2026-01-23T10:00:01Z", "loud"))

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"loud"}, log.snapshot())
}

func TestMonitorIgnoresNonTranscriptFiles(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.EnableAt(time.Unix(0, 0)))

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		Speak:    log.speak,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	appendLines(t, filepath.Join(watchDir, "notes.txt"),
		assistantLine("2026-01-23T10:00:01Z", "not a transcript"))
	time.Sleep(300 * time.Millisecond)

	assert.Empty(t, log.snapshot())
}

func TestMonitorWatchesNewSubdirectories(t *testing.T) {
	watchDir := t.TempDir()
	stateDir := t.TempDir()

	activation := NewActivationFile(stateDir, watchDir)
	require.NoError(t, activation.EnableAt(time.Unix(0, 0)))

	log := &spokenLog{}
	mon, err := New(Options{
		WatchDir: watchDir,
		StateDir: stateDir,
		Speak:    log.speak,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	stop := startMonitor(t, mon)
	defer stop()

	subDir := filepath.Join(watchDir, "project-a")
	require.NoError(t, os.Mkdir(subDir, 0o755))
	time.Sleep(300 * time.Millisecond)

	path := filepath.Join(subDir, "session-2.jsonl")
	appendLines(t, path)
	time.Sleep(300 * time.Millisecond)

	appendLines(t, path, assistantLine("2026-01-23T10:00:01Z", "nested"))

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"nested"}, log.snapshot())
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Speak: (&spokenLog{}).speak})
	require.Error(t, err)

	_, err = New(Options{WatchDir: t.TempDir()})
	require.Error(t, err)
}
