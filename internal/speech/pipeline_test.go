package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxtail/internal/config"
	"voxtail/internal/voicevox"
)

func newFakeEngine(t *testing.T, audio []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /audio_query", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"accent_phrases": []any{},
			"speedScale":     1.0,
		})
	})
	mux.HandleFunc("POST /synthesis", func(w http.ResponseWriter, r *http.Request) {
		var query map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.Equal(t, 1.5, query["speedScale"], "adjusted speed must reach synthesis")
		w.Write(audio) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPipelineSpeak(t *testing.T) {
	audio := []byte("RIFFfake-wav-data")
	srv := newFakeEngine(t, audio)

	outDir := filepath.Join(t.TempDir(), "audio")
	cfg := config.Default()
	cfg.EngineURL = srv.URL
	cfg.SpeedScale = 1.5
	cfg.AudioOutputDir = outDir

	var played []string
	p := NewPipeline(voicevox.NewClient(srv.URL, 5*time.Second))
	p.Play = func(_ context.Context, path string) error {
		played = append(played, path)
		return nil
	}

	require.NoError(t, p.Speak(context.Background(), cfg, "session-1", "hello"))
	require.NoError(t, p.Speak(context.Background(), cfg, "session-1", "again"))

	require.Len(t, played, 2)
	assert.Equal(t, filepath.Join(outDir, "session-1_0001.wav"), played[0])
	assert.Equal(t, filepath.Join(outDir, "session-1_0002.wav"), played[1])

	got, err := os.ReadFile(played[0])
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestPipelineSpeak_EngineDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := config.Default()
	cfg.EngineURL = srv.URL
	cfg.AudioOutputDir = t.TempDir()

	p := NewPipeline(voicevox.NewClient(srv.URL, time.Second))
	p.Play = func(context.Context, string) error { return nil }

	err := p.Speak(context.Background(), cfg, "session-1", "hello")
	require.Error(t, err)
}
