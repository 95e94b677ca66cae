package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"voxtail/internal/config"
	"voxtail/internal/player"
	"voxtail/internal/voicevox"
)

// Pipeline speaks one message at a time: it requests an audio query for
// the text, applies the configured speed/pitch/volume, renders the
// audio, writes it to the output directory, and plays it. Playback
// blocks until the message has been heard, which keeps audible output
// in message order.
type Pipeline struct {
	Engine *voicevox.Client

	// Play runs the playback command. Overridable in tests; defaults to
	// player.Play.
	Play func(ctx context.Context, path string) error

	seq int
}

// NewPipeline returns a Pipeline speaking through engine.
func NewPipeline(engine *voicevox.Client) *Pipeline {
	return &Pipeline{
		Engine: engine,
		Play:   player.Play,
	}
}

// Speak synthesizes text with the session's voice settings and plays
// it. The audio file is kept in the configured output directory, named
// after the session and a per-process sequence number.
func (p *Pipeline) Speak(ctx context.Context, cfg config.Config, sessionID, text string) error {
	query, err := p.Engine.CreateAudioQuery(ctx, text, cfg.SpeakerID)
	if err != nil {
		return fmt.Errorf("create audio query: %w", err)
	}
	query.ApplyScales(cfg.SpeedScale, cfg.PitchScale, cfg.VolumeScale)

	audio, err := p.Engine.Synthesize(ctx, query, cfg.SpeakerID)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	if err := os.MkdirAll(cfg.AudioOutputDir, 0o755); err != nil {
		return fmt.Errorf("create audio output dir: %w", err)
	}

	p.seq++
	outPath := filepath.Join(cfg.AudioOutputDir, fmt.Sprintf("%s_%04d.wav", sessionID, p.seq))
	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}

	if err := p.Play(ctx, outPath); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}
