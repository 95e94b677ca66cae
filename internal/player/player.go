// Package player plays synthesized audio files through an external
// playback command.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
)

// ErrNoPlayer is returned when none of the known playback commands is
// installed.
var ErrNoPlayer = errors.New("no audio player found: install afplay, aplay, or paplay")

// Candidate playback commands, tried in order. afplay is the macOS
// default; aplay and paplay cover ALSA and PulseAudio on Linux.
var commands = [][]string{
	{"afplay"},
	{"aplay", "-q"},
	{"paplay"},
}

// Play plays the audio file at path and blocks until playback finishes.
// Command output is discarded; playback is audible, not chatty.
func Play(ctx context.Context, path string) error {
	for _, argv := range commands {
		bin, err := exec.LookPath(argv[0])
		if err != nil {
			continue
		}

		args := append(append([]string{}, argv[1:]...), path)
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("play with %s: %w", filepath.Base(bin), err)
		}
		return nil
	}
	return ErrNoPlayer
}
