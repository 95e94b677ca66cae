package player

import (
	"context"
	"errors"
	"testing"
)

func TestPlay_NoPlayerInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := Play(context.Background(), "/tmp/whatever.wav")
	if !errors.Is(err, ErrNoPlayer) {
		t.Fatalf("expected ErrNoPlayer with an empty PATH, got %v", err)
	}
}
