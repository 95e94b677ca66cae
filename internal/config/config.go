// Package config loads and merges voxtail configuration. A global JSON
// file supplies defaults; per-session override files layer on top of it
// so one conversation can use a different voice or speed without
// touching the global settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the fully resolved configuration for one session.
type Config struct {
	Enabled        bool    `json:"enabled"`
	EngineURL      string  `json:"engine_url"`
	SpeakerID      int     `json:"speaker_id"`
	SpeedScale     float64 `json:"speed_scale"`
	PitchScale     float64 `json:"pitch_scale"`
	VolumeScale    float64 `json:"volume_scale"`
	TimeoutSeconds int     `json:"timeout"`
	AudioOutputDir string  `json:"audio_output_dir"`
}

// Default returns the built-in configuration used when no global config
// file exists.
func Default() Config {
	return Config{
		Enabled:        true,
		EngineURL:      "http://127.0.0.1:50021",
		SpeakerID:      3,
		SpeedScale:     1.0,
		PitchScale:     0.0,
		VolumeScale:    1.0,
		TimeoutSeconds: 30,
		AudioOutputDir: filepath.Join(os.TempDir(), "voxtail_audio"),
	}
}

// Override holds per-session settings. Nil fields inherit the global
// value; set fields win.
type Override struct {
	Enabled        *bool    `json:"enabled,omitempty"`
	EngineURL      *string  `json:"engine_url,omitempty"`
	SpeakerID      *int     `json:"speaker_id,omitempty"`
	SpeedScale     *float64 `json:"speed_scale,omitempty"`
	PitchScale     *float64 `json:"pitch_scale,omitempty"`
	VolumeScale    *float64 `json:"volume_scale,omitempty"`
	TimeoutSeconds *int     `json:"timeout,omitempty"`
	AudioOutputDir *string  `json:"audio_output_dir,omitempty"`
}

func (o Override) applyTo(cfg *Config) {
	if o.Enabled != nil {
		cfg.Enabled = *o.Enabled
	}
	if o.EngineURL != nil {
		cfg.EngineURL = *o.EngineURL
	}
	if o.SpeakerID != nil {
		cfg.SpeakerID = *o.SpeakerID
	}
	if o.SpeedScale != nil {
		cfg.SpeedScale = *o.SpeedScale
	}
	if o.PitchScale != nil {
		cfg.PitchScale = *o.PitchScale
	}
	if o.VolumeScale != nil {
		cfg.VolumeScale = *o.VolumeScale
	}
	if o.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *o.TimeoutSeconds
	}
	if o.AudioOutputDir != nil {
		cfg.AudioOutputDir = *o.AudioOutputDir
	}
}

// LoadGlobal reads the global config file at path, falling back to
// Default when the file does not exist. Fields absent from the file keep
// their default values.
func LoadGlobal(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadSession resolves the configuration for a session: global config
// (or defaults) with the session's override file applied on top.
func LoadSession(globalPath, sessionsDir, sessionID string) (Config, error) {
	cfg, err := LoadGlobal(globalPath)
	if err != nil {
		return cfg, err
	}

	override, err := LoadOverride(sessionsDir, sessionID)
	if err != nil {
		return cfg, err
	}
	override.applyTo(&cfg)

	return cfg, nil
}

// LoadOverride reads a session's override file. A missing file is an
// empty override, not an error.
func LoadOverride(sessionsDir, sessionID string) (Override, error) {
	data, err := os.ReadFile(overridePath(sessionsDir, sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return Override{}, nil
		}
		return Override{}, fmt.Errorf("read session config: %w", err)
	}

	var override Override
	if err := json.Unmarshal(data, &override); err != nil {
		return Override{}, fmt.Errorf("parse session config: %w", err)
	}
	return override, nil
}

// SaveOverride writes a session's override file, creating the sessions
// directory if needed.
func SaveOverride(sessionsDir, sessionID string, override Override) error {
	if err := os.MkdirAll(sessionsDir, 0o755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	data, err := json.MarshalIndent(override, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session config: %w", err)
	}

	if err := os.WriteFile(overridePath(sessionsDir, sessionID), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write session config: %w", err)
	}
	return nil
}

// DeleteOverride removes a session's override file. Removing an absent
// override is not an error.
func DeleteOverride(sessionsDir, sessionID string) error {
	err := os.Remove(overridePath(sessionsDir, sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session config: %w", err)
	}
	return nil
}

func overridePath(sessionsDir, sessionID string) string {
	return filepath.Join(sessionsDir, sessionID+".json")
}
