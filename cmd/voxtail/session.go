package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"voxtail/internal/config"
)

func newSessionCmd() *cobra.Command {
	var (
		configPath  string
		sessionsDir string
	)

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage per-session speaking overrides",
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultGlobalPath(), "global config file")
	flags.StringVar(&sessionsDir, "sessions-dir", config.DefaultSessionsDir(), "per-session config directory")

	setBool := func(sessionID string, value bool) error {
		override, err := config.LoadOverride(sessionsDir, sessionID)
		if err != nil {
			return err
		}
		override.Enabled = &value
		return config.SaveOverride(sessionsDir, sessionID, override)
	}

	onCmd := &cobra.Command{
		Use:   "on <session-id>",
		Short: "Enable speaking for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setBool(args[0], true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "speaking enabled for session %s\n", args[0])
			return nil
		},
	}

	offCmd := &cobra.Command{
		Use:   "off <session-id>",
		Short: "Disable speaking for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setBool(args[0], false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "speaking disabled for session %s\n", args[0])
			return nil
		},
	}

	speakerCmd := &cobra.Command{
		Use:   "speaker <session-id> <speaker-id>",
		Short: "Set the voice used for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			speakerID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid speaker id: %s", args[1])
			}

			override, err := config.LoadOverride(sessionsDir, args[0])
			if err != nil {
				return err
			}
			override.SpeakerID = &speakerID
			if err := config.SaveOverride(sessionsDir, args[0], override); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "speaker set to %d for session %s\n", speakerID, args[0])
			return nil
		},
	}

	speedCmd := &cobra.Command{
		Use:   "speed <session-id> <scale>",
		Short: "Set the speaking speed for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid speed scale: %s", args[1])
			}

			override, err := config.LoadOverride(sessionsDir, args[0])
			if err != nil {
				return err
			}
			override.SpeedScale = &speed
			if err := config.SaveOverride(sessionsDir, args[0], override); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "speed set to %gx for session %s\n", speed, args[0])
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset <session-id>",
		Short: "Remove a session's overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteOverride(sessionsDir, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "overrides removed for session %s\n", args[0])
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the resolved settings for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSession(configPath, sessionsDir, args[0])
			if err != nil {
				return err
			}
			renderSessionStatus(cmd.OutOrStdout(), args[0], cfg)
			return nil
		},
	}

	cmd.AddCommand(onCmd, offCmd, speakerCmd, speedCmd, resetCmd, statusCmd)
	return cmd
}

func renderSessionStatus(out io.Writer, sessionID string, cfg config.Config) {
	const labelWidth = 12
	writeKV(out, labelWidth, "Session ID", sessionID)
	writeKV(out, labelWidth, "Enabled", strconv.FormatBool(cfg.Enabled))
	writeKV(out, labelWidth, "Engine URL", cfg.EngineURL)
	writeKV(out, labelWidth, "Speaker ID", strconv.Itoa(cfg.SpeakerID))
	writeKV(out, labelWidth, "Speed", fmt.Sprintf("%gx", cfg.SpeedScale))
	writeKV(out, labelWidth, "Pitch", fmt.Sprintf("%g", cfg.PitchScale))
	writeKV(out, labelWidth, "Volume", fmt.Sprintf("%g", cfg.VolumeScale))
	writeKV(out, labelWidth, "Timeout", fmt.Sprintf("%ds", cfg.TimeoutSeconds))
	writeKV(out, labelWidth, "Audio Dir", cfg.AudioOutputDir)
}

func writeKV(out io.Writer, width int, label string, value string) {
	fmt.Fprintf(out, "%-*s: %s\n", width, label, value) //nolint:errcheck
}
