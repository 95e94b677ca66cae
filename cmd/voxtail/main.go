// Package main provides the voxtail CLI: a text-to-speech bridge that
// speaks assistant replies from agent conversation transcripts.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voxtail/internal/config"
	"voxtail/internal/speech"
	"voxtail/internal/store"
	"voxtail/internal/transcript"
	"voxtail/internal/voicevox"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "voxtail",
	Short:   "Speak assistant replies from agent conversation transcripts",
	Version: version,
}

func init() {
	rootCmd.AddCommand(newSpeakCmd())
	rootCmd.AddCommand(newMonitorCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newSpeakersCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "voxtail: %v\n", err)
		os.Exit(1)
	}
}

// sessionIDForPath derives the session id from a transcript path.
func sessionIDForPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// resolveTranscriptPath accepts either a transcript path or a session
// id looked up under the watch directory.
func resolveTranscriptPath(arg, watchDir string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}
	return store.FindSessionPath(watchDir, arg)
}

func newSpeakCmd() *cobra.Command {
	var (
		configPath  string
		sessionsDir string
		watchDir    string
	)

	cmd := &cobra.Command{
		Use:   "speak <transcript-path-or-session-id>",
		Short: "Speak the latest assistant message from a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveTranscriptPath(args[0], watchDir)
			if err != nil {
				return err
			}

			sessionID := sessionIDForPath(path)
			cfg, err := config.LoadSession(configPath, sessionsDir, sessionID)
			if err != nil {
				return err
			}

			if !cfg.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "speaking is disabled")
				return nil
			}

			msg, found, err := transcript.ExtractLatest(path)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no speakable assistant message in %s", path)
			}

			ctx := cmd.Context()
			engine, pipeline := enginePipeline(cfg)
			if err := engine.CheckConnection(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "speaking: %s\n", clip(msg.Text, 100))

			return pipeline.Speak(ctx, cfg, sessionID, msg.Text)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultGlobalPath(), "global config file")
	flags.StringVar(&sessionsDir, "sessions-dir", config.DefaultSessionsDir(), "per-session config directory")
	flags.StringVar(&watchDir, "watch-dir", config.DefaultWatchDir(), "transcripts directory used to resolve session ids")

	return cmd
}

// enginePipeline builds the synthesis client and pipeline for cfg's
// engine settings; shared by the speak and monitor commands.
func enginePipeline(cfg config.Config) (*voicevox.Client, *speech.Pipeline) {
	engine := voicevox.NewClient(cfg.EngineURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	return engine, speech.NewPipeline(engine)
}

func clip(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
