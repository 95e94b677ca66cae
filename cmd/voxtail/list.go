package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voxtail/internal/config"
	"voxtail/internal/format"
	"voxtail/internal/store"
	"voxtail/internal/voicevox"
)

func newSessionsCmd() *cobra.Command {
	var (
		watchDir     string
		limit        int
		formatFlag   string
		noHeader     bool
		snippetWidth int
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List transcripts under the watch directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := store.ListSessions(store.ListOptions{
				Root:       watchDir,
				Limit:      limit,
				MaxSnippet: snippetWidth,
			})
			if err != nil {
				return err
			}

			errs := cmd.ErrOrStderr()
			for _, warn := range result.Warnings {
				fmt.Fprintf(errs, "warning: %v\n", warn) //nolint:errcheck
			}

			return format.WriteSessions(cmd.OutOrStdout(), result.Sessions, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&watchDir, "watch-dir", config.DefaultWatchDir(), "transcripts directory")
	flags.IntVar(&limit, "limit", 0, "limit number of sessions returned (0 means no limit)")
	flags.StringVar(&formatFlag, "format", "auto", "output format: auto, table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain output")
	flags.IntVar(&snippetWidth, "snippet-width", 160, "maximum characters of the last message shown")

	return cmd
}

func newSpeakersCmd() *cobra.Command {
	var (
		configPath string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "List the voices installed in the synthesis engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadGlobal(configPath)
			if err != nil {
				return err
			}

			engine := voicevox.NewClient(cfg.EngineURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
			speakers, err := engine.Speakers(cmd.Context())
			if err != nil {
				return err
			}

			return format.WriteSpeakers(cmd.OutOrStdout(), speakers, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultGlobalPath(), "global config file")
	flags.StringVar(&formatFlag, "format", "auto", "output format: auto, table, plain, or json")

	return cmd
}
