package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voxtail/internal/config"
	"voxtail/internal/monitor"
)

func newMonitorCmd() *cobra.Command {
	var (
		configPath  string
		sessionsDir string
		stateDir    string
		watchDir    string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Manage the background transcript monitor",
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultGlobalPath(), "global config file")
	flags.StringVar(&sessionsDir, "sessions-dir", config.DefaultSessionsDir(), "per-session config directory")
	flags.StringVar(&stateDir, "state-dir", config.DefaultStateDir(), "runtime state directory")
	flags.StringVar(&watchDir, "watch-dir", config.DefaultWatchDir(), "transcripts directory to watch")

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Watch for new assistant messages and speak them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			globalCfg, err := config.LoadGlobal(configPath)
			if err != nil {
				return err
			}
			if !globalCfg.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "speaking is disabled")
				return nil
			}

			pidFile := monitor.NewPIDFile(stateDir, watchDir)
			if pid, running := pidFile.IsRunning(); running {
				return fmt.Errorf("monitor is already running (pid %d)", pid)
			}

			// Fail loudly up front: a watcher that can never speak
			// should not sit silent forever.
			engine, pipeline := enginePipeline(globalCfg)
			if err := engine.CheckConnection(cmd.Context()); err != nil {
				return err
			}

			logger, err := newLogger(debug)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := pidFile.Write(); err != nil {
				return err
			}
			defer pidFile.Remove() //nolint:errcheck

			mon, err := monitor.New(monitor.Options{
				WatchDir: watchDir,
				StateDir: stateDir,
				ResolveConfig: func(sessionID string) config.Config {
					cfg, err := config.LoadSession(configPath, sessionsDir, sessionID)
					if err != nil {
						logger.Warn("load session config", zap.String("session", sessionID), zap.Error(err))
						return globalCfg
					}
					return cfg
				},
				Speak:  pipeline.Speak,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return mon.Run(ctx)
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pidFile := monitor.NewPIDFile(stateDir, watchDir)
			pid, running := pidFile.IsRunning()
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "monitor is not running")
				return nil
			}

			proc, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find monitor process: %w", err)
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("stop monitor: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stopped monitor (pid %d)\n", pid)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the monitor is running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pidFile := monitor.NewPIDFile(stateDir, watchDir)
			if pid, running := pidFile.IsRunning(); running {
				fmt.Fprintf(cmd.OutOrStdout(), "monitor is running (pid %d)\n", pid)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "monitor is not running")
			// Non-zero exit distinguishes "stopped" for scripts.
			os.Exit(1)
			return nil
		},
	}

	onCmd := &cobra.Command{
		Use:   "on",
		Short: "Enable speaking for messages from now on",
		RunE: func(cmd *cobra.Command, _ []string) error {
			activation := monitor.NewActivationFile(stateDir, watchDir)
			if err := activation.Enable(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "speaking enabled")
			return nil
		},
	}

	offCmd := &cobra.Command{
		Use:   "off",
		Short: "Disable speaking (the monitor keeps tailing)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			activation := monitor.NewActivationFile(stateDir, watchDir)
			if err := activation.Disable(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "speaking disabled")
			return nil
		},
	}

	startCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(startCmd, stopCmd, statusCmd, onCmd, offCmd)
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
