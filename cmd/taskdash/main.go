package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"taskdash/internal/api"
	"taskdash/internal/config"
	"taskdash/internal/state"
	"taskdash/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:          "taskdash",
		Short:        "Terminal dashboard for a personal task tracker",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = config.ResolvePath()
			}
			cfg, err := config.LoadOrCreate(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if apiURL != "" {
				cfg.APIBaseURL = apiURL
			}

			if logFile != "" {
				f, err := tea.LogToFile(logFile, "taskdash")
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
			}

			client := api.New(cfg.APIBaseURL, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)

			local, err := state.OpenLocal(cfg.StateDBPath)
			if err != nil {
				return fmt.Errorf("open state db: %w", err)
			}
			defer local.Close()

			store := state.NewStore(client, local, time.Duration(cfg.SaveDebounceMS)*time.Millisecond)
			if logFile == "" {
				// Without a log file, package log writes would land on
				// the terminal underneath the TUI.
				store.SetLogf(func(string, ...any) {})
			}
			return ui.Run(client, store, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&apiURL, "api", "", "backend base URL (overrides config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write debug logs to this file")
	return cmd
}
