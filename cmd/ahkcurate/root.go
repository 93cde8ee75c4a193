package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/internal/platform"
)

var (
	verbose bool
	rootDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ahkcurate",
	Short: "Curation utilities for an AutoHotkey v2 fine-tuning dataset",
	Long: `ahkcurate organizes, normalizes, checks and packages AutoHotkey v2 scripts
into JSONL training data, analyzes linter output and serves a local review UI API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fatal("ahkcurate", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootDir, "project", "", "Project root (default: discovered from the working directory)")
}

// project resolves the project root and its configuration. Without an
// explicit --project, the root is discovered upwards from the working
// directory, falling back to the working directory itself.
func project() (string, platform.Config, error) {
	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", platform.Config{}, err
		}
		root = wd
		if found, err := platform.FindRoot(wd); err == nil {
			root = found
		}
	}
	cfg, err := platform.LoadConfig(root)
	if err != nil {
		return "", cfg, err
	}
	return root, cfg.Resolve(root), nil
}
