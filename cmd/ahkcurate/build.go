package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/dataset"
)

var (
	buildCfg  = dataset.DefaultBuildConfig()
	buildSeed = int64(buildCfg.Seed)
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build train/val/test JSONL datasets from raw AutoHotkey snippets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildCfg
		cfg.Seed = uint64(buildSeed)
		cfg.Logger = slog.Default()

		sum, err := dataset.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %d raw snippets from %s.\n", sum.Snippets, cfg.InputDir)
		for _, ref := range sum.References {
			fmt.Fprintf(out, "Loaded %d reference entries from %s.\n", ref.Count, ref.Path)
		}
		if n := sum.ReferenceTotal(); n > 0 {
			fmt.Fprintf(out, "Total records with reference data: %d (added %d).\n", sum.Total, n)
		}
		fmt.Fprintf(out, "After deduplication: %d unique records.\n", sum.Unique)
		fmt.Fprintf(out, "Split sizes (train/val/test): %d/%d/%d\n", sum.Train, sum.Val, sum.Test)
		if cfg.DryRun {
			fmt.Fprintln(out, "Dry run complete; no files written.")
			return nil
		}
		fmt.Fprintf(out, "Wrote datasets to %s.\n", cfg.OutputDir)
		return nil
	},
}

var harmonyCmd = &cobra.Command{
	Use:   "harmony <input.jsonl> <output.jsonl>",
	Short: "Convert prompt/response JSONL into Harmony chat format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := dataset.ConvertHarmony(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %d examples to %s\n", n, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd, harmonyCmd)
	f := buildCmd.Flags()
	f.StringVar(&buildCfg.InputDir, "input-dir", buildCfg.InputDir, "Directory of raw .ahk snippets")
	f.StringVar(&buildCfg.OutputDir, "output-dir", buildCfg.OutputDir, "Directory for the JSONL splits")
	f.StringVar(&buildCfg.TrainFile, "train-file", buildCfg.TrainFile, "Train split file name")
	f.StringVar(&buildCfg.ValFile, "val-file", buildCfg.ValFile, "Validation split file name")
	f.StringVar(&buildCfg.TestFile, "test-file", buildCfg.TestFile, "Test split file name")
	f.Float64Var(&buildCfg.ValRatio, "val-ratio", buildCfg.ValRatio, "Validation split ratio in [0, 1)")
	f.Float64Var(&buildCfg.TestRatio, "test-ratio", buildCfg.TestRatio, "Test split ratio in [0, 1)")
	f.Int64Var(&buildSeed, "seed", buildSeed, "Shuffle seed; negative values are accepted")
	f.StringArrayVar(&buildCfg.ElementsCSV, "elements-csv", nil, "Reference CSV (variables, classes, directives); repeatable")
	f.StringSliceVar(&buildCfg.Extensions, "ext", nil, "Snippet extensions (default .ahk)")
	f.BoolVar(&buildCfg.DryRun, "dry-run", false, "List stats without writing any files")
}
