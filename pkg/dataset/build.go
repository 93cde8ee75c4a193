package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// BuildConfig configures a dataset build.
type BuildConfig struct {
	InputDir    string
	OutputDir   string
	TrainFile   string
	ValFile     string
	TestFile    string
	ValRatio    float64
	TestRatio   float64
	Seed        uint64
	ElementsCSV []string
	Extensions  []string
	DryRun      bool
	Logger      *slog.Logger
}

// DefaultBuildConfig returns the defaults used by the CLI.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		InputDir:  filepath.Join("data", "raw_scripts"),
		OutputDir: filepath.Join("data", "prepared"),
		TrainFile: "train.jsonl",
		ValFile:   "val.jsonl",
		TestFile:  "test.jsonl",
		ValRatio:  0.1,
		TestRatio: 0.1,
		Seed:      2025,
	}
}

// ReferenceCount records how many entries one reference CSV contributed.
type ReferenceCount struct {
	Path  string
	Count int
}

// Summary reports the counts observed at each stage of a build.
type Summary struct {
	Snippets   int
	References []ReferenceCount
	Total      int
	Unique     int
	Train      int
	Val        int
	Test       int
	Written    []string
}

// ReferenceTotal sums the entries contributed by all reference CSVs.
func (s Summary) ReferenceTotal() int {
	n := 0
	for _, r := range s.References {
		n += r.Count
	}
	return n
}

// Build collects, deduplicates, splits and (unless DryRun) writes a dataset.
func Build(ctx context.Context, cfg BuildConfig) (Summary, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary

	if err := ValidateRatios(cfg.ValRatio, cfg.TestRatio); err != nil {
		return sum, err
	}

	records, err := CollectSnippets(ctx, cfg.InputDir, CollectOptions{Extensions: cfg.Extensions, Logger: logger})
	if err != nil {
		return sum, fmt.Errorf("failed to collect snippets: %w", err)
	}
	sum.Snippets = len(records)
	logger.Debug("collected snippets", "count", sum.Snippets, "dir", cfg.InputDir)

	for _, csvPath := range cfg.ElementsCSV {
		refs, err := LoadReferenceCSV(csvPath)
		if err != nil {
			return sum, err
		}
		sum.References = append(sum.References, ReferenceCount{Path: csvPath, Count: len(refs)})
		records = append(records, refs...)
	}
	sum.Total = len(records)

	unique := Dedupe(records)
	sum.Unique = len(unique)

	splits, err := Split(unique, cfg.ValRatio, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return sum, err
	}
	sum.Train, sum.Val, sum.Test = len(splits.Train), len(splits.Val), len(splits.Test)

	if cfg.DryRun {
		return sum, nil
	}

	outputs := []struct {
		name    string
		records []core.Record
	}{
		{cfg.TrainFile, splits.Train},
		{cfg.ValFile, splits.Val},
		{cfg.TestFile, splits.Test},
	}
	for _, o := range outputs {
		p := filepath.Join(cfg.OutputDir, o.name)
		if err := WriteJSONL(p, o.records); err != nil {
			return sum, err
		}
		sum.Written = append(sum.Written, p)
	}
	return sum, nil
}
