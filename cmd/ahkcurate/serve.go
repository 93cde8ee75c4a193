package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/internal/platform"
	lcadapter "github.com/aretw0/ahkcurate/pkg/adapters/lifecycle"
	"github.com/aretw0/ahkcurate/pkg/review"
	reviewhttp "github.com/aretw0/ahkcurate/pkg/review/http"
)

var (
	serveAddr       string
	serveScripts    string
	serveStore      string
	serveStatusFile string
	serveSamples    string
	serveGrades     string
	serveOrigins    []string
	serveNoWatch    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the script review and sample grading API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := project()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		override := func(name string, dst *string, v string) {
			if flags.Changed(name) {
				*dst = v
			}
		}
		override("addr", &cfg.Addr, serveAddr)
		override("scripts-dir", &cfg.ScriptsDir, serveScripts)
		override("store", &cfg.Store, serveStore)
		override("status-file", &cfg.StatusFile, serveStatusFile)
		override("samples", &cfg.Samples, serveSamples)
		override("grades", &cfg.Grades, serveGrades)
		if flags.Changed("origin") {
			cfg.AllowedOrigins = serveOrigins
		}

		logger := slog.Default()
		svc, err := platform.New(cfg.ScriptsDir, append(cfg.Options(), platform.WithLogger(logger))...)
		if err != nil {
			return fmt.Errorf("failed to initialize review service: %w", err)
		}
		defer svc.Close()
		logger.Info("catalog loaded", "dir", cfg.ScriptsDir, "scripts", svc.Catalog().Len())

		grader, err := review.OpenGrader(cfg.Samples, cfg.Grades)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if !serveNoWatch {
			if err := watchCatalog(ctx, svc.Catalog(), logger); err != nil {
				return err
			}
		}

		handler := reviewhttp.NewRouter(reviewhttp.Deps{
			Service:        svc,
			Grader:         grader,
			Logger:         logger,
			AllowedOrigins: cfg.AllowedOrigins,
		})
		return reviewhttp.NewServer(cfg.Addr, handler, logger).Run(ctx)
	},
}

// watchCatalog rescans the catalog on script changes and logs each rescan.
func watchCatalog(ctx context.Context, c *review.Catalog, logger *slog.Logger) error {
	events, err := c.Watch(ctx, review.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.Root(), err)
	}
	src := lcadapter.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range src.Events() {
			logger.Info(e.String())
		}
		return nil
	})
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", reviewhttp.DefaultAddr, "Listen address")
	f.StringVar(&serveScripts, "scripts-dir", "", "Scripts directory (default from ahkcurate.yaml or data/Scripts)")
	f.StringVar(&serveStore, "store", platform.AdapterBolt, "Status store adapter: bolt or json")
	f.StringVar(&serveStatusFile, "status-file", "", "Status store path (default next to the scripts directory)")
	f.StringVar(&serveSamples, "samples", "", "Samples JSONL to grade (default data/samples.jsonl)")
	f.StringVar(&serveGrades, "grades", "", "Graded samples JSONL (default data/graded_samples.jsonl)")
	f.StringSliceVar(&serveOrigins, "origin", nil, "Allowed CORS origin; repeatable (default any)")
	f.BoolVar(&serveNoWatch, "no-watch", false, "Do not rescan the catalog on file changes")
}
