package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/audit"
)

const shownMissing = 10

var (
	auditRoot string

	fixHeadersDryRun bool

	samplesReport string

	includesFix    bool
	includesDryRun bool
	includesReport string

	scriptsExe      string
	scriptsTimeout  time.Duration
	scriptsParallel int
	scriptsOutput   string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Validate headers, sample conventions, includes and scripts",
}

var auditHeadersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Report files missing #Requires or #SingleInstance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := audit.ValidateHeaders(auditRoot, slog.Default())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rule := strings.Repeat("=", 60)
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintf(out, "  Total AHK files: %d\n", r.Total)
		fmt.Fprintf(out, "  Files with #Requires: %d\n", r.Total-len(r.MissingRequires))
		fmt.Fprintf(out, "  Files with #SingleInstance: %d\n", r.Total-len(r.MissingSingleInstance))
		fmt.Fprintln(out, rule)
		printMissing(out, "#Requires", r.MissingRequires)
		printMissing(out, "#SingleInstance", r.MissingSingleInstance)
		if r.OK() {
			fmt.Fprintln(out, "\n✓ All files have required headers!")
			return nil
		}
		fmt.Fprintln(out, "\n✗ Some files are missing headers")
		return errors.New("some files are missing headers")
	},
}

func printMissing(out io.Writer, directive string, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(out, "\nFiles missing %s (%d):\n", directive, len(files))
	for i, f := range files {
		if i == shownMissing {
			fmt.Fprintf(out, "  ... and %d more\n", len(files)-shownMissing)
			break
		}
		fmt.Fprintf(out, "  - %s\n", f)
	}
}

var auditFixHeadersCmd = &cobra.Command{
	Use:   "fix-headers",
	Short: "Insert missing #Requires and #SingleInstance directives",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scanning %s for AHK files...\n", auditRoot)
		sum, err := audit.FixHeaders(auditRoot, fixHeadersDryRun, slog.Default())
		if err != nil {
			return err
		}
		verb := "Fixed"
		if fixHeadersDryRun {
			verb = "Would fix"
		}
		for _, p := range sum.Modified {
			fmt.Fprintf(out, "%s: %s\n", verb, p)
		}
		rule := strings.Repeat("=", 60)
		fmt.Fprintf(out, "\n%s\n", rule)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintf(out, "  Files modified: %d\n", len(sum.Modified))
		fmt.Fprintf(out, "  #Requires added: %d\n", sum.RequiresAdded)
		fmt.Fprintf(out, "  #SingleInstance added: %d\n", sum.SingleInstanceAdded)
		fmt.Fprintln(out, rule)
		return nil
	},
}

var auditSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Validate training samples against the example conventions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validating AHK v2 training samples...")
		fmt.Fprintf(out, "Scripts directory: %s\n\n", auditRoot)

		r, err := audit.ValidateSamples(auditRoot, slog.Default())
		if err != nil {
			return err
		}
		text := audit.RenderSampleReport(r)
		fmt.Fprintln(out, text)
		if samplesReport != "" {
			if err := fs.WriteFileAtomicMkdir(samplesReport, []byte(text), 0644); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nReport saved to: %s\n", samplesReport)
		}
		if r.Failed() {
			return fmt.Errorf("%d files are missing #Requires", r.Stats.MissingRequires)
		}
		return nil
	},
}

var auditIncludesCmd = &cobra.Command{
	Use:   "includes",
	Short: "Validate #Include references and optionally comment out broken ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := audit.ValidateIncludes(auditRoot, slog.Default())
		if err != nil {
			return err
		}
		files, err := fs.GlobExt(auditRoot, ".ahk")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scanning %s for .ahk files...\n", auditRoot)
		fmt.Fprintf(out, "Found %d .ahk files\n", len(files))
		fmt.Fprintf(out, "Found %d #Include directives\n", len(results))
		fmt.Fprintln(out, "Validating references...")

		report := audit.RenderIncludeReport(results)
		if includesReport != "" {
			if err := fs.WriteFileAtomicMkdir(includesReport, []byte(report), 0644); err != nil {
				return err
			}
			fmt.Fprintf(out, "Report written to: %s\n", includesReport)
		} else {
			fmt.Fprintln(out, report)
		}

		if includesFix || includesDryRun {
			fmt.Fprintln(out, "\nFixing broken includes...")
			modified, err := audit.FixBrokenIncludes(results, includesDryRun, slog.Default())
			if err != nil {
				return err
			}
			if includesDryRun {
				fmt.Fprintf(out, "\nDry run: Would modify %d files\n", len(modified))
			} else {
				fmt.Fprintf(out, "\nModified %d files\n", len(modified))
			}
		}

		broken := 0
		for _, r := range results {
			if !r.OK() {
				broken++
			}
		}
		if broken > 0 {
			return fmt.Errorf("%d broken includes", broken)
		}
		return nil
	},
}

var auditScriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Validate scripts with the AutoHotkey interpreter's /validate mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe := scriptsExe
		if exe == "" {
			found, err := ahk.FindExecutable()
			if err != nil {
				return err
			}
			exe = found
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Scanning %s...\n", auditRoot)

		v := &audit.ScriptValidator{
			Exe:      exe,
			Timeout:  scriptsTimeout,
			Parallel: scriptsParallel,
			Logger:   slog.Default(),
		}
		r, err := v.ValidateDir(cmd.Context(), auditRoot)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found %d AHK files.\n", r.Summary.Total)
		for _, f := range r.Failures {
			name := filepath.Base(f.File)
			switch f.ReturnCode {
			case audit.ReturnTimeout:
				fmt.Fprintf(out, "TIMEOUT: %s\n", name)
			case audit.ReturnError:
				fmt.Fprintf(out, "ERROR: %s - %s\n", name, f.Error)
			default:
				first := "Unknown error"
				if f.Error != "" {
					first = strings.SplitN(f.Error, "\n", 2)[0]
				}
				fmt.Fprintf(out, "FAIL: %s\n  %s\n", name, first)
			}
		}
		if err := r.Save(scriptsOutput); err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintln(out, "Validation complete.")
		fmt.Fprintf(out, "Total: %d\n", r.Summary.Total)
		fmt.Fprintf(out, "Passed: %d\n", r.Summary.Passed)
		fmt.Fprintf(out, "Failed: %d\n", r.Summary.Failed)
		fmt.Fprintf(out, "Errors: %d\n", r.Summary.Errors)
		fmt.Fprintf(out, "Results saved to %s\n", scriptsOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditHeadersCmd, auditFixHeadersCmd, auditSamplesCmd, auditIncludesCmd, auditScriptsCmd)
	auditCmd.PersistentFlags().StringVar(&auditRoot, "root", "data/Scripts", "Directory to scan")

	auditFixHeadersCmd.Flags().BoolVar(&fixHeadersDryRun, "dry-run", false, "Report files without writing them")
	auditSamplesCmd.Flags().StringVar(&samplesReport, "report", "VALIDATION_REPORT.md", "Where to save the text report (empty disables)")

	auditIncludesCmd.Flags().BoolVar(&includesFix, "fix", false, "Comment out broken #Include directives")
	auditIncludesCmd.Flags().BoolVar(&includesDryRun, "dry-run", false, "Show what would be fixed without modifying files")
	auditIncludesCmd.Flags().StringVar(&includesReport, "report", "", "Write the report to a file instead of stdout")

	f := auditScriptsCmd.Flags()
	f.StringVar(&scriptsExe, "exe", "", "AutoHotkey v2 executable (default: AHK_PATH or the install location)")
	f.DurationVar(&scriptsTimeout, "timeout", audit.DefaultValidateTimeout, "Per-script timeout")
	f.IntVar(&scriptsParallel, "parallel", 0, "Concurrent interpreter runs (default: GOMAXPROCS)")
	f.StringVar(&scriptsOutput, "output", "validation_errors.json", "Results JSON path")
}
