package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/format"
)

var (
	fmtListRoot   string
	fmtListFile   string
	fmtCheckRoot  string
	fmtReportPath string
	fmtBackupDir  string

	hygRoot        string
	hygFix         bool
	hygStrict      bool
	hygLineEndings string
	hygJSONReport  string
	hygShow        int
	hygLimit       int
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Check and fix formatting of AutoHotkey scripts",
}

var formatListCmd = &cobra.Command{
	Use:   "list",
	Short: "Write the list of .ahk files under a root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := format.ListFiles(fmtListRoot)
		if err != nil {
			return err
		}
		if err := format.WriteFileList(fmtListFile, files); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Listed %d files in %s\n", len(files), fmtListFile)
		return nil
	},
}

var formatCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check files for indentation, line ending, comment and structure issues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			files []string
			err   error
		)
		if fmtCheckRoot != "" {
			files, err = format.ListFiles(fmtCheckRoot)
		} else {
			files, err = format.ReadFileList(fmtListFile)
		}
		if err != nil {
			return err
		}

		report, sum := format.CheckFiles(files, slog.Default())
		if err := report.Save(fmtReportPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n=== Formatting Check Summary ===")
		fmt.Fprintf(out, "Total files checked: %d\n", sum.FilesChecked)
		fmt.Fprintf(out, "Files with issues: %d\n", sum.FilesWithIssues)
		fmt.Fprintf(out, "Total issues: %d\n", sum.TotalIssues)
		fmt.Fprintln(out, "\nIssues by category:")
		for _, cat := range sum.Categories() {
			fmt.Fprintf(out, "  %s: %d\n", cat, sum.ByCategory[cat])
		}
		return nil
	},
}

var formatFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Reindent files flagged with indentation issues in a check report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := format.LoadReport(fmtReportPath)
		if err != nil {
			return err
		}
		res := format.FixReport(report, fmtBackupDir, slog.Default())

		out := cmd.OutOrStdout()
		for _, p := range res.Fixed {
			fmt.Fprintf(out, "Fixed: %s\n", p)
		}
		fmt.Fprintln(out, "\n=== Fix Summary ===")
		fmt.Fprintf(out, "Files fixed: %d\n", len(res.Fixed))
		if len(res.Errors) == 0 {
			fmt.Fprintln(out, "No errors encountered.")
			return nil
		}
		fmt.Fprintln(out, "Errors encountered:")
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %v\n", e)
		}
		return nil
	},
}

var formatHygieneCmd = &cobra.Command{
	Use:   "hygiene",
	Short: "Audit or fix encoding, header directives and whitespace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := format.ParseLineEndings(hygLineEndings)
		if err != nil {
			return err
		}
		results, err := format.RunHygiene(hygRoot, format.HygieneOptions{
			Fix:         hygFix,
			LineEndings: policy,
			Limit:       hygLimit,
			Logger:      slog.Default(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sum := format.Summarize(results)
		findings := 0
		for _, r := range results {
			findings += len(r.Findings)
		}
		if findings > 0 {
			fmt.Fprintf(out, "Scanned %d files: %d errors, %d warnings.\n", sum.Files, sum.Errors, sum.Warnings)
		} else {
			fmt.Fprintf(out, "Scanned %d files: no findings.\n", sum.Files)
		}
		if hygShow > 0 {
			printFiles(out, "Error files:", sum.ErrorFiles, hygShow)
			printFiles(out, "Warning files:", sum.WarningFiles, hygShow)
		}
		if hygFix {
			fmt.Fprintf(out, "Modified %d files.\n", sum.Changed)
		}
		if hygJSONReport != "" {
			if err := format.WriteHygieneReport(hygJSONReport, results); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote JSON report to %s\n", hygJSONReport)
		}
		if sum.Failed(hygStrict) {
			return errors.New("hygiene check failed")
		}
		return nil
	},
}

func printFiles(out io.Writer, title string, files []string, show int) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintln(out, title)
	for i, p := range files {
		if i == show {
			fmt.Fprintf(out, "  ... and %d more\n", len(files)-show)
			break
		}
		fmt.Fprintf(out, "  - %s\n", p)
	}
}

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.AddCommand(formatListCmd, formatCheckCmd, formatFixCmd, formatHygieneCmd)

	formatCmd.PersistentFlags().StringVar(&fmtListFile, "input-list", "ahk_files_list.txt", "File list, one path per line")
	formatCmd.PersistentFlags().StringVar(&fmtReportPath, "report", "formatting_issues_report.json", "Check report path")

	formatListCmd.Flags().StringVar(&fmtListRoot, "root", "data/Scripts", "Directory to list")
	formatCheckCmd.Flags().StringVar(&fmtCheckRoot, "root", "", "Check every .ahk file under this directory instead of the file list")
	formatFixCmd.Flags().StringVar(&fmtBackupDir, "backup-dir", "backup", "Directory receiving the original files")

	f := formatHygieneCmd.Flags()
	f.StringVar(&hygRoot, "root", "data/Scripts", "Root directory to scan")
	f.BoolVar(&hygFix, "fix", false, "Apply safe fixes in place (BOM, whitespace, header ordering)")
	f.BoolVar(&hygStrict, "strict", false, "Treat warnings as errors")
	f.StringVar(&hygLineEndings, "line-endings", string(format.LineEndingsPreserve), "Line ending policy when writing files: preserve, lf or crlf")
	f.StringVar(&hygJSONReport, "json-report", "", "Optional path to write a JSON report")
	f.IntVar(&hygShow, "show", 20, "Max files to list per severity (0 disables)")
	f.IntVar(&hygLimit, "limit", 0, "Optional max number of files to process")
}
