package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/normalize"
)

var (
	normRoot     string
	normPatterns []string
	normGlobs    []string
	normDryRun   bool
	normReport   string

	fixupRoot   string
	fixupNames  []string
	fixupExts   []string
	fixupDryRun bool
	fixupList   bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Apply regex search/replace pairs to converted snippets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := append([]normalize.Pair{}, normalize.DefaultPairs...)
		for _, spec := range normPatterns {
			p, err := normalize.ParsePattern(spec)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
		repls, err := normalize.Compile(pairs)
		if err != nil {
			return err
		}

		edits, err := normalize.Run(cmd.Context(), normRoot, repls, normalize.Options{
			Patterns: normGlobs,
			DryRun:   normDryRun,
			Logger:   slog.Default(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range edits {
			if len(e.Replacements) == 0 {
				continue
			}
			fmt.Fprintf(out, "[+] %s:\n", e.Path)
			for _, note := range e.Replacements {
				fmt.Fprintf(out, "    - %s\n", note)
			}
		}
		if normReport != "" {
			if err := normalize.WriteReport(normReport, edits); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote report to %s\n", normReport)
		}
		if normDryRun {
			fmt.Fprintln(out, "Dry run complete; no files written.")
		} else {
			fmt.Fprintln(out, "Normalization complete.")
		}
		return nil
	},
}

var fixupCmd = &cobra.Command{
	Use:   "fixup",
	Short: "Apply targeted whole-file rewrites (version downgrade, string repetition, JSON include)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if fixupList {
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, f := range normalize.Fixups {
				fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Description)
			}
			return w.Flush()
		}
		if len(fixupNames) == 0 {
			return fmt.Errorf("no fixups selected; use --apply with one of: %s", fixupNamesList())
		}
		fixups, err := normalize.LookupFixups(fixupNames...)
		if err != nil {
			return err
		}
		results, err := normalize.RunFixups(cmd.Context(), fixupRoot, fixups, normalize.FixupOptions{
			Extensions: fixupExts,
			DryRun:     fixupDryRun,
			Logger:     slog.Default(),
		})
		if err != nil {
			return err
		}
		verb := "Updated"
		if fixupDryRun {
			verb = "Would update"
		}
		for _, r := range results {
			fmt.Fprintf(out, "%s: %s (%s)\n", verb, r.Path, strings.Join(r.Applied, ", "))
		}
		fmt.Fprintf(out, "%d files changed.\n", len(results))
		return nil
	},
}

func fixupNamesList() string {
	names := make([]string, len(normalize.Fixups))
	for i, f := range normalize.Fixups {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(normalizeCmd, fixupCmd)

	f := normalizeCmd.Flags()
	f.StringVar(&normRoot, "root", "data/raw_scripts", "Root directory to scan")
	f.StringArrayVar(&normPatterns, "pattern", nil, "Additional search/replace pair 'regex=replacement'; repeatable")
	f.StringSliceVar(&normGlobs, "glob", nil, "File globs relative to the root (default **/*.ah2)")
	f.BoolVar(&normDryRun, "dry-run", false, "Preview changes without writing files")
	f.StringVar(&normReport, "report", "", "Optional path to write a JSON report of edits")

	g := fixupCmd.Flags()
	g.StringVar(&fixupRoot, "root", "data/Scripts", "Root directory to scan")
	g.StringSliceVar(&fixupNames, "apply", nil, "Fixups to apply, in order")
	g.StringSliceVar(&fixupExts, "ext", nil, "File extensions (default .ahk)")
	g.BoolVar(&fixupDryRun, "dry-run", false, "Report changes without writing files")
	g.BoolVar(&fixupList, "list", false, "List the available fixups")
}
