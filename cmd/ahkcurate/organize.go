package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/organize"
)

var (
	organizeRoot      string
	organizeExecute   bool
	organizeUnmatched bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Move top-level example files into category folders by filename prefix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(organizeRoot); err != nil {
			return fmt.Errorf("base directory does not exist: %s", organizeRoot)
		}
		out := cmd.OutOrStdout()
		rule := strings.Repeat("=", 60)
		fmt.Fprintln(out, rule)
		if organizeExecute {
			fmt.Fprintln(out, "EXECUTING - Files will be moved!")
		} else {
			fmt.Fprintln(out, "DRY RUN MODE - No files will be moved")
			fmt.Fprintln(out, "Use --execute to actually move files")
		}
		fmt.Fprintln(out, rule)

		folders := make([]string, len(organize.DefaultRules))
		for i, r := range organize.DefaultRules {
			folders[i] = r.Folder
		}
		fmt.Fprintf(out, "\nBase directory: %s\n", organizeRoot)
		fmt.Fprintf(out, "Target folders: %s\n\n", strings.Join(folders, ", "))

		st, err := organize.Organize(organizeRoot, organize.Options{Execute: organizeExecute, Logger: slog.Default()})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found %d .ahk files in base directory\n", st.Scanned)
		prefix := "DRY RUN - "
		verb := "Would move"
		if organizeExecute {
			prefix, verb = "", "Moved"
		}
		fmt.Fprintf(out, "%sProcessing files...\n\n", prefix)
		for _, d := range st.CreatedDirs {
			fmt.Fprintf(out, "  Creating directory: %s/\n", d)
		}
		for _, m := range st.Moved {
			fmt.Fprintf(out, "  %s: %s -> %s/\n", verb, m.File, m.Folder)
		}
		for _, e := range st.Errors {
			fmt.Fprintf(out, "  ERROR moving %s: %s\n", e.File, e.Error)
		}
		fmt.Fprint(out, organize.RenderSummary(st))

		if organizeUnmatched && len(st.NoMatch) > 0 {
			fmt.Fprintf(out, "\n%s\nALL UNMATCHED FILES\n%s\n", rule, rule)
			names := append([]string(nil), st.NoMatch...)
			sort.Strings(names)
			for _, f := range names {
				fmt.Fprintf(out, "  %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().StringVar(&organizeRoot, "root", "data/raw_scripts/AHK_v2_Examples", "Directory holding the flat example files")
	organizeCmd.Flags().BoolVar(&organizeExecute, "execute", false, "Actually move files (default is dry-run)")
	organizeCmd.Flags().BoolVar(&organizeUnmatched, "list-unmatched", false, "List all files that don't match any prefix")
}
