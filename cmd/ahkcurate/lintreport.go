package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/lintreport"
)

var (
	lintRoot string
	lintJSON bool

	problemsPath    string
	problemsIndex   int
	problemsMatch   string
	problemsContext int
	problemsChat    string
	problemsHarmony string
)

var lintReportCmd = &cobra.Command{
	Use:   "lint-report <linter_report.json | ->",
	Short: "Analyze a JSON linter report of the script corpus",
	Long: `Analyze a JSON linter report of the script corpus. Use - to read the
report from stdin, e.g.

  npx ts-node index.ts lint path=../../data/Scripts --recursive --format=json | ahkcurate lint-report -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			report lintreport.Report
			err    error
		)
		if args[0] == "-" {
			report, err = lintreport.Decode(cmd.InOrStdin())
		} else {
			report, err = lintreport.Load(args[0])
		}
		if err != nil {
			return err
		}

		root := lintRoot
		if root == "" {
			_, cfg, err := project()
			if err != nil {
				return err
			}
			root = cfg.ScriptsDir
		}
		a := lintreport.Analyze(report, root)
		if lintJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		}
		fmt.Fprint(cmd.OutOrStdout(), lintreport.Render(a))
		return nil
	},
}

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "Export one editor problem with code context as a chat prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		byIndex := cmd.Flags().Changed("index")
		if byIndex == (problemsMatch != "") {
			return errors.New("exactly one of --index or --match is required")
		}
		problems, err := lintreport.LoadProblems(problemsPath)
		if err != nil {
			return err
		}
		var p lintreport.Problem
		if byIndex {
			p, err = lintreport.SelectIndex(problems, problemsIndex)
		} else {
			p, err = lintreport.SelectMatch(problems, problemsMatch)
		}
		if err != nil {
			return err
		}

		chunk, source := lintreport.Chunk(p, problemsContext)
		out := cmd.OutOrStdout()
		if problemsChat != "" {
			if err := lintreport.AppendText(problemsChat, chunk); err != nil {
				return err
			}
			fmt.Fprintf(out, "Appended problem from %s to %s\n", source, problemsChat)
		}
		if problemsHarmony != "" {
			if err := lintreport.AppendHarmony(problemsHarmony, chunk); err != nil {
				return err
			}
			fmt.Fprintf(out, "Appended Harmony chat row to %s\n", problemsHarmony)
		}
		if problemsChat == "" && problemsHarmony == "" {
			fmt.Fprintln(out, chunk)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintReportCmd, problemsCmd)
	lintReportCmd.Flags().StringVar(&lintRoot, "root", "", "Path prefix stripped from report files (default: the project scripts directory)")
	lintReportCmd.Flags().BoolVar(&lintJSON, "json", false, "Print the analysis as JSON")

	f := problemsCmd.Flags()
	f.StringVar(&problemsPath, "problems", "data/ProblemsLog.json", "Path to the exported problems JSON")
	f.IntVar(&problemsIndex, "index", 0, "Zero-based index of the problem to export")
	f.StringVar(&problemsMatch, "match", "", "Case-insensitive substring matched against the resource path")
	f.IntVar(&problemsContext, "context", lintreport.DefaultContext, "Lines of context around the error line")
	f.StringVar(&problemsChat, "chat-file", "", "Append the plain-text chat chunk to this file")
	f.StringVar(&problemsHarmony, "harmony-jsonl", "", "Append a Harmony chat row to this JSONL file")
}
