package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/rules"
)

var (
	rulesPack     string
	rulesJSON     bool
	rulesDiagJSON string
)

// loadEngine loads the rule sets whose source documents exist in the
// project, plus an optional custom pack. With nothing found it falls back
// to the embedded pack.
func loadEngine() (*rules.Engine, error) {
	root, _, err := project()
	if err != nil {
		return nil, err
	}
	engine := rules.NewEngine(root)
	if err := engine.LoadAll(); err != nil {
		return nil, err
	}
	if rulesPack != "" {
		pack, err := rules.LoadPack(rulesPack)
		if err != nil {
			return nil, err
		}
		engine.Add(pack.RuleSets...)
	}
	if len(engine.RuleSets()) == 0 {
		slog.Debug("no rule documents found, using embedded pack", "root", root)
		if err := engine.LoadBuiltin(); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the example rules and validate scripts against them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %d rules from %d rulesets\n", len(engine.Rules()), len(engine.RuleSets()))
		fmt.Fprintf(out, "Required rules: %d\n", len(engine.Required()))
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		for _, r := range engine.Rules() {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", r.Severity, r.ID, r.Title)
		}
		return nil
	},
}

var rulesPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the system prompt built from all rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), engine.SystemPrompt())
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Quick-validate scripts against the rules without a linter",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		results := make(map[string][]rules.Issue, len(args))
		for _, path := range args {
			content, err := fs.ReadText(path)
			if err != nil {
				if rulesJSON {
					return err
				}
				fmt.Fprintf(out, "File not found: %s\n", path)
				continue
			}
			issues := engine.ValidateQuick(content)
			if rulesJSON {
				results[path] = issues
				continue
			}
			fmt.Fprintf(out, "\n%s:\n", path)
			if len(issues) == 0 {
				fmt.Fprintln(out, "  No issues found")
				continue
			}
			for _, is := range issues {
				line := "?"
				if is.Line > 0 {
					line = fmt.Sprint(is.Line)
				}
				fmt.Fprintf(out, "  [%s] Line %s: %s\n", is.Severity, line, is.Message)
			}
		}
		if !rulesJSON {
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if len(args) == 1 {
			issues := results[args[0]]
			if issues == nil {
				issues = []rules.Issue{}
			}
			return enc.Encode(issues)
		}
		return enc.Encode(results)
	},
}

var rulesFixPromptCmd = &cobra.Command{
	Use:   "fix-prompt <file>",
	Short: "Print the fix request prompt for one script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		content, err := fs.ReadText(args[0])
		if err != nil {
			return err
		}
		var diags []core.Diagnostic
		if rulesDiagJSON != "" {
			data, err := os.ReadFile(rulesDiagJSON)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &diags); err != nil {
				return fmt.Errorf("failed to parse diagnostics %s: %w", rulesDiagJSON, err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), engine.FixPrompt(content, diags))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesPromptCmd, rulesValidateCmd, rulesFixPromptCmd)
	rulesCmd.PersistentFlags().StringVar(&rulesPack, "pack", "", "Additional YAML rule pack")
	rulesValidateCmd.Flags().BoolVar(&rulesJSON, "json", false, "Print issues as JSON")
	rulesFixPromptCmd.Flags().StringVar(&rulesDiagJSON, "diagnostics", "", "JSON array of linter diagnostics to include")
}
