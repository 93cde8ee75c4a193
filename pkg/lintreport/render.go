package lintreport

import (
	"fmt"
	"strings"
)

const (
	// MinDirFiles is the smallest directory listed in the directory table.
	MinDirFiles = 5
	topMessages = 20
	topPerCat   = 3
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 70)
)

// Render formats an analysis as the plain-text corpus report.
func Render(a Analysis) string {
	var b strings.Builder
	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n", heavyRule, title, heavyRule)
	}

	s := a.Summary
	section("AHK V2 SCRIPT CORPUS - LINTER ANALYSIS")
	fmt.Fprintf(&b, "\nTotal Files Analyzed: %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "Files with Errors: %d (%.1f%%)\n", s.FilesWithErrors, percent(s.FilesWithErrors, s.TotalFiles))
	fmt.Fprintf(&b, "Files with Warnings: %d (%.1f%%)\n", s.FilesWithWarnings, percent(s.FilesWithWarnings, s.TotalFiles))
	fmt.Fprintf(&b, "Total Errors: %d\n", s.TotalErrors)
	fmt.Fprintf(&b, "Total Warnings: %d\n", s.TotalWarnings)
	fmt.Fprintf(&b, "\n✓ Clean Files (0 errors): %d (%.1f%%)\n", a.Clean(), percent(a.Clean(), s.TotalFiles))

	section("DIRECTORY ANALYSIS")
	fmt.Fprintf(&b, "\n%-20s %7s %7s %8s %8s\n", "Directory", "Total", "Errors", "Error%", "Quality")
	b.WriteString(lightRule + "\n")
	perfect, perfectFiles := 0, 0
	for _, d := range a.Directories {
		if d.Total < MinDirFiles {
			continue
		}
		mark := " "
		if d.Perfect() {
			mark = "✓"
			perfect++
			perfectFiles += d.Total
		}
		fmt.Fprintf(&b, "%s %-18s %7d %7d %7.1f%% %7.1f%%\n",
			mark, d.Name, d.Total, d.WithErrors, d.ErrorPercent(), d.QualityPercent())
	}
	fmt.Fprintf(&b, "\n%d directories with 100%% clean files (%d total files)\n", perfect, perfectFiles)

	section("ERROR TYPE ANALYSIS")
	b.WriteString("\nTop 20 Most Common Errors:\n")
	fmt.Fprintf(&b, "%6s  %s\n", "Count", "Error Message")
	b.WriteString(lightRule + "\n")
	total := 0
	for i, m := range a.Messages {
		total += m.Count
		if i < topMessages {
			fmt.Fprintf(&b, "%6d  %s\n", m.Count, m.Message)
		}
	}
	b.WriteString("\n" + lightRule + "\nError Categories:\n" + lightRule + "\n")
	for _, c := range a.Categories {
		if len(c.Messages) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %d errors (%.1f%%)\n", c.Name, c.Total, percent(c.Total, total))
		for i, m := range c.Messages {
			if i == topPerCat {
				break
			}
			fmt.Fprintf(&b, "  [%4dx] %s\n", m.Count, m.Message)
		}
	}

	section(fmt.Sprintf("MOST PROBLEMATIC FILES (%d+ errors)", ProblematicThreshold))
	fmt.Fprintf(&b, "\n%6s  File\n", "Errors")
	b.WriteString(lightRule + "\n")
	for _, f := range a.Problematic {
		fmt.Fprintf(&b, "%6d  %s\n", f.Errors, f.File)
	}
	fmt.Fprintf(&b, "\nTotal: %d files with %d+ errors\n", len(a.Problematic), ProblematicThreshold)

	section("RECOMMENDATIONS")
	fmt.Fprintf(&b, `
1. Exclude intentional test-case directories (files that exist to trigger errors)
2. Add missing library files referenced by #Include
3. Tag files using v2.1-alpha features (#Module, Export)
4. Manually review files with %d+ errors

For training data:
- Use immediately: %d files with 0 errors (%.1f%% of corpus)
- Review before use: Files with 1-10 errors (likely false positives)
- Exclude or fix: %d files with %d+ errors
`, ProblematicThreshold, a.Clean(), percent(a.Clean(), s.TotalFiles), len(a.Problematic), ProblematicThreshold)
	b.WriteString(heavyRule + "\n")
	return b.String()
}
