package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// Sample issue severities, in report order.
const (
	SeverityError      = "ERROR"
	SeverityRequired   = "REQUIRED"
	SeverityConvention = "CONVENTION"
	SeverityNaming     = "NAMING"
	SeverityContent    = "CONTENT"
	SeverityEncoding   = "ENCODING"
)

// SeverityOrder is the order severities appear in the detailed report.
var SeverityOrder = []string{
	SeverityError, SeverityRequired, SeverityConvention,
	SeverityNaming, SeverityContent, SeverityEncoding,
}

// maxDetailed caps the detailed issues listed per severity.
const maxDetailed = 50

var (
	problemNamePatterns = []string{`V1toV2`, `Issue[_#]?\d+`, `StressTest`, `converter`, `Issue_#\d+`}
	converterPatterns   = []string{`V1toV2`, `converter\s+test`, `conversion\s+artifact`}

	problemNames   = compileFold(problemNamePatterns)
	converterMarks = compileFold(converterPatterns)

	sampleRequires = regexp.MustCompile(`(?m)^\s*#Requires\s+AutoHotkey\s+v2`)
	sampleSingle   = regexp.MustCompile(`(?m)^\s*#SingleInstance`)
	issueComment   = regexp.MustCompile(`;.*[Ii]ssue\s*#?\d+`)
)

func compileFold(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// SampleStats counts files per problem.
type SampleStats struct {
	TotalFiles            int `json:"total_files"`
	MissingRequires       int `json:"missing_requires"`
	MissingSingleInstance int `json:"missing_singleinstance"`
	MissingDescription    int `json:"missing_description"`
	ProblematicNames      int `json:"problematic_names"`
	BOMEncoding           int `json:"bom_encoding"`
	IssueReferences       int `json:"issue_references"`
	ConverterArtifacts    int `json:"converter_artifacts"`
}

// SampleIssue is one convention violation.
type SampleIssue struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SampleReport is the result of ValidateSamples.
type SampleReport struct {
	Stats  SampleStats   `json:"stats"`
	Issues []SampleIssue `json:"issues"`
}

// Failed reports whether any file lacks #Requires, the one blocking problem.
func (r SampleReport) Failed() bool {
	return r.Stats.MissingRequires > 0
}

type sampleValidator struct {
	report SampleReport
}

func (v *sampleValidator) add(rel, sev, msg string) {
	v.report.Issues = append(v.report.Issues, SampleIssue{File: rel, Severity: sev, Message: msg})
}

// ValidateSamples checks every .ahk file under root against the example
// conventions: naming, encoding, header directives, a leading description
// and the absence of converter artefacts.
func ValidateSamples(root string, logger *slog.Logger) (SampleReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := scriptFiles(root)
	if err != nil {
		return SampleReport{}, err
	}
	v := &sampleValidator{report: SampleReport{Issues: []SampleIssue{}}}
	v.report.Stats.TotalFiles = len(files)
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		v.file(path, rel, logger)
	}
	return v.report, nil
}

func (v *sampleValidator) file(path, rel string, logger *slog.Logger) {
	st := &v.report.Stats
	name := filepath.Base(path)
	for i, re := range problemNames {
		if re.MatchString(name) {
			st.ProblematicNames++
			v.add(rel, SeverityNaming, "Problematic filename pattern: "+problemNamePatterns[i])
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read file", "path", path, "error", err)
		v.add(rel, SeverityError, fmt.Sprintf("Failed to read file: %v", err))
		return
	}
	if fs.HasBOM(raw) {
		st.BOMEncoding++
		v.add(rel, SeverityEncoding, "File has UTF-8 BOM (should be UTF-8 without BOM)")
		raw = raw[len(fs.BOM):]
	}
	if !utf8.Valid(raw) {
		v.add(rel, SeverityError, "Failed to read file: invalid UTF-8")
		return
	}
	content := string(raw)

	if !sampleRequires.MatchString(content) {
		st.MissingRequires++
		v.add(rel, SeverityRequired, "Missing #Requires AutoHotkey v2.0 directive")
	}
	if !sampleSingle.MatchString(content) {
		st.MissingSingleInstance++
		v.add(rel, SeverityConvention, "Missing #SingleInstance Force directive")
	}
	if !hasDescription(content) {
		st.MissingDescription++
		v.add(rel, SeverityRequired, "Missing clear description at top of file")
	}
	if issueComment.MatchString(content) {
		st.IssueReferences++
		v.add(rel, SeverityContent, "Contains issue reference in comments (should be narrative)")
	}
	for i, re := range converterMarks {
		if re.MatchString(content) {
			st.ConverterArtifacts++
			v.add(rel, SeverityContent, "Contains converter artifact: "+converterPatterns[i])
			break
		}
	}
}

// hasDescription looks for a substantial ';' comment in the first 20 lines
// or a block comment in the first 500 characters.
func hasDescription(content string) bool {
	for _, l := range window(strings.Split(content, "\n"), validateWindow) {
		s := strings.TrimSpace(l)
		if strings.HasPrefix(s, ";") && utf8.RuneCountInString(s) > 5 {
			return true
		}
	}
	return strings.Contains(prefixRunes(content, 500), "/*")
}

func prefixRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// RenderSampleReport renders the human-readable validation report.
func RenderSampleReport(r SampleReport) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", rule)
	line("AHK v2 Training Sample Validation Report")
	line("%s", rule)
	line("")
	line("SUMMARY STATISTICS")
	line("%s", thin)
	s := r.Stats
	line("Total files scanned:              %d", s.TotalFiles)
	line("Files missing #Requires:          %d", s.MissingRequires)
	line("Files missing #SingleInstance:    %d", s.MissingSingleInstance)
	line("Files missing description:        %d", s.MissingDescription)
	line("Files with problematic names:     %d", s.ProblematicNames)
	line("Files with UTF-8 BOM:             %d", s.BOMEncoding)
	line("Files with issue references:      %d", s.IssueReferences)
	line("Files with converter artifacts:   %d", s.ConverterArtifacts)
	line("")

	line("ISSUES BY SEVERITY")
	line("%s", thin)
	counts := make(map[string]int)
	for _, is := range r.Issues {
		counts[is.Severity]++
	}
	sevs := make([]string, 0, len(counts))
	for k := range counts {
		sevs = append(sevs, k)
	}
	sort.Strings(sevs)
	for _, sev := range sevs {
		line("%-15s %5d issues", sev, counts[sev])
	}
	line("")

	if len(r.Issues) > 0 {
		line("DETAILED ISSUES")
		line("%s", thin)
		for _, sev := range SeverityOrder {
			var group []SampleIssue
			for _, is := range r.Issues {
				if is.Severity == sev {
					group = append(group, is)
				}
			}
			if len(group) == 0 {
				continue
			}
			line("\n%s:", sev)
			for _, is := range group[:min(len(group), maxDetailed)] {
				line("  %s", is.File)
				line("    → %s", is.Message)
			}
			if len(group) > maxDetailed {
				line("  ... and %d more", len(group)-maxDetailed)
			}
		}
	}
	line("")
	b.WriteString(rule)
	return b.String()
}
