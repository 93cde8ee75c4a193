package audit_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/audit"
)

func TestValidateSamples(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Gui", "Window_Basic.ahk"),
		"#Requires AutoHotkey v2.0\n#SingleInstance Force\n; Shows a basic window\nGui()\n")
	write(t, filepath.Join(root, "V1toV2_Issue_123.ahk"),
		"\xef\xbb\xbfx := 1 ; see issue #12\n; V1toV2 converter test\n")
	write(t, filepath.Join(root, "Doc.ahk"),
		"/**\n * Docblock\n */\n#Requires AutoHotkey v2.0\n#SingleInstance\n")
	write(t, filepath.Join(root, "Plain.ahk"), "#Requires AutoHotkey v2.0\n#SingleInstance\nx := 1\n")
	write(t, filepath.Join(root, "Bad.ahk"), "\xff\xfe")

	rep, err := audit.ValidateSamples(root, nil)
	require.NoError(t, err)

	st := rep.Stats
	assert.Equal(t, 5, st.TotalFiles)
	assert.Equal(t, 1, st.MissingRequires)
	assert.Equal(t, 1, st.MissingSingleInstance)
	assert.Equal(t, 1, st.MissingDescription)
	assert.Equal(t, 2, st.ProblematicNames, "V1toV2 and Issue_123 each count")
	assert.Equal(t, 1, st.BOMEncoding)
	assert.Equal(t, 1, st.IssueReferences)
	assert.Equal(t, 1, st.ConverterArtifacts)
	assert.True(t, rep.Failed())

	var bad []audit.SampleIssue
	for _, is := range rep.Issues {
		if is.File == "Bad.ahk" {
			bad = append(bad, is)
		}
	}
	require.Len(t, bad, 1)
	assert.Equal(t, audit.SeverityError, bad[0].Severity)
}

func TestRenderSampleReport(t *testing.T) {
	rep := audit.SampleReport{Stats: audit.SampleStats{TotalFiles: 60, MissingRequires: 60}}
	for i := 0; i < 60; i++ {
		rep.Issues = append(rep.Issues, audit.SampleIssue{
			File:     fmt.Sprintf("f%02d.ahk", i),
			Severity: audit.SeverityRequired,
			Message:  "Missing #Requires AutoHotkey v2.0 directive",
		})
	}
	rep.Issues = append(rep.Issues, audit.SampleIssue{File: "x.ahk", Severity: audit.SeverityError, Message: "Failed to read file: boom"})

	out := audit.RenderSampleReport(rep)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)+"\nAHK v2 Training Sample Validation Report\n"))
	assert.Contains(t, out, "SUMMARY STATISTICS\n"+strings.Repeat("-", 80)+"\n")
	assert.Contains(t, out, "Total files scanned:              60\n")
	assert.Contains(t, out, "ERROR               1 issues\n")
	assert.Contains(t, out, "REQUIRED           60 issues\n")
	assert.Contains(t, out, "  ... and 10 more\n")
	assert.Less(t, strings.Index(out, "\nERROR:\n"), strings.Index(out, "\nREQUIRED:\n"))
	assert.Contains(t, out, "    → Failed to read file: boom\n")
	assert.NotContains(t, out, "f55.ahk")
}
