package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "elements.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadReferenceCSV(t *testing.T) {
	t.Run("Full Row", func(t *testing.T) {
		p := writeCSV(t, "Name,Description,ElementType,SourceFile,Path,Type,ReturnType,Symbol,Parameters\n"+
			"TestFunc,Test function,Function,test.ahk,/test,Function,String,,param1\n")

		recs, err := LoadReferenceCSV(p)
		require.NoError(t, err)
		require.Len(t, recs, 1)

		r := recs[0]
		assert.Equal(t, "You are maintaining a knowledge base of AutoHotkey reference entries.\n"+
			"Element Type: Function\n"+
			"Element Name: TestFunc\n"+
			"Source File: test.ahk\n"+
			"Category Path: /test\n"+
			"Provide the official description and any pertinent usage details.", r.Prompt)
		assert.Equal(t, "Test function\nSignature Type: Function\nReturn Type: String\nParameters: param1\n", r.Response)
		assert.Equal(t, "reference", r.Metadata["record_type"])
		assert.Equal(t, filepath.ToSlash(p), r.Metadata["source_csv"])
	})

	t.Run("Skips Missing Name Or Description", func(t *testing.T) {
		p := writeCSV(t, "Name,Description,ElementType\n"+
			",Description without name,Function\n"+
			"NameWithoutDescription,,Function\n"+
			"ValidEntry,Valid description,Function\n")

		recs, err := LoadReferenceCSV(p)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0].Prompt, "ValidEntry")
	})

	t.Run("Defaults Element Type", func(t *testing.T) {
		p := writeCSV(t, "Name,Description\nA_Index,Loop counter\n")

		recs, err := LoadReferenceCSV(p)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Unknown", recs[0].Metadata["element_type"])
		assert.Equal(t, "Loop counter\n", recs[0].Response)
	})

	t.Run("Handles BOM", func(t *testing.T) {
		p := writeCSV(t, "\xEF\xBB\xBFName,Description,ElementType\nTestFunc,Test function,Function\n")

		recs, err := LoadReferenceCSV(p)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0].Prompt, "TestFunc")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadReferenceCSV(filepath.Join(t.TempDir(), "nonexistent.csv"))
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
