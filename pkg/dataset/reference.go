package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// ReferenceColumns are the recognised columns of a reference CSV export.
var ReferenceColumns = []string{
	"Name", "Description", "ElementType", "SourceFile", "Path",
	"Type", "ReturnType", "Symbol", "Parameters",
}

// LoadReferenceCSV reads reference entries (functions, variables, directives)
// from a CSV file with a header row. Rows without a name or description are
// skipped. A leading byte order mark is tolerated.
func LoadReferenceCSV(path string) ([]core.Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reference CSV %s: %w", path, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open reference CSV: %w", err)
	}
	defer f.Close()

	return ReadReferenceCSV(f, filepath.ToSlash(path))
}

// ReadReferenceCSV parses reference entries from r. source is recorded in
// the metadata of each record.
func ReadReferenceCSV(r io.Reader, source string) ([]core.Record, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	var records []core.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if rec, ok := referenceRecord(get, source); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func referenceRecord(get func(string) string, source string) (core.Record, bool) {
	name := get("Name")
	description := get("Description")
	if name == "" || description == "" {
		return core.Record{}, false
	}
	elementType := get("ElementType")
	if elementType == "" {
		elementType = "Unknown"
	}
	sourceFile := get("SourceFile")
	logicalPath := get("Path")

	prompt := []string{
		"You are maintaining a knowledge base of AutoHotkey reference entries.",
		"Element Type: " + elementType,
		"Element Name: " + name,
	}
	if sourceFile != "" {
		prompt = append(prompt, "Source File: "+sourceFile)
	}
	if logicalPath != "" {
		prompt = append(prompt, "Category Path: "+logicalPath)
	}
	prompt = append(prompt, "Provide the official description and any pertinent usage details.")

	response := []string{description}
	for _, f := range []struct{ label, col string }{
		{"Signature Type", "Type"},
		{"Return Type", "ReturnType"},
		{"Symbol", "Symbol"},
		{"Parameters", "Parameters"},
	} {
		if v := get(f.col); v != "" {
			response = append(response, f.label+": "+v)
		}
	}

	return core.Record{
		Prompt:   strings.Join(prompt, "\n"),
		Response: strings.TrimSpace(strings.Join(response, "\n")) + "\n",
		Metadata: core.Metadata{
			"record_type":   core.RecordTypeReference,
			"element_type":  elementType,
			"name":          name,
			"source_csv":    source,
			"source_file":   sourceFile,
			"category_path": logicalPath,
		},
	}, true
}
