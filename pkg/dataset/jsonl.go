package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// maxLineSize bounds a single JSONL line. Snippets are small, but reference
// dumps can carry long descriptions.
const maxLineSize = 64 << 20

// EncodeJSONL writes one JSON object per value. HTML characters and
// non-ASCII text are written verbatim.
func EncodeJSONL[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode line %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteJSONL replaces path with the records as JSON lines, creating parent
// directories as needed.
func WriteJSONL(path string, records []core.Record) error {
	return writeLines(path, records)
}

func writeLines[T any](path string, values []T) error {
	var buf bytes.Buffer
	if err := EncodeJSONL(&buf, values); err != nil {
		return err
	}
	if err := fs.WriteFileAtomicMkdir(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// AppendJSONL appends values to path as JSON lines.
func AppendJSONL[T any](path string, values []T) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := EncodeJSONL(f, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ScanJSONL calls fn for every non-blank line of r, decoded into T.
// Line numbers are 1-based.
func ScanJSONL[T any](r io.Reader, fn func(line int, v T) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(line, v); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadJSONL loads every record of a JSONL file.
func ReadJSONL(path string) ([]core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var out []core.Record
	err = ScanJSONL(f, func(_ int, rec core.Record) error {
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}
