package fs

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BOM is the UTF-8 byte order mark.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// HasBOM reports whether data starts with a UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, BOM)
}

// DecodeText decodes data as UTF-8, replacing invalid sequences with U+FFFD
// and dropping a leading byte order mark.
func DecodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		out = bytes.ToValidUTF8(bytes.TrimPrefix(data, BOM), []byte("\uFFFD"))
	}
	return strings.TrimPrefix(string(out), "\ufeff")
}

// ReadText reads a file with DecodeText semantics.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeText(data), nil
}

// SplitLines splits text on \n, \r\n and \r, dropping a single trailing
// terminator. It mirrors how editors count lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(ToLF(s), "\n")
	return strings.Split(s, "\n")
}

// ToLF converts \r\n and lone \r terminators to \n.
func ToLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
