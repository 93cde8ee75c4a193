// Package fs contains the filesystem adapters shared by the curation tools:
// atomic writes, sorted glob walking, BOM-aware text decoding, backups and a
// JSON-file review status store.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "ahkcurate-tmp-"
)

// WriteFileAtomic writes data to a file atomically by writing to a temp file
// in the same directory and then renaming it over the target.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}

	return nil
}

// WriteFileAtomicMkdir creates the parent directories before an atomic write.
func WriteFileAtomicMkdir(filename string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	return WriteFileAtomic(filename, data, perm)
}

// ReplaceFile overwrites an existing file atomically, keeping its permissions.
func ReplaceFile(filename string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(filename); err == nil {
		perm = info.Mode().Perm()
	}
	return WriteFileAtomic(filename, data, perm)
}
