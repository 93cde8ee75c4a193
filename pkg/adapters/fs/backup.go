package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BackupTimeLayout is the timestamp layout used in timestamped backup names.
const BackupTimeLayout = "20060102-150405"

// CopyFile copies src to dst, preserving the file mode and modification time.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// BackupSibling copies path to path+suffix and returns the backup path.
func BackupSibling(path, suffix string) (string, error) {
	dst := path + suffix
	if err := CopyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// BackupTimestamped copies path to "<path>.backup-YYYYmmdd-HHMMSS".
func BackupTimestamped(path string, now time.Time) (string, error) {
	return BackupSibling(path, ".backup-"+now.Format(BackupTimeLayout))
}

// BackupInto copies path into dir, keeping only the base name.
func BackupInto(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(path))
	if err := CopyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Restore copies a backup over the original file.
func Restore(backup, path string) error {
	return CopyFile(backup, path)
}
