package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"picpurge/internal/logging"
)

// maxNameCollisions bounds the collision-suffix search when recycling
// files with identical base names.
const maxNameCollisions = 1000

// CopyFile copies a file from src to dst, creating dst's parent directory
// if needed. Permissions of the source file are preserved.
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy contents: %w", err)
	}

	return out.Close()
}

// MoveFile moves a file from src to dst. It tries os.Rename first and
// falls back to copy+delete across filesystem boundaries. If the copy
// succeeds but removing the original fails, the move is still reported
// as successful and the leftover is logged.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		logging.Warn("Copied %s to %s but failed to remove original: %v", src, dst, err)
	}
	return nil
}

// Recycle moves a file into recycleDir, keeping its base name. If a file
// with the same name already exists there, a numeric suffix is appended.
// Returns the destination path the file ended up at.
func Recycle(path, recycleDir string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	if err := os.MkdirAll(recycleDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recycle directory: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(recycleDir, name)

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 1; ; i++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		if i > maxNameCollisions {
			return "", fmt.Errorf("too many name collisions for %s in %s", name, recycleDir)
		}
		dest = filepath.Join(recycleDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}

	if err := MoveFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// EnsureDir creates dir (and parents) if it does not exist and verifies
// it is writable.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)
	return nil
}
