package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"picpurge/internal/logging"
	"picpurge/internal/mediatypes"
)

// IsImageFile reports whether the path has a recognized image or RAW
// extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return mediatypes.GetFileType(ext) != mediatypes.FileTypeOther
}

// FindImageFiles recursively enumerates candidate image files under each
// of the given paths. Directories are walked; regular files are accepted
// directly when their extension matches. Hidden files and directories are
// skipped. Per-path access errors are logged and skipped, never fatal.
func FindImageFiles(paths ...string) ([]string, error) {
	var files []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			logging.Warn("Cannot access path %s: %v", root, err)
			continue
		}

		if !info.IsDir() {
			if IsImageFile(root) {
				files = append(files, root)
			} else {
				logging.Debug("Skipping non-image file: %s", root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logging.Warn("Error accessing path %s: %v", path, err)
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") && path != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.IsDir() && IsImageFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			logging.Warn("Error walking path %s: %v", root, err)
		}
	}

	return files, nil
}

// Stream feeds the given paths over a channel, honoring context
// cancellation. The channel is closed when all paths have been sent or
// the context is done. This is the shape the pipeline coordinator
// consumes: a finite stream of candidate file paths.
func Stream(ctx context.Context, paths []string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, p := range paths {
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
