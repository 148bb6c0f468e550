package sorter

import (
	"fmt"
	"path/filepath"
	"strings"

	"picpurge/internal/database"
	"picpurge/internal/fileops"
	"picpurge/internal/logging"
)

// Sorter relocates canonical, non-recycled images into a
// year/month hierarchy named by capture time. The record id is part of
// the file name, which keeps same-second captures from colliding.
type Sorter struct {
	store *database.Store
}

func New(store *database.Store) *Sorter {
	return &Sorter{store: store}
}

// TargetPath derives the deterministic destination for one record
// under base: <base>/<year>/<month>/<timestamp>.<zero-padded id>.<ext>.
func TargetPath(base string, rec database.ImageRecord) string {
	ext := strings.ToLower(filepath.Ext(rec.FilePath))
	name := fmt.Sprintf("%s.%06d%s", rec.CreatedAt.Format("20060102150405"), rec.ID, ext)
	return filepath.Join(base, rec.CreatedAt.Format("2006"), rec.CreatedAt.Format("01"), name)
}

// Sort relocates every canonical image. With destination empty, files
// are moved within root and their stored paths updated; with a
// destination set, files are copied there and the originals (and their
// records) stay untouched. Per-file failures are logged and skipped.
func (s *Sorter) Sort(root, destination string) (sorted int, err error) {
	records, err := s.store.CanonicalImages()
	if err != nil {
		return 0, fmt.Errorf("loading canonical images: %w", err)
	}

	base := root
	copyMode := destination != ""
	if copyMode {
		base = destination
	}

	for _, rec := range records {
		target := TargetPath(base, rec)
		if target == rec.FilePath {
			continue
		}
		if err := fileops.EnsureDir(filepath.Dir(target)); err != nil {
			logging.Error("creating %s: %v", filepath.Dir(target), err)
			continue
		}

		if copyMode {
			if err := fileops.CopyFile(rec.FilePath, target); err != nil {
				logging.Error("copying %s to %s: %v", rec.FilePath, target, err)
				continue
			}
		} else {
			if err := fileops.MoveFile(rec.FilePath, target); err != nil {
				logging.Error("moving %s to %s: %v", rec.FilePath, target, err)
				continue
			}
			if err := s.store.UpdateFilePath(rec.ID, target); err != nil {
				logging.Error("updating stored path for id %d: %v", rec.ID, err)
			}
		}
		sorted++
		logging.Debug("sorted %s to %s", rec.FilePath, target)
	}

	logging.Info("sorted %d of %d canonical images", sorted, len(records))
	return sorted, nil
}
