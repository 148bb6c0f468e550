package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"picpurge/internal/logging"
)

const selectColumns = `
	id, file_path, file_name, file_size, content_hash, width, height,
	device_make, device_model, lens_model, created_at, phash, thumbnail_ref,
	is_duplicate, duplicate_of, similar_group, is_recycled
`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc rowScanner) (ImageRecord, error) {
	var rec ImageRecord
	var width, height sql.NullInt64
	var make, model, lens, phash, thumbRef, similar sql.NullString
	var createdAt string
	var duplicateOf sql.NullInt64

	err := sc.Scan(
		&rec.ID, &rec.FilePath, &rec.FileName, &rec.FileSize, &rec.ContentHash,
		&width, &height, &make, &model, &lens, &createdAt, &phash, &thumbRef,
		&rec.IsDuplicate, &duplicateOf, &similar, &rec.IsRecycled,
	)
	if err != nil {
		return rec, err
	}

	if width.Valid {
		w := int(width.Int64)
		rec.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		rec.Height = &h
	}
	if make.Valid {
		rec.DeviceMake = &make.String
	}
	if model.Valid {
		rec.DeviceModel = &model.String
	}
	if lens.Valid {
		rec.LensModel = &lens.String
	}
	if phash.Valid {
		rec.PerceptualHash = &phash.String
	}
	if thumbRef.Valid {
		rec.ThumbnailRef = &thumbRef.String
	}
	if duplicateOf.Valid {
		rec.DuplicateOfID = &duplicateOf.Int64
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	} else {
		logging.Warn("Could not parse created_at %q for image %d: %v", createdAt, rec.ID, err)
	}

	if similar.Valid && similar.String != "" {
		if err := json.Unmarshal([]byte(similar.String), &rec.SimilarGroup); err != nil {
			logging.Warn("Could not parse similar_group for image %d: %v", rec.ID, err)
		}
	}

	return rec, nil
}

func (s *Store) queryRecords(operation, query string, args ...interface{}) ([]ImageRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", operation, err)
	}
	defer rows.Close()

	var recs []ImageRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			err = fmt.Errorf("%s scan failed: %w", operation, scanErr)
			return nil, err
		}
		recs = append(recs, rec)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s rows failed: %w", operation, err)
	}
	return recs, nil
}

// AllImages returns every live (non-recycled) record, ordered by id.
func (s *Store) AllImages() ([]ImageRecord, error) {
	return s.queryRecords("all_images",
		`SELECT `+selectColumns+` FROM images WHERE is_recycled = 0 ORDER BY id ASC`)
}

// GetByPath returns the record for a file path, recycled or not.
func (s *Store) GetByPath(path string) (*ImageRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_by_path", start, err) }()

	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM images WHERE file_path = ?`, path)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID returns the record with the given id.
func (s *Store) GetByID(id int64) (*ImageRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_by_id", start, err) }()

	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM images WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// HashGroups returns, for every content hash shared by two or more live
// records, the group's members sorted by ascending id.
func (s *Store) HashGroups() ([]HashGroup, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("hash_groups", start, err) }()

	rows, err := s.db.Query(`
		SELECT content_hash FROM images
		WHERE is_recycled = 0
		GROUP BY content_hash HAVING COUNT(*) > 1
		ORDER BY content_hash`)
	if err != nil {
		return nil, fmt.Errorf("hash group query failed: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if scanErr := rows.Scan(&h); scanErr != nil {
			err = fmt.Errorf("hash group scan failed: %w", scanErr)
			return nil, err
		}
		hashes = append(hashes, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("hash group rows failed: %w", err)
	}

	groups := make([]HashGroup, 0, len(hashes))
	for _, h := range hashes {
		recs, qErr := s.queryRecords("hash_group_members",
			`SELECT `+selectColumns+` FROM images WHERE content_hash = ? AND is_recycled = 0 ORDER BY id ASC`, h)
		if qErr != nil {
			err = qErr
			return nil, err
		}
		groups = append(groups, HashGroup{ContentHash: h, Records: recs})
	}
	return groups, nil
}

// SimilarityCandidates returns live records eligible for the similarity
// pass: perceptual hash present and dimensions known.
func (s *Store) SimilarityCandidates() ([]ImageRecord, error) {
	return s.queryRecords("similarity_candidates",
		`SELECT `+selectColumns+` FROM images
		 WHERE is_recycled = 0 AND phash IS NOT NULL AND phash != ''
		   AND width IS NOT NULL AND height IS NOT NULL
		 ORDER BY id ASC`)
}

// CanonicalImages returns live records that are not duplicates, ordered
// by id; this is the set the sorter relocates.
func (s *Store) CanonicalImages() ([]ImageRecord, error) {
	return s.queryRecords("canonical_images",
		`SELECT `+selectColumns+` FROM images
		 WHERE is_recycled = 0 AND is_duplicate = 0 ORDER BY id ASC`)
}

// DuplicatesOf returns the live duplicates pointing at the given
// canonical id, ordered by id.
func (s *Store) DuplicatesOf(canonicalID int64) ([]ImageRecord, error) {
	return s.queryRecords("duplicates_of",
		`SELECT `+selectColumns+` FROM images
		 WHERE is_recycled = 0 AND duplicate_of = ? ORDER BY id ASC`, canonicalID)
}

// SetDuplicate updates one record's duplicate marking. duplicateOf must
// be nil exactly when isDuplicate is false.
func (s *Store) SetDuplicate(id int64, isDuplicate bool, duplicateOf *int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_duplicate", start, err) }()

	_, err = s.db.Exec(`UPDATE images SET is_duplicate = ?, duplicate_of = ? WHERE id = ?`,
		isDuplicate, duplicateOf, id)
	if err != nil {
		return fmt.Errorf("failed to update duplicate status for image %d: %w", id, err)
	}
	return nil
}

// SetSimilarGroup replaces one record's similar-group membership with the
// given ids (sorted by the caller). nil or empty clears the field.
func (s *Store) SetSimilarGroup(id int64, ids []int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_similar_group", start, err) }()

	var value interface{}
	if len(ids) > 0 {
		data, marshalErr := json.Marshal(ids)
		if marshalErr != nil {
			err = fmt.Errorf("failed to marshal similar group for image %d: %w", id, marshalErr)
			return err
		}
		value = string(data)
	}

	_, err = s.db.Exec(`UPDATE images SET similar_group = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("failed to update similar group for image %d: %w", id, err)
	}
	return nil
}

// MarkRecycled flags the record at the given path as recycled, excluding
// it from all future analysis and listings.
func (s *Store) MarkRecycled(path string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("mark_recycled", start, err) }()

	_, err = s.db.Exec(`UPDATE images SET is_recycled = 1 WHERE file_path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to mark %s recycled: %w", path, err)
	}
	return nil
}

// UpdateFilePath records a relocation performed by the sorter.
func (s *Store) UpdateFilePath(id int64, newPath string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_file_path", start, err) }()

	_, err = s.db.Exec(`UPDATE images SET file_path = ? WHERE id = ?`, newPath, id)
	if err != nil {
		return fmt.Errorf("failed to update path for image %d: %w", id, err)
	}
	return nil
}

// DeleteByPath removes the record for a file path entirely, rather
// than flagging it recycled. Used by the purge variant of recycling,
// after any duplicate-group rebalancing has already happened.
func (s *Store) DeleteByPath(path string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_by_path", start, err) }()

	_, err = s.db.Exec(`DELETE FROM images WHERE file_path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete record for %s: %w", path, err)
	}
	return nil
}

// CalculateStats computes summary statistics over the live record set.
func (s *Store) CalculateStats() (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	var stats Stats

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalImages, `SELECT COUNT(*) FROM images WHERE is_recycled = 0`},
		{&stats.DuplicateCount, `SELECT COUNT(*) FROM images WHERE is_recycled = 0 AND is_duplicate = 1`},
		{&stats.DuplicateGroupCount, `SELECT COUNT(DISTINCT content_hash) FROM images WHERE is_recycled = 0 AND is_duplicate = 1`},
		{&stats.UniqueImageCount, `SELECT COUNT(*) FROM images WHERE is_recycled = 0 AND is_duplicate = 0 AND (similar_group IS NULL OR similar_group = '')`},
	}

	for _, c := range counts {
		if err = s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return stats, fmt.Errorf("stats query failed: %w", err)
		}
	}

	stats.SimilarGroupCount, err = s.countSimilarGroups()
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// countSimilarGroups counts connected components among records with a
// similar group. Every member stores the *other* member ids, so the
// component is identified by the minimum id across the member and its
// listed peers.
func (s *Store) countSimilarGroups() (int, error) {
	rows, err := s.db.Query(`
		SELECT id, similar_group FROM images
		WHERE is_recycled = 0 AND similar_group IS NOT NULL AND similar_group != ''`)
	if err != nil {
		return 0, fmt.Errorf("similar group count query failed: %w", err)
	}
	defer rows.Close()

	reps := make(map[int64]bool)
	for rows.Next() {
		var id int64
		var groupJSON string
		if err := rows.Scan(&id, &groupJSON); err != nil {
			return 0, fmt.Errorf("similar group count scan failed: %w", err)
		}

		var peers []int64
		if err := json.Unmarshal([]byte(groupJSON), &peers); err != nil {
			logging.Warn("Could not parse similar_group for image %d: %v", id, err)
			continue
		}

		rep := id
		for _, p := range peers {
			if p < rep {
				rep = p
			}
		}
		reps[rep] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("similar group count rows failed: %w", err)
	}
	return len(reps), nil
}
