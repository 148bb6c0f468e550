package database

import (
	"fmt"
	"time"

	"picpurge/internal/logging"
)

// RecycleRecord marks the record at the given path recycled and
// re-balances its duplicate group.
//
// If the recycled record was the canonical member of a group, the
// lowest-id remaining duplicate is promoted to canonical (its duplicate
// flags cleared) and any other members are re-pointed at it; a sole
// remainder simply stops being a duplicate. If the recycled record was
// itself a duplicate, the rest of the group is left as is.
//
// Returns the id of the promoted record, if a promotion happened.
func (s *Store) RecycleRecord(path string) (*int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("recycle_record", start, err) }()

	rec, err := s.GetByPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load record for %s: %w", path, err)
	}

	if err = s.MarkRecycled(path); err != nil {
		return nil, err
	}

	if rec.IsDuplicate {
		// A non-canonical member leaves the group without side effects;
		// the canonical record keeps its status even if the group
		// shrinks to one.
		return nil, nil
	}

	dups, err := s.DuplicatesOf(rec.ID)
	if err != nil {
		return nil, err
	}
	if len(dups) == 0 {
		return nil, nil
	}

	// Promote the lowest-id remaining duplicate, preserving the
	// first-processed-wins canonical rule.
	promoted := dups[0]
	if err = s.SetDuplicate(promoted.ID, false, nil); err != nil {
		return nil, err
	}
	for _, d := range dups[1:] {
		if err = s.SetDuplicate(d.ID, true, &promoted.ID); err != nil {
			return nil, err
		}
	}

	logging.Info("Promoted image %d to canonical after recycling %s", promoted.ID, path)
	return &promoted.ID, nil
}
