package database

import "sort"

// The grouped views are recomputed on demand from the persisted
// duplicate/similar fields; they are never a separate source of truth.

// DuplicateGroupsView returns every duplicate group as a slice of
// records: the canonical member first, then its duplicates by id.
func (s *Store) DuplicateGroupsView() ([][]ImageRecord, error) {
	all, err := s.AllImages()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]ImageRecord, len(all))
	for _, rec := range all {
		byID[rec.ID] = rec
	}

	members := make(map[int64][]ImageRecord)
	for _, rec := range all {
		if rec.IsDuplicate && rec.DuplicateOfID != nil {
			members[*rec.DuplicateOfID] = append(members[*rec.DuplicateOfID], rec)
		}
	}

	canonicalIDs := make([]int64, 0, len(members))
	for id := range members {
		canonicalIDs = append(canonicalIDs, id)
	}
	sort.Slice(canonicalIDs, func(i, j int) bool { return canonicalIDs[i] < canonicalIDs[j] })

	groups := make([][]ImageRecord, 0, len(canonicalIDs))
	for _, id := range canonicalIDs {
		group := members[id]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		if canonical, ok := byID[id]; ok {
			group = append([]ImageRecord{canonical}, group...)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// SimilarGroupsView returns every similarity component as a slice of
// records sorted by id. Components are ordered by their smallest member
// id.
func (s *Store) SimilarGroupsView() ([][]ImageRecord, error) {
	all, err := s.AllImages()
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]ImageRecord, len(all))
	for _, rec := range all {
		byID[rec.ID] = rec
	}

	// Every member lists the other component ids, so the component's
	// representative is the minimum over member and peers.
	components := make(map[int64]map[int64]bool)
	for _, rec := range all {
		if len(rec.SimilarGroup) == 0 {
			continue
		}
		rep := rec.ID
		for _, p := range rec.SimilarGroup {
			if p < rep {
				rep = p
			}
		}
		if components[rep] == nil {
			components[rep] = make(map[int64]bool)
		}
		components[rep][rec.ID] = true
		for _, p := range rec.SimilarGroup {
			components[rep][p] = true
		}
	}

	reps := make([]int64, 0, len(components))
	for rep := range components {
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })

	groups := make([][]ImageRecord, 0, len(reps))
	for _, rep := range reps {
		ids := make([]int64, 0, len(components[rep]))
		for id := range components[rep] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		group := make([]ImageRecord, 0, len(ids))
		for _, id := range ids {
			if rec, ok := byID[id]; ok {
				group = append(group, rec)
			}
		}
		if len(group) >= 2 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// UniqueImages returns live records that are neither duplicates nor
// members of any similarity group.
func (s *Store) UniqueImages() ([]ImageRecord, error) {
	return s.queryRecords("unique_images",
		`SELECT `+selectColumns+` FROM images
		 WHERE is_recycled = 0 AND is_duplicate = 0
		   AND (similar_group IS NULL OR similar_group = '')
		 ORDER BY id ASC`)
}
