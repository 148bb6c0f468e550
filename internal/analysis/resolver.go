package analysis

import (
	"fmt"
	"time"

	"picpurge/internal/database"
	"picpurge/internal/fileops"
	"picpurge/internal/logging"
	"picpurge/internal/metrics"
)

// Resolver marks exact duplicates. Within each content-hash group the
// lowest-id record (first inserted) stays canonical and every other
// member points at it. Because ids are stable, re-running after new
// inserts never changes a previously chosen canonical as long as it
// was not recycled.
type Resolver struct {
	store *database.Store
}

func NewResolver(store *database.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve groups live records by content hash and marks duplicates.
// With autoRecycle set, each non-canonical member's backing file is
// moved to recycleDir and its record flagged; a failed move is logged
// and does not block the rest of the group.
func (r *Resolver) Resolve(autoRecycle bool, recycleDir string) (pairs, recycled int, err error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	}()

	groups, err := r.store.HashGroups()
	if err != nil {
		return 0, 0, fmt.Errorf("loading hash groups: %w", err)
	}

	for _, group := range groups {
		canonical := group.Records[0]

		for _, member := range group.Records[1:] {
			if err := r.store.SetDuplicate(member.ID, true, &canonical.ID); err != nil {
				logging.Error("marking %s as duplicate of id %d: %v",
					member.FilePath, canonical.ID, err)
				continue
			}
			pairs++
			metrics.DuplicatePairsFound.Inc()

			if !autoRecycle {
				continue
			}
			if _, err := fileops.Recycle(member.FilePath, recycleDir); err != nil {
				logging.Error("recycling duplicate %s: %v", member.FilePath, err)
				continue
			}
			if err := r.store.MarkRecycled(member.FilePath); err != nil {
				logging.Error("flagging recycled record %s: %v", member.FilePath, err)
				continue
			}
			recycled++
		}
	}

	logging.Info("duplicate resolution: %d pairs across %d groups, %d recycled",
		pairs, len(groups), recycled)
	return pairs, recycled, nil
}
