package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/corona10/goimagehash"

	"picpurge/internal/database"
	"picpurge/internal/logging"
	"picpurge/internal/metrics"
)

// Default clustering tolerances.
const (
	DefaultAspectTolerance  = 0.10
	DefaultAreaTolerance    = 0.20
	DefaultHammingThreshold = 3
)

// Clusterer builds similarity groups over live records that carry both
// a perceptual hash and known dimensions. Pairs passing the cheap
// geometric prefilters are compared by Hamming distance, matches form
// an edge graph, and connected components become groups: every member
// of a component stores the sorted ids of all the other members, which
// makes membership symmetric and transitive.
type Clusterer struct {
	store *database.Store

	AspectTolerance  float64
	AreaTolerance    float64
	HammingThreshold int
}

func NewClusterer(store *database.Store) *Clusterer {
	return &Clusterer{
		store:            store,
		AspectTolerance:  DefaultAspectTolerance,
		AreaTolerance:    DefaultAreaTolerance,
		HammingThreshold: DefaultHammingThreshold,
	}
}

type candidate struct {
	rec   database.ImageRecord
	phash *goimagehash.ImageHash
}

// Cluster runs the full pairwise pass and persists the resulting
// groups. It returns the number of components of size two or more.
func (c *Clusterer) Cluster() (int, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("cluster").Observe(time.Since(start).Seconds())
	}()

	records, err := c.store.SimilarityCandidates()
	if err != nil {
		return 0, fmt.Errorf("loading similarity candidates: %w", err)
	}

	cands := make([]candidate, 0, len(records))
	for _, rec := range records {
		phash, err := goimagehash.ImageHashFromString(*rec.PerceptualHash)
		if err != nil {
			logging.Warn("unparseable perceptual hash %q for id %d: %v",
				*rec.PerceptualHash, rec.ID, err)
			continue
		}
		cands = append(cands, candidate{rec: rec, phash: phash})
	}
	logging.Debug("clustering %d candidates", len(cands))

	// Quadratic by design: simple, correct, and fine for a batch tool.
	uf := newUnionFind(len(cands))
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if !c.prefilter(cands[i].rec, cands[j].rec) {
				continue
			}
			distance, err := cands[i].phash.Distance(cands[j].phash)
			if err != nil {
				logging.Warn("hash distance between ids %d and %d: %v",
					cands[i].rec.ID, cands[j].rec.ID, err)
				continue
			}
			if distance <= c.HammingThreshold {
				uf.union(i, j)
			}
		}
	}

	components := make(map[int][]int64)
	for i := range cands {
		root := uf.find(i)
		components[root] = append(components[root], cands[i].rec.ID)
	}

	groups := 0
	for _, ids := range components {
		if len(ids) < 2 {
			// Not in any group this pass; clear stale membership so
			// re-runs converge.
			if err := c.store.SetSimilarGroup(ids[0], nil); err != nil {
				logging.Error("clearing similar group for id %d: %v", ids[0], err)
			}
			continue
		}

		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		for _, id := range ids {
			others := make([]int64, 0, len(ids)-1)
			for _, other := range ids {
				if other != id {
					others = append(others, other)
				}
			}
			if err := c.store.SetSimilarGroup(id, others); err != nil {
				logging.Error("storing similar group for id %d: %v", id, err)
			}
		}
		groups++
		metrics.SimilarGroupsFound.Inc()
	}

	logging.Info("similarity clustering: %d groups over %d candidates", groups, len(cands))
	return groups, nil
}

// prefilter rejects pairs whose geometry makes a visual match
// implausible, skipping the hash comparison.
func (c *Clusterer) prefilter(a, b database.ImageRecord) bool {
	aspectA, aspectB := a.AspectRatio(), b.AspectRatio()
	if aspectA == 0 || aspectB == 0 {
		return false
	}
	if math.Abs(aspectA-aspectB)/math.Max(aspectA, aspectB) > c.AspectTolerance {
		return false
	}

	areaA, areaB := float64(a.Area()), float64(b.Area())
	if 1-math.Min(areaA, areaB)/math.Max(areaA, areaB) > c.AreaTolerance {
		return false
	}
	return true
}

// unionFind is a plain disjoint-set forest with path compression and
// union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
