package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"

	"picpurge/internal/analysis"
	"picpurge/internal/database"
	"picpurge/internal/thumbs"
)

// sceneJPEG renders smooth value noise from a seeded control grid.
// Unlike a plain gradient, its spectrum fills the whole low-frequency
// block a perceptual hash looks at, so the hash bits are well separated
// and survive rescaling and recompression.
func sceneJPEG(t *testing.T, w, h, quality int) []byte {
	t.Helper()

	const gw, gh = 9, 9
	rng := rand.New(rand.NewSource(7))
	var grid [gh][gw]float64
	for gy := range grid {
		for gx := range grid[gy] {
			grid[gy][gx] = rng.Float64()
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		fy := float64(y) * float64(gh-1) / float64(h-1)
		y0 := int(fy)
		if y0 >= gh-1 {
			y0 = gh - 2
		}
		ty := fy - float64(y0)
		for x := 0; x < w; x++ {
			fx := float64(x) * float64(gw-1) / float64(w-1)
			x0 := int(fx)
			if x0 >= gw-1 {
				x0 = gw - 2
			}
			tx := fx - float64(x0)

			top := grid[y0][x0]*(1-tx) + grid[y0][x0+1]*tx
			bot := grid[y0+1][x0]*(1-tx) + grid[y0+1][x0+1]*tx
			v := uint8(40 + 175*(top*(1-ty)+bot*ty))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encoding scene JPEG: %v", err)
	}
	return buf.Bytes()
}

// rescaleJPEG decodes, Lanczos-resizes to the given width, and
// re-encodes at another quality: visually the same picture, but with
// different bytes and different dimensions.
func rescaleJPEG(t *testing.T, data []byte, width, quality int) []byte {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding source JPEG: %v", err)
	}
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("re-encoding rescaled JPEG: %v", err)
	}
	return buf.Bytes()
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Three files through the whole flow: a and b byte-identical, c a
// rescaled recompression of a. After Run, Resolve, and Cluster the pair
// shares a canonical and c lands in the canonical's similar group
// without being a duplicate itself.
func TestRunResolveClusterScenario(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	thumbStore := thumbs.NewStore()
	dir := t.TempDir()

	original := sceneJPEG(t, 320, 200, 90)
	a := writeFile(t, dir, "a.jpg", original)
	b := writeFile(t, dir, "b.jpg", original)
	// 95% linear scale: 304x190 against 320x200 is a 9.75% area
	// change, inside the clusterer's 20% area tolerance.
	c := writeFile(t, dir, "c.jpg", rescaleJPEG(t, original, 304, 85))

	p := New(store, thumbStore, Config{Concurrency: 2, MinFileSize: 1})
	summary, err := p.Run(context.Background(), stream(a, b, c))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Processed != 3 || summary.Errored != 0 {
		t.Fatalf("summary = %+v, want 3 processed / 0 errored", summary)
	}

	pairs, _, err := analysis.NewResolver(store).Resolve(false, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if pairs != 1 {
		t.Errorf("Resolve() = %d duplicate pairs, want 1", pairs)
	}

	groups, err := analysis.NewClusterer(store).Cluster()
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if groups != 1 {
		t.Errorf("Cluster() = %d similar groups, want 1", groups)
	}

	all, err := store.AllImages()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("AllImages() = %d records, want 3", len(all))
	}
	byPath := make(map[string]database.ImageRecord, len(all))
	for _, rec := range all {
		byPath[rec.FilePath] = rec
	}
	recA, recB, recC := byPath[a], byPath[b], byPath[c]

	// Worker scheduling decides insert order, so the canonical of the
	// identical pair is whichever got the lower id.
	canonical, dup := recA, recB
	if recB.ID < recA.ID {
		canonical, dup = recB, recA
	}
	if canonical.IsDuplicate {
		t.Error("lower-id member of the identical pair flagged as duplicate")
	}
	if !dup.IsDuplicate || dup.DuplicateOfID == nil || *dup.DuplicateOfID != canonical.ID {
		t.Errorf("duplicate member = %+v, want duplicateOf %d", dup, canonical.ID)
	}

	if recC.IsDuplicate {
		t.Error("rescaled copy flagged as duplicate, want similar only")
	}
	if recC.ContentHash == canonical.ContentHash {
		t.Error("rescaled copy shares the content hash of its source")
	}
	if !containsID(recC.SimilarGroup, canonical.ID) {
		t.Errorf("c similar group = %v, missing canonical id %d", recC.SimilarGroup, canonical.ID)
	}
	if !containsID(canonical.SimilarGroup, recC.ID) {
		t.Errorf("canonical similar group = %v, missing c id %d", canonical.SimilarGroup, recC.ID)
	}
}
