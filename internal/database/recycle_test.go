package database

import "testing"

func TestRecycleRecordDuplicate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustInsert(t, store, testRecord("/p/a.jpg", "h-1"), testRecord("/p/b.jpg", "h-1"))

	all, _ := store.AllImages()
	canonical, dup := all[0], all[1]
	if err := store.SetDuplicate(dup.ID, true, &canonical.ID); err != nil {
		t.Fatal(err)
	}

	promoted, err := store.RecycleRecord(dup.FilePath)
	if err != nil {
		t.Fatalf("RecycleRecord() error = %v", err)
	}
	if promoted != nil {
		t.Errorf("recycling a duplicate promoted id %d, want no promotion", *promoted)
	}

	got, err := store.GetByID(dup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsRecycled {
		t.Error("duplicate not marked recycled")
	}

	gotCanon, err := store.GetByID(canonical.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotCanon.IsDuplicate || gotCanon.IsRecycled {
		t.Error("canonical must be untouched when a duplicate is recycled")
	}
}

func TestRecycleRecordPromotesLowestDuplicate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustInsert(t, store,
		testRecord("/p/a.jpg", "h-1"),
		testRecord("/p/b.jpg", "h-1"),
		testRecord("/p/c.jpg", "h-1"),
	)

	all, _ := store.AllImages()
	canonical, dup1, dup2 := all[0], all[1], all[2]
	for _, d := range []ImageRecord{dup1, dup2} {
		if err := store.SetDuplicate(d.ID, true, &canonical.ID); err != nil {
			t.Fatal(err)
		}
	}

	promoted, err := store.RecycleRecord(canonical.FilePath)
	if err != nil {
		t.Fatalf("RecycleRecord() error = %v", err)
	}
	if promoted == nil || *promoted != dup1.ID {
		t.Fatalf("promoted = %v, want %d (lowest-id duplicate)", promoted, dup1.ID)
	}

	gotPromoted, err := store.GetByID(dup1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotPromoted.IsDuplicate || gotPromoted.DuplicateOfID != nil {
		t.Error("promoted record must be canonical")
	}

	gotOther, err := store.GetByID(dup2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !gotOther.IsDuplicate || gotOther.DuplicateOfID == nil || *gotOther.DuplicateOfID != dup1.ID {
		t.Errorf("remaining duplicate points at %v, want %d", gotOther.DuplicateOfID, dup1.ID)
	}

	gotOld, err := store.GetByID(canonical.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !gotOld.IsRecycled {
		t.Error("recycled canonical not marked recycled")
	}
}

func TestDeleteByPath(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustInsert(t, store, testRecord("/p/a.jpg", "h-1"), testRecord("/p/b.jpg", "h-2"))

	if err := store.DeleteByPath("/p/a.jpg"); err != nil {
		t.Fatalf("DeleteByPath() error = %v", err)
	}

	if _, err := store.GetByPath("/p/a.jpg"); err == nil {
		t.Error("deleted record still readable by path")
	}
	all, err := store.AllImages()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].FilePath != "/p/b.jpg" {
		t.Errorf("AllImages() = %+v, want only /p/b.jpg", all)
	}

	// Deleting an absent path is a no-op, not an error.
	if err := store.DeleteByPath("/p/a.jpg"); err != nil {
		t.Errorf("DeleteByPath() on absent path error = %v", err)
	}
}

func TestRecycleRecordUnknownPath(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.RecycleRecord("/p/missing.jpg"); err == nil {
		t.Error("RecycleRecord() on unknown path should fail")
	}
}
