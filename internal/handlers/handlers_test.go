package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"picpurge/internal/database"
	"picpurge/internal/thumbs"
)

func newTestHandlers(t *testing.T) (*Handlers, *database.Store, *thumbs.Store) {
	t.Helper()
	store, err := database.New(context.Background(), filepath.Join(t.TempDir(), "picpurge.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	thumbStore := thumbs.NewStore()
	return New(store, thumbStore, filepath.Join(t.TempDir(), "recycle")), store, thumbStore
}

func insertRecord(t *testing.T, store *database.Store, path, hash string) database.ImageRecord {
	t.Helper()
	rec := database.ImageRecord{
		FilePath:    path,
		FileName:    filepath.Base(path),
		FileSize:    1000,
		ContentHash: hash,
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := store.InsertImage(&rec); err != nil {
		t.Fatalf("inserting record: %v", err)
	}
	got, err := store.GetByPath(path)
	if err != nil {
		t.Fatalf("reading back record: %v", err)
	}
	return *got
}

func TestStats(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	insertRecord(t, store, "/p/a.jpg", "h-1")
	insertRecord(t, store, "/p/b.jpg", "h-2")

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats database.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", stats.TotalImages)
	}
}

func TestImagesViews(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	a := insertRecord(t, store, "/p/a.jpg", "h-1")
	b := insertRecord(t, store, "/p/b.jpg", "h-1")
	if err := store.SetDuplicate(b.ID, true, &a.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		view       string
		wantStatus int
	}{
		{"", http.StatusOK},
		{"all", http.StatusOK},
		{"duplicates", http.StatusOK},
		{"similar", http.StatusOK},
		{"unique", http.StatusOK},
		{"bogus", http.StatusBadRequest},
	}
	for _, tt := range tests {
		target := "/api/images"
		if tt.view != "" {
			target += "?type=" + tt.view
		}
		rec := httptest.NewRecorder()
		h.Images(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("view %q: status = %d, want %d", tt.view, rec.Code, tt.wantStatus)
		}
	}

	// The duplicates view returns one group of two, canonical first.
	rec := httptest.NewRecorder()
	h.Images(rec, httptest.NewRequest(http.MethodGet, "/api/images?type=duplicates", nil))
	var groups [][]database.ImageRecord
	if err := json.NewDecoder(rec.Body).Decode(&groups); err != nil {
		t.Fatalf("decoding duplicates view: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 2 || groups[0][0].ID != a.ID {
		t.Errorf("duplicates view = %+v, want one group led by id %d", groups, a.ID)
	}
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	h, _, thumbStore := newTestHandlers(t)
	thumbStore.Put("abc-9", []byte("webp-bytes"))

	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/thumbnails/abc-9", nil),
		map[string]string{"hash": "abc-9"})
	rec := httptest.NewRecorder()
	h.Thumbnail(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/webp" {
		t.Errorf("Content-Type = %q, want image/webp", ct)
	}
	if rec.Body.String() != "webp-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/thumbnails/missing", nil),
		map[string]string{"hash": "missing"})
	rec = httptest.NewRecorder()
	h.Thumbnail(rec, r)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing thumbnail: status = %d, want 404", rec.Code)
	}
}

func TestImageFile(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	stored := insertRecord(t, store, path, "h-1")
	id := strconv.FormatInt(stored.ID, 10)

	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/image/"+id, nil),
		map[string]string{"id": id})
	w := httptest.NewRecorder()
	h.ImageFile(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if w.Body.String() != "jpeg bytes" {
		t.Errorf("body = %q", w.Body.String())
	}

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/image/999", nil),
		map[string]string{"id": "999"})
	w = httptest.NewRecorder()
	h.ImageFile(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
}

func TestRecycle(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	dir := t.TempDir()

	canonicalPath := filepath.Join(dir, "a.jpg")
	dupPath := filepath.Join(dir, "b.jpg")
	for _, p := range []string{canonicalPath, dupPath} {
		if err := os.WriteFile(p, []byte("same bytes"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	canonical := insertRecord(t, store, canonicalPath, "h-1")
	dup := insertRecord(t, store, dupPath, "h-1")
	if err := store.SetDuplicate(dup.ID, true, &canonical.ID); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(recycleRequest{FilePath: canonicalPath})
	rec := httptest.NewRecorder()
	h.Recycle(rec, httptest.NewRequest(http.MethodPost, "/api/recycle", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp recycleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.PromotedID == nil || *resp.PromotedID != dup.ID {
		t.Errorf("PromotedID = %v, want %d", resp.PromotedID, dup.ID)
	}
	if _, err := os.Stat(canonicalPath); !os.IsNotExist(err) {
		t.Error("recycled file still at original path")
	}

	// Missing body and unknown paths are client errors.
	rec = httptest.NewRecorder()
	h.Recycle(rec, httptest.NewRequest(http.MethodPost, "/api/recycle", bytes.NewReader(nil)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want 400", rec.Code)
	}

	body, _ = json.Marshal(recycleRequest{FilePath: "/nowhere/x.jpg"})
	rec = httptest.NewRecorder()
	h.Recycle(rec, httptest.NewRequest(http.MethodPost, "/api/recycle", bytes.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: status = %d, want 404", rec.Code)
	}
}

func TestRecyclePurge(t *testing.T) {
	t.Parallel()

	h, store, _ := newTestHandlers(t)
	dir := t.TempDir()

	canonicalPath := filepath.Join(dir, "a.jpg")
	dupPath := filepath.Join(dir, "b.jpg")
	for _, p := range []string{canonicalPath, dupPath} {
		if err := os.WriteFile(p, []byte("same bytes"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	canonical := insertRecord(t, store, canonicalPath, "h-1")
	dup := insertRecord(t, store, dupPath, "h-1")
	if err := store.SetDuplicate(dup.ID, true, &canonical.ID); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(recycleRequest{FilePath: canonicalPath, Purge: true})
	rec := httptest.NewRecorder()
	h.Recycle(rec, httptest.NewRequest(http.MethodPost, "/api/recycle", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp recycleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "purged" {
		t.Errorf("Status = %q, want purged", resp.Status)
	}
	if resp.PromotedID == nil || *resp.PromotedID != dup.ID {
		t.Errorf("PromotedID = %v, want %d", resp.PromotedID, dup.ID)
	}

	// The row is gone outright; the promoted duplicate survives as
	// canonical.
	if _, err := store.GetByPath(canonicalPath); err == nil {
		t.Error("purged record still readable by path")
	}
	promoted, err := store.GetByID(dup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if promoted.IsDuplicate || promoted.DuplicateOfID != nil {
		t.Error("promoted record must be canonical after purge")
	}
	if _, err := os.Stat(canonicalPath); !os.IsNotExist(err) {
		t.Error("purged file still at original path")
	}
}
