package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"picpurge/internal/logging"
	"picpurge/internal/mediatypes"
)

// ImageFile serves the original bytes of one record by id.
func (h *Handlers) ImageFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid image id", http.StatusBadRequest)
		return
	}

	rec, err := h.store.GetByID(id)
	if err != nil {
		writeJSONError(w, "image not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(rec.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSONError(w, "backing file is gone", http.StatusNotFound)
			return
		}
		logging.Error("opening %s: %v", rec.FilePath, err)
		writeJSONError(w, "failed to open image", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.Error("stat %s: %v", rec.FilePath, err)
		writeJSONError(w, "failed to read image", http.StatusInternalServerError)
		return
	}

	ext := strings.ToLower(filepath.Ext(rec.FilePath))
	w.Header().Set("Content-Type", mediatypes.GetMimeType(ext))
	http.ServeContent(w, r, rec.FileName, info.ModTime(), f)
}

// Thumbnail serves a preview from the in-memory store by content hash.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	thumb, ok := h.thumbs.Get(hash)
	if !ok {
		writeJSONError(w, "thumbnail not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "max-age=3600")
	if _, err := w.Write(thumb); err != nil {
		logging.Debug("writing thumbnail %s: %v", hash, err)
	}
}
