package handlers

import (
	"net/http"

	"picpurge/internal/logging"
)

// Stats serves aggregate counts for the whole run.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.CalculateStats()
	if err != nil {
		logging.Error("calculating stats: %v", err)
		writeJSONError(w, "failed to calculate stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// Images serves record listings. The type query parameter selects the
// view: all (default), duplicates, similar, or unique. The grouped
// views return arrays of groups; the flat views return arrays of
// records.
func (h *Handlers) Images(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("type")
	if view == "" {
		view = "all"
	}

	var (
		payload interface{}
		err     error
	)
	switch view {
	case "all":
		payload, err = h.store.AllImages()
	case "duplicates":
		payload, err = h.store.DuplicateGroupsView()
	case "similar":
		payload, err = h.store.SimilarGroupsView()
	case "unique":
		payload, err = h.store.UniqueImages()
	default:
		writeJSONError(w, "unknown view type: "+view, http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.Error("loading %s view: %v", view, err)
		writeJSONError(w, "failed to load images", http.StatusInternalServerError)
		return
	}
	writeJSON(w, payload)
}
