package handlers

import (
	"encoding/json"
	"net/http"

	"picpurge/internal/fileops"
	"picpurge/internal/logging"
)

type recycleRequest struct {
	FilePath string `json:"filePath"`
	// Purge deletes the record outright instead of flagging it
	// recycled; the file still moves to the recycle directory.
	Purge bool `json:"purge,omitempty"`
}

type recycleResponse struct {
	Status     string `json:"status"`
	PromotedID *int64 `json:"promotedId,omitempty"`
}

// Recycle moves a file into the recycle directory and updates its
// record. If the record was the canonical of a duplicate group, the
// lowest-id remaining duplicate is promoted in its place. A purge
// request removes the row entirely after the group is rebalanced.
func (h *Handlers) Recycle(w http.ResponseWriter, r *http.Request) {
	var req recycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeJSONError(w, "request must carry a filePath", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetByPath(req.FilePath); err != nil {
		writeJSONError(w, "no record for that path", http.StatusNotFound)
		return
	}

	if _, err := fileops.Recycle(req.FilePath, h.recycleDir); err != nil {
		logging.Error("recycling %s: %v", req.FilePath, err)
		writeJSONError(w, "failed to move file to recycle directory", http.StatusInternalServerError)
		return
	}

	promoted, err := h.store.RecycleRecord(req.FilePath)
	if err != nil {
		logging.Error("updating recycled record %s: %v", req.FilePath, err)
		writeJSONError(w, "file moved but record update failed", http.StatusInternalServerError)
		return
	}

	status := "recycled"
	if req.Purge {
		// Group rebalancing is done; the flagged row can go entirely.
		if err := h.store.DeleteByPath(req.FilePath); err != nil {
			logging.Error("purging record %s: %v", req.FilePath, err)
			writeJSONError(w, "file moved but record purge failed", http.StatusInternalServerError)
			return
		}
		status = "purged"
	}

	writeJSON(w, recycleResponse{Status: status, PromotedID: promoted})
}
