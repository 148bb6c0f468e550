package handlers

import (
	"picpurge/internal/database"
	"picpurge/internal/thumbs"
)

// Handlers binds the API endpoints to the store, the in-memory
// thumbnail store, and the configured recycle directory.
type Handlers struct {
	store      *database.Store
	thumbs     *thumbs.Store
	recycleDir string
}

func New(store *database.Store, thumbStore *thumbs.Store, recycleDir string) *Handlers {
	return &Handlers{
		store:      store,
		thumbs:     thumbStore,
		recycleDir: recycleDir,
	}
}
