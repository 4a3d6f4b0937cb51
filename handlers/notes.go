package handlers

import (
	"log/slog"
	"time"

	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/models"
)

// NewNotes serves notes that expire ttl after creation.
func NewNotes(repo *database.Repository[models.Note], ttl time.Duration, now func() time.Time, logger *slog.Logger) *Resource[models.Note] {
	return NewResource(repo, logger).OnCreate(func(n *models.Note) {
		n.ExpiresAt = now().Add(ttl)
	})
}
