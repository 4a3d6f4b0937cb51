package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/ssovee/Open-Data-API/models"
)

// NewNoteRepository returns a note store that hides expired notes and never
// rewrites expires_at.
func NewNoteRepository(db *gorm.DB, now func() time.Time) *Repository[models.Note] {
	return NewRepository[models.Note](db,
		WithScope(func(tx *gorm.DB) *gorm.DB { return tx.Where("expires_at > ?", now()) }),
		WithImmutable("expires_at"),
	)
}
