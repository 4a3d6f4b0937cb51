package models

import "time"

// Note is a short-lived record. ExpiresAt is assigned by the server on
// create and notes past it are purged by the nightly job.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title" binding:"required"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
