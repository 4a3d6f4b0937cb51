package models

import "time"

type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title" binding:"required"`
	Company     string    `json:"company" binding:"required"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Salary      int       `json:"salary" binding:"gte=0"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
