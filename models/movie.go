package models

import "time"

type Movie struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index" json:"title" binding:"required"`
	Year      int       `json:"year"`
	Genre     string    `json:"genre"`
	Director  string    `json:"director"`
	Rating    float64   `json:"rating" binding:"gte=0,lte=10"`
	Runtime   int       `json:"runtime"`
	Plot      string    `json:"plot"`
	Poster    string    `json:"poster"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
