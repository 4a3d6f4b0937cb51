package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price" binding:"gte=0"`
	Category    string    `gorm:"index" json:"category"`
	Brand       string    `json:"brand"`
	Stock       int       `json:"stock" binding:"gte=0"`
	Rating      float64   `json:"rating" binding:"gte=0,lte=5"`
	// Image is a path under /images/products/.
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
