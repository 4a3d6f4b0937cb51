package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name"`
	Email     string    `gorm:"index" json:"email" binding:"required,email"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age" binding:"gte=0,lte=150"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
