package models

import (
	"time"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username     string    `gorm:"size:255;not null;unique" json:"username"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
