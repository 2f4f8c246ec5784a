package models

import "time"

// User represents a registered crew member account
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"` // UUID
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
}
