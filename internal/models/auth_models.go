package models

import "time"

// UserAccount is a staff or customer login identity.
type UserAccount struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
