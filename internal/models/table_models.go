package models

import "time"

// Table represents a physical table or take-away slot in a restaurant.
// The occupied flag is true iff a non-terminal order currently references it.
type Table struct {
	ID           int64     `json:"id" db:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	TableNo      *int      `json:"table_no,omitempty" db:"table_no"`
	Name         *string   `json:"name,omitempty" db:"name"`
	IsOccupied   bool      `json:"is_occupied" db:"is_occupied"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
