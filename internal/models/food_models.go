package models

import (
	"github.com/shopspring/decimal"
)

// FoodCategory groups foods for menu browsing.
type FoodCategory struct {
	ID           int64  `json:"id" db:"id"`
	RestaurantID int64  `json:"restaurant_id" db:"restaurant_id"`
	Name         string `json:"name" db:"name"`
}

// Food is a menu entry belonging to one restaurant. It is purchasable only
// through its options, which carry the actual prices.
type Food struct {
	ID           int64   `json:"id" db:"id"`
	RestaurantID int64   `json:"restaurant_id" db:"restaurant_id"`
	CategoryID   *int64  `json:"category_id,omitempty" db:"category_id"`
	Name         string  `json:"name" db:"name"`
	Description  *string `json:"description,omitempty" db:"description"`
}

// FoodOption is a purchasable variant of a food (size/type) carrying the base
// unit price.
type FoodOption struct {
	ID     int64           `json:"id" db:"id"`
	FoodID int64           `json:"food_id" db:"food_id"`
	Name   string          `json:"name" db:"name"`
	Price  decimal.Decimal `json:"price" db:"price"`
}

// FoodExtra is an add-on selectable per food option, priced independently.
type FoodExtra struct {
	ID     int64           `json:"id" db:"id"`
	FoodID int64           `json:"food_id" db:"food_id"`
	Name   string          `json:"name" db:"name"`
	Price  decimal.Decimal `json:"price" db:"price"`
}
