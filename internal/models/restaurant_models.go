package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestaurantStatus marks a tenant as active or inactive.
type RestaurantStatus string

const (
	RestaurantStatusActive   RestaurantStatus = "ACTIVE"
	RestaurantStatusInactive RestaurantStatus = "INACTIVE"
)

// Restaurant is a tenant. ServiceCharge is either a percentage of the food
// price or a flat amount added to the running total, depending on
// ServiceChargeIsPercentage. TaxPercentage applies to the post-service-charge
// running total.
type Restaurant struct {
	ID                        int64            `json:"id" db:"id"`
	Name                      string           `json:"name" db:"name"`
	Address                   *string          `json:"address,omitempty" db:"address"`
	ServiceChargeIsPercentage bool             `json:"service_charge_is_percentage" db:"service_charge_is_percentage"`
	ServiceCharge             decimal.Decimal  `json:"service_charge" db:"service_charge"`
	TaxPercentage             decimal.Decimal  `json:"tax_percentage" db:"tax_percentage"`
	Status                    RestaurantStatus `json:"status" db:"status"`
	CreatedAt                 time.Time        `json:"created_at" db:"created_at"`
}

// StaffInformation links a user account to a restaurant with capability
// flags. It backs the authorization gate and push notification fan-out.
type StaffInformation struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	IsOwner      bool      `json:"is_owner" db:"is_owner"`
	IsManager    bool      `json:"is_manager" db:"is_manager"`
	IsWaiter     bool      `json:"is_waiter" db:"is_waiter"`
	DeviceToken  *string   `json:"-" db:"device_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
