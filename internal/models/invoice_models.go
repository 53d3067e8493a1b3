package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of an invoice.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// SnapshotVersion identifies the invoice snapshot schema so downstream
// consumers can deserialize older invoices safely.
const SnapshotVersion = 1

// Invoice is an immutable settlement snapshot of an order. The order
// reference is nullable: an invoice survives deletion of its order.
// Token is an opaque identifier, never sequential.
type Invoice struct {
	ID            int64           `json:"id" db:"id"`
	Token         string          `json:"token" db:"token"`
	RestaurantID  int64           `json:"restaurant_id" db:"restaurant_id"`
	OrderID       *int64          `json:"order_id,omitempty" db:"order_id"`
	Snapshot      InvoiceSnapshot `json:"snapshot" db:"snapshot"`
	GrandTotal    decimal.Decimal `json:"grand_total" db:"grand_total"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// InvoiceSnapshot is the versioned, structured copy of the order and its
// pricing at settlement time. It is the invoice's source of truth and is
// stored as JSON.
type InvoiceSnapshot struct {
	Version       int             `json:"version"`
	OrderID       int64           `json:"order_id"`
	RestaurantID  int64           `json:"restaurant_id"`
	TableName     *string         `json:"table_name,omitempty"`
	TableNo       *int            `json:"table_no,omitempty"`
	Remarks       *string         `json:"remarks,omitempty"`
	Items         []SnapshotItem  `json:"items"`
	FoodPrice     decimal.Decimal `json:"food_price"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	TakenAt       time.Time       `json:"taken_at"`
}

// SnapshotItem is one settled line within an invoice snapshot.
type SnapshotItem struct {
	ItemID     int64           `json:"item_id"`
	FoodName   string          `json:"food_name"`
	OptionName string          `json:"option_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Extras     []SnapshotExtra `json:"extras,omitempty"`
	Status     ItemStatus      `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

// SnapshotExtra is a settled add-on within a snapshot line.
type SnapshotExtra struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// InvoiceFilters defines the available filters for querying invoices.
type InvoiceFilters struct {
	RestaurantID  *int64  `form:"restaurant_id"`
	PaymentStatus *string `form:"payment_status"`
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}
