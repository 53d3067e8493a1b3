package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of a food order. Statuses are ordered:
// absent a cancellation an order only ever moves forward through them.
type OrderStatus string

const (
	OrderStatusInitialized    OrderStatus = "INITIALIZED"
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusInTable        OrderStatus = "IN_TABLE"
	OrderStatusInvoiceCreated OrderStatus = "INVOICE_CREATED"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// orderStatusRank positions each non-cancelled status on the monotonic
// progression. CANCELLED sits outside the progression (rank 0).
var orderStatusRank = map[OrderStatus]int{
	OrderStatusInitialized:    1,
	OrderStatusPlaced:         2,
	OrderStatusConfirmed:      3,
	OrderStatusInTable:        4,
	OrderStatusInvoiceCreated: 5,
	OrderStatusPaid:           6,
}

// IsValidOrderStatus checks membership in the order status enum.
func IsValidOrderStatus(status string) bool {
	s := OrderStatus(status)
	switch s {
	case OrderStatusInitialized, OrderStatusPlaced, OrderStatusConfirmed,
		OrderStatusInTable, OrderStatusInvoiceCreated, OrderStatusPaid,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Rank returns the status position in the forward progression, 0 for CANCELLED.
func (s OrderStatus) Rank() int {
	return orderStatusRank[s]
}

// Terminal reports whether the order may no longer be mutated
// (except for invoice linkage and soft delete).
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// Advance returns the status the order should carry after a transition that
// drives it toward target: target if strictly later in the progression,
// otherwise the current status unchanged. This is the no-back-slide rule —
// a transition finding the order already at or past its target leaves the
// order status alone while item-level effects still apply.
func (s OrderStatus) Advance(target OrderStatus) OrderStatus {
	if target == OrderStatusCancelled {
		return OrderStatusCancelled
	}
	if target.Rank() > s.Rank() {
		return target
	}
	return s
}

// ItemStatus mirrors the order progression but is tracked per line item.
// Items never reach PAID directly; they are settled when the order pays.
type ItemStatus string

const (
	ItemStatusInitialized ItemStatus = "INITIALIZED"
	ItemStatusPlaced      ItemStatus = "PLACED"
	ItemStatusConfirmed   ItemStatus = "CONFIRMED"
	ItemStatusInTable     ItemStatus = "IN_TABLE"
	ItemStatusCancelled   ItemStatus = "CANCELLED"
)

// IsValidItemStatus checks membership in the item status enum.
func IsValidItemStatus(status string) bool {
	s := ItemStatus(status)
	switch s {
	case ItemStatusInitialized, ItemStatusPlaced, ItemStatusConfirmed,
		ItemStatusInTable, ItemStatusCancelled:
		return true
	default:
		return false
	}
}

// Counted reports whether the item participates in pricing: items still in
// the cart (INITIALIZED) and cancelled items are excluded from all totals.
func (s ItemStatus) Counted() bool {
	return s == ItemStatusPlaced || s == ItemStatusConfirmed || s == ItemStatusInTable
}

// OrderCommand identifies a state machine operation.
type OrderCommand string

const (
	CommandPlace         OrderCommand = "place"
	CommandConfirm       OrderCommand = "confirm"
	CommandServe         OrderCommand = "serve"
	CommandCancelItems   OrderCommand = "cancel_items"
	CommandCancelOrder   OrderCommand = "cancel_order"
	CommandCreateInvoice OrderCommand = "create_invoice"
	CommandPay           OrderCommand = "pay"
)

// transitionRule captures, per command, the order statuses the command may be
// invoked in and the status it drives the order toward (empty = unchanged).
type transitionRule struct {
	from   map[OrderStatus]bool
	target OrderStatus
}

func statusSet(statuses ...OrderStatus) map[OrderStatus]bool {
	set := make(map[OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// orderTransitions is the explicit state x command table. Preconditions and
// targets live here instead of ad hoc checks scattered per handler.
var orderTransitions = map[OrderCommand]transitionRule{
	CommandPlace: {
		from:   statusSet(OrderStatusInitialized, OrderStatusPlaced, OrderStatusConfirmed, OrderStatusInTable),
		target: OrderStatusPlaced,
	},
	CommandConfirm: {
		from:   statusSet(OrderStatusPlaced, OrderStatusConfirmed, OrderStatusInTable),
		target: OrderStatusConfirmed,
	},
	CommandServe: {
		from:   statusSet(OrderStatusPlaced, OrderStatusConfirmed, OrderStatusInTable),
		target: OrderStatusInTable,
	},
	CommandCancelItems: {
		from: statusSet(OrderStatusInitialized, OrderStatusPlaced, OrderStatusConfirmed,
			OrderStatusInTable, OrderStatusInvoiceCreated),
	},
	CommandCancelOrder: {
		from: statusSet(OrderStatusInitialized, OrderStatusPlaced, OrderStatusConfirmed,
			OrderStatusInTable, OrderStatusInvoiceCreated, OrderStatusCancelled),
		target: OrderStatusCancelled,
	},
	CommandCreateInvoice: {
		from:   statusSet(OrderStatusInTable, OrderStatusInvoiceCreated, OrderStatusPaid),
		target: OrderStatusInvoiceCreated,
	},
	CommandPay: {
		from:   statusSet(OrderStatusInvoiceCreated),
		target: OrderStatusPaid,
	},
}

// CommandAllowed reports whether cmd may run against an order in status s.
func CommandAllowed(cmd OrderCommand, s OrderStatus) bool {
	rule, ok := orderTransitions[cmd]
	if !ok {
		return false
	}
	return rule.from[s]
}

// NextOrderStatus returns the order status after cmd runs against status s,
// applying the no-back-slide rule. The caller must have checked CommandAllowed.
func NextOrderStatus(cmd OrderCommand, s OrderStatus) OrderStatus {
	rule := orderTransitions[cmd]
	if rule.target == "" {
		return s
	}
	return s.Advance(rule.target)
}

// Order represents one dine-in or take-away session tied to a table.
type Order struct {
	ID           int64       `json:"id" db:"id"`
	RestaurantID int64       `json:"restaurant_id" db:"restaurant_id"`
	TableID      *int64      `json:"table_id,omitempty" db:"table_id"`
	CustomerID   *int64      `json:"customer_id,omitempty" db:"customer_id"`
	Remarks      *string     `json:"remarks,omitempty" db:"remarks"`
	Status       OrderStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty" db:"deleted_at"`

	Table *Table        `json:"table,omitempty"`
	Items []OrderedItem `json:"ordered_items"`
}

// OrderedItem is one line of an order: a chosen food option plus extras.
// Amount is denormalized as quantity x unit price at time of entry.
type OrderedItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"order_id" db:"order_id"`
	FoodOptionID int64           `json:"food_option_id" db:"food_option_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Status       ItemStatus      `json:"status" db:"status"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	ExtraIDs     []int64         `json:"food_extras"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`

	FoodOption *FoodOption `json:"food_option,omitempty"`
	FoodName   string      `json:"food_name,omitempty"`
	Extras     []FoodExtra `json:"extras,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	RestaurantID *int64  `form:"restaurant_id"`
	TableID      *int64  `form:"table_id"`
	Status       *string `form:"status"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}
