package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusRankOrdering(t *testing.T) {
	progression := []OrderStatus{
		OrderStatusInitialized,
		OrderStatusPlaced,
		OrderStatusConfirmed,
		OrderStatusInTable,
		OrderStatusInvoiceCreated,
		OrderStatusPaid,
	}
	for i := 1; i < len(progression); i++ {
		assert.Greater(t, progression[i].Rank(), progression[i-1].Rank(),
			"%s must outrank %s", progression[i], progression[i-1])
	}
	assert.Equal(t, 0, OrderStatusCancelled.Rank())
}

func TestOrderStatusAdvanceNeverSlidesBack(t *testing.T) {
	tests := []struct {
		name    string
		current OrderStatus
		target  OrderStatus
		want    OrderStatus
	}{
		{"forward move", OrderStatusInitialized, OrderStatusPlaced, OrderStatusPlaced},
		{"same status", OrderStatusPlaced, OrderStatusPlaced, OrderStatusPlaced},
		{"no slide from confirmed to placed", OrderStatusConfirmed, OrderStatusPlaced, OrderStatusConfirmed},
		{"no slide from in_table to confirmed", OrderStatusInTable, OrderStatusConfirmed, OrderStatusInTable},
		{"skip ahead to in_table", OrderStatusPlaced, OrderStatusInTable, OrderStatusInTable},
		{"cancel always wins", OrderStatusInTable, OrderStatusCancelled, OrderStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.current.Advance(tt.target))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusPaid.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	for _, s := range []OrderStatus{OrderStatusInitialized, OrderStatusPlaced, OrderStatusConfirmed, OrderStatusInTable, OrderStatusInvoiceCreated} {
		assert.False(t, s.Terminal(), "%s must not be terminal", s)
	}
}

func TestCommandAllowed(t *testing.T) {
	tests := []struct {
		cmd     OrderCommand
		status  OrderStatus
		allowed bool
	}{
		{CommandPlace, OrderStatusInitialized, true},
		{CommandPlace, OrderStatusInTable, true},
		{CommandPlace, OrderStatusInvoiceCreated, false},
		{CommandPlace, OrderStatusPaid, false},
		{CommandPlace, OrderStatusCancelled, false},
		{CommandConfirm, OrderStatusInitialized, false},
		{CommandConfirm, OrderStatusPlaced, true},
		{CommandConfirm, OrderStatusInTable, true},
		{CommandServe, OrderStatusConfirmed, true},
		{CommandServe, OrderStatusPaid, false},
		{CommandCancelItems, OrderStatusInvoiceCreated, true},
		{CommandCancelItems, OrderStatusPaid, false},
		{CommandCancelOrder, OrderStatusCancelled, true},
		{CommandCancelOrder, OrderStatusPaid, false},
		{CommandCreateInvoice, OrderStatusInTable, true},
		{CommandCreateInvoice, OrderStatusInvoiceCreated, true},
		{CommandCreateInvoice, OrderStatusPaid, true},
		{CommandCreateInvoice, OrderStatusPlaced, false},
		{CommandPay, OrderStatusInvoiceCreated, true},
		{CommandPay, OrderStatusInTable, false},
		{CommandPay, OrderStatusPaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CommandAllowed(tt.cmd, tt.status),
			"%s in %s", tt.cmd, tt.status)
	}
}

func TestNextOrderStatus(t *testing.T) {
	// Regenerating an invoice for an already paid order must not demote it.
	assert.Equal(t, OrderStatusPaid, NextOrderStatus(CommandCreateInvoice, OrderStatusPaid))
	assert.Equal(t, OrderStatusInvoiceCreated, NextOrderStatus(CommandCreateInvoice, OrderStatusInTable))

	// cancel_items carries no order-level target.
	assert.Equal(t, OrderStatusInTable, NextOrderStatus(CommandCancelItems, OrderStatusInTable))

	// Partial serve on an already served order keeps IN_TABLE.
	assert.Equal(t, OrderStatusInTable, NextOrderStatus(CommandServe, OrderStatusInTable))
}

func TestItemStatusCounted(t *testing.T) {
	assert.False(t, ItemStatusInitialized.Counted())
	assert.True(t, ItemStatusPlaced.Counted())
	assert.True(t, ItemStatusConfirmed.Counted())
	assert.True(t, ItemStatusInTable.Counted())
	assert.False(t, ItemStatusCancelled.Counted())
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, IsValidOrderStatus("IN_TABLE"))
	assert.False(t, IsValidOrderStatus("in_table"))
	assert.False(t, IsValidOrderStatus(""))
	assert.True(t, IsValidItemStatus("CANCELLED"))
	assert.False(t, IsValidItemStatus("INVOICE_CREATED"))
}
