package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

// applyEffects mutates the in-memory order and items the way the order
// service persists a transition, so a chain of commands can be simulated
// without a database.
func applyEffects(order *models.Order, items []models.OrderedItem, eff *transitionEffects) {
	for status, ids := range eff.itemChanges {
		wanted := idSet(ids)
		for i := range items {
			if wanted[items[i].ID] {
				items[i].Status = status
			}
		}
	}
	order.Status = eff.orderStatus
}

func TestFullDineInLifecycle(t *testing.T) {
	order := testOrder(models.OrderStatusInitialized)
	items := []models.OrderedItem{
		testItem(1, models.ItemStatusInitialized),
		testItem(2, models.ItemStatusInitialized),
		testItem(3, models.ItemStatusInitialized),
	}

	eff, err := placeEffects(order, items)
	require.NoError(t, err)
	applyEffects(order, items, eff)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)

	// Kitchen keeps items 1 and 2, cancels the rest.
	eff, err = confirmEffects(order, items, []int64{1, 2}, true)
	require.NoError(t, err)
	applyEffects(order, items, eff)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.ItemStatusCancelled, items[2].Status)

	eff, err = serveEffects(order, items, []int64{1, 2})
	require.NoError(t, err)
	applyEffects(order, items, eff)
	assert.Equal(t, models.OrderStatusInTable, order.Status)
	assert.Equal(t, models.ItemStatusInTable, items[0].Status)
	assert.Equal(t, models.ItemStatusInTable, items[1].Status)

	require.NoError(t, checkInvoiceReady(order, items))
	order.Status = models.NextOrderStatus(models.CommandCreateInvoice, order.Status)
	assert.Equal(t, models.OrderStatusInvoiceCreated, order.Status)

	require.NoError(t, checkPayReady(order, items))
	order.Status = models.NextOrderStatus(models.CommandPay, order.Status)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	// A settled order accepts nothing further.
	_, err = placeEffects(order, items)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = cancelOrderEffects(order, items)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSecondRoundAfterServing(t *testing.T) {
	// Guests order more food after the first round is on the table. The
	// order status never moves backward while the new items catch up.
	order := testOrder(models.OrderStatusInTable)
	items := []models.OrderedItem{
		testItem(1, models.ItemStatusInTable),
		testItem(2, models.ItemStatusInitialized),
	}

	eff, err := placeEffects(order, items)
	require.NoError(t, err)
	applyEffects(order, items, eff)
	assert.Equal(t, models.OrderStatusInTable, order.Status)
	assert.Equal(t, models.ItemStatusPlaced, items[1].Status)

	// Invoice must wait for the new round to land on the table.
	assert.ErrorIs(t, checkInvoiceReady(order, items), ErrOrderStillRunning)

	eff, err = confirmEffects(order, items, []int64{2}, true)
	require.NoError(t, err)
	applyEffects(order, items, eff)
	assert.Equal(t, models.OrderStatusInTable, order.Status)

	eff, err = serveEffects(order, items, []int64{2})
	require.NoError(t, err)
	applyEffects(order, items, eff)

	require.NoError(t, checkInvoiceReady(order, items))
}

func TestCancelMidFlight(t *testing.T) {
	order := testOrder(models.OrderStatusConfirmed)
	items := []models.OrderedItem{
		testItem(1, models.ItemStatusConfirmed),
		testItem(2, models.ItemStatusPlaced),
	}

	eff, err := cancelOrderEffects(order, items)
	require.NoError(t, err)
	applyEffects(order, items, eff)

	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	for _, item := range items {
		assert.Equal(t, models.ItemStatusCancelled, item.Status)
	}
	assert.True(t, eff.releaseTable)

	// Cancelling again is harmless and leaves the (possibly rebooked) table alone.
	eff, err = cancelOrderEffects(order, items)
	require.NoError(t, err)
	assert.Empty(t, eff.itemChanges[models.ItemStatusCancelled])
	assert.False(t, eff.releaseTable)
}
