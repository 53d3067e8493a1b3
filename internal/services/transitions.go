package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"

	"github.com/shopspring/decimal"
)

// transitionEffects is the aggregate outcome of one state machine command:
// the order's new status, the per-item status changes, and whether the table
// is released. The order service applies the whole thing inside a single
// transaction, item updates first and the order row last.
type transitionEffects struct {
	orderStatus  models.OrderStatus
	itemChanges  map[models.ItemStatus][]int64
	releaseTable bool
}

func newEffects(order *models.Order) *transitionEffects {
	return &transitionEffects{
		orderStatus: order.Status,
		itemChanges: map[models.ItemStatus][]int64{},
	}
}

func (e *transitionEffects) moveItems(status models.ItemStatus, itemIDs ...int64) {
	if len(itemIDs) == 0 {
		return
	}
	e.itemChanges[status] = append(e.itemChanges[status], itemIDs...)
}

// changed reports whether the transition touches anything at all.
func (e *transitionEffects) changed(order *models.Order) bool {
	return e.orderStatus != order.Status || len(e.itemChanges) > 0 || e.releaseTable
}

// placeEffects moves every INITIALIZED item to PLACED and advances the order
// to PLACED when it is still INITIALIZED. A repeat call with nothing left to
// place is a silent no-op; an empty cart on a fresh order is ErrNoItems.
func placeEffects(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
	if !models.CommandAllowed(models.CommandPlace, order.Status) {
		return nil, fmt.Errorf("%w: cannot place items on %s order", ErrInvalidTransition, order.Status)
	}

	eff := newEffects(order)
	var placed []int64
	for _, item := range items {
		if item.Status == models.ItemStatusInitialized {
			placed = append(placed, item.ID)
		}
	}
	if len(placed) == 0 {
		if order.Status == models.OrderStatusInitialized {
			return nil, ErrNoItems
		}
		return eff, nil
	}

	eff.moveItems(models.ItemStatusPlaced, placed...)
	eff.orderStatus = models.NextOrderStatus(models.CommandPlace, order.Status)
	return eff, nil
}

// confirmEffects moves PLACED items in the kept set to CONFIRMED. When
// cancelOthers is set, PLACED items outside the kept set are cancelled —
// the kitchen's reconciliation of what it will actually cook. The order
// advances to CONFIRMED only from INITIALIZED/PLACED.
func confirmEffects(order *models.Order, items []models.OrderedItem, keepIDs []int64, cancelOthers bool) (*transitionEffects, error) {
	if !models.CommandAllowed(models.CommandConfirm, order.Status) {
		return nil, fmt.Errorf("%w: cannot confirm items on %s order", ErrInvalidTransition, order.Status)
	}

	kept := idSet(keepIDs)
	eff := newEffects(order)
	var confirmed, cancelled []int64
	for _, item := range items {
		if item.Status != models.ItemStatusPlaced {
			continue
		}
		if kept[item.ID] {
			confirmed = append(confirmed, item.ID)
		} else if cancelOthers {
			cancelled = append(cancelled, item.ID)
		}
	}

	eff.moveItems(models.ItemStatusConfirmed, confirmed...)
	eff.moveItems(models.ItemStatusCancelled, cancelled...)
	eff.orderStatus = models.NextOrderStatus(models.CommandConfirm, order.Status)
	return eff, nil
}

// serveEffects moves CONFIRMED items in the kept set to IN_TABLE and
// advances the order to IN_TABLE from any earlier status.
func serveEffects(order *models.Order, items []models.OrderedItem, keepIDs []int64) (*transitionEffects, error) {
	if !models.CommandAllowed(models.CommandServe, order.Status) {
		return nil, fmt.Errorf("%w: cannot serve items on %s order", ErrInvalidTransition, order.Status)
	}

	kept := idSet(keepIDs)
	eff := newEffects(order)
	var served []int64
	for _, item := range items {
		if item.Status == models.ItemStatusConfirmed && kept[item.ID] {
			served = append(served, item.ID)
		}
	}

	eff.moveItems(models.ItemStatusInTable, served...)
	eff.orderStatus = models.NextOrderStatus(models.CommandServe, order.Status)
	return eff, nil
}

// cancelItemsEffects cancels the listed items, skipping ones already
// cancelled. The order status is untouched.
func cancelItemsEffects(order *models.Order, items []models.OrderedItem, itemIDs []int64) (*transitionEffects, error) {
	if !models.CommandAllowed(models.CommandCancelItems, order.Status) {
		return nil, fmt.Errorf("%w: cannot cancel items on %s order", ErrInvalidTransition, order.Status)
	}

	requested := idSet(itemIDs)
	eff := newEffects(order)
	var cancelled []int64
	for _, item := range items {
		if requested[item.ID] && item.Status != models.ItemStatusCancelled {
			cancelled = append(cancelled, item.ID)
		}
	}

	eff.moveItems(models.ItemStatusCancelled, cancelled...)
	return eff, nil
}

// cancelOrderEffects cancels the order, every non-cancelled item, and frees
// the table. A repeat cancel leaves the table alone: the first cancel already
// released it and it may since have been booked by another order.
func cancelOrderEffects(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
	if !models.CommandAllowed(models.CommandCancelOrder, order.Status) {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidTransition, order.Status)
	}

	eff := newEffects(order)
	var cancelled []int64
	for _, item := range items {
		if item.Status != models.ItemStatusCancelled {
			cancelled = append(cancelled, item.ID)
		}
	}

	eff.moveItems(models.ItemStatusCancelled, cancelled...)
	eff.orderStatus = models.OrderStatusCancelled
	eff.releaseTable = order.TableID != nil && order.Status != models.OrderStatusCancelled
	return eff, nil
}

// checkInvoiceReady validates the create_invoice precondition: every item
// settled into IN_TABLE or CANCELLED, nothing lingering in earlier states.
func checkInvoiceReady(order *models.Order, items []models.OrderedItem) error {
	if !models.CommandAllowed(models.CommandCreateInvoice, order.Status) {
		return fmt.Errorf("%w: cannot create invoice for %s order", ErrInvalidTransition, order.Status)
	}
	for _, item := range items {
		switch item.Status {
		case models.ItemStatusInTable, models.ItemStatusCancelled:
		default:
			return fmt.Errorf("%w: item %d still %s", ErrOrderStillRunning, item.ID, item.Status)
		}
	}
	return nil
}

// checkPayReady validates the pay precondition. INITIALIZED items (added to
// the cart but never placed) do not block settlement; anything mid-flight does.
func checkPayReady(order *models.Order, items []models.OrderedItem) error {
	if !models.CommandAllowed(models.CommandPay, order.Status) {
		return fmt.Errorf("%w: cannot pay a %s order", ErrInvalidTransition, order.Status)
	}
	for _, item := range items {
		switch item.Status {
		case models.ItemStatusInitialized, models.ItemStatusInTable, models.ItemStatusCancelled:
		default:
			return fmt.Errorf("%w: item %d still %s", ErrOrderStillRunning, item.ID, item.Status)
		}
	}
	return nil
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// --- item deduplication ---

// itemMerge is one quantity merge produced by the dedup pass.
type itemMerge struct {
	itemID   int64
	quantity int
	amount   decimal.Decimal
}

// mergePlan lists the destructive changes dedup wants: quantity updates on
// the surviving items and soft-deletes of the absorbed duplicates.
type mergePlan struct {
	updates []itemMerge
	deletes []int64
}

func (p mergePlan) empty() bool {
	return len(p.updates) == 0 && len(p.deletes) == 0
}

// dedupKey groups items that are interchangeable lines: same food option,
// identical extras set, same status.
func dedupKey(item models.OrderedItem) string {
	extras := append([]int64(nil), item.ExtraIDs...)
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	parts := make([]string, 0, len(extras)+1)
	parts = append(parts, fmt.Sprintf("o%d:s%s", item.FoodOptionID, item.Status))
	for _, id := range extras {
		parts = append(parts, fmt.Sprintf("e%d", id))
	}
	return strings.Join(parts, "|")
}

// dedupItems merges duplicate lines ahead of invoice generation: quantities
// and amounts are summed into the first-seen item of each group and the
// absorbed duplicates are deleted. Destructive — only legal before the
// invoice snapshot is taken. Returns the merged view and the persistence plan.
func dedupItems(items []models.OrderedItem) ([]models.OrderedItem, mergePlan) {
	var plan mergePlan
	merged := make([]models.OrderedItem, 0, len(items))
	firstSeen := map[string]int{}

	for _, item := range items {
		key := dedupKey(item)
		if idx, ok := firstSeen[key]; ok {
			survivor := &merged[idx]
			survivor.Quantity += item.Quantity
			survivor.Amount = survivor.Amount.Add(item.Amount)
			plan.deletes = append(plan.deletes, item.ID)
			continue
		}
		firstSeen[key] = len(merged)
		merged = append(merged, item)
	}

	if len(plan.deletes) == 0 {
		return merged, plan
	}
	for _, idx := range firstSeen {
		original := findItem(items, merged[idx].ID)
		if original != nil && original.Quantity != merged[idx].Quantity {
			plan.updates = append(plan.updates, itemMerge{
				itemID:   merged[idx].ID,
				quantity: merged[idx].Quantity,
				amount:   merged[idx].Amount,
			})
		}
	}
	sort.Slice(plan.updates, func(i, j int) bool { return plan.updates[i].itemID < plan.updates[j].itemID })
	return merged, plan
}

func findItem(items []models.OrderedItem, id int64) *models.OrderedItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
