package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/repositories"

	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// Service-level sentinel errors. Handlers map these onto the API error
// taxonomy: validation, not-found, state-conflict, authorization.
var (
	ErrValidation         = errors.New("validation failed")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrFoodOptionNotFound = errors.New("food option not found or not available")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrTableOccupied      = errors.New("table already occupied")
	ErrNoItems            = errors.New("no items awaiting placement")
	ErrOrderStillRunning  = errors.New("order still running")
	ErrInvalidTransition  = errors.New("operation not allowed in current order status")
	ErrNotPermitted       = errors.New("caller lacks the required capability")
)

// --- Data Transfer Objects ---

// OrderItemRequest is one line added to an order's cart.
type OrderItemRequest struct {
	FoodOptionID int64   `json:"food_option_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	ExtraIDs     []int64 `json:"food_extras"`
}

// CreateOrderRequest books a table and opens an order on it.
type CreateOrderRequest struct {
	RestaurantID int64              `json:"restaurant_id" binding:"required"`
	TableID      *int64             `json:"table_id"`
	CustomerID   *int64             `json:"customer_id"`
	Remarks      *string            `json:"remarks"`
	Items        []OrderItemRequest `json:"ordered_items"`
}

// AddItemsRequest appends cart lines to an existing order.
type AddItemsRequest struct {
	Items []OrderItemRequest `json:"ordered_items" binding:"required,dive"`
}

// ItemSelectionRequest carries the subset of item ids a kitchen/waiter
// operation applies to.
type ItemSelectionRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// ReorderRequest opens a fresh order repeating an existing one.
type ReorderRequest struct {
	TableID *int64 `json:"table_id"`
}

// --- OrderService interface ---

// OrderService is the order lifecycle state machine. Every transition runs
// as one transaction: the order row is locked first, item effects are
// applied, and the order-level status update lands last.
type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	AddItems(orderID int64, req AddItemsRequest) (*models.Order, error)
	PlaceItems(orderID int64) (*models.Order, error)
	Confirm(callerID, orderID int64, keepIDs []int64, cancelOthers bool) (*models.Order, error)
	Serve(orderID int64, keepIDs []int64) (*models.Order, error)
	CancelItems(orderID int64, itemIDs []int64) (*models.Order, error)
	CancelOrder(orderID int64) (*models.Order, error)
	DeleteOrder(orderID int64) error
	CreateInvoice(orderID int64) (*models.Invoice, error)
	Pay(callerID, orderID int64) (*models.Invoice, error)
	Reorder(orderID int64, req ReorderRequest) (*models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
}

type orderService struct {
	orderRepo      repositories.OrderRepository
	tableRepo      repositories.TableRepository
	foodRepo       repositories.FoodRepository
	restaurantRepo repositories.RestaurantRepository
	staffRepo      repositories.StaffRepository
	invoiceRepo    repositories.InvoiceRepository
	invoiceSvc     InvoiceService
	notifier       NotificationSender
	db             *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	tr repositories.TableRepository,
	fr repositories.FoodRepository,
	rr repositories.RestaurantRepository,
	sr repositories.StaffRepository,
	ir repositories.InvoiceRepository,
	is InvoiceService,
	notifier NotificationSender,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:      or,
		tableRepo:      tr,
		foodRepo:       fr,
		restaurantRepo: rr,
		staffRepo:      sr,
		invoiceRepo:    ir,
		invoiceSvc:     is,
		notifier:       notifier,
		db:             db,
	}
}

// --- Method implementations ---

func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if _, err := s.restaurantRepo.GetRestaurantByID(req.RestaurantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}

	lines, err := s.buildItemLines(req.RestaurantID, req.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	// The occupancy check and the order insert share one transaction with
	// the table row locked, so two concurrent bookings cannot both observe
	// a free table.
	if req.TableID != nil {
		table, err := s.tableRepo.GetTableForUpdate(tx, *req.TableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrTableNotFound
			}
			return nil, fmt.Errorf("failed to fetch table for booking: %w", err)
		}
		if table.RestaurantID != req.RestaurantID {
			return nil, fmt.Errorf("%w: table %d does not belong to restaurant %d", ErrValidation, table.ID, req.RestaurantID)
		}
		if table.IsOccupied {
			return nil, ErrTableOccupied
		}
		if err := s.tableRepo.SetOccupied(tx, table.ID, true, now); err != nil {
			return nil, fmt.Errorf("failed to occupy table: %w", err)
		}
	}

	order := models.Order{
		RestaurantID: req.RestaurantID,
		TableID:      req.TableID,
		CustomerID:   req.CustomerID,
		Remarks:      req.Remarks,
		Status:       models.OrderStatusInitialized,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	orderID, err := s.orderRepo.CreateOrder(tx, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order record: %w", err)
	}

	for i := range lines {
		lines[i].OrderID = orderID
		if _, err := s.orderRepo.CreateOrderedItem(tx, &lines[i]); err != nil {
			return nil, fmt.Errorf("failed to create ordered item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return s.GetOrderByID(orderID)
}

func (s *orderService) AddItems(orderID int64, req AddItemsRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items supplied", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot add items to a %s order", ErrInvalidTransition, order.Status)
	}

	lines, err := s.buildItemLines(order.RestaurantID, req.Items)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].OrderID = orderID
		if _, err := s.orderRepo.CreateOrderedItem(tx, &lines[i]); err != nil {
			return nil, fmt.Errorf("failed to create ordered item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit add-items transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) PlaceItems(orderID int64) (*models.Order, error) {
	placedAny := false
	order, err := s.runTransition(orderID, func(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
		eff, err := placeEffects(order, items)
		if err != nil {
			return nil, err
		}
		placedAny = len(eff.itemChanges[models.ItemStatusPlaced]) > 0
		return eff, nil
	})
	if err != nil {
		return nil, err
	}

	if placedAny {
		s.notifyStaff(order, EventOrderReceived, NotificationParams{TableNo: tableNo(order)})
	}
	return order, nil
}

func (s *orderService) Confirm(callerID, orderID int64, keepIDs []int64, cancelOthers bool) (*models.Order, error) {
	if err := s.requireManagerOrOwner(callerID, orderID); err != nil {
		return nil, err
	}
	return s.runTransition(orderID, func(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
		return confirmEffects(order, items, keepIDs, cancelOthers)
	})
}

func (s *orderService) Serve(orderID int64, keepIDs []int64) (*models.Order, error) {
	return s.runTransition(orderID, func(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
		return serveEffects(order, items, keepIDs)
	})
}

func (s *orderService) CancelItems(orderID int64, itemIDs []int64) (*models.Order, error) {
	var cancelledNames []string
	order, err := s.runTransition(orderID, func(order *models.Order, items []models.OrderedItem) (*transitionEffects, error) {
		eff, err := cancelItemsEffects(order, items, itemIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range eff.itemChanges[models.ItemStatusCancelled] {
			if item := findItem(items, id); item != nil {
				cancelledNames = append(cancelledNames, item.FoodName)
			}
		}
		return eff, nil
	})
	if err != nil {
		return nil, err
	}

	if len(cancelledNames) > 0 {
		s.notifyStaff(order, EventItemsCancelled, NotificationParams{FoodNames: cancelledNames})
	}
	return order, nil
}

func (s *orderService) CancelOrder(orderID int64) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}

	eff, err := cancelOrderEffects(order, items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.applyEffects(tx, order, eff, now); err != nil {
		return nil, err
	}

	// Cancelling an invoiced order voids its unpaid bill.
	if order.Status == models.OrderStatusInvoiceCreated {
		live, err := s.invoiceRepo.GetLiveByOrderID(tx, orderID, true)
		switch {
		case err == nil:
			if err := s.invoiceRepo.SoftDelete(tx, live.ID, now); err != nil {
				return nil, fmt.Errorf("failed to void invoice: %w", err)
			}
		case errors.Is(err, repositories.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to look up live invoice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	result, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	s.notifyStaff(result, EventOrderCancelled, NotificationParams{OrderNo: result.ID})
	return result, nil
}

// DeleteOrder soft-deletes a settled or cancelled order. Its invoice, if
// any, survives: the order reference on invoices is nullable for exactly
// this reason.
func (s *orderService) DeleteOrder(orderID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.Terminal() {
		return fmt.Errorf("%w: only paid or cancelled orders can be deleted", ErrInvalidTransition)
	}

	if err := s.orderRepo.SoftDeleteOrder(tx, orderID, time.Now()); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return tx.Commit()
}

// invoicePaymentStatus picks the payment status a regenerated invoice keeps.
// Reprinting a settled order's bill must not flip it back to UNPAID.
func invoicePaymentStatus(status models.OrderStatus) models.PaymentStatus {
	if status == models.OrderStatusPaid {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusUnpaid
}

func (s *orderService) CreateInvoice(orderID int64) (*models.Invoice, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	if err := checkInvoiceReady(order, items); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetRestaurantByID(order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant for pricing: %w", err)
	}
	if err := s.attachTable(order); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceSvc.GenerateForOrder(tx, order, restaurant, invoicePaymentStatus(order.Status))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	next := models.NextOrderStatus(models.CommandCreateInvoice, order.Status)
	if next != order.Status {
		if err := s.orderRepo.UpdateOrderStatus(tx, orderID, next, now); err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invoice transaction: %w", err)
	}
	return invoice, nil
}

func (s *orderService) Pay(callerID, orderID int64) (*models.Invoice, error) {
	if err := s.requireManagerOrOwner(callerID, orderID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	if err := checkPayReady(order, items); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetRestaurantByID(order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant for pricing: %w", err)
	}
	if err := s.attachTable(order); err != nil {
		return nil, err
	}

	// Overwrites the unpaid snapshot in place: same token, payment_status PAID.
	invoice, err := s.invoiceSvc.GenerateForOrder(tx, order, restaurant, models.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if order.TableID != nil {
		if err := s.tableRepo.SetOccupied(tx, *order.TableID, false, now); err != nil {
			return nil, fmt.Errorf("failed to release table: %w", err)
		}
	}
	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderStatusPaid, now); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}
	return invoice, nil
}

// Reorder opens a brand-new order repeating an existing one's items, bound
// to the requested table (defaulting to the original's). The original order
// is left untouched: rewriting its status would silently alter the history
// of a possibly settled session.
func (s *orderService) Reorder(orderID int64, req ReorderRequest) (*models.Order, error) {
	original, err := s.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	tableID := req.TableID
	if tableID == nil {
		tableID = original.TableID
	}

	createReq := CreateOrderRequest{
		RestaurantID: original.RestaurantID,
		TableID:      tableID,
		CustomerID:   original.CustomerID,
		Remarks:      original.Remarks,
	}
	for _, item := range original.Items {
		if item.Status == models.ItemStatusCancelled {
			continue
		}
		createReq.Items = append(createReq.Items, OrderItemRequest{
			FoodOptionID: item.FoodOptionID,
			Quantity:     item.Quantity,
			ExtraIDs:     item.ExtraIDs,
		})
	}

	return s.CreateOrder(createReq)
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	items, err := s.orderRepo.GetItemsByOrderID(nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Items = items

	if err := s.attachTable(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

// --- helpers ---

// runTransition is the shared shape of a state machine command: lock the
// order, load its items, compute the aggregate effects, apply them with the
// order-level update last, commit.
func (s *orderService) runTransition(orderID int64, compute func(*models.Order, []models.OrderedItem) (*transitionEffects, error)) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.lockOrder(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}

	eff, err := compute(order, items)
	if err != nil {
		return nil, err
	}

	if err := s.applyEffects(tx, order, eff, time.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}
	return s.GetOrderByID(orderID)
}

// applyEffects persists a computed transition: item updates first, then the
// table flag, the order row last.
func (s *orderService) applyEffects(tx repositories.SQLExecutor, order *models.Order, eff *transitionEffects, now time.Time) error {
	if !eff.changed(order) {
		return nil
	}
	for status, ids := range eff.itemChanges {
		if err := s.orderRepo.UpdateItemStatuses(tx, ids, status, now); err != nil {
			return fmt.Errorf("failed to update item statuses: %w", err)
		}
	}
	if eff.releaseTable && order.TableID != nil {
		if err := s.tableRepo.SetOccupied(tx, *order.TableID, false, now); err != nil {
			return fmt.Errorf("failed to release table: %w", err)
		}
	}
	if eff.orderStatus != order.Status {
		if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, eff.orderStatus, now); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
	}
	return nil
}

func (s *orderService) lockOrder(tx repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// buildItemLines validates the requested lines against the catalog and
// computes their denormalized amounts.
func (s *orderService) buildItemLines(restaurantID int64, requests []OrderItemRequest) ([]models.OrderedItem, error) {
	lines := make([]models.OrderedItem, 0, len(requests))
	for _, req := range requests {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for option %d must be positive", ErrValidation, req.FoodOptionID)
		}
		option, food, err := s.foodRepo.GetOptionWithFood(req.FoodOptionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: option %d", ErrFoodOptionNotFound, req.FoodOptionID)
			}
			return nil, fmt.Errorf("failed to fetch food option %d: %w", req.FoodOptionID, err)
		}
		if food.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: option %d does not belong to restaurant %d", ErrValidation, req.FoodOptionID, restaurantID)
		}

		extras, err := s.foodRepo.GetExtrasByIDs(req.ExtraIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch extras: %w", err)
		}
		if len(extras) != len(req.ExtraIDs) {
			return nil, fmt.Errorf("%w: one or more extras not found", ErrValidation)
		}
		for _, extra := range extras {
			if extra.FoodID != option.FoodID {
				return nil, fmt.Errorf("%w: extra %d does not belong to food %d", ErrValidation, extra.ID, option.FoodID)
			}
		}

		lines = append(lines, models.OrderedItem{
			FoodOptionID: req.FoodOptionID,
			Quantity:     req.Quantity,
			Status:       models.ItemStatusInitialized,
			Amount:       UnitAmount(option, extras, req.Quantity),
			ExtraIDs:     req.ExtraIDs,
		})
	}
	return lines, nil
}

// requireManagerOrOwner is the authorization gate for confirm/payment-class
// operations. It runs before any mutation.
func (s *orderService) requireManagerOrOwner(callerID, orderID int64) error {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to fetch order for authorization: %w", err)
	}

	staff, err := s.staffRepo.GetCapabilities(callerID, order.RestaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotPermitted
		}
		return fmt.Errorf("failed to fetch staff capabilities: %w", err)
	}
	if !staff.IsOwner && !staff.IsManager {
		return ErrNotPermitted
	}
	return nil
}

func (s *orderService) attachTable(order *models.Order) error {
	if order.TableID == nil || order.Table != nil {
		return nil
	}
	table, err := s.tableRepo.GetTableByID(*order.TableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch table: %w", err)
	}
	order.Table = table
	return nil
}

// notifyStaff delivers a best-effort push to the restaurant's staff devices.
// Delivery failures are logged and swallowed: the order operation has
// already committed.
func (s *orderService) notifyStaff(order *models.Order, event NotificationEvent, params NotificationParams) {
	if s.notifier == nil {
		return
	}
	tokens, err := s.staffRepo.GetDeviceTokens(order.RestaurantID)
	if err != nil {
		utils.LogWarn("failed to load staff device tokens", map[string]interface{}{"order_id": order.ID})
		return
	}
	if err := s.notifier.Send(event, tokens, params); err != nil {
		utils.LogWarn("push notification failed", map[string]interface{}{
			"order_id": order.ID,
			"event":    string(event),
		})
		return
	}
	utils.LogInfo("push notification sent", map[string]interface{}{
		"order_id": order.ID,
		"event":    string(event),
		"devices":  len(tokens),
	})
}

func tableNo(order *models.Order) int {
	if order.Table != nil && order.Table.TableNo != nil {
		return *order.Table.TableNo
	}
	return 0
}
