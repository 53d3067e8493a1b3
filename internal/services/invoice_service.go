package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/repositories"

	"github.com/google/uuid"
)

// InvoiceService produces and serves settlement snapshots. Generation runs
// inside the order state machine's transaction so that the snapshot, the
// item merges, and the order status move together or not at all.
type InvoiceService interface {
	// GenerateForOrder deduplicates the order's items, prices the result and
	// writes the invoice: a fresh one with a new opaque token if none is live
	// for this order, otherwise an in-place overwrite of the existing row.
	GenerateForOrder(tx repositories.SQLExecutor, order *models.Order, restaurant *models.Restaurant, paymentStatus models.PaymentStatus) (*models.Invoice, error)
	GetByToken(token string) (*models.Invoice, error)
	GetInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error)
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	orderRepo   repositories.OrderRepository
}

// NewInvoiceService creates a new instance of InvoiceService.
func NewInvoiceService(ir repositories.InvoiceRepository, or repositories.OrderRepository) InvoiceService {
	return &invoiceService{invoiceRepo: ir, orderRepo: or}
}

func (s *invoiceService) GenerateForOrder(tx repositories.SQLExecutor, order *models.Order, restaurant *models.Restaurant, paymentStatus models.PaymentStatus) (*models.Invoice, error) {
	items, err := s.orderRepo.GetItemsByOrderID(tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for invoice generation: %w", err)
	}

	// Merge near-identical lines before anything is priced or serialized.
	// The merge is destructive and must land in the same transaction.
	merged, plan := dedupItems(items)
	now := time.Now()
	for _, update := range plan.updates {
		if err := s.orderRepo.UpdateItemQuantity(tx, update.itemID, update.quantity, update.amount, now); err != nil {
			return nil, fmt.Errorf("failed to merge duplicate item %d: %w", update.itemID, err)
		}
	}
	for _, itemID := range plan.deletes {
		if err := s.orderRepo.SoftDeleteItem(tx, itemID, now); err != nil {
			return nil, fmt.Errorf("failed to remove merged duplicate item %d: %w", itemID, err)
		}
	}

	charges := CalculateOrderCharges(restaurant, merged).Rounded()
	snapshot := buildSnapshot(order, merged, charges, now)

	orderID := order.ID
	live, err := s.invoiceRepo.GetLiveByOrderID(tx, order.ID, true)
	switch {
	case err == nil:
		live.Snapshot = snapshot
		live.GrandTotal = charges.GrandTotal
		live.PaymentStatus = paymentStatus
		if err := s.invoiceRepo.Overwrite(tx, live); err != nil {
			return nil, fmt.Errorf("failed to overwrite invoice for order %d: %w", order.ID, err)
		}
		return live, nil
	case errors.Is(err, repositories.ErrNotFound):
		invoice := &models.Invoice{
			Token:         uuid.NewString(),
			RestaurantID:  order.RestaurantID,
			OrderID:       &orderID,
			Snapshot:      snapshot,
			GrandTotal:    charges.GrandTotal,
			PaymentStatus: paymentStatus,
		}
		if _, err := s.invoiceRepo.Create(tx, invoice); err != nil {
			return nil, fmt.Errorf("failed to create invoice for order %d: %w", order.ID, err)
		}
		return invoice, nil
	default:
		return nil, fmt.Errorf("failed to look up live invoice for order %d: %w", order.ID, err)
	}
}

// buildSnapshot serializes the order, its (deduplicated) items and the
// computed charges into the versioned snapshot the invoice stores.
func buildSnapshot(order *models.Order, items []models.OrderedItem, charges OrderCharges, takenAt time.Time) models.InvoiceSnapshot {
	snapshot := models.InvoiceSnapshot{
		Version:       models.SnapshotVersion,
		OrderID:       order.ID,
		RestaurantID:  order.RestaurantID,
		Remarks:       order.Remarks,
		FoodPrice:     charges.FoodPrice,
		ServiceCharge: charges.ServiceCharge,
		TaxAmount:     charges.TaxAmount,
		GrandTotal:    charges.GrandTotal,
		TakenAt:       takenAt,
	}
	if order.Table != nil {
		snapshot.TableName = order.Table.Name
		snapshot.TableNo = order.Table.TableNo
	}

	snapshot.Items = make([]models.SnapshotItem, 0, len(items))
	for _, item := range items {
		line := models.SnapshotItem{
			ItemID:   item.ID,
			FoodName: item.FoodName,
			Quantity: item.Quantity,
			Status:   item.Status,
			Amount:   item.Amount.Round(2),
		}
		if item.FoodOption != nil {
			line.OptionName = item.FoodOption.Name
			line.UnitPrice = item.FoodOption.Price
		}
		for _, extra := range item.Extras {
			line.Extras = append(line.Extras, models.SnapshotExtra{Name: extra.Name, Price: extra.Price})
		}
		snapshot.Items = append(snapshot.Items, line)
	}
	return snapshot
}

func (s *invoiceService) GetByToken(token string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by token: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) GetInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error) {
	invoices, totalCount, err := s.invoiceRepo.GetInvoices(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get invoices: %w", err)
	}
	return invoices, totalCount, nil
}
