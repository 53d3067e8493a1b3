package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
	"github.com/NumanIbnMazid/restaurant-management/internal/repositories"
)

var errFakeUnsupported = errors.New("not supported by fake repository")

// fakeOrderRepo backs invoice generation with an in-memory item store so the
// merge writes can be observed without a database.
type fakeOrderRepo struct {
	items map[int64][]models.OrderedItem
}

func (f *fakeOrderRepo) GetItemsByOrderID(_ repositories.SQLExecutor, orderID int64) ([]models.OrderedItem, error) {
	return append([]models.OrderedItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrderRepo) UpdateItemQuantity(_ repositories.SQLExecutor, itemID int64, quantity int, amount decimal.Decimal, _ time.Time) error {
	for orderID, items := range f.items {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = quantity
				items[i].Amount = amount
				f.items[orderID] = items
				return nil
			}
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeOrderRepo) SoftDeleteItem(_ repositories.SQLExecutor, itemID int64, _ time.Time) error {
	for orderID, items := range f.items {
		kept := make([]models.OrderedItem, 0, len(items))
		for _, item := range items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		f.items[orderID] = kept
	}
	return nil
}

func (f *fakeOrderRepo) CreateOrder(repositories.SQLExecutor, *models.Order) (int64, error) {
	return 0, errFakeUnsupported
}

func (f *fakeOrderRepo) GetOrderByID(int64) (*models.Order, error) { return nil, errFakeUnsupported }

func (f *fakeOrderRepo) GetOrderForUpdate(repositories.SQLExecutor, int64) (*models.Order, error) {
	return nil, errFakeUnsupported
}

func (f *fakeOrderRepo) GetOrders(models.OrderFilters) ([]models.Order, int, error) {
	return nil, 0, errFakeUnsupported
}

func (f *fakeOrderRepo) UpdateOrderStatus(repositories.SQLExecutor, int64, models.OrderStatus, time.Time) error {
	return errFakeUnsupported
}

func (f *fakeOrderRepo) SoftDeleteOrder(repositories.SQLExecutor, int64, time.Time) error {
	return errFakeUnsupported
}

func (f *fakeOrderRepo) CreateOrderedItem(repositories.SQLExecutor, *models.OrderedItem) (int64, error) {
	return 0, errFakeUnsupported
}

func (f *fakeOrderRepo) UpdateItemStatuses(repositories.SQLExecutor, []int64, models.ItemStatus, time.Time) error {
	return errFakeUnsupported
}

// fakeInvoiceRepo keeps at most one live invoice per order, mirroring the
// partial unique index the real repository relies on.
type fakeInvoiceRepo struct {
	nextID int64
	live   map[int64]models.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{live: map[int64]models.Invoice{}}
}

func (f *fakeInvoiceRepo) GetLiveByOrderID(_ repositories.SQLExecutor, orderID int64, _ bool) (*models.Invoice, error) {
	invoice, ok := f.live[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	stored := invoice
	return &stored, nil
}

func (f *fakeInvoiceRepo) Create(_ repositories.SQLExecutor, invoice *models.Invoice) (int64, error) {
	f.nextID++
	invoice.ID = f.nextID
	f.live[*invoice.OrderID] = *invoice
	return invoice.ID, nil
}

func (f *fakeInvoiceRepo) Overwrite(_ repositories.SQLExecutor, invoice *models.Invoice) error {
	for orderID, stored := range f.live {
		if stored.ID == invoice.ID {
			f.live[orderID] = *invoice
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeInvoiceRepo) GetByToken(token string) (*models.Invoice, error) {
	for _, invoice := range f.live {
		if invoice.Token == token {
			stored := invoice
			return &stored, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeInvoiceRepo) GetInvoices(models.InvoiceFilters) ([]models.Invoice, int, error) {
	return nil, 0, errFakeUnsupported
}

func (f *fakeInvoiceRepo) SoftDelete(_ repositories.SQLExecutor, invoiceID int64, _ time.Time) error {
	for orderID, stored := range f.live {
		if stored.ID == invoiceID {
			delete(f.live, orderID)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func TestBuildSnapshot(t *testing.T) {
	tableNo := 4
	tableName := "Window"
	remarks := "no onions"
	tableID := int64(7)

	order := &models.Order{
		ID:           42,
		RestaurantID: 3,
		TableID:      &tableID,
		Remarks:      &remarks,
		Table:        &models.Table{ID: tableID, TableNo: &tableNo, Name: &tableName},
	}
	items := []models.OrderedItem{
		{
			ID:         1,
			Quantity:   2,
			Status:     models.ItemStatusInTable,
			Amount:     dec("51.00"),
			FoodName:   "Margherita",
			FoodOption: &models.FoodOption{Name: "Large", Price: dec("24")},
			Extras:     []models.FoodExtra{{Name: "Cheese", Price: dec("1.50")}},
		},
		{
			ID:       2,
			Quantity: 1,
			Status:   models.ItemStatusCancelled,
			Amount:   dec("10"),
			FoodName: "Cola",
		},
	}

	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: true,
		ServiceCharge:             dec("10"),
		TaxPercentage:             dec("5"),
	}
	charges := CalculateOrderCharges(restaurant, items).Rounded()
	takenAt := time.Now()

	snapshot := buildSnapshot(order, items, charges, takenAt)

	assert.Equal(t, models.SnapshotVersion, snapshot.Version)
	assert.Equal(t, int64(42), snapshot.OrderID)
	assert.Equal(t, int64(3), snapshot.RestaurantID)
	require.NotNil(t, snapshot.TableNo)
	assert.Equal(t, 4, *snapshot.TableNo)
	require.NotNil(t, snapshot.Remarks)
	assert.Equal(t, "no onions", *snapshot.Remarks)

	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, "Margherita", snapshot.Items[0].FoodName)
	assert.Equal(t, "Large", snapshot.Items[0].OptionName)
	assert.True(t, snapshot.Items[0].UnitPrice.Equal(dec("24")))
	require.Len(t, snapshot.Items[0].Extras, 1)
	assert.Equal(t, "Cheese", snapshot.Items[0].Extras[0].Name)
	// Cancelled lines appear in the snapshot but never in the totals.
	assert.Equal(t, models.ItemStatusCancelled, snapshot.Items[1].Status)

	// Price round-trip: the snapshot carries exactly what the calculator
	// produced for the same item set.
	assert.True(t, snapshot.GrandTotal.Equal(charges.GrandTotal))
	assert.True(t, snapshot.FoodPrice.Equal(dec("51.00")))
	assert.True(t, snapshot.ServiceCharge.Equal(dec("5.10")))
	assert.True(t, snapshot.TaxAmount.Equal(dec("2.81")))
	assert.True(t, snapshot.GrandTotal.Equal(dec("58.91")))
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	order := &models.Order{ID: 1, RestaurantID: 1}
	items := []models.OrderedItem{
		{
			ID:         1,
			Quantity:   3,
			Status:     models.ItemStatusInTable,
			Amount:     dec("29.97"),
			FoodName:   "Ramen",
			FoodOption: &models.FoodOption{Name: "Regular", Price: dec("9.99")},
		},
	}
	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: false,
		ServiceCharge:             dec("2"),
		TaxPercentage:             dec("8"),
	}
	charges := CalculateOrderCharges(restaurant, items).Rounded()
	snapshot := buildSnapshot(order, items, charges, time.Now())

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var decoded models.InvoiceSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, snapshot.Version, decoded.Version)
	assert.True(t, decoded.GrandTotal.Equal(snapshot.GrandTotal))
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, "Ramen", decoded.Items[0].FoodName)
	assert.True(t, decoded.Items[0].UnitPrice.Equal(dec("9.99")))
}

func TestGenerateForOrderCreatesThenOverwrites(t *testing.T) {
	orderID := int64(42)
	order := &models.Order{ID: orderID, RestaurantID: 3, Status: models.OrderStatusInTable}
	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: true,
		ServiceCharge:             dec("10"),
		TaxPercentage:             dec("5"),
	}
	orderRepo := &fakeOrderRepo{items: map[int64][]models.OrderedItem{
		orderID: {
			{ID: 1, OrderID: orderID, FoodOptionID: 100, Quantity: 2, Status: models.ItemStatusInTable, Amount: dec("50"), FoodName: "Ramen", FoodOption: &models.FoodOption{Name: "Regular", Price: dec("25")}},
		},
	}}
	invoiceRepo := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	first, err := svc.GenerateForOrder(nil, order, restaurant, models.PaymentStatusUnpaid)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, models.PaymentStatusUnpaid, first.PaymentStatus)

	// Settlement regenerates in place: same row, same token, still exactly
	// one live invoice for the order.
	paid, err := svc.GenerateForOrder(nil, order, restaurant, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, first.ID, paid.ID)
	assert.Equal(t, first.Token, paid.Token)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Len(t, invoiceRepo.live, 1)

	stored, err := invoiceRepo.GetLiveByOrderID(nil, orderID, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.True(t, stored.GrandTotal.Equal(dec("57.75")))
}

func TestGenerateForOrderMergesDuplicateLines(t *testing.T) {
	orderID := int64(9)
	order := &models.Order{ID: orderID, RestaurantID: 3, Status: models.OrderStatusInTable}
	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: true,
		ServiceCharge:             dec("0"),
		TaxPercentage:             dec("0"),
	}
	orderRepo := &fakeOrderRepo{items: map[int64][]models.OrderedItem{
		orderID: {
			{ID: 1, OrderID: orderID, FoodOptionID: 100, Quantity: 2, Status: models.ItemStatusInTable, Amount: dec("20"), FoodName: "Gyoza", FoodOption: &models.FoodOption{Name: "Regular", Price: dec("10")}},
			{ID: 2, OrderID: orderID, FoodOptionID: 100, Quantity: 3, Status: models.ItemStatusInTable, Amount: dec("30"), FoodName: "Gyoza", FoodOption: &models.FoodOption{Name: "Regular", Price: dec("10")}},
		},
	}}
	invoiceRepo := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	invoice, err := svc.GenerateForOrder(nil, order, restaurant, models.PaymentStatusUnpaid)
	require.NoError(t, err)

	// The duplicate line is absorbed before the snapshot is taken, and the
	// merge lands in the item store too.
	require.Len(t, invoice.Snapshot.Items, 1)
	assert.Equal(t, 5, invoice.Snapshot.Items[0].Quantity)
	assert.True(t, invoice.GrandTotal.Equal(dec("50.00")))

	remaining, err := orderRepo.GetItemsByOrderID(nil, orderID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(1), remaining[0].ID)
	assert.Equal(t, 5, remaining[0].Quantity)
}

func TestReprintAfterSettlementStaysPaid(t *testing.T) {
	orderID := int64(42)
	order := &models.Order{ID: orderID, RestaurantID: 3, Status: models.OrderStatusInvoiceCreated}
	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: true,
		ServiceCharge:             dec("10"),
		TaxPercentage:             dec("5"),
	}
	orderRepo := &fakeOrderRepo{items: map[int64][]models.OrderedItem{
		orderID: {
			{ID: 1, OrderID: orderID, FoodOptionID: 100, Quantity: 1, Status: models.ItemStatusInTable, Amount: dec("50"), FoodName: "Ramen"},
		},
	}}
	invoiceRepo := newFakeInvoiceRepo()
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	_, err := svc.GenerateForOrder(nil, order, restaurant, invoicePaymentStatus(order.Status))
	require.NoError(t, err)

	paid, err := svc.GenerateForOrder(nil, order, restaurant, models.PaymentStatusPaid)
	require.NoError(t, err)
	order.Status = models.OrderStatusPaid

	// Reprinting the bill of a settled order must never flip it back to UNPAID.
	reprinted, err := svc.GenerateForOrder(nil, order, restaurant, invoicePaymentStatus(order.Status))
	require.NoError(t, err)
	assert.Equal(t, paid.Token, reprinted.Token)
	assert.Equal(t, models.PaymentStatusPaid, reprinted.PaymentStatus)

	stored, err := invoiceRepo.GetLiveByOrderID(nil, orderID, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestInvoicePaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentStatusPaid, invoicePaymentStatus(models.OrderStatusPaid))
	assert.Equal(t, models.PaymentStatusUnpaid, invoicePaymentStatus(models.OrderStatusInTable))
	assert.Equal(t, models.PaymentStatusUnpaid, invoicePaymentStatus(models.OrderStatusInvoiceCreated))
}
