package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order and ordered-item database
// operations. Methods that mutate state take a SQLExecutor so the order
// service can run every transition as one transaction.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	// GetOrderForUpdate loads the order row under a row-level lock. Taking
	// this lock first serializes concurrent transitions on the same order.
	GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus models.OrderStatus, updatedAt time.Time) error
	SoftDeleteOrder(executor SQLExecutor, orderID int64, deletedAt time.Time) error

	CreateOrderedItem(executor SQLExecutor, item *models.OrderedItem) (int64, error)
	GetItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderedItem, error)
	UpdateItemStatuses(executor SQLExecutor, itemIDs []int64, newStatus models.ItemStatus, updatedAt time.Time) error
	UpdateItemQuantity(executor SQLExecutor, itemID int64, quantity int, amount decimal.Decimal, updatedAt time.Time) error
	SoftDeleteItem(executor SQLExecutor, itemID int64, deletedAt time.Time) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order methods ---

const orderColumns = `id, restaurant_id, table_id, customer_id, remarks, status, created_at, updated_at, deleted_at`

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO food_orders
	            (restaurant_id, table_id, customer_id, remarks, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.RestaurantID, order.TableID, order.CustomerID, order.Remarks, order.Status,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.RestaurantID, &order.TableID, &order.CustomerID, &order.Remarks,
		&order.Status, &order.CreatedAt, &order.UpdatedAt, &order.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM food_orders WHERE id = $1 AND deleted_at IS NULL`
	return scanOrder(r.db.QueryRow(query, orderID))
}

func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM food_orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return scanOrder(executor.QueryRow(query, orderID))
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.restaurant_id, o.table_id, o.customer_id, o.remarks, o.status,
            o.created_at, o.updated_at, o.deleted_at,
            t.name AS table_name, t.table_no,
            COUNT(*) OVER() AS total_count
        FROM food_orders o
        LEFT JOIN tables t ON o.table_id = t.id
        WHERE o.deleted_at IS NULL
    `)

	var args []interface{}
	argCounter := 1

	if filters.RestaurantID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.restaurant_id = $%d", argCounter))
		args = append(args, *filters.RestaurantID)
		argCounter++
	}
	if filters.TableID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}

	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var tableName sql.NullString
		var tableNo sql.NullInt64

		err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.TableID, &o.CustomerID, &o.Remarks, &o.Status,
			&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
			&tableName, &tableNo,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		if o.TableID != nil {
			table := models.Table{ID: *o.TableID, RestaurantID: o.RestaurantID}
			if tableName.Valid {
				name := tableName.String
				table.Name = &name
			}
			if tableNo.Valid {
				no := int(tableNo.Int64)
				table.TableNo = &no
			}
			o.Table = &table
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus models.OrderStatus, updatedAt time.Time) error {
	query := `UPDATE food_orders SET status = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`
	result, err := executor.Exec(query, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) SoftDeleteOrder(executor SQLExecutor, orderID int64, deletedAt time.Time) error {
	query := `UPDATE food_orders SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := executor.Exec(query, deletedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: soft-deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for soft delete of order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- OrderedItem methods ---

func (r *orderRepository) CreateOrderedItem(executor SQLExecutor, item *models.OrderedItem) (int64, error) {
	query := `INSERT INTO ordered_items
	            (order_id, food_option_id, quantity, status, amount, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.FoodOptionID, item.Quantity, item.Status, item.Amount,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating ordered item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating ordered item: %v", ErrDatabaseError, err)
	}

	for _, extraID := range item.ExtraIDs {
		_, err := executor.Exec(
			`INSERT INTO ordered_item_extras (ordered_item_id, food_extra_id) VALUES ($1, $2)`,
			item.ID, extraID,
		)
		if err != nil {
			return 0, fmt.Errorf("%w: linking extra %d to ordered item %d: %v", ErrDatabaseError, extraID, item.ID, err)
		}
	}
	return item.ID, nil
}

func (r *orderRepository) GetItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderedItem, error) {
	if executor == nil {
		executor = r.db
	}
	items := []models.OrderedItem{}
	query := `
		SELECT
		    oi.id, oi.order_id, oi.food_option_id, oi.quantity, oi.status, oi.amount,
		    oi.created_at, oi.updated_at, oi.deleted_at,
		    fo.name AS option_name, fo.price AS option_price, fo.food_id,
		    f.name AS food_name
		FROM ordered_items oi
		JOIN food_options fo ON oi.food_option_id = fo.id
		JOIN foods f ON fo.food_id = f.id
		WHERE oi.order_id = $1 AND oi.deleted_at IS NULL
		ORDER BY oi.id`

	rows, err := executor.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ordered items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	itemIndex := map[int64]int{}
	for rows.Next() {
		var item models.OrderedItem
		option := models.FoodOption{}
		var foodName string

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.FoodOptionID, &item.Quantity, &item.Status, &item.Amount,
			&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
			&option.Name, &option.Price, &option.FoodID,
			&foodName,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning ordered item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		option.ID = item.FoodOptionID
		item.FoodOption = &option
		item.FoodName = foodName

		itemIndex[item.ID] = len(items)
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ordered item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}

	if len(items) == 0 {
		return items, nil
	}

	itemIDs := make([]int64, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	extrasQuery := `
		SELECT oie.ordered_item_id, fe.id, fe.food_id, fe.name, fe.price
		FROM ordered_item_extras oie
		JOIN food_extras fe ON oie.food_extra_id = fe.id
		WHERE oie.ordered_item_id = ANY($1)
		ORDER BY fe.id`

	extraRows, err := executor.Query(extrasQuery, pq.Array(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying extras for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer extraRows.Close()

	for extraRows.Next() {
		var itemID int64
		var extra models.FoodExtra
		if err := extraRows.Scan(&itemID, &extra.ID, &extra.FoodID, &extra.Name, &extra.Price); err != nil {
			return nil, fmt.Errorf("%w: scanning extra row for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		if idx, ok := itemIndex[itemID]; ok {
			items[idx].Extras = append(items[idx].Extras, extra)
			items[idx].ExtraIDs = append(items[idx].ExtraIDs, extra.ID)
		}
	}
	if err = extraRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating extra rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) UpdateItemStatuses(executor SQLExecutor, itemIDs []int64, newStatus models.ItemStatus, updatedAt time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query := `UPDATE ordered_items SET status = $1, updated_at = $2 WHERE id = ANY($3) AND deleted_at IS NULL`
	_, err := executor.Exec(query, newStatus, updatedAt, pq.Array(itemIDs))
	if err != nil {
		return fmt.Errorf("%w: bulk-updating item statuses: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) UpdateItemQuantity(executor SQLExecutor, itemID int64, quantity int, amount decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE ordered_items SET quantity = $1, amount = $2, updated_at = $3 WHERE id = $4 AND deleted_at IS NULL`
	result, err := executor.Exec(query, quantity, amount, updatedAt, itemID)
	if err != nil {
		return fmt.Errorf("%w: updating quantity for item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for item quantity update ID %d: %v", ErrDatabaseError, itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) SoftDeleteItem(executor SQLExecutor, itemID int64, deletedAt time.Time) error {
	query := `UPDATE ordered_items SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := executor.Exec(query, deletedAt, itemID)
	if err != nil {
		return fmt.Errorf("%w: soft-deleting item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for soft delete of item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
