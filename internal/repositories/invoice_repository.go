package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

// InvoiceRepository defines the interface for invoice database operations.
// At most one live (non-deleted) invoice exists per order; regeneration
// overwrites it in place.
type InvoiceRepository interface {
	// GetLiveByOrderID loads the live invoice for an order, locking the row
	// when called inside a transaction so concurrent generation is serialized.
	GetLiveByOrderID(executor SQLExecutor, orderID int64, forUpdate bool) (*models.Invoice, error)
	Create(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	Overwrite(executor SQLExecutor, invoice *models.Invoice) error
	GetByToken(token string) (*models.Invoice, error)
	GetInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error)
	SoftDelete(executor SQLExecutor, invoiceID int64, deletedAt time.Time) error
}

type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, token, restaurant_id, order_id, snapshot, grand_total, payment_status, created_at, updated_at, deleted_at`

func scanInvoice(scan func(dest ...interface{}) error) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var rawSnapshot []byte
	err := scan(
		&invoice.ID, &invoice.Token, &invoice.RestaurantID, &invoice.OrderID, &rawSnapshot,
		&invoice.GrandTotal, &invoice.PaymentStatus, &invoice.CreatedAt, &invoice.UpdatedAt, &invoice.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning invoice: %v", ErrDatabaseError, err)
	}
	if err := json.Unmarshal(rawSnapshot, &invoice.Snapshot); err != nil {
		return nil, fmt.Errorf("%w: decoding invoice snapshot: %v", ErrDatabaseError, err)
	}
	return invoice, nil
}

func (r *invoiceRepository) GetLiveByOrderID(executor SQLExecutor, orderID int64, forUpdate bool) (*models.Invoice, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id = $1 AND deleted_at IS NULL`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanInvoice(executor.QueryRow(query, orderID).Scan)
}

func (r *invoiceRepository) Create(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	rawSnapshot, err := json.Marshal(invoice.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("%w: encoding invoice snapshot: %v", ErrDatabaseError, err)
	}

	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = time.Now()
	}

	query := `INSERT INTO invoices
	            (token, restaurant_id, order_id, snapshot, grand_total, payment_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	err = executor.QueryRow(query,
		invoice.Token, invoice.RestaurantID, invoice.OrderID, rawSnapshot,
		invoice.GrandTotal, invoice.PaymentStatus, invoice.CreatedAt, invoice.UpdatedAt,
	).Scan(&invoice.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating invoice: %v", ErrDatabaseError, err)
	}
	return invoice.ID, nil
}

func (r *invoiceRepository) Overwrite(executor SQLExecutor, invoice *models.Invoice) error {
	rawSnapshot, err := json.Marshal(invoice.Snapshot)
	if err != nil {
		return fmt.Errorf("%w: encoding invoice snapshot: %v", ErrDatabaseError, err)
	}

	invoice.UpdatedAt = time.Now()
	query := `UPDATE invoices
	          SET snapshot = $1, grand_total = $2, payment_status = $3, updated_at = $4
	          WHERE id = $5 AND deleted_at IS NULL`
	result, err := executor.Exec(query, rawSnapshot, invoice.GrandTotal, invoice.PaymentStatus, invoice.UpdatedAt, invoice.ID)
	if err != nil {
		return fmt.Errorf("%w: overwriting invoice ID %d: %v", ErrDatabaseError, invoice.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for invoice overwrite ID %d: %v", ErrDatabaseError, invoice.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) GetByToken(token string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE token = $1 AND deleted_at IS NULL`
	return scanInvoice(r.db.QueryRow(query, token).Scan)
}

func (r *invoiceRepository) GetInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error) {
	invoices := []models.Invoice{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + invoiceColumns + `, COUNT(*) OVER() AS total_count
	        FROM invoices WHERE deleted_at IS NULL`)

	var args []interface{}
	argCounter := 1

	if filters.RestaurantID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND restaurant_id = $%d", argCounter))
		args = append(args, *filters.RestaurantID)
		argCounter++
	}
	if filters.PaymentStatus != nil && *filters.PaymentStatus != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND payment_status = $%d", argCounter))
		args = append(args, *filters.PaymentStatus)
		argCounter++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying invoices: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var invoice models.Invoice
		var rawSnapshot []byte
		err := rows.Scan(
			&invoice.ID, &invoice.Token, &invoice.RestaurantID, &invoice.OrderID, &rawSnapshot,
			&invoice.GrandTotal, &invoice.PaymentStatus, &invoice.CreatedAt, &invoice.UpdatedAt, &invoice.DeletedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning invoice row: %v", ErrDatabaseError, err)
		}
		if err := json.Unmarshal(rawSnapshot, &invoice.Snapshot); err != nil {
			return nil, 0, fmt.Errorf("%w: decoding invoice snapshot: %v", ErrDatabaseError, err)
		}
		invoices = append(invoices, invoice)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating invoice rows: %v", ErrDatabaseError, err)
	}
	return invoices, totalCount, nil
}

func (r *invoiceRepository) SoftDelete(executor SQLExecutor, invoiceID int64, deletedAt time.Time) error {
	query := `UPDATE invoices SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := executor.Exec(query, deletedAt, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: soft-deleting invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for soft delete of invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
