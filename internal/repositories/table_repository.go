package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

// TableRepository defines the interface for table database operations.
// The occupied flag is only ever written through SetOccupied, and the
// check-then-set during order creation must go through GetTableForUpdate
// so two concurrent bookings cannot both observe a free table.
type TableRepository interface {
	GetTableByID(tableID int64) (*models.Table, error)
	GetTableForUpdate(executor SQLExecutor, tableID int64) (*models.Table, error)
	SetOccupied(executor SQLExecutor, tableID int64, occupied bool, updatedAt time.Time) error
	ListByRestaurant(restaurantID int64) ([]models.Table, error)
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, restaurant_id, table_no, name, is_occupied, created_at, updated_at`

func scanTable(row *sql.Row) (*models.Table, error) {
	table := &models.Table{}
	err := row.Scan(
		&table.ID, &table.RestaurantID, &table.TableNo, &table.Name,
		&table.IsOccupied, &table.CreatedAt, &table.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
	}
	return table, nil
}

func (r *tableRepository) GetTableByID(tableID int64) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1`
	return scanTable(r.db.QueryRow(query, tableID))
}

func (r *tableRepository) GetTableForUpdate(executor SQLExecutor, tableID int64) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1 FOR UPDATE`
	return scanTable(executor.QueryRow(query, tableID))
}

func (r *tableRepository) SetOccupied(executor SQLExecutor, tableID int64, occupied bool, updatedAt time.Time) error {
	query := `UPDATE tables SET is_occupied = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, occupied, updatedAt, tableID)
	if err != nil {
		return fmt.Errorf("%w: setting occupied flag for table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table occupancy update ID %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) ListByRestaurant(restaurantID int64) ([]models.Table, error) {
	tables := []models.Table{}
	query := `SELECT ` + tableColumns + ` FROM tables WHERE restaurant_id = $1 ORDER BY table_no NULLS LAST, id`

	rows, err := r.db.Query(query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tables for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var table models.Table
		err := rows.Scan(
			&table.ID, &table.RestaurantID, &table.TableNo, &table.Name,
			&table.IsOccupied, &table.CreatedAt, &table.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning table row: %v", ErrDatabaseError, err)
		}
		tables = append(tables, table)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}
