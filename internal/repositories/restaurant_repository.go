package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

// RestaurantRepository exposes the tenant reads the order workflow needs:
// the service charge and tax configuration used by the price calculator.
type RestaurantRepository interface {
	GetRestaurantByID(restaurantID int64) (*models.Restaurant, error)
}

type restaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository creates a new instance of RestaurantRepository.
func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) GetRestaurantByID(restaurantID int64) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	query := `SELECT id, name, address, service_charge_is_percentage, service_charge, tax_percentage, status, created_at
	          FROM restaurants WHERE id = $1`
	err := r.db.QueryRow(query, restaurantID).Scan(
		&restaurant.ID, &restaurant.Name, &restaurant.Address,
		&restaurant.ServiceChargeIsPercentage, &restaurant.ServiceCharge, &restaurant.TaxPercentage,
		&restaurant.Status, &restaurant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting restaurant by ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return restaurant, nil
}
