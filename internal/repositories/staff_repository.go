package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

// StaffRepository backs the authorization gate and push notification fan-out.
type StaffRepository interface {
	// GetCapabilities returns the staff record linking a user to a
	// restaurant, or ErrNotFound if the user holds no position there.
	GetCapabilities(userID, restaurantID int64) (*models.StaffInformation, error)
	// GetDeviceTokens returns the registered push tokens of a restaurant's staff.
	GetDeviceTokens(restaurantID int64) ([]string, error)
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetCapabilities(userID, restaurantID int64) (*models.StaffInformation, error) {
	staff := &models.StaffInformation{}
	query := `SELECT id, user_id, restaurant_id, is_owner, is_manager, is_waiter, device_token, created_at
	          FROM staff_information WHERE user_id = $1 AND restaurant_id = $2`
	err := r.db.QueryRow(query, userID, restaurantID).Scan(
		&staff.ID, &staff.UserID, &staff.RestaurantID,
		&staff.IsOwner, &staff.IsManager, &staff.IsWaiter,
		&staff.DeviceToken, &staff.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting staff capabilities for user %d at restaurant %d: %v", ErrDatabaseError, userID, restaurantID, err)
	}
	return staff, nil
}

func (r *staffRepository) GetDeviceTokens(restaurantID int64) ([]string, error) {
	tokens := []string{}
	query := `SELECT device_token FROM staff_information
	          WHERE restaurant_id = $1 AND device_token IS NOT NULL`

	rows, err := r.db.Query(query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying device tokens for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("%w: scanning device token row: %v", ErrDatabaseError, err)
		}
		tokens = append(tokens, token)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating device token rows: %v", ErrDatabaseError, err)
	}
	return tokens, nil
}
