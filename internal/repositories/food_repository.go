package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"

	"github.com/lib/pq"
)

// FoodRepository exposes the catalog reads the order workflow needs: option
// and extra lookups for pricing and validation. Catalog management itself is
// out of scope here.
type FoodRepository interface {
	// GetOptionWithFood loads a food option together with its parent food,
	// which carries the restaurant scoping and display name.
	GetOptionWithFood(optionID int64) (*models.FoodOption, *models.Food, error)
	GetExtrasByIDs(extraIDs []int64) ([]models.FoodExtra, error)
}

type foodRepository struct {
	db *sql.DB
}

// NewFoodRepository creates a new instance of FoodRepository.
func NewFoodRepository(db *sql.DB) FoodRepository {
	return &foodRepository{db: db}
}

func (r *foodRepository) GetOptionWithFood(optionID int64) (*models.FoodOption, *models.Food, error) {
	option := &models.FoodOption{}
	food := &models.Food{}
	query := `
		SELECT fo.id, fo.food_id, fo.name, fo.price,
		       f.id, f.restaurant_id, f.category_id, f.name, f.description
		FROM food_options fo
		JOIN foods f ON fo.food_id = f.id
		WHERE fo.id = $1`
	err := r.db.QueryRow(query, optionID).Scan(
		&option.ID, &option.FoodID, &option.Name, &option.Price,
		&food.ID, &food.RestaurantID, &food.CategoryID, &food.Name, &food.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: getting food option %d: %v", ErrDatabaseError, optionID, err)
	}
	return option, food, nil
}

func (r *foodRepository) GetExtrasByIDs(extraIDs []int64) ([]models.FoodExtra, error) {
	extras := []models.FoodExtra{}
	if len(extraIDs) == 0 {
		return extras, nil
	}

	query := `SELECT id, food_id, name, price FROM food_extras WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.Query(query, pq.Array(extraIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying food extras: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var extra models.FoodExtra
		if err := rows.Scan(&extra.ID, &extra.FoodID, &extra.Name, &extra.Price); err != nil {
			return nil, fmt.Errorf("%w: scanning food extra row: %v", ErrDatabaseError, err)
		}
		extras = append(extras, extra)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating food extra rows: %v", ErrDatabaseError, err)
	}
	return extras, nil
}
