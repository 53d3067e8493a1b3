package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"

	"github.com/lib/pq"
)

// AuthRepository defines the interface for user account database operations.
type AuthRepository interface {
	GetUserByUsername(username string) (*models.UserAccount, error)
	GetUserByID(userID int64) (*models.UserAccount, error)
	CreateUser(executor SQLExecutor, user *models.UserAccount) (int64, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) GetUserByUsername(username string) (*models.UserAccount, error) {
	user := &models.UserAccount{}
	query := `SELECT id, username, password_hash, full_name, created_at FROM user_accounts WHERE username = $1`
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by username: %v", ErrDatabaseError, err)
	}
	return user, nil
}

func (r *authRepository) GetUserByID(userID int64) (*models.UserAccount, error) {
	user := &models.UserAccount{}
	query := `SELECT id, username, password_hash, full_name, created_at FROM user_accounts WHERE id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.UserAccount) (int64, error) {
	query := `INSERT INTO user_accounts (username, password_hash, full_name, created_at)
	          VALUES ($1, $2, $3, NOW()) RETURNING id`
	err := executor.QueryRow(query, user.Username, user.PasswordHash, user.FullName).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}
