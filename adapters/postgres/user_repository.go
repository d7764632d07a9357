package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sheetcharts/domain/core"
	"sheetcharts/models"
	"sheetcharts/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE postgres reports for duplicate keys
const uniqueViolation = "23505"

// userRepository implements the UserRepository interface
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, is_active, created_at, updated_at`

// GetOrCreateDefaultUser returns the user owning requests that carry no
// identity, inserting it on first use. Concurrent callers converge on the
// same row.
func (r *userRepository) GetOrCreateDefaultUser(ctx context.Context) (*models.User, error) {
	fallback := models.NewDefaultUser()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :is_active, NOW(), NOW())
		ON CONFLICT DO NOTHING
	`, fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default user %s: %w", core.DefaultUserID, err)
	}
	return r.GetUserByID(ctx, fallback.ID)
}

// GetUserByID loads a user
func (r *userRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts user, assigning an id when it has none
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.db.GetContext(ctx, user, `
		INSERT INTO users (id, email, username, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+userColumns, user.ID, user.Email, user.Username, user.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", core.ErrUserExists, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
