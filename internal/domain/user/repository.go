package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shareit/shareit-api/internal/pkg/database"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the user and sets its ID
func (r *repository) Create(ctx context.Context, user *User) error {
	query := r.db.Rebind(`INSERT INTO users (name, email) VALUES (?, ?) RETURNING id`)

	if err := r.db.GetContext(ctx, &user.ID, query, user.Name, user.Email); err != nil {
		return fmt.Errorf("user repository create: %w", mapDBError(err))
	}
	return nil
}

// GetByID returns user by ID, or nil when it does not exist
func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := r.db.Rebind(`SELECT id, name, email FROM users WHERE id = ?`)

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user repository get: %w", err)
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context) ([]*User, error) {
	users := []*User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT id, name, email FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("user repository list: %w", err)
	}
	return users, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := r.db.Rebind(`UPDATE users SET name = ?, email = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.ID)
	if err != nil {
		return fmt.Errorf("user repository update: %w", mapDBError(err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user; owned rows go with it through ON DELETE CASCADE
func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("user repository delete: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`)
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("user repository exists: %w", err)
	}
	return exists, nil
}

func mapDBError(err error) error {
	err = database.MapError(err)
	if errors.Is(err, database.ErrUniqueViolation) {
		return fmt.Errorf("%w: %w", ErrEmailExists, err)
	}
	return err
}
