package itemrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
)

// Repository defines item request data access interface
type Repository interface {
	Create(ctx context.Context, req *ItemRequest) error
	GetByID(ctx context.Context, id int64) (*ItemRequest, error)
	ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, page pagination.Page) ([]*ItemRequest, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new item request repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `id, description, requestor_id, created`

func (r *repository) Create(ctx context.Context, req *ItemRequest) error {
	query := r.db.Rebind(`INSERT INTO requests (description, requestor_id, created) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &req.ID, query, req.Description, req.RequestorID, req.Created); err != nil {
		return fmt.Errorf("request repository create: %w", database.MapError(err))
	}
	return nil
}

// GetByID returns the request, or nil when it does not exist
func (r *repository) GetByID(ctx context.Context, id int64) (*ItemRequest, error) {
	var req ItemRequest
	err := r.db.GetContext(ctx, &req, r.db.Rebind(`SELECT `+selectColumns+` FROM requests WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("request repository get: %w", err)
	}
	return &req, nil
}

func (r *repository) ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error) {
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM requests
		WHERE requestor_id = ?
		ORDER BY created DESC, id DESC`)

	reqs := []*ItemRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query, requestorID); err != nil {
		return nil, fmt.Errorf("request repository list own: %w", err)
	}
	return reqs, nil
}

func (r *repository) ListOthers(ctx context.Context, userID int64, page pagination.Page) ([]*ItemRequest, error) {
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM requests
		WHERE requestor_id <> ?
		ORDER BY created DESC, id DESC
		LIMIT ? OFFSET ?`)

	reqs := []*ItemRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query, userID, page.Limit(), page.Offset()); err != nil {
		return nil, fmt.Errorf("request repository list others: %w", err)
	}
	return reqs, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM requests WHERE id = ?)`), id); err != nil {
		return false, fmt.Errorf("request repository exists: %w", err)
	}
	return exists, nil
}
