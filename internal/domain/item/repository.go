package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
)

// Repository defines item and comment data access interface
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerID int64, page pagination.Page) ([]*Item, error)
	Search(ctx context.Context, text string, page pagination.Page) ([]*Item, error)
	ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error)

	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, itemIDs []int64) ([]*Comment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new item repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `id, name, description, is_available, owner_id, request_id`

func (r *repository) Create(ctx context.Context, item *Item) error {
	query := r.db.Rebind(`INSERT INTO items (name, description, is_available, owner_id, request_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	err := r.db.GetContext(ctx, &item.ID, query, item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("item repository create: %w", database.MapError(err))
	}
	return nil
}

// GetByID returns the item, or nil when it does not exist
func (r *repository) GetByID(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, r.db.Rebind(`SELECT `+itemColumns+` FROM items WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("item repository get: %w", err)
	}
	return &item, nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := r.db.Rebind(`UPDATE items SET name = ?, description = ?, is_available = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("item repository update: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("item repository delete: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64, page pagination.Page) ([]*Item, error) {
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items
		WHERE owner_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?`)

	items := []*Item{}
	if err := r.db.SelectContext(ctx, &items, query, ownerID, page.Limit(), page.Offset()); err != nil {
		return nil, fmt.Errorf("item repository list by owner: %w", err)
	}
	return items, nil
}

// Search matches available items whose name or description contains text, ignoring case
func (r *repository) Search(ctx context.Context, text string, page pagination.Page) ([]*Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items
		WHERE is_available = ?
		  AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
		ORDER BY id
		LIMIT ? OFFSET ?`)

	items := []*Item{}
	if err := r.db.SelectContext(ctx, &items, query, true, pattern, pattern, page.Limit(), page.Offset()); err != nil {
		return nil, fmt.Errorf("item repository search: %w", err)
	}
	return items, nil
}

func (r *repository) ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error) {
	items := []*Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("item repository list by requests: %w", err)
	}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("item repository list by requests: %w", err)
	}
	return items, nil
}

func (r *repository) CreateComment(ctx context.Context, comment *Comment) error {
	query := r.db.Rebind(`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?) RETURNING id`)

	err := r.db.GetContext(ctx, &comment.ID, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("item repository create comment: %w", mapDBError(err))
	}
	return nil
}

// ListComments returns the comments of the given items, oldest first
func (r *repository) ListComments(ctx context.Context, itemIDs []int64) ([]*Comment, error) {
	comments := []*Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}

	query, args, err := sqlx.In(`SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.item_id IN (?)
		ORDER BY c.created, c.id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("item repository list comments: %w", err)
	}
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("item repository list comments: %w", err)
	}
	return comments, nil
}

// mapDBError reports a comment on a vanished item as ErrItemNotFound.
func mapDBError(err error) error {
	err = database.MapError(err)
	if errors.Is(err, database.ErrForeignKeyViolation) {
		return fmt.Errorf("%w: %w", ErrItemNotFound, err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
