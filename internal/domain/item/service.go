package item

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shareit/shareit-api/internal/domain/itemrequest"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

// RequestChecker reports whether an item request exists
type RequestChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// BookingLookup answers the booking questions items need
type BookingLookup interface {
	// LastAndNext returns, per item, the latest approved booking started at or
	// before now and the earliest approved booking starting after now.
	LastAndNext(ctx context.Context, itemIDs []int64, now time.Time) (last, next map[int64]*BookingShort, err error)
	// HasFinishedBooking reports whether userID has an approved booking of itemID that ended before now.
	HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error)
}

// Service handles item and comment business logic
type Service struct {
	repo     Repository
	users    user.Repository
	requests RequestChecker
	bookings BookingLookup
	now      func() time.Time
}

// NewService creates item service
func NewService(repo Repository, users user.Repository, requests RequestChecker, bookings BookingLookup) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		requests: requests,
		bookings: bookings,
		now:      time.Now,
	}
}

// Create lists a new item owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, req *CreateItemRequest) (*ItemResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item := &Item{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Available:   req.Available != nil && *req.Available,
		OwnerID:     userID,
	}

	if req.RequestID != nil {
		ok, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRequestNotFound
		}
		item.RequestID = sql.NullInt64{Int64: *req.RequestID, Valid: true}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		// The owner or the request went away after the checks above
		if errors.Is(err, database.ErrForeignKeyViolation) {
			if item.RequestID.Valid {
				return nil, ErrRequestNotFound
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.LogInfo(ctx, "Item created", "item_id", item.ID, "owner_id", userID)
	return ItemResponseFromEntity(item), nil
}

// Update applies a partial update. Only the owner may change an item.
func (s *Service) Update(ctx context.Context, userID, itemID int64, req *UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return ItemResponseFromEntity(item), nil
}

// Get returns the item with its comments. The owner also sees last and next bookings.
func (s *Service) Get(ctx context.Context, userID, itemID int64) (*ItemResponse, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	out, err := s.annotate(ctx, []*Item{item}, item.IsOwner(userID))
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ListOwn returns a page of the caller's items, annotated for the owner.
func (s *Service) ListOwn(ctx context.Context, userID int64, page pagination.Page) ([]*ItemResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, items, true)
}

// Search returns available items matching text. Blank text matches nothing.
func (s *Service) Search(ctx context.Context, text string, page pagination.Page) ([]*ItemResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*ItemResponse{}, nil
	}

	items, err := s.repo.Search(ctx, text, page)
	if err != nil {
		return nil, err
	}

	out := make([]*ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemResponseFromEntity(item))
	}
	return out, nil
}

// Delete removes an item. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, userID, itemID int64) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, itemID)
}

// AddComment posts a comment by a user who has finished renting the item.
func (s *Service) AddComment(ctx context.Context, userID, itemID int64, req *CreateCommentRequest) (*CommentResponse, error) {
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	now := s.now().UTC()
	ok, err := s.bookings.HasFinishedBooking(ctx, userID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommentNotAllowed
	}

	comment := &Comment{
		Text:       strings.TrimSpace(req.Text),
		ItemID:     itemID,
		AuthorID:   userID,
		AuthorName: author.Name,
		Created:    timeutil.Normalize(now),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return CommentResponseFromEntity(comment), nil
}

// GetByID returns the raw item, or ErrItemNotFound.
func (s *Service) GetByID(ctx context.Context, itemID int64) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ItemsForRequests groups the items listed in answer to each request.
func (s *Service) ItemsForRequests(ctx context.Context, requestIDs []int64) (map[int64][]*itemrequest.ItemSummary, error) {
	items, err := s.repo.ListByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]*itemrequest.ItemSummary, len(requestIDs))
	for _, item := range items {
		out[item.RequestID.Int64] = append(out[item.RequestID.Int64], SummaryFromEntity(item))
	}
	return out, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) ownedItem(ctx context.Context, userID, itemID int64) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsOwner(userID) {
		return nil, ErrNotItemOwner
	}
	return item, nil
}

// annotate attaches comments to every item and, for owners, last/next bookings.
func (s *Service) annotate(ctx context.Context, items []*Item, owner bool) ([]*ItemResponse, error) {
	out := make([]*ItemResponse, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(items))
	byID := make(map[int64]*ItemResponse, len(items))
	for _, item := range items {
		resp := ItemResponseFromEntity(item)
		ids = append(ids, item.ID)
		byID[item.ID] = resp
		out = append(out, resp)
	}

	comments, err := s.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if resp, ok := byID[c.ItemID]; ok {
			resp.Comments = append(resp.Comments, CommentResponseFromEntity(c))
		}
	}

	if !owner {
		return out, nil
	}

	last, next, err := s.bookings.LastAndNext(ctx, ids, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for id, resp := range byID {
		resp.LastBooking = last[id]
		resp.NextBooking = next[id]
	}
	return out, nil
}
