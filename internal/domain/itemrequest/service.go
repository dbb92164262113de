package itemrequest

import (
	"context"
	"strings"
	"time"

	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

// UserChecker reports whether a user exists
type UserChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemSource loads the items listed in answer to requests, keyed by request ID
type ItemSource interface {
	ItemsForRequests(ctx context.Context, requestIDs []int64) (map[int64][]*ItemSummary, error)
}

// Service handles item request business logic
type Service struct {
	repo  Repository
	users UserChecker
	items ItemSource
	now   func() time.Time
}

// NewService creates item request service. items may be set later with SetItemSource.
func NewService(repo Repository, users UserChecker, items ItemSource) *Service {
	return &Service{repo: repo, users: users, items: items, now: time.Now}
}

// SetItemSource breaks the construction cycle with the item service.
func (s *Service) SetItemSource(items ItemSource) {
	s.items = items
}

func (s *Service) Create(ctx context.Context, userID int64, req *CreateRequest) (*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	ir := &ItemRequest{
		Description: strings.TrimSpace(req.Description),
		RequestorID: userID,
		Created:     timeutil.Normalize(s.now()),
	}
	if err := s.repo.Create(ctx, ir); err != nil {
		return nil, err
	}
	return ResponseFromEntity(ir, nil), nil
}

// ListOwn returns the caller's requests, newest first.
func (s *Service) ListOwn(ctx context.Context, userID int64) ([]*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// ListOthers returns a page of other users' requests, newest first.
func (s *Service) ListOthers(ctx context.Context, userID int64, page pagination.Page) ([]*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*Response, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ir, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ir == nil {
		return nil, ErrRequestNotFound
	}

	out, err := s.withItems(ctx, []*ItemRequest{ir})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Exists reports whether a request with id exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
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

func (s *Service) withItems(ctx context.Context, reqs []*ItemRequest) ([]*Response, error) {
	out := make([]*Response, 0, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}

	byRequest := map[int64][]*ItemSummary{}
	if s.items != nil {
		ids := make([]int64, 0, len(reqs))
		for _, ir := range reqs {
			ids = append(ids, ir.ID)
		}
		var err error
		byRequest, err = s.items.ItemsForRequests(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	for _, ir := range reqs {
		out = append(out, ResponseFromEntity(ir, byRequest[ir.ID]))
	}
	return out, nil
}
