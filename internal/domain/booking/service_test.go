package booking

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/events"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

type fakeUsers struct {
	users map[int64]*user.User
}

func (f *fakeUsers) Create(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUsers) List(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}
func (f *fakeUsers) Update(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUsers) Delete(ctx context.Context, id int64) error     { return nil }

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

type fakeItems struct {
	items map[int64]*item.Item
}

func (f *fakeItems) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	return f.items[id], nil
}

type fakeRepo struct {
	bookings map[int64]*Booking
	nextID   int64
	// raceOnUpdate makes UpdateStatus behave as if another request decided first
	raceOnUpdate bool
	lastState    State
	lastPage     *pagination.Page
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[int64]*Booking{}}
}

func (f *fakeRepo) Create(ctx context.Context, b *Booking) error {
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*Booking, error) {
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != from || f.raceOnUpdate {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (f *fakeRepo) ListByBooker(ctx context.Context, bookerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error) {
	f.lastState, f.lastPage = state, page
	out := []*Booking{}
	for id := f.nextID; id >= 1; id-- {
		if b, ok := f.bookings[id]; ok && b.BookerID == bookerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerID int64, state State, now time.Time, page *pagination.Page) ([]*Booking, error) {
	f.lastState, f.lastPage = state, page
	out := []*Booking{}
	for id := f.nextID; id >= 1; id-- {
		if b, ok := f.bookings[id]; ok && b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) LastAndNext(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*item.BookingShort, map[int64]*item.BookingShort, error) {
	return map[int64]*item.BookingShort{}, map[int64]*item.BookingShort{}, nil
}

func (f *fakeRepo) HasFinishedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	return false, nil
}

const (
	ownerID  int64 = 1
	bookerID int64 = 2
	strayID  int64 = 3

	availableItemID   int64 = 10
	unavailableItemID int64 = 11
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	service *Service
	repo    *fakeRepo
	events  []*events.Event
}

func newEnv() *env {
	e := &env{repo: newFakeRepo()}
	users := &fakeUsers{users: map[int64]*user.User{
		ownerID:  {ID: ownerID, Name: "Owner", Email: "owner@example.com"},
		bookerID: {ID: bookerID, Name: "Booker", Email: "booker@example.com"},
		strayID:  {ID: strayID, Name: "Stray", Email: "stray@example.com"},
	}}
	items := &fakeItems{items: map[int64]*item.Item{
		availableItemID:   {ID: availableItemID, Name: "Drill", Available: true, OwnerID: ownerID},
		unavailableItemID: {ID: unavailableItemID, Name: "Saw", Available: false, OwnerID: ownerID},
	}}

	bus := events.NewBus()
	bus.Subscribe(func(ev *events.Event) error {
		e.events = append(e.events, ev)
		return nil
	}, events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected)

	e.service = NewService(e.repo, items, users, bus)
	e.service.now = func() time.Time { return testNow }
	return e
}

func request(itemID int64, start, end time.Duration) *CreateRequest {
	return &CreateRequest{
		ItemID: itemID,
		Start:  timeutil.Time{Time: testNow.Add(start)},
		End:    timeutil.Time{Time: testNow.Add(end)},
	}
}

func TestCreateBooking(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	out, err := e.service.Create(ctx, bookerID, request(availableItemID, time.Hour, 2*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Status != StatusWaiting || out.Booker.ID != bookerID || out.Item.Name != "Drill" {
		t.Fatalf("unexpected booking: %+v", out)
	}

	if len(e.events) != 1 || e.events[0].Type != events.EventBookingCreated {
		t.Fatalf("expected booking_created event, got %v", e.events)
	}
	var payload events.BookingEventPayload
	if err := e.events[0].Decode(&payload); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if payload.OwnerID != ownerID || payload.BookerID != bookerID {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateBookingRules(t *testing.T) {
	tests := []struct {
		name   string
		userID int64
		req    *CreateRequest
		want   error
	}{
		{"unknown user", 99, request(availableItemID, time.Hour, 2*time.Hour), ErrUserNotFound},
		{"unknown item", bookerID, request(404, time.Hour, 2*time.Hour), ErrItemNotFound},
		{"own item", ownerID, request(availableItemID, time.Hour, 2*time.Hour), ErrOwnItem},
		{"unavailable item", bookerID, request(unavailableItemID, time.Hour, 2*time.Hour), ErrItemUnavailable},
		{"start in past", bookerID, request(availableItemID, -time.Hour, 2*time.Hour), ErrStartInPast},
		{"end before start", bookerID, request(availableItemID, 2*time.Hour, time.Hour), ErrInvalidDateRange},
		{"end equals start", bookerID, request(availableItemID, time.Hour, time.Hour), ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			_, err := e.service.Create(context.Background(), tt.userID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(e.repo.bookings) != 0 || len(e.events) != 0 {
				t.Fatal("rejected booking must not be stored or announced")
			}
		})
	}
}

func TestDecideBooking(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, err := e.service.Create(ctx, bookerID, request(availableItemID, time.Hour, 2*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.service.Decide(ctx, bookerID, created.ID, true); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("booker must not decide, got %v", err)
	}
	if _, err := e.service.Decide(ctx, ownerID, created.ID+1, true); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	out, err := e.service.Decide(ctx, ownerID, created.ID, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if out.Status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", out.Status)
	}
	if last := e.events[len(e.events)-1]; last.Type != events.EventBookingApproved {
		t.Fatalf("expected booking_approved, got %s", last.Type)
	}

	if _, err := e.service.Decide(ctx, ownerID, created.ID, false); !errors.Is(err, ErrNotWaiting) {
		t.Fatalf("second decision must fail, got %v", err)
	}
}

func TestDecideLosesRace(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, _ := e.service.Create(ctx, bookerID, request(availableItemID, time.Hour, 2*time.Hour))

	e.repo.raceOnUpdate = true
	if _, err := e.service.Decide(ctx, ownerID, created.ID, false); !errors.Is(err, ErrNotWaiting) {
		t.Fatalf("expected ErrNotWaiting, got %v", err)
	}
	if len(e.events) != 1 {
		t.Fatalf("lost decision must not be announced, got %d events", len(e.events))
	}
}

func TestGetBookingVisibility(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	created, _ := e.service.Create(ctx, bookerID, request(availableItemID, time.Hour, 2*time.Hour))

	for _, id := range []int64{ownerID, bookerID} {
		if _, err := e.service.Get(ctx, id, created.ID); err != nil {
			t.Fatalf("user %d should see booking: %v", id, err)
		}
	}
	if _, err := e.service.Get(ctx, strayID, created.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("stranger must get not found, got %v", err)
	}
}

func TestListRequiresUser(t *testing.T) {
	e := newEnv()
	page, _ := pagination.New(0, 10)

	if _, err := e.service.ListByBooker(context.Background(), 99, StateAll, page); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := e.service.ListByOwner(context.Background(), ownerID, StateFuture, page); err != nil {
		t.Fatalf("list owner: %v", err)
	}
	if e.repo.lastState != StateFuture || e.repo.lastPage == nil || e.repo.lastPage.Size != 10 {
		t.Fatalf("state and page not passed through: %v %v", e.repo.lastState, e.repo.lastPage)
	}
}

func TestExportOwner(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	if _, err := e.service.Create(ctx, bookerID, request(availableItemID, time.Hour, 2*time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := e.service.ExportOwner(ctx, ownerID, StateAll)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if e.repo.lastPage != nil {
		t.Fatal("export must not be paged")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// title, header, one booking
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %v", len(rows), rows)
	}
	if rows[2][2] != "Drill" || rows[2][7] != string(StatusWaiting) {
		t.Fatalf("unexpected booking row: %v", rows[2])
	}
}
