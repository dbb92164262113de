package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
	"github.com/shareit/shareit-api/internal/pkg/timeutil"
)

type fixture struct {
	repo   Repository
	owner  *user.User
	booker *user.User
	item   *item.Item
	now    time.Time
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := user.NewRepository(db)
	owner := &user.User{Name: "Owner", Email: "owner@example.com"}
	booker := &user.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, booker))

	it := &item.Item{Name: "Drill", Description: "Cordless", Available: true, OwnerID: owner.ID}
	require.NoError(t, item.NewRepository(db).Create(ctx, it))

	return &fixture{
		repo:   NewRepository(db),
		owner:  owner,
		booker: booker,
		item:   it,
		now:    timeutil.Normalize(time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) book(t *testing.T, start, end time.Duration, status Status) *Booking {
	t.Helper()
	b := &Booking{
		Start:    f.now.Add(start),
		End:      f.now.Add(end),
		ItemID:   f.item.ID,
		BookerID: f.booker.ID,
		Status:   status,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func ids(bookings []*Booking) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestRepositoryGetByIDJoinsDetails(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	b := f.book(t, time.Hour, 2*time.Hour, StatusWaiting)
	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Drill", got.ItemName)
	assert.Equal(t, f.owner.ID, got.OwnerID)
	assert.Equal(t, "Booker", got.BookerName)
	assert.Equal(t, StatusWaiting, got.Status)
	assert.True(t, got.Start.Equal(b.Start))

	missing, err := f.repo.GetByID(ctx, b.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryUpdateStatusOnlyFromExpected(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := f.book(t, time.Hour, 2*time.Hour, StatusWaiting)

	ok, err := f.repo.UpdateStatus(ctx, b.ID, StatusWaiting, StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.repo.UpdateStatus(ctx, b.ID, StatusWaiting, StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := f.repo.GetByID(ctx, b.ID)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestRepositoryListStates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	past := f.book(t, -48*time.Hour, -24*time.Hour, StatusApproved)
	current := f.book(t, -time.Hour, time.Hour, StatusApproved)
	future := f.book(t, 24*time.Hour, 48*time.Hour, StatusWaiting)
	rejected := f.book(t, 72*time.Hour, 96*time.Hour, StatusRejected)
	// never decided, already started
	stale := f.book(t, -30*time.Hour, -26*time.Hour, StatusWaiting)
	// CURRENT bounds are inclusive on both ends
	startsNow := f.book(t, 0, 3*time.Hour, StatusApproved)
	endsNow := f.book(t, -3*time.Hour, 0, StatusApproved)

	tests := []struct {
		state State
		want  []int64
	}{
		{StateAll, []int64{rejected.ID, future.ID, startsNow.ID, current.ID, endsNow.ID, stale.ID, past.ID}},
		{StatePast, []int64{stale.ID, past.ID}},
		{StateCurrent, []int64{startsNow.ID, current.ID, endsNow.ID}},
		{StateFuture, []int64{rejected.ID, future.ID}},
		{StateWaiting, []int64{future.ID}},
		{StateRejected, []int64{rejected.ID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			byBooker, err := f.repo.ListByBooker(ctx, f.booker.ID, tt.state, f.now, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(byBooker))

			byOwner, err := f.repo.ListByOwner(ctx, f.owner.ID, tt.state, f.now, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(byOwner))
		})
	}

	none, err := f.repo.ListByBooker(ctx, f.owner.ID, StateAll, f.now, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryListPaged(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	var created []*Booking
	for i := 1; i <= 3; i++ {
		created = append(created, f.book(t, time.Duration(i)*time.Hour, time.Duration(i+1)*time.Hour, StatusWaiting))
	}

	page, err := pagination.New(0, 2)
	require.NoError(t, err)
	first, err := f.repo.ListByBooker(ctx, f.booker.ID, StateAll, f.now, &page)
	require.NoError(t, err)
	assert.Equal(t, []int64{created[2].ID, created[1].ID}, ids(first))

	page, err = pagination.New(3, 2)
	require.NoError(t, err)
	second, err := f.repo.ListByBooker(ctx, f.booker.ID, StateAll, f.now, &page)
	require.NoError(t, err)
	assert.Equal(t, []int64{created[0].ID}, ids(second))
}

func TestRepositoryLastAndNext(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.book(t, -72*time.Hour, -48*time.Hour, StatusApproved)
	last := f.book(t, -2*time.Hour, -time.Hour, StatusApproved)
	f.book(t, time.Hour, 2*time.Hour, StatusRejected)
	next := f.book(t, 3*time.Hour, 4*time.Hour, StatusApproved)
	f.book(t, 24*time.Hour, 25*time.Hour, StatusApproved)

	lastByItem, nextByItem, err := f.repo.LastAndNext(ctx, []int64{f.item.ID}, f.now)
	require.NoError(t, err)
	require.Contains(t, lastByItem, f.item.ID)
	require.Contains(t, nextByItem, f.item.ID)
	assert.Equal(t, last.ID, lastByItem[f.item.ID].ID)
	assert.Equal(t, f.booker.ID, lastByItem[f.item.ID].BookerID)
	assert.Equal(t, next.ID, nextByItem[f.item.ID].ID)

	emptyLast, emptyNext, err := f.repo.LastAndNext(ctx, nil, f.now)
	require.NoError(t, err)
	assert.Empty(t, emptyLast)
	assert.Empty(t, emptyNext)
}

func TestRepositoryHasFinishedBooking(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.book(t, -48*time.Hour, -24*time.Hour, StatusRejected)
	ok, err := f.repo.HasFinishedBooking(ctx, f.booker.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.False(t, ok, "rejected bookings do not count")

	f.book(t, -time.Hour, time.Hour, StatusApproved)
	ok, err = f.repo.HasFinishedBooking(ctx, f.booker.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.False(t, ok, "booking still running")

	f.book(t, -48*time.Hour, -24*time.Hour, StatusApproved)
	ok, err = f.repo.HasFinishedBooking(ctx, f.booker.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.repo.HasFinishedBooking(ctx, f.owner.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryCreateUnknownItem(t *testing.T) {
	f := setupFixture(t)
	err := f.repo.Create(context.Background(), &Booking{
		Start: f.now, End: f.now.Add(time.Hour), ItemID: f.item.ID + 50, BookerID: f.booker.ID, Status: StatusWaiting,
	})
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)
}
