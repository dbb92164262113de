package itemrequest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/pagination"
)

func TestRepositoryOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := user.NewRepository(db)
	ann := &user.User{Name: "Ann", Email: "ann@example.com"}
	bob := &user.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, users.Create(ctx, ann))
	require.NoError(t, users.Create(ctx, bob))

	repo := NewRepository(db)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var created []*ItemRequest
	for i, owner := range []int64{ann.ID, ann.ID, bob.ID, bob.ID} {
		ir := &ItemRequest{Description: "need", RequestorID: owner, Created: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, ir))
		created = append(created, ir)
	}

	got, err := repo.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Created.Equal(base))

	own, err := repo.ListByRequestor(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, created[1].ID, own[0].ID, "newest first")

	page, _ := pagination.New(0, 1)
	others, err := repo.ListOthers(ctx, ann.ID, page)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, created[3].ID, others[0].ID)

	page, _ = pagination.New(1, 1)
	others, err = repo.ListOthers(ctx, ann.ID, page)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, created[2].ID, others[0].ID)

	ok, err := repo.Exists(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
