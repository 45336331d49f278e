package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/money"
	"github.com/lasmate/Alisee/internal/repository"
)

func TestMemoryStore_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	u := model.User{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, &u))
	assert.NotZero(t, u.ID)

	dup := model.User{Name: "Other", Surname: "One", Email: "ada@example.com", PasswordHash: "y"}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), repository.ErrDuplicateEmail)

	got, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, store.UpdateAccountType(ctx, u.ID, model.AccountAdmin))
	got, err = store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	assert.ErrorIs(t, store.UpdateAccountType(ctx, 999, model.AccountAdmin), repository.ErrNotFound)
}

func TestMemoryStore_DeleteUserKeepsOrders(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	u := model.User{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, store.CreateUser(ctx, &u))
	require.NoError(t, store.CreateSession(ctx, model.Session{ID: "s1", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	o := model.Order{Reference: "r1", UserID: u.ID, Status: model.OrderStatusPending, CreatedAt: time.Now()}
	require.NoError(t, store.CreateOrder(ctx, &o))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []int64{o.ID}, users[0].OrderIDs)

	require.NoError(t, store.DeleteUser(ctx, u.ID))

	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	kept, err := store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, kept.UserID)

	summaries, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].UserEmail)
}

func TestMemoryStore_CatalogFilters(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	badge := model.Item{Name: "Petit Badge", Price: 100, Category: "badge", IsAvailable: true}
	sticker := model.Item{Name: "Sticker", Price: 50, Category: "sticker", IsAvailable: false}
	require.NoError(t, store.CreateItem(ctx, &badge))
	require.NoError(t, store.CreateItem(ctx, &sticker))

	all, err := store.ListItems(ctx, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := store.ListItems(ctx, repository.ItemFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, badge.ID, available[0].ID)

	stickers, err := store.ListItems(ctx, repository.ItemFilter{Category: "sticker"})
	require.NoError(t, err)
	require.Len(t, stickers, 1)

	require.NoError(t, store.SetItemAvailability(ctx, sticker.ID, true))
	got, err := store.GetItem(ctx, sticker.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)

	img := model.Image{Name: "cat", Path: "/img/cat.png"}
	created, err := store.CreateImage(ctx, &img)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateImage(ctx, &model.Image{Name: "cat2", Path: "/img/cat.png"})
	require.NoError(t, err)
	assert.False(t, created)

	n, err := store.CountImages(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStore_OrderSnapshotsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	o := model.Order{
		Reference: "r1",
		UserID:    1,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
		Lines:     []model.OrderLine{{ItemID: 1, Name: "Badge", UnitPrice: money.Cents(150), Quantity: 2}},
	}
	require.NoError(t, store.CreateOrder(ctx, &o))

	o.Lines[0].UnitPrice = 1
	got, err := store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(150), got.Lines[0].UnitPrice)
}

func TestMemoryStore_RunAtomicIsReentrant(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	err := store.RunAtomic(ctx, func(ctx context.Context) error {
		u := model.User{Name: "A", Surname: "B", Email: "a@b.c"}
		if err := store.CreateUser(ctx, &u); err != nil {
			return err
		}
		return store.RunAtomic(ctx, func(ctx context.Context) error {
			_, err := store.GetUserByID(ctx, u.ID)
			return err
		})
	})
	require.NoError(t, err)
}
