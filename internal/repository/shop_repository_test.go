package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/repository"
)

func setupTestDB(t *testing.T) *repository.ShopRepository {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	repo := repository.NewShopRepository(pool)
	require.NoError(t, repo.Migrate(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE TABLE order_lines, orders, sessions, users, items, images RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return repo
}

func TestShopRepository_UsersAndSessions(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	u := model.User{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, &u))
	assert.NotZero(t, u.ID)

	dup := u
	assert.ErrorIs(t, repo.CreateUser(ctx, &dup), repository.ErrDuplicateEmail)

	now := time.Now().UTC().Truncate(time.Microsecond)
	s := model.Session{ID: "sess-1", UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.CreateSession(ctx, s))

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	require.NoError(t, repo.DeleteSession(ctx, s.ID))
	require.NoError(t, repo.DeleteSession(ctx, s.ID))
	_, err = repo.GetSession(ctx, s.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestShopRepository_OrderRoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	u := model.User{Name: "Ada", Surname: "Lovelace", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, &u))
	it := model.Item{Name: "Grand Badge", Price: 150, Quantity: 10, Category: "badge", IsAvailable: true}
	require.NoError(t, repo.CreateItem(ctx, &it))

	o := model.Order{
		Reference:  "ref-1",
		UserID:     u.ID,
		Shipping:   model.Shipping{FirstName: "Ada", LastName: "Lovelace", Address: "1 St", City: "London", PostalCode: "N1", Country: "UK"},
		Status:     model.OrderStatusPending,
		CreatedAt:  time.Now().UTC(),
		Lines:      []model.OrderLine{{ItemID: it.ID, Name: it.Name, UnitPrice: it.Price, Quantity: 2}},
		TotalPrice: 300,
	}
	require.NoError(t, repo.RunAtomic(ctx, func(ctx context.Context) error {
		return repo.CreateOrder(ctx, &o)
	}))

	err := repo.RunAtomic(ctx, func(ctx context.Context) error {
		locked, err := repo.GetOrderForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		locked.Advance(model.OrderStatusShipped, time.Now().UTC())
		return repo.UpdateOrderProgress(ctx, locked)
	})
	require.NoError(t, err)

	got, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.Status)
	require.NotNil(t, got.ProcessedAt)
	require.NotNil(t, got.ShippedAt)
	require.Len(t, got.Lines, 1)
	assert.EqualValues(t, 150, got.Lines[0].UnitPrice)

	summaries, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "ada@example.com", summaries[0].UserEmail)

	require.NoError(t, repo.DeleteUser(ctx, u.ID))
	got, err = repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UserID)

	counts, err := repo.CountOrdersByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[model.OrderStatusShipped])
}
