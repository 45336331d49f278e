package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/auth"
	"github.com/lasmate/Alisee/internal/cache"
	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/repository"
)

type fixture struct {
	store *repository.MemoryStore
	shop  *ShopService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	issuer := auth.NewIssuer([]byte("test-secret"))
	shop := NewShopService(store, issuer, cache.NewMemory(time.Minute), time.Hour)
	return &fixture{store: store, shop: shop}
}

func (f *fixture) item(t *testing.T, it model.Item) model.Item {
	t.Helper()
	require.NoError(t, f.store.CreateItem(context.Background(), &it))
	return it
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.shop.Accounts.Register(context.Background(), RegisterInput{
		Name: "Ada", Surname: "Lovelace", Email: email, Password: "secret",
	})
	require.NoError(t, err)
	return u
}

var shipping = model.Shipping{
	FirstName: "Ada", LastName: "Lovelace", Address: "1 Rue Haute",
	City: "Lyon", PostalCode: "69001", Country: "France",
}
