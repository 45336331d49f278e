package service

import (
	"context"
	"time"

	"github.com/lasmate/Alisee/internal/auth"
	"github.com/lasmate/Alisee/internal/cache"
	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/repository"
)

// Store is the persistence surface the services need. Both the Postgres repository
// and the in-memory store implement it.
type Store interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateAccountType(ctx context.Context, id int64, t model.AccountType) error
	DeleteUser(ctx context.Context, id int64) error

	CreateSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, f repository.ItemFilter) ([]model.Item, error)
	CountItems(ctx context.Context) (int64, error)
	SetItemAvailability(ctx context.Context, id int64, available bool) error
	GetImage(ctx context.Context, id int64) (*model.Image, error)
	CountImages(ctx context.Context) (int64, error)

	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateOrderProgress(ctx context.Context, o *model.Order) error
	CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}

var (
	_ Store = (*repository.ShopRepository)(nil)
	_ Store = (*repository.MemoryStore)(nil)
)

// ShopService groups the storefront services over one store.
type ShopService struct {
	Accounts *AccountService
	Catalog  *CatalogService
	Orders   *OrderService
	Admin    *AdminService
}

func NewShopService(store Store, issuer *auth.Issuer, itemCache cache.Cache, sessionTTL time.Duration) *ShopService {
	catalog := NewCatalogService(store, itemCache)
	return &ShopService{
		Accounts: NewAccountService(store, issuer, sessionTTL),
		Catalog:  catalog,
		Orders:   NewOrderService(store),
		Admin:    NewAdminService(store),
	}
}
