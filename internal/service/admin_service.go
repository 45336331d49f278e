package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lasmate/Alisee/internal/model"
)

// AdminService covers back-office user moderation and dashboard figures.
type AdminService struct {
	store Store
}

func NewAdminService(store Store) *AdminService {
	return &AdminService{store: store}
}

// ListUsers returns all users with their order ids. Password hashes never leave the model.
func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *AdminService) SetAccountType(ctx context.Context, userID int64, t model.AccountType) error {
	if userID <= 0 {
		return validationf("invalid user id %d", userID)
	}
	if !t.Valid() {
		return validationf("invalid account type %d", t)
	}
	if err := s.store.UpdateAccountType(ctx, userID, t); err != nil {
		return translate(err)
	}
	slog.Info("account type changed", "user_id", userID, "account_type", t)
	return nil
}

// DeleteUser removes the account and its sessions. Its orders are kept.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return validationf("invalid user id %d", userID)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return translate(err)
	}
	slog.Info("user deleted", "user_id", userID)
	return nil
}

type Stats struct {
	Items          int64                       `json:"items"`
	Images         int64                       `json:"images"`
	Orders         int64                       `json:"orders"`
	OrdersByStatus map[model.OrderStatus]int64 `json:"ordersByStatus"`
}

// Stats gathers dashboard counts concurrently.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.store.CountItems(ctx)
		st.Items = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountImages(ctx)
		st.Images = n
		return err
	})
	g.Go(func() error {
		counts, err := s.store.CountOrdersByStatus(ctx)
		st.OrdersByStatus = counts
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStatus := make(map[model.OrderStatus]int64, 4)
	for _, status := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusCompleted,
	} {
		byStatus[status] = st.OrdersByStatus[status]
		st.Orders += st.OrdersByStatus[status]
	}
	st.OrdersByStatus = byStatus
	return &st, nil
}
