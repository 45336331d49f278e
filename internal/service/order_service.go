package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lasmate/Alisee/internal/cart"
	"github.com/lasmate/Alisee/internal/invoice"
	"github.com/lasmate/Alisee/internal/model"
)

// MaxQuantity is the largest quantity a single order line may carry.
const MaxQuantity = math.MaxInt32

type OrderService struct {
	store Store
	now   func() time.Time
}

func NewOrderService(store Store) *OrderService {
	return &OrderService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderInput is a checkout submission. Line prices and names sent by the
// client are ignored; both are read from the catalog.
type CreateOrderInput struct {
	model.Shipping
	Items []cart.Line `json:"items"`
}

func validateShipping(sh *model.Shipping) error {
	fields := []*string{&sh.FirstName, &sh.LastName, &sh.Address, &sh.City, &sh.PostalCode, &sh.Country}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			return validationf("all shipping fields are required")
		}
	}
	return nil
}

// CreateOrder prices the submitted cart against the catalog and records a pending order.
func (s *OrderService) CreateOrder(ctx context.Context, user *model.User, in CreateOrderInput) (*model.Order, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if err := validateShipping(&in.Shipping); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, validationf("order must contain at least one item")
	}
	for _, l := range in.Items {
		if l.ItemID <= 0 {
			return nil, validationf("invalid item id %d", l.ItemID)
		}
		if l.Quantity <= 0 {
			return nil, validationf("quantity for item %d must be positive", l.ItemID)
		}
		if l.Quantity > MaxQuantity {
			return nil, validationf("quantity for item %d exceeds %d", l.ItemID, MaxQuantity)
		}
	}
	submitted := cart.FromLines(in.Items).Lines()
	for _, l := range submitted {
		if l.Quantity > MaxQuantity {
			return nil, validationf("quantity for item %d exceeds %d", l.ItemID, MaxQuantity)
		}
	}

	var order *model.Order
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		priced := make([]cart.Line, 0, len(submitted))
		lines := make([]model.OrderLine, 0, len(submitted))
		for _, l := range submitted {
			ol, err := s.priceLine(ctx, l)
			if err != nil {
				return err
			}
			lines = append(lines, ol)
			priced = append(priced, cart.Line{
				ItemID:          ol.ItemID,
				CustomizationID: ol.CustomizationID,
				Quantity:        ol.Quantity,
				Price:           ol.UnitPrice,
			})
		}

		total, err := cart.CheckedTotalPrice(priced)
		if err != nil {
			return validationf("order total is out of range")
		}

		o := &model.Order{
			Reference:  uuid.NewString(),
			UserID:     user.ID,
			Shipping:   in.Shipping,
			TotalPrice: total,
			Lines:      lines,
			Status:     model.OrderStatusPending,
			CreatedAt:  s.now(),
		}
		if err := s.store.CreateOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("order created", "order_id", order.ID, "user_id", user.ID, "total", order.TotalPrice.String())
	return order, nil
}

func (s *OrderService) priceLine(ctx context.Context, l cart.Line) (model.OrderLine, error) {
	it, err := s.store.GetItem(ctx, l.ItemID)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return model.OrderLine{}, validationf("item %d does not exist", l.ItemID)
		}
		return model.OrderLine{}, err
	}
	if !it.IsAvailable {
		return model.OrderLine{}, validationf("item %d is not available", l.ItemID)
	}

	ol := model.OrderLine{
		ItemID:    it.ID,
		Name:      it.Name,
		UnitPrice: it.Price,
		Quantity:  l.Quantity,
	}
	if l.CustomizationID != nil {
		if !it.IsCustomisable {
			return model.OrderLine{}, validationf("item %d cannot be customised", l.ItemID)
		}
		img, err := s.store.GetImage(ctx, *l.CustomizationID)
		if err != nil {
			if errors.Is(translate(err), ErrNotFound) {
				return model.OrderLine{}, validationf("customization %d does not exist", *l.CustomizationID)
			}
			return model.OrderLine{}, err
		}
		id := img.ID
		ol.CustomizationID = &id
		ol.CustomizationName = img.Name
	}
	return ol, nil
}

// UpdateStatus moves the order forward. Requesting the current or an earlier status
// succeeds and changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	if orderID <= 0 {
		return nil, validationf("invalid order id %d", orderID)
	}
	st, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var updated *model.Order
	err = s.store.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := s.store.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return translate(err)
		}
		from := o.Status
		if o.Advance(st, s.now()) {
			if err := s.store.UpdateOrderProgress(ctx, o); err != nil {
				return translate(err)
			}
			slog.Info("order status changed", "order_id", o.ID, "from", from, "to", o.Status)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	if orderID <= 0 {
		return nil, validationf("invalid order id %d", orderID)
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, translate(err)
	}
	return o, nil
}

// Export lays out the invoice for an order from its recorded lines.
func (s *OrderService) Export(ctx context.Context, orderID int64) (invoice.Document, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return invoice.Document{}, err
	}

	var email string
	if o.UserID != 0 {
		u, err := s.store.GetUserByID(ctx, o.UserID)
		switch {
		case err == nil:
			email = u.Email
		case !errors.Is(translate(err), ErrNotFound):
			return invoice.Document{}, err
		}
	}
	return invoice.Build(o, email), nil
}

// ListForUser returns the user's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, user *model.User) ([]model.Order, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	orders, err := s.store.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// ListAll returns every order joined with its purchaser.
func (s *OrderService) ListAll(ctx context.Context) ([]model.OrderSummary, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	return orders, nil
}
