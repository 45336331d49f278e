package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/cart"
	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/money"
)

func TestCreateOrder_TotalComputedServerSide(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")

	badge := f.item(t, model.Item{Name: "Grand Badge", Price: 150, IsAvailable: true})
	small := f.item(t, model.Item{Name: "Petit Badge", Price: 100, IsAvailable: true})

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items: []cart.Line{
			{ItemID: badge.ID, Quantity: 2, Price: 1},
			{ItemID: small.ID, Quantity: 1, Price: 0},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, money.Cents(400), o.TotalPrice)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.NotEmpty(t, o.Reference)
	assert.Nil(t, o.ProcessedAt)

	stored, err := f.shop.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(400), stored.TotalPrice)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, money.Cents(150), stored.Lines[0].UnitPrice)
	assert.Equal(t, "Grand Badge", stored.Lines[0].Name)
}

func TestCreateOrder_MergesDuplicateLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")
	badge := f.item(t, model.Item{Name: "Badge", Price: 150, IsAvailable: true})

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items: []cart.Line{
			{ItemID: badge.ID, Quantity: 1},
			{ItemID: badge.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, 3, o.Lines[0].Quantity)
	assert.Equal(t, money.Cents(450), o.TotalPrice)
}

func TestCreateOrder_Customization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")

	img := model.Image{Name: "chat", Path: "/images/chat.png"}
	_, err := f.store.CreateImage(ctx, &img)
	require.NoError(t, err)

	custom := f.item(t, model.Item{Name: "Badge", Price: 100, IsAvailable: true, IsCustomisable: true})
	plain := f.item(t, model.Item{Name: "Sticker", Price: 50, IsAvailable: true})

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: custom.ID, CustomizationID: &img.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "chat", o.Lines[0].CustomizationName)

	_, err = f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: plain.ID, CustomizationID: &img.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	missing := int64(99)
	_, err = f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: custom.ID, CustomizationID: &missing, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_Rejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")
	badge := f.item(t, model.Item{Name: "Badge", Price: 150, IsAvailable: true})
	hidden := f.item(t, model.Item{Name: "Hidden", Price: 150, IsAvailable: false})

	noCity := shipping
	noCity.City = "  "

	tests := []struct {
		name string
		user *model.User
		in   CreateOrderInput
		want error
	}{
		{"no session", nil, CreateOrderInput{Shipping: shipping, Items: []cart.Line{{ItemID: badge.ID, Quantity: 1}}}, ErrUnauthorized},
		{"missing shipping field", u, CreateOrderInput{Shipping: noCity, Items: []cart.Line{{ItemID: badge.ID, Quantity: 1}}}, ErrValidation},
		{"empty cart", u, CreateOrderInput{Shipping: shipping}, ErrValidation},
		{"zero quantity", u, CreateOrderInput{Shipping: shipping, Items: []cart.Line{{ItemID: badge.ID, Quantity: 0}}}, ErrValidation},
		{"unknown item", u, CreateOrderInput{Shipping: shipping, Items: []cart.Line{{ItemID: 404, Quantity: 1}}}, ErrValidation},
		{"unavailable item", u, CreateOrderInput{Shipping: shipping, Items: []cart.Line{{ItemID: hidden.ID, Quantity: 1}}}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shop.Orders.CreateOrder(ctx, tt.user, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	orders, err := f.shop.Orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_QuantityBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")
	badge := f.item(t, model.Item{Name: "Badge", Price: 400, IsAvailable: true})
	pricey := f.item(t, model.Item{Name: "Gold", Price: math.MaxInt64 / 2, IsAvailable: true})

	tests := []struct {
		name  string
		items []cart.Line
	}{
		{"line above limit", []cart.Line{{ItemID: badge.ID, Quantity: 1 << 62}}},
		{"merged lines above limit", []cart.Line{
			{ItemID: badge.ID, Quantity: MaxQuantity},
			{ItemID: badge.ID, Quantity: 1},
		}},
		{"wrapping merge", []cart.Line{
			{ItemID: badge.ID, Quantity: 1<<62 + 1},
			{ItemID: badge.ID, Quantity: 1 << 62},
			{ItemID: badge.ID, Quantity: 1 << 62},
			{ItemID: badge.ID, Quantity: 1 << 62},
		}},
		{"total out of range", []cart.Line{{ItemID: pricey.ID, Quantity: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{Shipping: shipping, Items: tt.items})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	orders, err := f.shop.Orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: badge.ID, Quantity: MaxQuantity}},
	})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(400*MaxQuantity), o.TotalPrice)
}

func TestUpdateStatus_Monotonic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")
	badge := f.item(t, model.Item{Name: "Badge", Price: 150, IsAvailable: true})

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: badge.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f.shop.Orders.now = func() time.Time { return t0 }

	got, err := f.shop.Orders.UpdateStatus(ctx, o.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.Equal(t, t0, *got.ProcessedAt)
	assert.Nil(t, got.ShippedAt)

	f.shop.Orders.now = func() time.Time { return t0.Add(time.Hour) }

	got, err = f.shop.Orders.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, got.Status)
	assert.Equal(t, t0, *got.ProcessedAt)
	require.NotNil(t, got.ShippedAt)
	assert.Equal(t, t0.Add(time.Hour), *got.ShippedAt)

	got, err = f.shop.Orders.UpdateStatus(ctx, o.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, got.Status)

	_, err = f.shop.Orders.UpdateStatus(ctx, o.ID, "cancelled")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.shop.Orders.UpdateStatus(ctx, 999, "shipped")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExport_UsesRecordedPrices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.com")
	badge := f.item(t, model.Item{Name: "Grand Badge", Price: 150, IsAvailable: true})

	o, err := f.shop.Orders.CreateOrder(ctx, u, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: badge.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	badge.Price = 999
	require.NoError(t, f.store.UpdateItem(ctx, &badge))
	current, err := f.store.GetItem(ctx, badge.ID)
	require.NoError(t, err)
	require.Equal(t, money.Cents(999), current.Price)

	doc, err := f.shop.Orders.Export(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grand Badge x2 - 3.00€"}, doc.Lines)
	assert.Equal(t, "TOTAL: 3.00€", doc.Total)
	assert.True(t, strings.Contains(doc.Text(), "Email: ada@example.com"))

	_, err = f.shop.Orders.Export(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")
	bob := f.register(t, "bob@example.com")
	badge := f.item(t, model.Item{Name: "Badge", Price: 150, IsAvailable: true})

	_, err := f.shop.Orders.CreateOrder(ctx, ada, CreateOrderInput{
		Shipping: shipping,
		Items:    []cart.Line{{ItemID: badge.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	mine, err := f.shop.Orders.ListForUser(ctx, ada)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.shop.Orders.ListForUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)
	assert.NotNil(t, theirs)
}
