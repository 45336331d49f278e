package model

import (
	"fmt"
	"time"

	"github.com/lasmate/Alisee/internal/money"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusCompleted:  3,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// Rank orders statuses along the lifecycle; unknown statuses rank -1.
func (s OrderStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

type Shipping struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderLine is a line item as recorded when the order was created.
type OrderLine struct {
	ItemID            int64       `json:"id"`
	Name              string      `json:"name"`
	CustomizationID   *int64      `json:"customizationId,omitempty"`
	CustomizationName string      `json:"customizationName,omitempty"`
	UnitPrice         money.Cents `json:"price"`
	Quantity          int         `json:"quantity"`
}

func (l OrderLine) Subtotal() money.Cents {
	return l.UnitPrice.Times(l.Quantity)
}

type Order struct {
	ID        int64  `json:"orderId"`
	Reference string `json:"reference"`
	UserID    int64  `json:"userId"`
	Shipping
	TotalPrice  money.Cents `json:"totalPrice"`
	Lines       []OrderLine `json:"items"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	ProcessedAt *time.Time  `json:"processedAt"`
	ShippedAt   *time.Time  `json:"shippedAt"`
}

func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// Advance moves the order forward to status, back-filling processedAt and shippedAt
// for every stage passed. It reports false, leaving the order untouched, when status
// is not ahead of the current one.
func (o *Order) Advance(status OrderStatus, now time.Time) bool {
	if status.Rank() <= o.Status.Rank() {
		return false
	}
	if status.Rank() >= OrderStatusProcessing.Rank() && o.ProcessedAt == nil {
		t := now
		o.ProcessedAt = &t
	}
	if status.Rank() >= OrderStatusShipped.Rank() && o.ShippedAt == nil {
		t := now
		o.ShippedAt = &t
	}
	o.Status = status
	return true
}

// OrderSummary is an order joined with its purchaser for back-office listing.
type OrderSummary struct {
	Order
	UserName    string `json:"userName"`
	UserSurname string `json:"userSurname"`
	UserEmail   string `json:"userEmail"`
	Completed   bool   `json:"isCompleted"`
}
