// Package cart holds the in-progress selection of items before checkout.
package cart

import (
	"github.com/lasmate/Alisee/internal/money"
)

// Line is one (item, customization) pair with its quantity and price snapshot.
type Line struct {
	ItemID          int64       `json:"id"`
	CustomizationID *int64      `json:"customizationId,omitempty"`
	Name            string      `json:"name,omitempty"`
	Quantity        int         `json:"quantity"`
	Price           money.Cents `json:"price"`
}

func (l Line) matches(itemID int64, customizationID *int64) bool {
	if l.ItemID != itemID {
		return false
	}
	if l.CustomizationID == nil || customizationID == nil {
		return l.CustomizationID == nil && customizationID == nil
	}
	return *l.CustomizationID == *customizationID
}

// Cart is an ordered collection of lines. Quantities are always positive.
type Cart struct {
	lines   []Line
	storage Storage
}

// New returns an empty cart that is not persisted.
func New() *Cart {
	return &Cart{}
}

// FromLines builds a cart, merging lines that share an (item, customization) key.
// Lines with a non-positive quantity are dropped.
func FromLines(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := c.index(l.ItemID, l.CustomizationID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) index(itemID int64, customizationID *int64) int {
	for i, l := range c.lines {
		if l.matches(itemID, customizationID) {
			return i
		}
	}
	return -1
}

// Add increments the matching line by one, or appends the line with quantity one.
func (c *Cart) Add(l Line) {
	if i := c.index(l.ItemID, l.CustomizationID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		l.Quantity = 1
		c.lines = append(c.lines, l)
	}
	c.persist()
}

// Remove deletes the matching line. It is a no-op when the line is absent.
func (c *Cart) Remove(itemID int64, customizationID *int64) {
	if i := c.index(itemID, customizationID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	c.persist()
}

// UpdateQuantity sets the quantity of the matching line; quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(itemID int64, customizationID *int64, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID, customizationID)
		return
	}
	if i := c.index(itemID, customizationID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	c.persist()
}

// Clear empties the cart and drops its persisted state.
func (c *Cart) Clear() {
	c.lines = nil
	if c.storage != nil {
		_ = c.storage.Delete(StorageKey)
	}
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

// TotalPrice sums price × quantity over lines.
func TotalPrice(lines []Line) money.Cents {
	var total money.Cents
	for _, l := range lines {
		total += l.Price.Times(l.Quantity)
	}
	return total
}

// CheckedTotalPrice is TotalPrice that reports money.ErrOverflow instead of wrapping.
func CheckedTotalPrice(lines []Line) (money.Cents, error) {
	var total money.Cents
	for _, l := range lines {
		sub, err := l.Price.TimesChecked(l.Quantity)
		if err != nil {
			return 0, err
		}
		if total, err = total.Plus(sub); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// TotalItems sums quantities over lines.
func TotalItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
