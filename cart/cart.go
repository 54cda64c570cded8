// Package cart holds a customer's cart: a mapping from menu item to quantity
// with the price captured when the item was added.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/tastehub/models"
)

// Item is one cart entry. MenuItem is a snapshot; prices are not looked up again.
type Item struct {
	MenuItem models.MenuItem `json:"menuItem"`
	Quantity int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.MenuItem.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Signal tells the caller what a mutation did, so it can confirm it to the user.
type Signal int

const (
	SignalNone Signal = iota
	SignalAdded
	SignalIncremented
	SignalUpdated
	SignalRemoved
	SignalNotInCart
	SignalCleared
)

func (s Signal) String() string {
	switch s {
	case SignalAdded:
		return "added"
	case SignalIncremented:
		return "incremented"
	case SignalUpdated:
		return "updated"
	case SignalRemoved:
		return "removed"
	case SignalNotInCart:
		return "not_in_cart"
	case SignalCleared:
		return "cleared"
	}
	return "none"
}

// Cart is a pure value: no I/O, insertion order preserved.
type Cart struct {
	items []Item
}

func (c *Cart) Add(item models.MenuItem) Signal {
	for i := range c.items {
		if c.items[i].MenuItem.ID == item.ID {
			c.items[i].Quantity++
			return SignalIncremented
		}
	}
	c.items = append(c.items, Item{MenuItem: item, Quantity: 1})
	return SignalAdded
}

// SetQuantity sets the quantity exactly; below 1 it behaves like Remove.
func (c *Cart) SetQuantity(itemID string, quantity int) Signal {
	if quantity < 1 {
		return c.Remove(itemID)
	}
	for i := range c.items {
		if c.items[i].MenuItem.ID == itemID {
			c.items[i].Quantity = quantity
			return SignalUpdated
		}
	}
	return SignalNotInCart
}

func (c *Cart) Remove(itemID string) Signal {
	for i := range c.items {
		if c.items[i].MenuItem.ID == itemID {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return SignalRemoved
		}
	}
	return SignalNotInCart
}

func (c *Cart) Reset() {
	c.items = nil
}

func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Quantity(itemID string) int {
	for _, it := range c.items {
		if it.MenuItem.ID == itemID {
			return it.Quantity
		}
	}
	return 0
}

func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c Cart) TotalItems() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) clone() Cart {
	return Cart{items: c.Items()}
}

// MarshalJSON writes the cart as a plain array of items, the persisted format.
func (c Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	// entri rusak (qty < 1) dibuang saat hydrate
	c.items = c.items[:0]
	for _, it := range items {
		if it.Quantity >= 1 && it.MenuItem.ID != "" {
			c.items = append(c.items, it)
		}
	}
	return nil
}
