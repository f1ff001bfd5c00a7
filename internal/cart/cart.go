// Package cart implements the per-session basket. Carts live in process memory only.
package cart

import (
	"sync"

	"pub_pos_backend/internal/models"
)

// Item is a menu item with the quantity in the basket.
type Item struct {
	models.MenuItem
	Quantity int `json:"quantity"`
}

// Quote is the price of a basket under a tax rate. Values are not rounded.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Cart holds at most one entry per item id, in insertion order.
type Cart struct {
	mu      sync.Mutex
	entries []Item
}

func New() *Cart {
	return &Cart{}
}

// Add merges qty into the entry for item.ID, or appends a new one. A quantity below
// 1 counts as 1. Remaining stock is not checked.
func (c *Cart) Add(item models.MenuItem, qty int) {
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == item.ID {
			c.entries[i].Quantity += qty
			return
		}
	}
	c.entries = append(c.entries, Item{MenuItem: item, Quantity: qty})
}

// UpdateQuantity sets the quantity exactly. n <= 0 removes the entry.
func (c *Cart) UpdateQuantity(id string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID != id {
			continue
		}
		if n <= 0 {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
		} else {
			c.entries[i].Quantity = n
		}
		return
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Take moves every entry into a new cart and leaves c empty, in one step. Two
// callers racing on the same cart cannot both take the same entries.
func (c *Cart) Take() *Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	taken := &Cart{entries: c.entries}
	c.entries = nil
	return taken
}

// Restore puts taken entries back in front of anything added since Take.
func (c *Cart) Restore(taken *Cart) {
	back := taken.Items()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		merged := false
		for i := range back {
			if back[i].ID == e.ID {
				back[i].Quantity += e.Quantity
				merged = true
				break
			}
		}
		if !merged {
			back = append(back, e)
		}
	}
	c.entries = back
}

// Items returns a copy of the entries.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.entries...)
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries) == 0
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.entries)
}

// Quote prices the basket at taxRate.
func (c *Cart) Quote(taxRate float64) Quote {
	return Price(c.TotalPrice(), taxRate)
}

// Lines snapshots the basket as order lines.
func (c *Cart) Lines() []models.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]models.OrderItem, len(c.entries))
	for i, e := range c.entries {
		lines[i] = models.OrderItem{ID: e.ID, Name: e.Name, Quantity: e.Quantity, Price: e.Price}
	}
	return lines
}

// Price applies taxRate to a subtotal: tax = subtotal*rate, total = subtotal+tax.
func Price(sub, taxRate float64) Quote {
	tax := sub * taxRate
	return Quote{Subtotal: sub, Tax: tax, Total: sub + tax}
}

func subtotal(entries []Item) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Price * float64(e.Quantity)
	}
	return sum
}
