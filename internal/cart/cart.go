package cart

import (
	"encoding/json"
	"log"
	"sync"
)

// Modifier represents one modifier group selection on a cart line
type Modifier struct {
	GroupName       string   `json:"groupName"`
	SelectedOptions []string `json:"selectedOptions"`
}

// Line represents one line in the cart. Price is a snapshot taken at
// add time, not a live reference into the menu.
type Line struct {
	ItemID    string     `json:"itemId"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	Quantity  int        `json:"quantity"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
}

// Subtotal returns price × quantity for the line.
func (l *Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Observer receives cart mutation events. The aggregate itself stays
// side-effect-free; toasts, analytics and metrics hang off this.
type Observer interface {
	CartEvent(op string, itemID string, quantity int)
}

// Cart holds the line items for one device, keyed by
// (itemId, modifier selection). Two additions merge into one line only
// when both parts of that key agree. Every mutation is written through
// to the store; write failures are logged and swallowed so the
// in-memory cart stays authoritative.
//
// The manager hands the same instance to every handler and socket for
// a device, so all access goes through the mutex.
type Cart struct {
	key       string
	mu        sync.Mutex
	lines     []Line
	store     Store
	observers []Observer
}

// New creates a cart for the given device key, hydrating from the
// store when a previously persisted copy parses cleanly. Corrupt data
// is treated as absent.
func New(key string, store Store, observers ...Observer) *Cart {
	c := &Cart{key: key, store: store, observers: observers}

	if payload, ok := store.Get(key); ok {
		var lines []Line
		if err := json.Unmarshal([]byte(payload), &lines); err != nil {
			log.Printf("cart %s: discarding unreadable stored state: %v", key, err)
		} else {
			c.lines = lines
		}
	}

	return c
}

// identityKey builds the merge key for a line. nil and empty modifier
// lists serialize identically so they merge.
func identityKey(itemID string, mods []Modifier) string {
	if len(mods) == 0 {
		return itemID + "|null"
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return itemID + "|null"
	}
	return itemID + "|" + string(data)
}

// AddItem merges one unit into the line matching (itemID, mods), or
// appends a new line with quantity 1. Never fails for valid input.
func (c *Cart) AddItem(itemID, name string, price float64, mods []Modifier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := identityKey(itemID, mods)
	for i := range c.lines {
		if identityKey(c.lines[i].ItemID, c.lines[i].Modifiers) == key {
			c.lines[i].Quantity++
			c.persist()
			c.notify("add", itemID, c.lines[i].Quantity)
			return
		}
	}

	c.lines = append(c.lines, Line{
		ItemID:    itemID,
		Name:      name,
		Price:     price,
		Quantity:  1,
		Modifiers: mods,
	})
	c.persist()
	c.notify("add", itemID, 1)
}

// RemoveItem removes every line whose itemID matches, covering all
// modifier variants. No-op when absent.
func (c *Cart) RemoveItem(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(itemID)
}

func (c *Cart) removeLocked(itemID string) {
	kept := c.lines[:0]
	removed := false
	for _, line := range c.lines {
		if line.ItemID == itemID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	c.lines = kept

	if removed {
		c.persist()
		c.notify("remove", itemID, 0)
	}
}

// UpdateQuantity sets the quantity on the first line matching itemID.
// Zero or negative quantity removes the item. No-op when absent.
func (c *Cart) UpdateQuantity(itemID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(itemID)
		return
	}

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity = quantity
			c.persist()
			c.notify("update", itemID, quantity)
			return
		}
	}
}

// Clear empties the cart and drops the persisted copy.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	if err := c.store.Remove(c.key); err != nil {
		log.Printf("cart %s: failed to clear stored state: %v", c.key, err)
	}
	c.notify("clear", "", 0)
}

// Contains reports whether any line references itemID.
func (c *Cart) Contains(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.lines {
		if line.ItemID == itemID {
			return true
		}
	}
	return false
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total recomputes Σ price×quantity on every call.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// ItemCount recomputes Σ quantity on every call.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

func (c *Cart) persist() {
	data, err := json.Marshal(c.lines)
	if err != nil {
		log.Printf("cart %s: failed to serialize state: %v", c.key, err)
		return
	}
	if err := c.store.Set(c.key, string(data)); err != nil {
		log.Printf("cart %s: failed to persist state: %v", c.key, err)
	}
}

func (c *Cart) notify(op, itemID string, quantity int) {
	for _, obs := range c.observers {
		obs.CartEvent(op, itemID, quantity)
	}
}
