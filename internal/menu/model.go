package menu

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModifierOption represents a single choice within a modifier group
type ModifierOption struct {
	Name       string  `json:"name"`
	PriceDelta float64 `json:"priceDelta"`
}

// ModifierGroup represents a named set of options for an item,
// e.g. "Size" with Small/Medium/Large
type ModifierGroup struct {
	Name    string           `json:"name"`
	Min     *int             `json:"min,omitempty"`
	Max     *int             `json:"max,omitempty"`
	Options []ModifierOption `json:"options"`
}

// Item represents a dish on the menu
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       float64         `json:"price"`
	Tags        []string        `json:"tags,omitempty"`
	Modifiers   []ModifierGroup `json:"modifiers,omitempty"`
}

// Category represents a section of the menu, e.g. "Appetizers"
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Items       []Item `json:"items"`
}

// Menu represents the complete menu for one restaurant. It is
// immutable once loaded for a session.
type Menu struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Currency   string     `json:"currency"`
	Categories []Category `json:"categories"`
}

// ItemByID returns the item with the given id, or nil if absent.
func (m *Menu) ItemByID(id string) *Item {
	for ci := range m.Categories {
		for ii := range m.Categories[ci].Items {
			if m.Categories[ci].Items[ii].ID == id {
				return &m.Categories[ci].Items[ii]
			}
		}
	}
	return nil
}

// Items returns all items in menu order (category order, then item order).
func (m *Menu) Items() []Item {
	var items []Item
	for _, cat := range m.Categories {
		items = append(items, cat.Items...)
	}
	return items
}

// ItemsByTag returns all items carrying the given tag, in menu order.
func (m *Menu) ItemsByTag(tag string) []Item {
	var items []Item
	for _, item := range m.Items() {
		if item.HasTag(tag) {
			items = append(items, item)
		}
	}
	return items
}

// HasTag checks if the item carries a specific tag
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// LoadFile reads and validates a menu from a JSON file.
func LoadFile(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}
