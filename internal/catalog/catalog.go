// Package catalog holds the restaurant's reference menu.
//
// Every category and item carries a canonical UUID assigned here, once. The
// same ids are seeded into the database, so cart rows and dine-in line items
// always join back to the same entry across restarts.
package catalog

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidID is returned when an identifier is not a canonical UUID.
var ErrInvalidID = errors.New("invalid menu item id")

// Category groups menu items for display.
type Category struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	SortOrder int32
}

// MenuItem is an immutable reference entry.
type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	Description string
	CategoryID  uuid.UUID
	Image       string
	Vegetarian  bool
	Spicy       bool
	Popular     bool
}

// Catalog is a read-only, id-indexed menu.
type Catalog struct {
	categories []Category
	items      []MenuItem
	byID       map[uuid.UUID]MenuItem
}

// New builds a catalog. Duplicate item ids, negative prices and items that
// reference an unknown category are rejected.
func New(categories []Category, items []MenuItem) (*Catalog, error) {
	cats := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		if cats[c.ID] {
			return nil, errors.New("duplicate category id " + c.ID.String())
		}
		cats[c.ID] = true
	}

	byID := make(map[uuid.UUID]MenuItem, len(items))
	for _, it := range items {
		if it.ID == uuid.Nil {
			return nil, errors.New("menu item " + it.Name + " has no id")
		}
		if _, dup := byID[it.ID]; dup {
			return nil, errors.New("duplicate menu item id " + it.ID.String())
		}
		if it.Price.IsNegative() {
			return nil, errors.New("menu item " + it.Name + " has a negative price")
		}
		if !cats[it.CategoryID] {
			return nil, errors.New("menu item " + it.Name + " references an unknown category")
		}
		byID[it.ID] = it
	}

	sorted := append([]Category(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	return &Catalog{
		categories: sorted,
		items:      append([]MenuItem(nil), items...),
		byID:       byID,
	}, nil
}

// Find looks up an item by its canonical id.
func (c *Catalog) Find(id uuid.UUID) (MenuItem, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Items returns all items in authoring order.
func (c *Catalog) Items() []MenuItem {
	return append([]MenuItem(nil), c.items...)
}

// Categories returns all categories ordered by SortOrder.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// ByCategory returns the items of one category in authoring order.
func (c *Catalog) ByCategory(categoryID uuid.UUID) []MenuItem {
	var out []MenuItem
	for _, it := range c.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// ParseID accepts only the canonical 36-character hyphenated form.
// Anything else is a validation error; ids are never substituted.
func ParseID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, ErrInvalidID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
