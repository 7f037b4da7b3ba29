package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Canonical category ids.
var (
	CategoryAppetizers = uuid.MustParse("5b0e6f3a-1c2d-4e8f-9a10-000000000001")
	CategoryMains      = uuid.MustParse("5b0e6f3a-1c2d-4e8f-9a10-000000000002")
	CategoryDesserts   = uuid.MustParse("5b0e6f3a-1c2d-4e8f-9a10-000000000003")
	CategoryBeverages  = uuid.MustParse("5b0e6f3a-1c2d-4e8f-9a10-000000000004")
)

// DefaultCategories is the seed category list.
func DefaultCategories() []Category {
	return []Category{
		{ID: CategoryAppetizers, Slug: "appetizers", Name: "Appetizers", SortOrder: 1},
		{ID: CategoryMains, Slug: "mains", Name: "Main Courses", SortOrder: 2},
		{ID: CategoryDesserts, Slug: "desserts", Name: "Desserts", SortOrder: 3},
		{ID: CategoryBeverages, Slug: "beverages", Name: "Beverages", SortOrder: 4},
	}
}

func item(id, name, price, desc string, category uuid.UUID) MenuItem {
	return MenuItem{
		ID:          uuid.MustParse(id),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: desc,
		CategoryID:  category,
	}
}

// DefaultItems is the seed menu.
func DefaultItems() []MenuItem {
	items := []MenuItem{
		item("9d3c1e52-7a41-4b8e-8f21-a00000000101", "Bruschetta", "8.99",
			"Toasted bread topped with tomatoes, garlic, and fresh basil", CategoryAppetizers),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000102", "Mozzarella Sticks", "7.99",
			"Breaded mozzarella served with marinara sauce", CategoryAppetizers),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000103", "Garlic Bread", "5.99",
			"Toasted bread with garlic butter and herbs", CategoryAppetizers),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000201", "Spaghetti Bolognese", "14.99",
			"Classic pasta with rich meat sauce and parmesan", CategoryMains),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000202", "Grilled Salmon", "18.99",
			"Fresh salmon with lemon butter sauce and seasonal vegetables", CategoryMains),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000203", "Chicken Alfredo", "16.99",
			"Fettuccine pasta with creamy sauce and grilled chicken", CategoryMains),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000204", "Margherita Pizza", "12.99",
			"Classic pizza with tomatoes, mozzarella, and fresh basil", CategoryMains),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000301", "Tiramisu", "6.99",
			"Coffee-flavored Italian dessert with mascarpone", CategoryDesserts),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000302", "Chocolate Lava Cake", "7.99",
			"Warm chocolate cake with a molten chocolate center", CategoryDesserts),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000401", "Soft Drink", "2.99",
			"Cola, lemon-lime, or orange soda", CategoryBeverages),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000402", "Iced Tea", "2.99",
			"Freshly brewed sweet or unsweetened tea", CategoryBeverages),
		item("9d3c1e52-7a41-4b8e-8f21-a00000000403", "Coffee", "3.49",
			"Regular or decaf coffee", CategoryBeverages),
	}

	// Flags shown on the customer menu.
	items[0].Vegetarian, items[0].Popular = true, true
	items[1].Vegetarian = true
	items[2].Vegetarian = true
	items[3].Popular = true
	items[6].Vegetarian, items[6].Popular = true, true
	items[7].Vegetarian = true
	items[8].Vegetarian, items[8].Popular = true, true
	return items
}

// Default returns the seed catalog.
func Default() *Catalog {
	c, err := New(DefaultCategories(), DefaultItems())
	if err != nil {
		panic("catalog: invalid seed data: " + err.Error())
	}
	return c
}
