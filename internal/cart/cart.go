// Package cart implements the signed-in customer's persisted cart.
//
// Postgres is the authority. Every mutation is written remotely first and the
// local mirror is updated only after the write succeeds, so a failed call
// leaves the mirror exactly as it was.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/bistro-app/api/internal/billing"
	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotAuthenticated  = errors.New("sign in to use the cart")
	ErrInvalidMenuItemID = errors.New("invalid menu item id")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrInvalidQuantity   = errors.New("quantity must be >= 1")
	ErrCartItemNotFound  = errors.New("cart item not found")
)

// Store defines the database methods needed by the cart.
// Satisfied by *database.Queries; narrow interface for testability.
type Store interface {
	ListCartItems(ctx context.Context, userID uuid.UUID) ([]database.ListCartItemsRow, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	AddCartItem(ctx context.Context, arg database.AddCartItemParams) (database.Cart, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.Cart, error)
	DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (uuid.UUID, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// Item is one cart row joined with its menu item.
type Item struct {
	ID         uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      decimal.Decimal
	Image      string
	Quantity   int32
}

// Cart mirrors one user's cart rows. It is not safe for concurrent use; build
// one per request.
type Cart struct {
	store  Store
	userID uuid.UUID
	items  []Item
}

// New returns an empty cart for userID. Call Load to fill it. A nil user id
// yields a cart whose every operation fails with ErrNotAuthenticated.
func New(store Store, userID uuid.UUID) *Cart {
	return &Cart{store: store, userID: userID}
}

// Load replaces the mirror with the user's rows.
func (c *Cart) Load(ctx context.Context) error {
	if c.userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	rows, err := c.store.ListCartItems(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("list cart items: %w", err)
	}
	items := make([]Item, len(rows))
	for i, r := range rows {
		items[i] = Item{
			ID:         r.ID,
			MenuItemID: r.MenuItemID,
			Name:       r.Name,
			Price:      database.NumericToDecimal(r.Price),
			Image:      r.Image.String,
			Quantity:   r.Quantity,
		}
	}
	c.items = items
	return nil
}

// Add puts quantity of the menu item in the cart. An existing row for the
// same item has its quantity incremented; an increment past the int32 range
// is ErrInvalidQuantity and leaves the row as it was.
func (c *Cart) Add(ctx context.Context, menuItemID string, quantity int32) (Item, error) {
	if c.userID == uuid.Nil {
		return Item{}, ErrNotAuthenticated
	}
	id, err := catalog.ParseID(menuItemID)
	if err != nil {
		return Item{}, ErrInvalidMenuItemID
	}
	if quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}

	mi, err := c.store.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrMenuItemNotFound
		}
		return Item{}, fmt.Errorf("get menu item: %w", err)
	}

	row, err := c.store.AddCartItem(ctx, database.AddCartItemParams{
		UserID:     c.userID,
		MenuItemID: id,
		Quantity:   quantity,
	})
	if err != nil {
		// The upsert skips the update, and so returns no row, when the
		// merged quantity would not fit.
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrInvalidQuantity
		}
		return Item{}, fmt.Errorf("add cart item: %w", err)
	}

	item := Item{
		ID:         row.ID,
		MenuItemID: id,
		Name:       mi.Name,
		Price:      database.NumericToDecimal(mi.Price),
		Image:      mi.Image.String,
		Quantity:   row.Quantity,
	}
	if i := c.indexByMenuItem(id); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
	}
	return item, nil
}

// UpdateQuantity sets a row's quantity. Zero or less removes the row.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int32) error {
	if c.userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}

	row, err := c.store.UpdateCartItemQuantity(ctx, database.UpdateCartItemQuantityParams{
		ID:       itemID,
		UserID:   c.userID,
		Quantity: quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("update cart item: %w", err)
	}

	if i := c.index(itemID); i >= 0 {
		c.items[i].Quantity = row.Quantity
	}
	return nil
}

// Remove deletes one row.
func (c *Cart) Remove(ctx context.Context, itemID uuid.UUID) error {
	if c.userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	_, err := c.store.DeleteCartItem(ctx, database.DeleteCartItemParams{ID: itemID, UserID: c.userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}

	if i := c.index(itemID); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	return nil
}

// Clear deletes every row of the user.
func (c *Cart) Clear(ctx context.Context) error {
	if c.userID == uuid.Nil {
		return ErrNotAuthenticated
	}
	if err := c.store.ClearCart(ctx, c.userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.items = nil
	return nil
}

// Items returns a copy of the mirror.
func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

// TotalItems is Σ quantity.
func (c *Cart) TotalItems() int64 {
	var n int64
	for _, it := range c.items {
		n += int64(it.Quantity)
	}
	return n
}

// TotalAmount is Σ price × quantity.
func (c *Cart) TotalAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return sum
}

// Quote prices the cart for delivery with the given flat fee.
func (c *Cart) Quote(fee decimal.Decimal) (billing.Quote, error) {
	return billing.DeliveryQuote(c.lines(), fee)
}

func (c *Cart) lines() []billing.Line {
	lines := make([]billing.Line, len(c.items))
	for i, it := range c.items {
		lines[i] = billing.Line{UnitPrice: it.Price, Quantity: it.Quantity}
	}
	return lines
}

func (c *Cart) index(id uuid.UUID) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) indexByMenuItem(id uuid.UUID) int {
	for i, it := range c.items {
		if it.MenuItemID == id {
			return i
		}
	}
	return -1
}
