package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bistro-app/api/internal/billing"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the checkout service.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrCartChanged      = errors.New("cart changed during checkout")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CheckoutStore defines the DB methods needed to turn a cart into an order.
// Satisfied by *database.Queries (and its WithTx variant).
type CheckoutStore interface {
	LockCartItems(ctx context.Context, userID uuid.UUID) ([]database.LockCartItemsRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteCartItems(ctx context.Context, arg database.DeleteCartItemsParams) (int64, error)
}

// NewCheckoutStore creates a CheckoutStore from a DBTX (pool or tx).
type NewCheckoutStore func(db database.DBTX) CheckoutStore

// CheckoutRequest is the validated input for placing an order.
type CheckoutRequest struct {
	UserID          uuid.UUID
	DeliveryAddress string
	ContactNumber   string
}

// CheckoutResult is the placed order with its items and the quote it was
// priced with.
type CheckoutResult struct {
	Order database.Order
	Items []database.OrderItem
	Quote billing.Quote
}

// CheckoutService places customer delivery orders.
type CheckoutService struct {
	pool        TxBeginner
	newStore    NewCheckoutStore
	deliveryFee decimal.Decimal
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(pool TxBeginner, newStore NewCheckoutStore, deliveryFee decimal.Decimal) *CheckoutService {
	return &CheckoutService{pool: pool, newStore: newStore, deliveryFee: deliveryFee}
}

// Checkout locks the user's cart rows, inserts a pending order with a price
// snapshot per line and deletes exactly the rows it read, all in one
// transaction. A row added concurrently stays in the cart. Payment is
// accepted without a gateway call.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	rows, err := store.LockCartItems(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock cart items: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]billing.Line, len(rows))
	cartIDs := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		lines[i] = billing.Line{UnitPrice: database.NumericToDecimal(r.Price), Quantity: r.Quantity}
		cartIDs[i] = r.ID
	}
	quote, err := billing.DeliveryQuote(lines, s.deliveryFee)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	total, err := database.DecimalToNumeric(quote.Total)
	if err != nil {
		return nil, fmt.Errorf("order total: %w", err)
	}
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.UserID,
		Status:          enum.OrderStatusPending,
		TotalAmount:     total,
		DeliveryAddress: optionalText(req.DeliveryAddress),
		ContactNumber:   optionalText(req.ContactNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(rows))
	for i, r := range rows {
		price, err := database.DecimalToNumeric(lines[i].UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", r.Name, err)
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: r.MenuItemID,
			Quantity:   r.Quantity,
			Price:      price,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	deleted, err := store.DeleteCartItems(ctx, database.DeleteCartItemsParams{UserID: req.UserID, Ids: cartIDs})
	if err != nil {
		return nil, fmt.Errorf("delete cart items: %w", err)
	}
	if deleted != int64(len(cartIDs)) {
		return nil, ErrCartChanged
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CheckoutResult{Order: order, Items: items, Quote: quote}, nil
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
