// Package dinein implements the dine-in floor: a table registry and the one
// active table order being edited, plus the history of closed orders.
package dinein

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the session.
var (
	ErrTableUnavailable = errors.New("table is not available")
	ErrNoActiveOrder    = errors.New("no active order")
	ErrOrderInProgress  = errors.New("another order is already active")
	ErrInvalidQuantity  = errors.New("quantity must be >= 1")
	ErrLineItemNotFound = errors.New("order item not found")
)

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator overrides uuid.New for order and line item ids.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Session) { s.newID = fn }
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

// Session owns the table registry, the active order slot and the order
// history. All methods are safe for concurrent use; each one runs as a single
// critical section so table occupancy always changes together with the order.
type Session struct {
	mu         sync.Mutex
	tableCount int
	tables     *Registry
	active     *Order
	history    []Order

	newID func() uuid.UUID
	now   func() time.Time
}

// NewSession creates a session with tableCount available tables.
func NewSession(tableCount int, opts ...Option) *Session {
	s := &Session{
		tableCount: tableCount,
		tables:     NewRegistry(tableCount),
		newID:      uuid.New,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset frees every table and drops the active order and the history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = NewRegistry(s.tableCount)
	s.active = nil
	s.history = nil
}

// Tables returns a snapshot of the registry.
func (s *Session) Tables() []Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables.List()
}

// ActiveOrder returns a copy of the active order, if any.
func (s *Session) ActiveOrder() (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Order{}, false
	}
	return s.active.clone(), true
}

// History returns closed orders, oldest first.
func (s *Session) History() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.history))
	for i := range s.history {
		out[i] = s.history[i].clone()
	}
	return out
}

// CreateOrder opens an order for an available table and marks it occupied.
func (s *Session) CreateOrder(tableNumber int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return Order{}, ErrOrderInProgress
	}
	table, ok := s.tables.FindByNumber(tableNumber)
	if !ok {
		return Order{}, ErrTableNotFound
	}
	if table.Status != enum.TableStatusAvailable {
		return Order{}, ErrTableUnavailable
	}

	order := &Order{
		ID:          s.newID(),
		TableNumber: tableNumber,
		Items:       []LineItem{},
		Status:      enum.DineInStatusActive,
		CreatedAt:   s.now(),
	}
	if err := order.recalculate(decimal.Zero); err != nil {
		return Order{}, err
	}
	if err := s.tables.SetStatus(tableNumber, enum.TableStatusOccupied); err != nil {
		return Order{}, err
	}
	s.active = order
	return order.clone(), nil
}

// AddItem adds quantity of menuItem with notes to the active order. A line
// with the same menu item and identical notes absorbs the quantity; otherwise
// a new line is appended. A merge that would overflow the line quantity is
// rejected with ErrInvalidQuantity.
//
// AddItem, RemoveItem and UpdateQuantity recompute the bill with the tip
// percentage passed in, or with 0 when none is given.
func (s *Session) AddItem(menuItem catalog.MenuItem, quantity int32, notes string, tipPercentage ...decimal.Decimal) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}
	if quantity < 1 {
		return Order{}, ErrInvalidQuantity
	}

	next := s.active.clone()
	merged := false
	for i := range next.Items {
		if next.Items[i].MenuItem.ID == menuItem.ID && next.Items[i].Notes == notes {
			if next.Items[i].Quantity > math.MaxInt32-quantity {
				return Order{}, ErrInvalidQuantity
			}
			next.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next.Items = append(next.Items, LineItem{
			ID:       s.newID(),
			MenuItem: menuItem,
			Quantity: quantity,
			Notes:    notes,
		})
	}
	return s.commit(&next, tipPercentage)
}

// RemoveItem drops a line from the active order. Unknown ids are ignored.
func (s *Session) RemoveItem(lineID uuid.UUID, tipPercentage ...decimal.Decimal) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}

	next := s.active.clone()
	kept := next.Items[:0]
	for _, li := range next.Items {
		if li.ID != lineID {
			kept = append(kept, li)
		}
	}
	next.Items = kept
	return s.commit(&next, tipPercentage)
}

// UpdateQuantity sets a line's quantity, clamped to a minimum of 1.
// Lines are never removed here.
func (s *Session) UpdateQuantity(lineID uuid.UUID, quantity int32, tipPercentage ...decimal.Decimal) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}
	i := s.active.lineIndex(lineID)
	if i < 0 {
		return Order{}, ErrLineItemNotFound
	}

	next := s.active.clone()
	next.Items[i].Quantity = max(quantity, 1)
	return s.commit(&next, tipPercentage)
}

// UpdateNotes replaces a line's notes. Totals are unaffected and lines are
// not re-merged, so two lines may end up with identical item and notes.
func (s *Session) UpdateNotes(lineID uuid.UUID, notes string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}
	i := s.active.lineIndex(lineID)
	if i < 0 {
		return Order{}, ErrLineItemNotFound
	}

	s.active.Items[i].Notes = notes
	return s.active.clone(), nil
}

// CalculateBill recomputes the active order's totals with a new tip
// percentage. The next item change resets it unless it passes one again.
func (s *Session) CalculateBill(tipPercentage decimal.Decimal) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}
	next := s.active.clone()
	if err := next.recalculate(tipPercentage); err != nil {
		return Order{}, err
	}
	s.active = &next
	return next.clone(), nil
}

// CompleteOrder closes the active order as completed and frees its table.
func (s *Session) CompleteOrder() (Order, error) {
	return s.close(enum.DineInStatusCompleted)
}

// CancelOrder closes the active order as canceled and frees its table.
func (s *Session) CancelOrder() (Order, error) {
	return s.close(enum.DineInStatusCanceled)
}

func (s *Session) close(status string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Order{}, ErrNoActiveOrder
	}

	closed := s.active.clone()
	closed.Status = status
	at := s.now()
	closed.ClosedAt = &at

	if _, ok := s.tables.FindByNumber(closed.TableNumber); ok {
		if err := s.tables.SetStatus(closed.TableNumber, enum.TableStatusAvailable); err != nil {
			return Order{}, err
		}
	}
	s.history = append(s.history, closed)
	s.active = nil
	return closed.clone(), nil
}

// commit recomputes totals on next and makes it the active order. The tip
// percentage is the first of tip, or 0. The active order is untouched on
// error.
func (s *Session) commit(next *Order, tip []decimal.Decimal) (Order, error) {
	pct := decimal.Zero
	if len(tip) > 0 {
		pct = tip[0]
	}
	if err := next.recalculate(pct); err != nil {
		return Order{}, err
	}
	s.active = next
	return next.clone(), nil
}
