package dinein

import (
	"time"

	"github.com/bistro-app/api/internal/billing"
	"github.com/bistro-app/api/internal/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one (menu item, quantity, notes) entry of an order.
type LineItem struct {
	ID       uuid.UUID
	MenuItem catalog.MenuItem
	Quantity int32
	Notes    string
}

// Order is a dine-in table order.
type Order struct {
	ID            uuid.UUID
	TableNumber   int
	Items         []LineItem
	Status        string
	CreatedAt     time.Time
	ClosedAt      *time.Time
	TipPercentage decimal.Decimal
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Tip           decimal.Decimal
	Total         decimal.Decimal
}

// clone returns a deep copy so callers never alias session state.
func (o *Order) clone() Order {
	c := *o
	c.Items = append([]LineItem(nil), o.Items...)
	if o.ClosedAt != nil {
		t := *o.ClosedAt
		c.ClosedAt = &t
	}
	return c
}

func (o *Order) lineIndex(id uuid.UUID) int {
	for i, li := range o.Items {
		if li.ID == id {
			return i
		}
	}
	return -1
}

// recalculate replaces the derived totals from the raw line items.
func (o *Order) recalculate(tipPercentage decimal.Decimal) error {
	lines := make([]billing.Line, len(o.Items))
	for i, li := range o.Items {
		lines[i] = billing.Line{UnitPrice: li.MenuItem.Price, Quantity: li.Quantity}
	}
	bill, err := billing.Compute(lines, tipPercentage)
	if err != nil {
		return err
	}
	o.TipPercentage = tipPercentage
	o.Subtotal = bill.Subtotal
	o.Tax = bill.Tax
	o.Tip = bill.Tip
	o.Total = bill.Total
	return nil
}
