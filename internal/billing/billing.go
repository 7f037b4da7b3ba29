// Package billing derives bill totals from priced line items.
//
// Every function recomputes from the raw (unrounded) subtotal, so repeated
// calls with different tip percentages never drift.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Rounding precision for every money amount exposed by this package.
const places = 2

var (
	// TaxRate is the dine-in sales tax (8.25%).
	TaxRate = decimal.RequireFromString("0.0825")

	// DeliveryTaxRate is the tax applied to customer delivery orders (5%).
	DeliveryTaxRate = decimal.RequireFromString("0.05")

	hundred = decimal.NewFromInt(100)
)

// Errors returned by the calculator.
var (
	ErrNegativeTip      = errors.New("tip percentage must be >= 0")
	ErrNegativePrice    = errors.New("price must be >= 0")
	ErrNegativeQuantity = errors.New("quantity must be >= 0")
	ErrNegativeFee      = errors.New("delivery fee must be >= 0")
)

// Line is a single priced entry of a bill.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int32
}

// Bill holds the derived totals of a dine-in order.
type Bill struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal returns Σ unit price × quantity without rounding.
func Subtotal(lines []Line) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range lines {
		if l.UnitPrice.IsNegative() {
			return decimal.Zero, ErrNegativePrice
		}
		if l.Quantity < 0 {
			return decimal.Zero, ErrNegativeQuantity
		}
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return sum, nil
}

// Compute derives subtotal, tax, tip and total for the given lines.
// tipPercentage is a percentage (15 means 15%). Each field is rounded to two
// decimal places independently, all from the unrounded subtotal.
func Compute(lines []Line, tipPercentage decimal.Decimal) (Bill, error) {
	if tipPercentage.IsNegative() {
		return Bill{}, ErrNegativeTip
	}
	subtotal, err := Subtotal(lines)
	if err != nil {
		return Bill{}, err
	}

	tax := subtotal.Mul(TaxRate)
	tip := subtotal.Mul(tipPercentage).Div(hundred)
	total := subtotal.Add(tax).Add(tip)

	return Bill{
		Subtotal: subtotal.Round(places),
		Tax:      tax.Round(places),
		Tip:      tip.Round(places),
		Total:    total.Round(places),
	}, nil
}

// Quote holds the totals shown on the customer checkout page.
type Quote struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// DeliveryQuote prices a delivery order: subtotal + flat fee + 5% tax on the
// subtotal. An empty cart is quoted without the fee.
func DeliveryQuote(lines []Line, fee decimal.Decimal) (Quote, error) {
	if fee.IsNegative() {
		return Quote{}, ErrNegativeFee
	}
	subtotal, err := Subtotal(lines)
	if err != nil {
		return Quote{}, err
	}
	if len(lines) == 0 {
		fee = decimal.Zero
	}

	tax := subtotal.Mul(DeliveryTaxRate)
	total := subtotal.Add(fee).Add(tax)

	return Quote{
		Subtotal:    subtotal.Round(places),
		DeliveryFee: fee.Round(places),
		Tax:         tax.Round(places),
		Total:       total.Round(places),
	}, nil
}
