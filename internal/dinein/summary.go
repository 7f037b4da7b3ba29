package dinein

import (
	"github.com/bistro-app/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Summary aggregates the closed orders of a session.
type Summary struct {
	CompletedOrders int
	CanceledOrders  int
	ItemsSold       int64
	Revenue         decimal.Decimal // Σ total of completed orders
	Tax             decimal.Decimal
	Tips            decimal.Decimal
}

// Summarize folds the session history. Canceled orders are counted but add
// nothing to revenue.
func (s *Session) Summarize() Summary {
	var sum Summary
	sum.Revenue, sum.Tax, sum.Tips = decimal.Zero, decimal.Zero, decimal.Zero

	for _, o := range s.History() {
		switch o.Status {
		case enum.DineInStatusCompleted:
			sum.CompletedOrders++
			sum.Revenue = sum.Revenue.Add(o.Total)
			sum.Tax = sum.Tax.Add(o.Tax)
			sum.Tips = sum.Tips.Add(o.Tip)
			for _, li := range o.Items {
				sum.ItemsSold += int64(li.Quantity)
			}
		case enum.DineInStatusCanceled:
			sum.CanceledOrders++
		}
	}
	return sum
}
