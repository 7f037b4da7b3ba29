package handler

import (
	"net/http"
	"sort"

	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DineInHistory exposes the closed orders of the floor session.
// Satisfied by *dinein.Session.
type DineInHistory interface {
	History() []dinein.Order
	Summarize() dinein.Summary
}

// ReportsHandler handles dine-in report endpoints.
type ReportsHandler struct {
	history DineInHistory
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(history DineInHistory) *ReportsHandler {
	return &ReportsHandler{history: history}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /dine-in inside a staff/admin group.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.History)
	r.Get("/summary", h.Summary)
	r.Get("/item-sales", h.ItemSales)
}

// --- Response types ---

type summaryResponse struct {
	CompletedOrders int    `json:"completed_orders"`
	CanceledOrders  int    `json:"canceled_orders"`
	ItemsSold       int64  `json:"items_sold"`
	Revenue         string `json:"revenue"`
	Tax             string `json:"tax"`
	Tips            string `json:"tips"`
}

type itemSalesResponse struct {
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	Name         string    `json:"name"`
	QuantitySold int64     `json:"quantity_sold"`
	TotalRevenue string    `json:"total_revenue"`
}

// --- Handlers ---

// History returns closed orders, oldest first. ?status= narrows to completed
// or canceled.
func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.DineInStatusCompleted && status != enum.DineInStatusCanceled {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	resp := []dineInOrderResponse{}
	for _, o := range h.history.History() {
		if status != "" && o.Status != status {
			continue
		}
		resp = append(resp, toDineInOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary returns order counts and completed revenue, tax and tips.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s := h.history.Summarize()
	writeJSON(w, http.StatusOK, summaryResponse{
		CompletedOrders: s.CompletedOrders,
		CanceledOrders:  s.CanceledOrders,
		ItemsSold:       s.ItemsSold,
		Revenue:         s.Revenue.StringFixed(2),
		Tax:             s.Tax.StringFixed(2),
		Tips:            s.Tips.StringFixed(2),
	})
}

// ItemSales returns pre-tax sales per menu item over completed orders, best
// sellers first.
func (h *ReportsHandler) ItemSales(w http.ResponseWriter, r *http.Request) {
	type agg struct {
		name    string
		qty     int64
		revenue decimal.Decimal
	}
	byItem := map[uuid.UUID]*agg{}
	for _, o := range h.history.History() {
		if o.Status != enum.DineInStatusCompleted {
			continue
		}
		for _, li := range o.Items {
			a, ok := byItem[li.MenuItem.ID]
			if !ok {
				a = &agg{name: li.MenuItem.Name, revenue: decimal.Zero}
				byItem[li.MenuItem.ID] = a
			}
			a.qty += int64(li.Quantity)
			a.revenue = a.revenue.Add(li.MenuItem.Price.Mul(decimal.NewFromInt32(li.Quantity)))
		}
	}

	resp := make([]itemSalesResponse, 0, len(byItem))
	for id, a := range byItem {
		resp = append(resp, itemSalesResponse{
			MenuItemID:   id,
			Name:         a.name,
			QuantitySold: a.qty,
			TotalRevenue: a.revenue.StringFixed(2),
		})
	}
	sort.Slice(resp, func(i, j int) bool {
		if resp[i].QuantitySold != resp[j].QuantitySold {
			return resp[i].QuantitySold > resp[j].QuantitySold
		}
		return resp[i].Name < resp[j].Name
	})
	writeJSON(w, http.StatusOK, resp)
}
