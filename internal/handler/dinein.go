package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bistro-app/api/internal/billing"
	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuLookup resolves a canonical menu item id. Satisfied by *catalog.Catalog.
type MenuLookup interface {
	Find(id uuid.UUID) (catalog.MenuItem, bool)
}

// DineInHandler drives the floor session: tables and the one active order.
type DineInHandler struct {
	session   *dinein.Session
	menu      MenuLookup
	publisher events.Publisher
}

// NewDineInHandler creates a new DineInHandler.
func NewDineInHandler(session *dinein.Session, menu MenuLookup, publisher events.Publisher) *DineInHandler {
	return &DineInHandler{session: session, menu: menu, publisher: publisher}
}

// RegisterRoutes registers dine-in endpoints.
// Expected to be mounted at /dine-in inside a staff/admin group.
func (h *DineInHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Get("/order", h.GetOrder)
	r.Post("/order", h.CreateOrder)
	r.Post("/order/items", h.AddItem)
	r.Patch("/order/items/{id}", h.UpdateItem)
	r.Delete("/order/items/{id}", h.RemoveItem)
	r.Post("/order/bill", h.CalculateBill)
	r.Post("/order/complete", h.Complete)
	r.Post("/order/cancel", h.Cancel)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Post("/reset", h.Reset)
}

// --- Request / Response types ---

type createDineInOrderRequest struct {
	TableNumber int `json:"table_number"`
}

type addDineInItemRequest struct {
	MenuItemID    string           `json:"menu_item_id"`
	Quantity      *int32           `json:"quantity"`
	Notes         string           `json:"notes"`
	TipPercentage *decimal.Decimal `json:"tip_percentage"`
}

type updateDineInItemRequest struct {
	Quantity      *int32           `json:"quantity"`
	Notes         *string          `json:"notes"`
	TipPercentage *decimal.Decimal `json:"tip_percentage"`
}

type billRequest struct {
	TipPercentage *decimal.Decimal `json:"tip_percentage"`
}

type dineInMenuItemResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type lineItemResponse struct {
	ID       uuid.UUID              `json:"id"`
	MenuItem dineInMenuItemResponse `json:"menu_item"`
	Quantity int32                  `json:"quantity"`
	Notes    string                 `json:"notes"`
}

type dineInOrderResponse struct {
	ID            uuid.UUID          `json:"id"`
	TableNumber   int                `json:"table_number"`
	Items         []lineItemResponse `json:"items"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	ClosedAt      *time.Time         `json:"closed_at"`
	TipPercentage string             `json:"tip_percentage"`
	Subtotal      string             `json:"subtotal"`
	Tax           string             `json:"tax"`
	Tip           string             `json:"tip"`
	Total         string             `json:"total"`
}

func toDineInOrderResponse(o dinein.Order) dineInOrderResponse {
	resp := dineInOrderResponse{
		ID:            o.ID,
		TableNumber:   o.TableNumber,
		Items:         make([]lineItemResponse, len(o.Items)),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		ClosedAt:      o.ClosedAt,
		TipPercentage: o.TipPercentage.String(),
		Subtotal:      o.Subtotal.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Tip:           o.Tip.StringFixed(2),
		Total:         o.Total.StringFixed(2),
	}
	for i, li := range o.Items {
		resp.Items[i] = lineItemResponse{
			ID: li.ID,
			MenuItem: dineInMenuItemResponse{
				ID:    li.MenuItem.ID,
				Name:  li.MenuItem.Name,
				Price: li.MenuItem.Price.StringFixed(2),
			},
			Quantity: li.Quantity,
			Notes:    li.Notes,
		}
	}
	return resp
}

func writeDineInError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, dinein.ErrTableNotFound), errors.Is(err, dinein.ErrLineItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, dinein.ErrTableUnavailable),
		errors.Is(err, dinein.ErrOrderInProgress),
		errors.Is(err, dinein.ErrNoActiveOrder):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, dinein.ErrInvalidQuantity),
		errors.Is(err, billing.ErrNegativeQuantity),
		errors.Is(err, billing.ErrNegativeTip):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeInternalError(w, err, action)
	}
}

// respond writes the order and publishes eventType with it.
func (h *DineInHandler) respond(w http.ResponseWriter, r *http.Request, status int, eventType string, o dinein.Order) {
	resp := toDineInOrderResponse(o)
	publish(r.Context(), h.publisher, eventType, resp)
	writeJSON(w, status, resp)
}

// tipArgs turns an optional tip percentage into the variadic form the session
// takes. Without one, item changes reset the tip to 0.
func tipArgs(tip *decimal.Decimal) []decimal.Decimal {
	if tip == nil {
		return nil
	}
	return []decimal.Decimal{*tip}
}

// --- Handlers ---

// ListTables returns every table with its status.
func (h *DineInHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Tables())
}

// GetOrder returns the active order.
func (h *DineInHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session.ActiveOrder()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": dinein.ErrNoActiveOrder.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toDineInOrderResponse(o))
}

// CreateOrder opens an order on an available table.
func (h *DineInHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createDineInOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.session.CreateOrder(req.TableNumber)
	if err != nil {
		writeDineInError(w, err, "create dine-in order")
		return
	}
	h.respond(w, r, http.StatusCreated, enum.EventDineInOrderCreated, o)
}

// AddItem adds a catalog item to the active order. Quantity defaults to 1.
// The bill is recomputed with tip_percentage when given, otherwise with 0.
func (h *DineInHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addDineInItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := catalog.ParseID(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, ok := h.menu.Find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	quantity := int32(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	o, err := h.session.AddItem(item, quantity, strings.TrimSpace(req.Notes), tipArgs(req.TipPercentage)...)
	if err != nil {
		writeDineInError(w, err, "add dine-in item")
		return
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderUpdated, o)
}

// UpdateItem changes a line's quantity (clamped to 1) and/or notes.
func (h *DineInHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	var req updateDineInItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == nil && req.Notes == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity or notes is required"})
		return
	}

	var o dinein.Order
	if req.Quantity != nil {
		if o, err = h.session.UpdateQuantity(lineID, *req.Quantity, tipArgs(req.TipPercentage)...); err != nil {
			writeDineInError(w, err, "update dine-in quantity")
			return
		}
	}
	if req.Notes != nil {
		if o, err = h.session.UpdateNotes(lineID, strings.TrimSpace(*req.Notes)); err != nil {
			writeDineInError(w, err, "update dine-in notes")
			return
		}
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderUpdated, o)
}

// RemoveItem drops a line. Unknown line ids leave the items as is. An
// optional ?tip_percentage= is applied to the recomputed bill.
func (h *DineInHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	var tip *decimal.Decimal
	if raw := r.URL.Query().Get("tip_percentage"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tip_percentage"})
			return
		}
		tip = &d
	}

	o, err := h.session.RemoveItem(lineID, tipArgs(tip)...)
	if err != nil {
		writeDineInError(w, err, "remove dine-in item")
		return
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderUpdated, o)
}

// CalculateBill applies a tip percentage (15 means 15%) to the active order.
func (h *DineInHandler) CalculateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.TipPercentage == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tip_percentage is required"})
		return
	}

	o, err := h.session.CalculateBill(*req.TipPercentage)
	if err != nil {
		writeDineInError(w, err, "calculate bill")
		return
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderUpdated, o)
}

// Complete closes the active order as completed and frees its table.
func (h *DineInHandler) Complete(w http.ResponseWriter, r *http.Request) {
	o, err := h.session.CompleteOrder()
	if err != nil {
		writeDineInError(w, err, "complete dine-in order")
		return
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderCompleted, o)
}

// Cancel closes the active order as canceled and frees its table.
func (h *DineInHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.session.CancelOrder()
	if err != nil {
		writeDineInError(w, err, "cancel dine-in order")
		return
	}
	h.respond(w, r, http.StatusOK, enum.EventDineInOrderCanceled, o)
}

// Reset frees every table and drops the active order and history.
func (h *DineInHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	w.WriteHeader(http.StatusNoContent)
}
