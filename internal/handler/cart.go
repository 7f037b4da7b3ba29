package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bistro-app/api/internal/billing"
	"github.com/bistro-app/api/internal/cart"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartHandler serves the signed-in customer's cart. A fresh cart.Cart is
// loaded per request; the database is the authority.
type CartHandler struct {
	store       cart.Store
	deliveryFee decimal.Decimal
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(store cart.Store, deliveryFee decimal.Decimal) *CartHandler {
	return &CartHandler{store: store, deliveryFee: deliveryFee}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /cart inside an authenticated group.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   *int32 `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int32 `json:"quantity"`
}

type cartItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Image      *string   `json:"image"`
	Quantity   int32     `json:"quantity"`
}

type quoteResponse struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

type cartResponse struct {
	Items       []cartItemResponse `json:"items"`
	TotalItems  int64              `json:"total_items"`
	TotalAmount string             `json:"total_amount"`
	Quote       quoteResponse      `json:"quote"`
}

func toQuoteResponse(q billing.Quote) quoteResponse {
	return quoteResponse{
		Subtotal:    q.Subtotal.StringFixed(2),
		DeliveryFee: q.DeliveryFee.StringFixed(2),
		Tax:         q.Tax.StringFixed(2),
		Total:       q.Total.StringFixed(2),
	}
}

func (h *CartHandler) toCartResponse(c *cart.Cart) (cartResponse, error) {
	quote, err := c.Quote(h.deliveryFee)
	if err != nil {
		return cartResponse{}, err
	}
	items := c.Items()
	resp := cartResponse{
		Items:       make([]cartItemResponse, len(items)),
		TotalItems:  c.TotalItems(),
		TotalAmount: c.TotalAmount().StringFixed(2),
		Quote:       toQuoteResponse(quote),
	}
	for i, it := range items {
		ir := cartItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price.StringFixed(2),
			Quantity:   it.Quantity,
		}
		if it.Image != "" {
			img := it.Image
			ir.Image = &img
		}
		resp.Items[i] = ir
	}
	return resp, nil
}

// --- Helpers ---

// loadCart builds and loads the caller's cart, writing the error response on
// failure.
func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return nil, false
	}
	c := cart.New(h.store, claims.UserID)
	if err := c.Load(r.Context()); err != nil {
		writeCartError(w, err, "load cart")
		return nil, false
	}
	return c, true
}

func (h *CartHandler) respond(w http.ResponseWriter, status int, c *cart.Cart) {
	resp, err := h.toCartResponse(c)
	if err != nil {
		writeInternalError(w, err, "quote cart")
		return
	}
	writeJSON(w, status, resp)
}

func writeCartError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, cart.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidMenuItemID), errors.Is(err, cart.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrMenuItemNotFound), errors.Is(err, cart.ErrCartItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeInternalError(w, err, action)
	}
}

// --- Handlers ---

// Get returns the cart with its totals and delivery quote.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, c)
}

// AddItem adds a menu item, merging with an existing row. Quantity defaults
// to 1.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	quantity := int32(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	if _, err := c.Add(r.Context(), req.MenuItemID, quantity); err != nil {
		writeCartError(w, err, "add cart item")
		return
	}
	h.respond(w, http.StatusCreated, c)
}

// UpdateItem sets a row's quantity; zero or less removes the row.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}
	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	if err := c.UpdateQuantity(r.Context(), itemID, *req.Quantity); err != nil {
		writeCartError(w, err, "update cart item")
		return
	}
	h.respond(w, http.StatusOK, c)
}

// RemoveItem deletes one row.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	if err := c.Remove(r.Context(), itemID); err != nil {
		writeCartError(w, err, "remove cart item")
		return
	}
	h.respond(w, http.StatusOK, c)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if err := cart.New(h.store, claims.UserID).Clear(r.Context()); err != nil {
		writeCartError(w, err, "clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
