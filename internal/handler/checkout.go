package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/bistro-app/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// Checkouter places an order from the caller's cart.
// Satisfied by *service.CheckoutService.
type Checkouter interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

// CheckoutHandler handles POST /checkout.
type CheckoutHandler struct {
	svc       Checkouter
	publisher events.Publisher
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(svc Checkouter, publisher events.Publisher) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, publisher: publisher}
}

// RegisterRoutes registers the checkout endpoint inside an authenticated group.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.Checkout)
}

type checkoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	ContactNumber   string `json:"contact_number"`
}

type checkoutResponse struct {
	Order orderResponse `json:"order"`
	Quote quoteResponse `json:"quote"`
}

// Checkout turns the cart into a pending order. The body is optional.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		UserID:          claims.UserID,
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrCartChanged):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeInternalError(w, err, "checkout")
		}
		return
	}

	order := toOrderResponse(result.Order)
	order.Items = make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		order.Items[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      numericToString(it.Price),
		}
	}

	publish(r.Context(), h.publisher, enum.EventOrderPlaced, order)
	writeJSON(w, http.StatusCreated, checkoutResponse{Order: order, Quote: toQuoteResponse(result.Quote)})
}
