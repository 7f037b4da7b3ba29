package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderStore defines the database methods needed by order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUser(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListOrders(ctx context.Context, search pgtype.Text) ([]database.ListOrdersRow, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsRow, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderHandler serves customer order history and the admin order board.
type OrderHandler struct {
	store     OrderStore
	publisher events.Publisher
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, publisher events.Publisher) *OrderHandler {
	return &OrderHandler{store: store, publisher: publisher}
}

// RegisterRoutes registers the customer's own order endpoints.
// Expected to be mounted at /orders inside an authenticated group.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetMine)
}

// RegisterAdminRoutes registers the admin order endpoints.
// Expected to be mounted at /admin/orders.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name,omitempty"`
	Quantity   int32     `json:"quantity"`
	Price      string    `json:"price"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Email           *string             `json:"email,omitempty"`
	FullName        *string             `json:"full_name,omitempty"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	DeliveryAddress *string             `json:"delivery_address"`
	ContactNumber   *string             `json:"contact_number"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     numericToString(o.TotalAmount),
		DeliveryAddress: textPtr(o.DeliveryAddress),
		ContactNumber:   textPtr(o.ContactNumber),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderListResponse(o database.ListOrdersRow) orderResponse {
	resp := toOrderResponse(database.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		ContactNumber:   o.ContactNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	})
	email := o.Email
	resp.Email = &email
	resp.FullName = textPtr(o.FullName)
	return resp
}

func toOrderItemResponses(items []database.ListOrderItemsRow) []orderItemResponse {
	resp := make([]orderItemResponse, len(items))
	for i, it := range items {
		resp[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      numericToString(it.Price),
		}
	}
	return resp
}

// --- Status machine ---

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
		enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

func validateStatusTransition(current, next string) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}

// --- Customer handlers ---

// ListMine returns the caller's orders, newest first.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		writeInternalError(w, err, "list orders by user")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMine returns one of the caller's orders with its items. Orders of other
// users are reported as not found.
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{
		ID:     orderID,
		UserID: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeInternalError(w, err, "get order for user")
		return
	}

	h.respondWithItems(w, r, order)
}

// --- Admin handlers ---

// List returns every order. ?q= matches the order id, the customer email or
// the status, case-insensitively.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var search pgtype.Text
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		search = pgtype.Text{String: q, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), search)
	if err != nil {
		writeInternalError(w, err, "list orders")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderListResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns any order with its items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeInternalError(w, err, "get order")
		return
	}

	h.respondWithItems(w, r, order)
}

// UpdateStatus moves an order along the status machine. The write only
// succeeds if the status is still the one the transition was validated
// against.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	newStatus := strings.ToLower(strings.TrimSpace(req.Status))
	if !isValidOrderStatus(newStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		writeInternalError(w, err, "get order for status update")
		return
	}

	if err := validateStatusTransition(current.Status, newStatus); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:       orderID,
		Status:   newStatus,
		Status_2: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		writeInternalError(w, err, "update order status")
		return
	}

	resp := toOrderResponse(updated)
	publish(r.Context(), h.publisher, enum.EventOrderStatusChanged, map[string]any{
		"order":           resp,
		"previous_status": current.Status,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) respondWithItems(w http.ResponseWriter, r *http.Request, order database.Order) {
	items, err := h.store.ListOrderItems(r.Context(), order.ID)
	if err != nil {
		writeInternalError(w, err, "list order items")
		return
	}

	resp := toOrderResponse(order)
	resp.Items = toOrderItemResponses(items)
	writeJSON(w, http.StatusOK, resp)
}
