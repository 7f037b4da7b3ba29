package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MenuHandler handles menu item endpoints.
type MenuHandler struct {
	store     MenuStore
	publisher events.Publisher
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, publisher events.Publisher) *MenuHandler {
	return &MenuHandler{store: store, publisher: publisher}
}

// RegisterRoutes registers the public menu endpoints.
// Expected to be mounted at /menu/items.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers menu item writes.
// Expected to be mounted at /admin/menu/items.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Vegetarian  bool   `json:"vegetarian"`
	Spicy       bool   `json:"spicy"`
	Popular     bool   `json:"popular"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Image       *string   `json:"image"`
	Vegetarian  bool      `json:"vegetarian"`
	Spicy       bool      `json:"spicy"`
	Popular     bool      `json:"popular"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Price:       numericToString(m.Price),
		Image:       textPtr(m.Image),
		Vegetarian:  m.Vegetarian,
		Spicy:       m.Spicy,
		Popular:     m.Popular,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// validMenuItem is a menuItemRequest after validation.
type validMenuItem struct {
	categoryID uuid.UUID
	price      pgtype.Numeric
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	return database.DecimalToNumeric(d)
}

// validate checks the request without touching the store.
func (req *menuItemRequest) validate() (validMenuItem, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return validMenuItem{}, "name is required"
	}
	catID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return validMenuItem{}, "invalid category_id"
	}
	if req.Price == "" {
		return validMenuItem{}, "price is required"
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			return validMenuItem{}, "price must be >= 0"
		}
		return validMenuItem{}, "invalid price"
	}
	return validMenuItem{categoryID: catID, price: price}, ""
}

// --- Handlers ---

// List returns menu items, optionally filtered by a case-insensitive search
// on name and description (?q=) and by category (?category_id=).
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	var params database.ListMenuItemsParams
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		params.Search = pgtype.Text{String: q, Valid: true}
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		catID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		params.CategoryID = pgtype.UUID{Bytes: catID, Valid: true}
	}

	items, err := h.store.ListMenuItems(r.Context(), params)
	if err != nil {
		writeInternalError(w, err, "list menu items")
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item by ID.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		writeInternalError(w, err, "get menu item")
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	v, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		CategoryID:  v.categoryID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Price:       v.price,
		Image:       optionalText(strings.TrimSpace(req.Image)),
		Vegetarian:  req.Vegetarian,
		Spicy:       req.Spicy,
		Popular:     req.Popular,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		writeInternalError(w, err, "create menu item")
		return
	}

	resp := toMenuItemResponse(item)
	publish(r.Context(), h.publisher, enum.EventMenuChanged, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces every field of a menu item.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	v, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          itemID,
		CategoryID:  v.categoryID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Price:       v.price,
		Image:       optionalText(strings.TrimSpace(req.Image)),
		Vegetarian:  req.Vegetarian,
		Spicy:       req.Spicy,
		Popular:     req.Popular,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		writeInternalError(w, err, "update menu item")
		return
	}

	resp := toMenuItemResponse(item)
	publish(r.Context(), h.publisher, enum.EventMenuChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a menu item. Cart rows holding it go with it; items that
// appear on placed orders cannot be deleted.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is referenced by orders"})
			return
		}
		writeInternalError(w, err, "delete menu item")
		return
	}

	publish(r.Context(), h.publisher, enum.EventMenuChanged, map[string]uuid.UUID{"deleted_menu_item_id": itemID})
	w.WriteHeader(http.StatusNoContent)
}
