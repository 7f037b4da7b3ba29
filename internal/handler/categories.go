package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListMenuCategories(ctx context.Context) ([]database.MenuCategory, error)
	CreateMenuCategory(ctx context.Context, arg database.CreateMenuCategoryParams) (database.MenuCategory, error)
	UpdateMenuCategory(ctx context.Context, arg database.UpdateMenuCategoryParams) (database.MenuCategory, error)
	DeleteMenuCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// CategoryHandler handles menu category endpoints.
type CategoryHandler struct {
	store     CategoryStore
	publisher events.Publisher
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore, publisher events.Publisher) *CategoryHandler {
	return &CategoryHandler{store: store, publisher: publisher}
}

// RegisterRoutes registers the public category endpoints.
// Expected to be mounted at /menu/categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterAdminRoutes registers category writes.
// Expected to be mounted at /admin/menu/categories.
func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type categoryRequest struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int32  `json:"sort_order"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c database.MenuCategory) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Slug:      c.Slug,
		Name:      c.Name,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}

// slugify lowercases name and joins its alphanumeric runs with hyphens.
func slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

func (req *categoryRequest) normalize() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name is required")
	}
	req.Slug = slugify(req.Slug)
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}
	if req.Slug == "" {
		return errors.New("invalid slug")
	}
	return nil
}

// --- Handlers ---

// List returns all categories ordered by sort_order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListMenuCategories(r.Context())
	if err != nil {
		writeInternalError(w, err, "list categories")
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.normalize(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	category, err := h.store.CreateMenuCategory(r.Context(), database.CreateMenuCategoryParams{
		Slug:      req.Slug,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "slug already exists"})
			return
		}
		writeInternalError(w, err, "create category")
		return
	}

	resp := toCategoryResponse(category)
	publish(r.Context(), h.publisher, enum.EventMenuChanged, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Update modifies an existing category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	catID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.normalize(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	category, err := h.store.UpdateMenuCategory(r.Context(), database.UpdateMenuCategoryParams{
		ID:        catID,
		Slug:      req.Slug,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "slug already exists"})
			return
		}
		writeInternalError(w, err, "update category")
		return
	}

	resp := toCategoryResponse(category)
	publish(r.Context(), h.publisher, enum.EventMenuChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a category. Categories that still hold menu items cannot be
// deleted.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	catID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	if _, err := h.store.DeleteMenuCategory(r.Context(), catID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category still has menu items"})
			return
		}
		writeInternalError(w, err, "delete category")
		return
	}

	publish(r.Context(), h.publisher, enum.EventMenuChanged, map[string]uuid.UUID{"deleted_category_id": catID})
	w.WriteHeader(http.StatusNoContent)
}
