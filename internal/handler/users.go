package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bistro-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	GetUserEmail(ctx context.Context, id uuid.UUID) (string, error)
}

// UserHandler serves privileged lookups about other users.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user endpoints on the given Chi router.
// Expected to be mounted inside an authenticated group.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users/email", h.GetEmail)
}

type userEmailRequest struct {
	UserID string `json:"user_id"`
}

// GetEmail returns the email of user_id as a bare JSON string. Admins may
// look up anyone, other
// users only themselves. Any lookup failure, including an unknown user, is a
// 500 so the endpoint does not reveal which ids exist.
func (h *UserHandler) GetEmail(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req userEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		return
	}

	if !claims.IsAdmin() && claims.UserID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	email, err := h.store.GetUserEmail(r.Context(), userID)
	if err != nil {
		writeInternalError(w, err, "get user email")
		return
	}

	writeJSON(w, http.StatusOK, email)
}
