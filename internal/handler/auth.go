package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/bistro-app/api/internal/auth"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/bistro-app/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (database.Profile, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	CreateProfile(ctx context.Context, arg database.CreateProfileParams) (database.Profile, error)
}

// NewAuthStore creates an AuthStore from a DBTX (pool or tx).
type NewAuthStore func(db database.DBTX) AuthStore

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	pool      service.TxBeginner
	newStore  NewAuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, pool service.TxBeginner, newStore NewAuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, pool: pool, newStore: newStore, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public auth endpoints on the given Chi router.
// Me needs an authenticated route group and is mounted separately.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/sign-out", h.SignOut)
}

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
	Role     string    `json:"role"`
	IsAdmin  bool      `json:"is_admin"`
}

func toUserResponse(u database.User, p database.Profile) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: textPtr(p.FullName),
		Role:     p.Role,
		IsAdmin:  p.Role == enum.UserRoleAdmin,
	}
}

// --- Handlers ---

// Register creates a customer account and its profile in one transaction.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email"})
		return
	}
	if len(req.Password) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 6 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeInternalError(w, err, "hash password")
		return
	}

	ctx := r.Context()
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		writeInternalError(w, err, "begin tx for register")
		return
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := h.newStore(tx)

	user, err := txStore.CreateUser(ctx, database.CreateUserParams{
		Email:          email,
		HashedPassword: string(hashed),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		writeInternalError(w, err, "create user")
		return
	}

	profile, err := txStore.CreateProfile(ctx, database.CreateProfileParams{
		ID:       user.ID,
		FullName: optionalText(strings.TrimSpace(req.FullName)),
		Role:     enum.UserRoleCustomer,
	})
	if err != nil {
		writeInternalError(w, err, "create profile")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		writeInternalError(w, err, "commit register")
		return
	}

	h.respondWithTokens(w, http.StatusCreated, user, profile)
}

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeInternalError(w, err, "get user by email")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	profile, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err, "get profile")
		return
	}

	h.respondWithTokens(w, http.StatusOK, user, profile)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
			return
		}
		writeInternalError(w, err, "get user by id")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err, "get profile")
		return
	}

	h.respondWithTokens(w, http.StatusOK, user, profile)
}

// Me returns the signed-in user together with the is_admin flag.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
			return
		}
		writeInternalError(w, err, "get user by id")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err, "get profile")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user, profile))
}

// SignOut is stateless: tokens simply expire. Clients drop them.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, user database.User, profile database.Profile) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, profile.Role)
	if err != nil {
		writeInternalError(w, err, "generate access token")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		writeInternalError(w, err, "generate refresh token")
		return
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user, profile),
	})
}
