package router

import (
	"net/http"

	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/config"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/handler"
	mw "github.com/bistro-app/api/internal/middleware"
	"github.com/bistro-app/api/internal/service"
	"github.com/bistro-app/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(
	cfg *config.Config,
	queries *database.Queries,
	pool *pgxpool.Pool,
	hub *ws.Hub,
	publisher events.Publisher,
	session *dinein.Session,
	menu *catalog.Catalog,
) (chi.Router, error) {
	deliveryFee, err := cfg.DeliveryFeeAmount()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log.StandardLogger()))
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, pool, func(db database.DBTX) handler.AuthStore {
		return database.New(db)
	}, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/staff", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Menu (public reads)
	categoryHandler := handler.NewCategoryHandler(queries, publisher)
	menuHandler := handler.NewMenuHandler(queries, publisher)
	r.Route("/menu/categories", categoryHandler.RegisterRoutes)
	r.Route("/menu/items", menuHandler.RegisterRoutes)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		userHandler := handler.NewUserHandler(queries)
		userHandler.RegisterRoutes(r)

		// Cart and checkout
		cartHandler := handler.NewCartHandler(queries, deliveryFee)
		r.Route("/cart", cartHandler.RegisterRoutes)

		checkoutService := service.NewCheckoutService(pool, func(db database.DBTX) service.CheckoutStore {
			return database.New(db)
		}, deliveryFee)
		checkoutHandler := handler.NewCheckoutHandler(checkoutService, publisher)
		checkoutHandler.RegisterRoutes(r)

		// Customer order history
		orderHandler := handler.NewOrderHandler(queries, publisher)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Dine-in floor (staff and admin)
		r.Route("/dine-in", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleStaff, enum.UserRoleAdmin))

			dineInHandler := handler.NewDineInHandler(session, menu, publisher)
			dineInHandler.RegisterRoutes(r)

			reportsHandler := handler.NewReportsHandler(session)
			reportsHandler.RegisterRoutes(r)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			r.Route("/menu/categories", categoryHandler.RegisterAdminRoutes)
			r.Route("/menu/items", menuHandler.RegisterAdminRoutes)
			r.Route("/orders", orderHandler.RegisterAdminRoutes)
		})
	})

	log.Info("router initialized with all handlers")
	return r, nil
}
