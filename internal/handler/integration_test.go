//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bistro-app/api/internal/catalog"
	"github.com/bistro-app/api/internal/config"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/router"
	"github.com/bistro-app/api/internal/service"
	"github.com/bistro-app/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const pizzaMenuID = "9d3c1e52-7a41-4b8e-8f21-a00000000204"

// TestIntegrationFlow exercises the full API lifecycle against a real PostgreSQL database.
// It runs the whole stack with all handlers wired through the router.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start PostgreSQL container
	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations
	if _, err := database.Migrate(connStr); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	// Create pgxpool connection
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	// Initialize dependencies
	cfg := &config.Config{
		Port:           "8081",
		DatabaseURL:    connStr,
		JWTSecret:      "integration-test-secret",
		TableCount:     6,
		DeliveryFee:    "40.00",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	go hub.Run(ctx)

	menu := catalog.Default()
	seedMenu(t, ctx, queries, menu)

	// Build router
	r, err := router.New(cfg, queries, pool, hub, events.Multi{hub}, dinein.NewSession(cfg.TableCount), menu)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	// Create HTTP test server
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Public menu ---
	var items []map[string]interface{}
	httpJSON(t, server, "GET", "/menu/items", nil, "", http.StatusOK, &items)
	if len(items) != len(menu.Items()) {
		t.Fatalf("menu items: got %d, want %d", len(items), len(menu.Items()))
	}

	// --- 2. Register a customer and an admin ---
	var customer map[string]interface{}
	httpJSON(t, server, "POST", "/auth/register", map[string]interface{}{
		"email": "Diner@Test.com", "password": "password123", "full_name": "Test Diner",
	}, "", http.StatusCreated, &customer)
	customerToken := customer["access_token"].(string)
	customerUser := customer["user"].(map[string]interface{})
	if customerUser["email"] != "diner@test.com" || customerUser["role"] != enum.UserRoleCustomer {
		t.Fatalf("registered user: got %v", customerUser)
	}

	httpJSON(t, server, "POST", "/auth/register", map[string]interface{}{
		"email": "admin@test.com", "password": "password123",
	}, "", http.StatusCreated, nil)
	promoteToAdmin(t, ctx, queries, "admin@test.com")
	adminToken := login(t, server, "admin@test.com", "password123")

	// --- 3. Fill the cart ---
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{"menu_item_id": pizzaMenuID, "quantity": 2}, customerToken, http.StatusCreated, nil)
	var cartResp map[string]interface{}
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{
		"menu_item_id": "9d3c1e52-7a41-4b8e-8f21-a00000000403",
	}, customerToken, http.StatusCreated, &cartResp)

	// 2 × 12.99 + 3.49 = 29.47; fee 40.00; tax 5% of subtotal = 1.47
	quote := cartResp["quote"].(map[string]interface{})
	if quote["subtotal"] != "29.47" || quote["total"] != "70.94" {
		t.Fatalf("cart quote: got %v", quote)
	}

	// Legacy string ids are rejected, not substituted
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{"menu_item_id": "pizza-1"}, customerToken, http.StatusBadRequest, nil)

	// --- 4. Checkout ---
	var checkout map[string]interface{}
	httpJSON(t, server, "POST", "/checkout", map[string]interface{}{
		"delivery_address": "12 Harbour Road", "contact_number": "555-0100",
	}, customerToken, http.StatusCreated, &checkout)
	order := checkout["order"].(map[string]interface{})
	orderID := order["id"].(string)
	if order["total_amount"] != "70.94" || order["status"] != enum.OrderStatusPending {
		t.Fatalf("placed order: got %v", order)
	}

	httpJSON(t, server, "GET", "/cart", nil, customerToken, http.StatusOK, &cartResp)
	if cartResp["total_items"] != float64(0) {
		t.Fatalf("cart should be empty after checkout, got %v", cartResp["total_items"])
	}
	httpJSON(t, server, "POST", "/checkout", nil, customerToken, http.StatusBadRequest, nil)

	// A merge past the INTEGER range is rejected and the row keeps its quantity
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{"menu_item_id": pizzaMenuID, "quantity": math.MaxInt32}, customerToken, http.StatusCreated, nil)
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{"menu_item_id": pizzaMenuID, "quantity": 1}, customerToken, http.StatusBadRequest, nil)
	httpJSON(t, server, "GET", "/cart", nil, customerToken, http.StatusOK, &cartResp)
	if cartResp["total_items"] != float64(math.MaxInt32) {
		t.Fatalf("cart after rejected merge: got %v", cartResp["total_items"])
	}
	httpJSON(t, server, "DELETE", "/cart", nil, customerToken, http.StatusNoContent, nil)

	// --- 5. Order history ---
	var mine []map[string]interface{}
	httpJSON(t, server, "GET", "/orders", nil, customerToken, http.StatusOK, &mine)
	if len(mine) != 1 || mine[0]["id"] != orderID {
		t.Fatalf("customer orders: got %v", mine)
	}
	var detail map[string]interface{}
	httpJSON(t, server, "GET", "/orders/"+orderID, nil, customerToken, http.StatusOK, &detail)
	if lines := detail["items"].([]interface{}); len(lines) != 2 {
		t.Fatalf("order items: got %d, want 2", len(lines))
	}

	// --- 6. Admin moves the order along ---
	httpJSON(t, server, "GET", "/admin/orders", nil, customerToken, http.StatusForbidden, nil)
	var board []map[string]interface{}
	httpJSON(t, server, "GET", "/admin/orders?q=diner", nil, adminToken, http.StatusOK, &board)
	if len(board) != 1 || board[0]["email"] != "diner@test.com" || board[0]["full_name"] != "Test Diner" {
		t.Fatalf("admin search: got %v", board)
	}
	httpJSON(t, server, "GET", "/admin/orders?q=555-0100", nil, adminToken, http.StatusOK, &board)
	if len(board) != 1 || board[0]["id"] != orderID {
		t.Fatalf("admin contact search: got %v", board)
	}
	httpJSON(t, server, "GET", "/admin/orders?q=test%20diner", nil, adminToken, http.StatusOK, &board)
	if len(board) != 1 {
		t.Fatalf("admin name search: got %v", board)
	}
	httpJSON(t, server, "PATCH", "/admin/orders/"+orderID+"/status", map[string]interface{}{"status": "preparing"}, adminToken, http.StatusOK, nil)
	httpJSON(t, server, "PATCH", "/admin/orders/"+orderID+"/status", map[string]interface{}{"status": "delivered"}, adminToken, http.StatusConflict, nil)

	// A menu item on a placed order cannot be deleted
	httpJSON(t, server, "DELETE", "/admin/menu/items/"+pizzaMenuID, nil, adminToken, http.StatusConflict, nil)

	// --- 7. Email lookup ---
	var email string
	httpJSON(t, server, "POST", "/users/email", map[string]interface{}{"user_id": customerUser["id"]}, adminToken, http.StatusOK, &email)
	if email != "diner@test.com" {
		t.Fatalf("email lookup: got %q", email)
	}

	// --- 7b. Checkout keeps cart rows added while it runs ---
	customerID := uuid.MustParse(customerUser["id"].(string))
	coffeeID := uuid.MustParse("9d3c1e52-7a41-4b8e-8f21-a00000000403")
	httpJSON(t, server, "POST", "/cart/items", map[string]interface{}{"menu_item_id": pizzaMenuID}, customerToken, http.StatusCreated, nil)
	svc := service.NewCheckoutService(pool, func(db database.DBTX) service.CheckoutStore {
		return interleavingStore{CheckoutStore: database.New(db), afterLock: func() {
			// Runs on another connection while the checkout tx holds its row locks.
			if _, err := queries.AddCartItem(ctx, database.AddCartItemParams{UserID: customerID, MenuItemID: coffeeID, Quantity: 1}); err != nil {
				t.Errorf("concurrent cart add: %v", err)
			}
		}}
	}, decimal.RequireFromString(cfg.DeliveryFee))
	placed, err := svc.Checkout(ctx, service.CheckoutRequest{UserID: customerID})
	if err != nil {
		t.Fatalf("checkout with concurrent add: %v", err)
	}
	if len(placed.Items) != 1 || placed.Items[0].MenuItemID != uuid.MustParse(pizzaMenuID) {
		t.Fatalf("order should hold only the locked pizza row, got %v", placed.Items)
	}
	left, err := queries.ListCartItems(ctx, customerID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(left) != 1 || left[0].MenuItemID != coffeeID {
		t.Fatalf("concurrently added row should stay in the cart, got %v", left)
	}

	// --- 8. Dine-in floor ---
	httpJSON(t, server, "POST", "/dine-in/order", map[string]interface{}{"table_number": 5}, customerToken, http.StatusForbidden, nil)
	httpJSON(t, server, "POST", "/dine-in/order", map[string]interface{}{"table_number": 5}, adminToken, http.StatusCreated, nil)
	httpJSON(t, server, "POST", "/dine-in/order/items", map[string]interface{}{"menu_item_id": pizzaMenuID, "quantity": 2}, adminToken, http.StatusOK, nil)
	var bill map[string]interface{}
	httpJSON(t, server, "POST", "/dine-in/order/bill", map[string]interface{}{"tip_percentage": 15}, adminToken, http.StatusOK, &bill)
	// 25.98 + 8.25% tax (2.14) + 15% tip (3.90) = 32.02
	if bill["total"] != "32.02" {
		t.Fatalf("dine-in total: got %v, want 32.02", bill["total"])
	}
	httpJSON(t, server, "POST", "/dine-in/order/complete", nil, adminToken, http.StatusOK, nil)

	var summary map[string]interface{}
	httpJSON(t, server, "GET", "/dine-in/summary", nil, adminToken, http.StatusOK, &summary)
	if summary["completed_orders"] != float64(1) || summary["revenue"] != "32.02" {
		t.Fatalf("dine-in summary: got %v", summary)
	}

	t.Logf("Integration test passed: container=%s, order=%s", pgContainer.GetContainerID(), orderID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bistro_test"),
		tcpostgres.WithUsername("bistro"),
		tcpostgres.WithPassword("bistro"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func seedMenu(t *testing.T, ctx context.Context, q *database.Queries, menu *catalog.Catalog) {
	t.Helper()
	for _, c := range menu.Categories() {
		if err := q.UpsertMenuCategory(ctx, database.UpsertMenuCategoryParams{
			ID: c.ID, Slug: c.Slug, Name: c.Name, SortOrder: c.SortOrder,
		}); err != nil {
			t.Fatalf("seed category %s: %v", c.Slug, err)
		}
	}
	for _, it := range menu.Items() {
		price, err := database.DecimalToNumeric(it.Price)
		if err != nil {
			t.Fatalf("price of %s: %v", it.Name, err)
		}
		if err := q.UpsertMenuItem(ctx, database.UpsertMenuItemParams{
			ID: it.ID, CategoryID: it.CategoryID, Name: it.Name, Description: it.Description, Price: price,
		}); err != nil {
			t.Fatalf("seed item %s: %v", it.Name, err)
		}
	}
}

// interleavingStore runs afterLock once the cart rows are locked.
type interleavingStore struct {
	service.CheckoutStore
	afterLock func()
}

func (s interleavingStore) LockCartItems(ctx context.Context, userID uuid.UUID) ([]database.LockCartItemsRow, error) {
	rows, err := s.CheckoutStore.LockCartItems(ctx, userID)
	if err == nil {
		s.afterLock()
	}
	return rows, err
}

// Roles are only granted out of band; there is no endpoint for it.
func promoteToAdmin(t *testing.T, ctx context.Context, q *database.Queries, email string) {
	t.Helper()
	u, err := q.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	if _, err := q.SetProfileRole(ctx, database.SetProfileRoleParams{ID: u.ID, Role: enum.UserRoleAdmin}); err != nil {
		t.Fatalf("promote %s: %v", email, err)
	}
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	var resp map[string]interface{}
	httpJSON(t, server, "POST", "/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	}, "", http.StatusOK, &resp)
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	if _, err := uuid.Parse(resp["user"].(map[string]interface{})["id"].(string)); err != nil {
		t.Fatalf("login user id: %v", err)
	}
	return token
}

// --- HTTP helpers ---

// httpJSON sends body as JSON, fails unless the status is want, and decodes
// the response into out when out is non-nil.
func httpJSON(t *testing.T, server *httptest.Server, method, path string, body interface{}, token string, want int, out interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d, body: %s", method, path, resp.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}
