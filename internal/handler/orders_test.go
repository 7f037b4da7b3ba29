package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/bistro-app/api/internal/auth"
	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/enum"
	"github.com/bistro-app/api/internal/events"
	"github.com/bistro-app/api/internal/handler"
	"github.com/bistro-app/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockOrderStore struct {
	orders map[uuid.UUID]database.Order
	items  map[uuid.UUID][]database.ListOrderItemsRow
	emails map[uuid.UUID]string // user id -> email
	names  map[uuid.UUID]string // user id -> profile full name

	// raceStatus, when set, replaces the stored status between the read and
	// the compare-and-set write.
	raceStatus string
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders: make(map[uuid.UUID]database.Order),
		items:  make(map[uuid.UUID][]database.ListOrderItemsRow),
		emails: make(map[uuid.UUID]string),
		names:  make(map[uuid.UUID]string),
	}
}

func (m *mockOrderStore) addOrder(userID uuid.UUID, status, total string, createdAt time.Time) database.Order {
	var n pgtype.Numeric
	_ = n.Scan(total)
	o := database.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      status,
		TotalAmount: n,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	m.orders[o.ID] = o
	return o
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) GetOrderForUser(_ context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.UserID != arg.UserID {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrdersByUser(_ context.Context, userID uuid.UUID) ([]database.Order, error) {
	var result []database.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, search pgtype.Text) ([]database.ListOrdersRow, error) {
	var result []database.ListOrdersRow
	for _, o := range m.orders {
		email := m.emails[o.UserID]
		name, hasName := m.names[o.UserID]
		if search.Valid {
			q := strings.ToLower(search.String)
			if !strings.Contains(o.ID.String(), q) &&
				!strings.Contains(strings.ToLower(email), q) &&
				!(hasName && strings.Contains(strings.ToLower(name), q)) &&
				!(o.ContactNumber.Valid && strings.Contains(strings.ToLower(o.ContactNumber.String), q)) &&
				!strings.Contains(o.Status, q) {
				continue
			}
		}
		result = append(result, database.ListOrdersRow{
			ID:            o.ID,
			UserID:        o.UserID,
			Status:        o.Status,
			TotalAmount:   o.TotalAmount,
			ContactNumber: o.ContactNumber,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
			Email:         email,
			FullName:      pgtype.Text{String: name, Valid: hasName},
		})
	}
	return result, nil
}

func (m *mockOrderStore) ListOrderItems(_ context.Context, orderID uuid.UUID) ([]database.ListOrderItemsRow, error) {
	return m.items[orderID], nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	if m.raceStatus != "" {
		o.Status = m.raceStatus
		m.orders[o.ID] = o
	}
	if o.Status != arg.Status_2 {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = time.Now()
	m.orders[o.ID] = o
	return o, nil
}

// --- Test helpers ---

const testJWTSecret = "test-secret-for-orders"

func setupOrderRouter(store *mockOrderStore, pub events.Publisher) *chi.Mux {
	h := handler.NewOrderHandler(store, pub)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/orders", h.RegisterRoutes)
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleAdmin))
		h.RegisterAdminRoutes(r)
	})
	return r
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	// Generate a real JWT token from claims
	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Customer tests ---

func TestListMyOrders_NewestFirstAndOwnOnly(t *testing.T) {
	store := newMockOrderStore()
	me := claimsFor(enum.UserRoleCustomer)
	now := time.Now()
	older := store.addOrder(me.UserID, enum.OrderStatusDelivered, "50.00", now.Add(-time.Hour))
	newer := store.addOrder(me.UserID, enum.OrderStatusPending, "70.94", now)
	store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", now)
	router := setupOrderRouter(store, nil)

	rr := doAuthRequest(t, router, "GET", "/orders", nil, me)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("got %d orders, want 2", len(resp))
	}
	if resp[0]["id"] != newer.ID.String() || resp[1]["id"] != older.ID.String() {
		t.Errorf("order: got %v, %v", resp[0]["id"], resp[1]["id"])
	}
	if resp[0]["total_amount"] != "70.94" {
		t.Errorf("total_amount: got %v, want 70.94", resp[0]["total_amount"])
	}
}

func TestGetMyOrder_WithItems(t *testing.T) {
	store := newMockOrderStore()
	me := claimsFor(enum.UserRoleCustomer)
	o := store.addOrder(me.UserID, enum.OrderStatusPending, "29.47", time.Now())
	var price pgtype.Numeric
	_ = price.Scan("12.99")
	store.items[o.ID] = []database.ListOrderItemsRow{
		{ID: uuid.New(), OrderID: o.ID, MenuItemID: uuid.New(), Quantity: 2, Price: price, Name: "Margherita Pizza"},
	}
	router := setupOrderRouter(store, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/"+o.ID.String(), nil, me)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Margherita Pizza" || item["price"] != "12.99" || item["quantity"] != float64(2) {
		t.Errorf("unexpected item: %v", item)
	}
}

func TestGetMyOrder_OtherUsersOrderIsNotFound(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", time.Now())
	router := setupOrderRouter(store, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/"+o.ID.String(), nil, claimsFor(enum.UserRoleCustomer))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrders_RequireToken(t *testing.T) {
	router := setupOrderRouter(newMockOrderStore(), nil)

	rr := doRequest(t, router, "GET", "/orders", nil)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Admin tests ---

func TestAdminListOrders_Search(t *testing.T) {
	store := newMockOrderStore()
	alice, bob := uuid.New(), uuid.New()
	store.emails[alice] = "alice@example.com"
	store.emails[bob] = "bob@example.com"
	store.addOrder(alice, enum.OrderStatusPending, "10.00", time.Now())
	store.addOrder(bob, enum.OrderStatusReady, "20.00", time.Now())
	router := setupOrderRouter(store, nil)
	admin := claimsFor(enum.UserRoleAdmin)

	rr := doAuthRequest(t, router, "GET", "/admin/orders?q=ALICE", nil, admin)
	resp := decodeListResponse(t, rr)
	if len(resp) != 1 || resp[0]["email"] != "alice@example.com" {
		t.Errorf("email search: got %v", resp)
	}

	rr = doAuthRequest(t, router, "GET", "/admin/orders?q=ready", nil, admin)
	resp = decodeListResponse(t, rr)
	if len(resp) != 1 || resp[0]["status"] != enum.OrderStatusReady {
		t.Errorf("status search: got %v", resp)
	}

	rr = doAuthRequest(t, router, "GET", "/admin/orders", nil, admin)
	if resp = decodeListResponse(t, rr); len(resp) != 2 {
		t.Errorf("no search: got %d, want 2", len(resp))
	}
}

func TestAdminListOrders_SearchNameAndContact(t *testing.T) {
	store := newMockOrderStore()
	alice, bob := uuid.New(), uuid.New()
	store.emails[alice] = "alice@example.com"
	store.emails[bob] = "bob@example.com"
	store.names[alice] = "Alice Moreau"
	withPhone := store.addOrder(bob, enum.OrderStatusPending, "20.00", time.Now())
	withPhone.ContactNumber = pgtype.Text{String: "555-0199", Valid: true}
	store.orders[withPhone.ID] = withPhone
	store.addOrder(alice, enum.OrderStatusPending, "10.00", time.Now())
	router := setupOrderRouter(store, nil)
	admin := claimsFor(enum.UserRoleAdmin)

	resp := decodeListResponse(t, doAuthRequest(t, router, "GET", "/admin/orders?q=moreau", nil, admin))
	if len(resp) != 1 || resp[0]["full_name"] != "Alice Moreau" {
		t.Errorf("name search: got %v", resp)
	}

	resp = decodeListResponse(t, doAuthRequest(t, router, "GET", "/admin/orders?q=555-0199", nil, admin))
	if len(resp) != 1 || resp[0]["contact_number"] != "555-0199" {
		t.Errorf("contact search: got %v", resp)
	}
	if _, ok := resp[0]["full_name"]; ok {
		t.Errorf("full_name should be omitted without a profile name, got %v", resp[0]["full_name"])
	}
}

func TestAdminOrders_ForbiddenForCustomers(t *testing.T) {
	router := setupOrderRouter(newMockOrderStore(), nil)

	rr := doAuthRequest(t, router, "GET", "/admin/orders", nil, claimsFor(enum.UserRoleCustomer))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestAdminGetOrder(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", time.Now())
	router := setupOrderRouter(store, nil)
	admin := claimsFor(enum.UserRoleAdmin)

	rr := doAuthRequest(t, router, "GET", "/admin/orders/"+o.ID.String(), nil, admin)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	rr = doAuthRequest(t, router, "GET", "/admin/orders/"+uuid.NewString(), nil, admin)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{enum.OrderStatusPending, enum.OrderStatusPreparing, http.StatusOK},
		{enum.OrderStatusPending, enum.OrderStatusCancelled, http.StatusOK},
		{enum.OrderStatusPreparing, enum.OrderStatusReady, http.StatusOK},
		{enum.OrderStatusPreparing, enum.OrderStatusCancelled, http.StatusOK},
		{enum.OrderStatusReady, enum.OrderStatusDelivered, http.StatusOK},
		{enum.OrderStatusReady, enum.OrderStatusCancelled, http.StatusOK},
		{enum.OrderStatusPending, enum.OrderStatusReady, http.StatusConflict},
		{enum.OrderStatusPending, enum.OrderStatusDelivered, http.StatusConflict},
		{enum.OrderStatusPreparing, enum.OrderStatusPending, http.StatusConflict},
		{enum.OrderStatusDelivered, enum.OrderStatusCancelled, http.StatusConflict},
		{enum.OrderStatusCancelled, enum.OrderStatusPending, http.StatusConflict},
		{enum.OrderStatusPending, enum.OrderStatusPending, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			store := newMockOrderStore()
			o := store.addOrder(uuid.New(), tt.from, "10.00", time.Now())
			router := setupOrderRouter(store, nil)

			rr := doAuthRequest(t, router, "PATCH", "/admin/orders/"+o.ID.String()+"/status",
				map[string]string{"status": tt.to}, claimsFor(enum.UserRoleAdmin))

			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
			wantStored := tt.from
			if tt.want == http.StatusOK {
				wantStored = tt.to
			}
			if got := store.orders[o.ID].Status; got != wantStored {
				t.Errorf("stored status: got %s, want %s", got, wantStored)
			}
		})
	}
}

func TestUpdateStatus_PublishesEvent(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", time.Now())
	pub := &recordingPublisher{}
	router := setupOrderRouter(store, pub)

	doAuthRequest(t, router, "PATCH", "/admin/orders/"+o.ID.String()+"/status",
		map[string]string{"status": "Preparing"}, claimsFor(enum.UserRoleAdmin))

	if got := pub.types(); len(got) != 1 || got[0] != enum.EventOrderStatusChanged {
		t.Errorf("events: got %v", got)
	}
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", time.Now())
	router := setupOrderRouter(store, nil)

	rr := doAuthRequest(t, router, "PATCH", "/admin/orders/"+o.ID.String()+"/status",
		map[string]string{"status": "shipped"}, claimsFor(enum.UserRoleAdmin))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateStatus_ConcurrentChange(t *testing.T) {
	store := newMockOrderStore()
	o := store.addOrder(uuid.New(), enum.OrderStatusPending, "10.00", time.Now())
	store.raceStatus = enum.OrderStatusCancelled
	router := setupOrderRouter(store, nil)

	rr := doAuthRequest(t, router, "PATCH", "/admin/orders/"+o.ID.String()+"/status",
		map[string]string{"status": enum.OrderStatusPreparing}, claimsFor(enum.UserRoleAdmin))

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if got := store.orders[o.ID].Status; got != enum.OrderStatusCancelled {
		t.Errorf("stored status: got %s, want cancelled", got)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	router := setupOrderRouter(newMockOrderStore(), nil)

	rr := doAuthRequest(t, router, "PATCH", "/admin/orders/"+uuid.NewString()+"/status",
		map[string]string{"status": enum.OrderStatusPreparing}, claimsFor(enum.UserRoleAdmin))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
