package handler_test

import (
	"net/http"
	"testing"

	"github.com/bistro-app/api/internal/dinein"
	"github.com/bistro-app/api/internal/enum"
	"github.com/google/uuid"
)

type sale struct {
	id  string
	qty int
}

// closeOrder runs one dine-in order through the router and closes it with
// action (complete or cancel).
func closeOrder(t *testing.T, router http.Handler, table int, items []sale, tip int, action string) {
	t.Helper()
	staff := claimsFor(enum.UserRoleStaff)
	if rr := doAuthRequest(t, router, "POST", "/dine-in/order", map[string]int{"table_number": table}, staff); rr.Code != http.StatusCreated {
		t.Fatalf("create order: got %d; body: %s", rr.Code, rr.Body.String())
	}
	for _, it := range items {
		doAuthRequest(t, router, "POST", "/dine-in/order/items", map[string]interface{}{"menu_item_id": it.id, "quantity": it.qty}, staff)
	}
	if tip > 0 {
		doAuthRequest(t, router, "POST", "/dine-in/order/bill", map[string]interface{}{"tip_percentage": tip}, staff)
	}
	if rr := doAuthRequest(t, router, "POST", "/dine-in/order/"+action, nil, staff); rr.Code != http.StatusOK {
		t.Fatalf("%s order: got %d; body: %s", action, rr.Code, rr.Body.String())
	}
}

func seededReportsRouter(t *testing.T) http.Handler {
	t.Helper()
	router := setupDineInRouter(t, dinein.NewSession(6), nil)
	closeOrder(t, router, 5, []sale{{chefSpecialID, 2}}, 15, "complete")
	closeOrder(t, router, 2, []sale{{sodaID, 4}}, 0, "cancel")
	closeOrder(t, router, 3, []sale{{sodaID, 3}, {chefSpecialID, 1}}, 0, "complete")
	return router
}

func TestReports_History(t *testing.T) {
	router := seededReportsRouter(t)
	staff := claimsFor(enum.UserRoleStaff)

	rr := doAuthRequest(t, router, "GET", "/dine-in/history", nil, staff)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	all := decodeListResponse(t, rr)
	if len(all) != 3 {
		t.Fatalf("got %d orders, want 3", len(all))
	}
	if all[0]["table_number"] != float64(5) || all[2]["table_number"] != float64(3) {
		t.Errorf("history should be oldest first, got tables %v, %v", all[0]["table_number"], all[2]["table_number"])
	}

	rr = doAuthRequest(t, router, "GET", "/dine-in/history?status=canceled", nil, staff)
	canceled := decodeListResponse(t, rr)
	if len(canceled) != 1 || canceled[0]["table_number"] != float64(2) {
		t.Errorf("canceled filter: got %v", canceled)
	}

	rr = doAuthRequest(t, router, "GET", "/dine-in/history?status=active", nil, staff)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid filter: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestReports_HistoryEmpty(t *testing.T) {
	router := setupDineInRouter(t, dinein.NewSession(6), nil)

	rr := doAuthRequest(t, router, "GET", "/dine-in/history", nil, claimsFor(enum.UserRoleAdmin))

	if rr.Body.String() != "[]\n" {
		t.Errorf("body: got %q, want empty array", rr.Body.String())
	}
}

func TestReports_Summary(t *testing.T) {
	router := seededReportsRouter(t)

	rr := doAuthRequest(t, router, "GET", "/dine-in/summary", nil, claimsFor(enum.UserRoleAdmin))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	// Order 1: 25.50 + 2.10 tax + 3.83 tip = 31.43.
	// Order 3: 8.97 + 12.75 = 21.72, tax 1.79, total 23.51.
	want := map[string]interface{}{
		"completed_orders": float64(2),
		"canceled_orders":  float64(1),
		"items_sold":       float64(6),
		"revenue":          "54.94",
		"tax":              "3.89",
		"tips":             "3.83",
	}
	for k, v := range want {
		if resp[k] != v {
			t.Errorf("%s: got %v, want %v", k, resp[k], v)
		}
	}
}

func TestReports_ItemSales(t *testing.T) {
	router := seededReportsRouter(t)

	rr := doAuthRequest(t, router, "GET", "/dine-in/item-sales", nil, claimsFor(enum.UserRoleStaff))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("got %d rows, want 2", len(resp))
	}
	// Canceled soda sales are excluded; chef special and soda tie at 3.
	if resp[0]["name"] != "Chef Special" || resp[0]["quantity_sold"] != float64(3) || resp[0]["total_revenue"] != "38.25" {
		t.Errorf("row 0: got %v", resp[0])
	}
	if resp[1]["name"] != "Soft Drink" || resp[1]["quantity_sold"] != float64(3) || resp[1]["total_revenue"] != "8.97" {
		t.Errorf("row 1: got %v", resp[1])
	}
	if resp[0]["menu_item_id"] != uuid.MustParse(chefSpecialID).String() {
		t.Errorf("menu_item_id: got %v", resp[0]["menu_item_id"])
	}
}
