package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"shopreel/internal/config"
	"shopreel/internal/http/handlers"
	"shopreel/internal/repos"
	"shopreel/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	fixtures := `
	INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u-buyer','buyer@test','Bina','x','BUYER'),
	  ('u-seller','seller@test','Sam','x','SELLER');
	INSERT INTO sessions(id,user_id) VALUES
	  ('sid-buyer','u-buyer'),
	  ('sid-seller','u-seller');
	INSERT INTO products(id,seller_id,name,description,price,stock) VALUES
	  ('tee-classic','u-seller','Classic Tee','Plain tee',200,25);
	INSERT INTO promo_codes(code,discount,discount_type,is_active) VALUES
	  ('SAVE10',10,'percentage',1);
	`
	if _, err := db.Exec(fixtures); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{PaymentSecret: "test-secret", GatewayURL: "http://gateway.invalid"}
	deps := handlers.NewDeps(db, cfg)
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}

	app := fiber.New()
	app.Use(requestid.New())
	api := app.Group("/api/v1")
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Post("/promo/validate", deps.PromoHandler.Validate)

	user := api.Group("", handlers.RequireUser(authSvc))
	user.Post("/orders", deps.OrderHandler.Place)
	user.Get("/orders/:id", deps.OrderHandler.View)
	user.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	user.Get("/notifications", deps.NotificationHandler.List)

	seller := api.Group("/seller", handlers.RequireSeller(authSvc))
	seller.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, sid string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func placeBody(total float64) map[string]any {
	return map[string]any{
		"productId": "tee-classic",
		"quantity":  3,
		"address": map[string]any{
			"address": "12 MG Road", "city": "Pune", "state": "MH", "zipCode": "411001",
		},
		"paymentMethod": "cod",
		"total":         total,
	}
}

func TestPlaceOrderAPI_COD(t *testing.T) {
	app, db := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/v1/orders", "sid-buyer", placeBody(630))
	if status != fiber.StatusCreated {
		t.Fatalf("want 201, got %d: %v", status, body)
	}
	order, _ := body["order"].(map[string]any)
	if order["status"] != "pending" {
		t.Fatalf("want pending order, got %v", body)
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='tee-classic'`); err != nil {
		t.Fatal(err)
	}
	if stock != 22 {
		t.Fatalf("want stock 22, got %d", stock)
	}
}

func TestPlaceOrderAPI_RequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, "POST", "/api/v1/orders", "", placeBody(630))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("want 401 without session, got %d", status)
	}
}

func TestPlaceOrderAPI_ValidationErrors(t *testing.T) {
	app, _ := newTestApp(t)

	body := placeBody(630)
	body["quantity"] = 0
	delete(body, "address")
	status, resp := doJSON(t, app, "POST", "/api/v1/orders", "sid-buyer", body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d: %v", status, resp)
	}
	errs, _ := resp["errors"].(map[string]any)
	if errs["quantity"] == nil || errs["city"] == nil {
		t.Fatalf("want per-field messages, got %v", resp)
	}
}

func TestPlaceOrderAPI_TotalMismatch(t *testing.T) {
	app, db := newTestApp(t)

	status, resp := doJSON(t, app, "POST", "/api/v1/orders", "sid-buyer", placeBody(600))
	if status != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d: %v", status, resp)
	}
	if resp["kind"] != "total_mismatch" {
		t.Fatalf("want total_mismatch kind, got %v", resp)
	}

	var stock int
	_ = db.Get(&stock, `SELECT stock FROM products WHERE id='tee-classic'`)
	if stock != 25 {
		t.Fatalf("stock mutated on rejected order: %d", stock)
	}
}

func TestPromoValidateAPI(t *testing.T) {
	app, _ := newTestApp(t)

	status, resp := doJSON(t, app, "POST", "/api/v1/promo/validate", "", map[string]any{
		"code": "save10", "productId": "tee-classic", "subtotal": 600,
	})
	if status != fiber.StatusOK {
		t.Fatalf("want 200, got %d: %v", status, resp)
	}
	if resp["code"] != "SAVE10" {
		t.Fatalf("want normalized code, got %v", resp)
	}

	status, resp = doJSON(t, app, "POST", "/api/v1/promo/validate", "", map[string]any{"code": "NOPE99"})
	if status != fiber.StatusBadRequest || resp["kind"] != "invalid_promo_code" {
		t.Fatalf("want 400 invalid_promo_code, got %d: %v", status, resp)
	}
}

func TestSellerStatusAPI(t *testing.T) {
	app, _ := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/api/v1/orders", "sid-buyer", placeBody(630))
	order, _ := created["order"].(map[string]any)
	oid, _ := order["id"].(string)
	if oid == "" {
		t.Fatalf("no order id in %v", created)
	}

	// buyers cannot reach the seller surface
	status, _ := doJSON(t, app, "PATCH", "/api/v1/seller/orders/"+oid+"/status", "sid-buyer", map[string]any{"status": "processing"})
	if status != fiber.StatusForbidden {
		t.Fatalf("want 403 for buyer, got %d", status)
	}

	status, resp := doJSON(t, app, "PATCH", "/api/v1/seller/orders/"+oid+"/status", "sid-seller", map[string]any{"status": "processing"})
	if status != fiber.StatusOK {
		t.Fatalf("want 200, got %d: %v", status, resp)
	}

	// skipping straight to delivered is rejected
	status, resp = doJSON(t, app, "PATCH", "/api/v1/seller/orders/"+oid+"/status", "sid-seller", map[string]any{"status": "delivered"})
	if status != fiber.StatusBadRequest || resp["kind"] != "invalid_transition" {
		t.Fatalf("want 400 invalid_transition, got %d: %v", status, resp)
	}
}
