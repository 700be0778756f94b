package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/corptools"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository/memory"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/account"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/billing"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/cart"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/formation"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/profile"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    map[string]any  `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// errorText returns the error as a plain string. Relayed upstream errors
// may be arbitrary JSON, so those come back raw.
func (e testEnvelope) errorText() string {
	var msg string
	if err := json.Unmarshal(e.Error, &msg); err == nil {
		return msg
	}
	return string(e.Error)
}

func testRouter(t *testing.T, upstream http.HandlerFunc) *Router {
	t.Helper()
	if upstream == nil {
		upstream = func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}
	}
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := corptools.New(corptools.Options{
		BaseURL:   server.URL,
		AccessKey: "ak",
		SecretKey: "sk",
		Timeout:   2 * time.Second,
		Logger:    log,
	})
	store := memory.New()
	router := NewRouter(log,
		account.New(store, log),
		formation.New(api, store, log),
		billing.New(store, log, ""),
		profile.New(store, log),
		cart.New(store, log),
		NewMemoryRateLimiter(),
		nil,
	)
	t.Cleanup(router.Close)
	return router
}

func doJSON(t *testing.T, router *Router, method, path, token string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope testEnvelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, envelope
}

func registerAndLogin(t *testing.T, router *Router) string {
	t.Helper()
	rec, env := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "hunter2-strong",
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, router, http.MethodPost, "/api/auth", "", map[string]string{
		"email":    "ada@example.com",
		"password": "hunter2-strong",
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	token, ok := env.Data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login returned no token: %v", env.Data)
	}
	return token
}

func TestRegisterReturnsGeneratedID(t *testing.T) {
	router := testRouter(t, nil)
	rec, env := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "hunter2-strong",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}
	user, ok := env.Data["user"].(map[string]any)
	if !ok {
		t.Fatalf("missing user payload: %v", env.Data)
	}
	if id, _ := user["id"].(string); id == "" {
		t.Fatalf("expected generated id, got %v", user["id"])
	}
	if _, exposed := user["passwordHash"]; exposed {
		t.Fatal("password hash must not be returned")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := testRouter(t, nil)
	payload := map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "hunter2-strong",
	}
	if rec, _ := doJSON(t, router, http.MethodPost, "/api/register", "", payload); rec.Code != http.StatusOK {
		t.Fatalf("first register failed: %d", rec.Code)
	}
	rec, env := doJSON(t, router, http.MethodPost, "/api/register", "", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Success || env.errorText() != "User with this email already exists" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := testRouter(t, nil)
	registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPost, "/api/auth", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.errorText() != "Invalid email or password" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t, nil)
	for _, path := range []string{"/api/cart", "/api/payment", "/api/attorney", "/api/business-identity", "/api/services"} {
		rec, env := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
		if env.Success {
			t.Fatalf("%s: expected failure envelope", path)
		}
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := testRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS origin header")
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatal("missing CORS headers header")
	}
}

func TestCartFlow(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPost, "/api/cart", token, map[string]any{
		"serviceId":   "svc-ra",
		"serviceName": "Registered Agent",
		"price":       49.0,
		"quantity":    2,
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("cart add failed: %d %s", rec.Code, rec.Body.String())
	}
	item, ok := env.Data["cartItem"].(map[string]any)
	if !ok {
		t.Fatalf("missing cartItem: %v", env.Data)
	}
	itemID := item["id"].(string)

	// Same service merges into the existing line.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/cart", token, map[string]any{
		"serviceId":   "svc-ra",
		"serviceName": "Registered Agent",
		"price":       49.0,
		"quantity":    3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart merge add failed: %d", rec.Code)
	}

	rec, env = doJSON(t, router, http.MethodGet, "/api/cart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart list failed: %d", rec.Code)
	}
	lines, ok := env.Data["cart"].([]any)
	if !ok || len(lines) != 1 {
		t.Fatalf("expected single merged line, got %v", env.Data["cart"])
	}
	summary := env.Data["summary"].(map[string]any)
	if summary["totalItems"].(float64) != 5 {
		t.Fatalf("expected merged quantity 5, got %v", summary["totalItems"])
	}
	if summary["totalPrice"].(float64) != 245 {
		t.Fatalf("unexpected total price: %v", summary["totalPrice"])
	}

	rec, env = doJSON(t, router, http.MethodPatch, "/api/cart", token, map[string]any{
		"itemId":   itemID,
		"quantity": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart update failed: %d %s", rec.Code, rec.Body.String())
	}
	if env.Data["newQuantity"].(float64) != 1 {
		t.Fatalf("unexpected newQuantity: %v", env.Data["newQuantity"])
	}

	rec, env = doJSON(t, router, http.MethodPatch, "/api/cart", token, map[string]any{
		"itemId":   "missing-line",
		"quantity": 2,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown line, got %d", rec.Code)
	}
	if env.errorText() != "Cart item not found" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}

	rec, _ = doJSON(t, router, http.MethodDelete, "/api/cart", token, map[string]any{"itemId": itemID})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart remove failed: %d", rec.Code)
	}
	rec, env = doJSON(t, router, http.MethodGet, "/api/cart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart list failed: %d", rec.Code)
	}
	if lines, _ := env.Data["cart"].([]any); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %v", env.Data["cart"])
	}
}

func TestCartPatchRequiresQuantityField(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPatch, "/api/cart", token, map[string]any{"itemId": "line-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.errorText() != "Item ID and quantity are required" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
}

func TestCartDeleteRequiresItemID(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPost, "/api/cart", token, map[string]any{
		"serviceId":   "svc-ra",
		"serviceName": "Registered Agent",
		"price":       49.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart add failed: %d %s", rec.Code, rec.Body.String())
	}

	// A DELETE with no item id is a client error, not a cart clear.
	rec, env = doJSON(t, router, http.MethodDelete, "/api/cart", token, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without item id, got %d", rec.Code)
	}
	if env.errorText() != "Item ID is required" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
	rec, env = doJSON(t, router, http.MethodGet, "/api/cart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart list failed: %d", rec.Code)
	}
	if lines, _ := env.Data["cart"].([]any); len(lines) != 1 {
		t.Fatalf("cart should be untouched, got %v", env.Data["cart"])
	}

	rec, env = doJSON(t, router, http.MethodDelete, "/api/cart", token, map[string]any{"clear": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart clear failed: %d %s", rec.Code, rec.Body.String())
	}
	if env.Data["message"] != "Cart cleared successfully" {
		t.Fatalf("unexpected message: %v", env.Data["message"])
	}
	rec, env = doJSON(t, router, http.MethodGet, "/api/cart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart list failed: %d", rec.Code)
	}
	if lines, _ := env.Data["cart"].([]any); len(lines) != 0 {
		t.Fatalf("expected empty cart after clear, got %v", env.Data["cart"])
	}
}

func TestServicesRelaysUpstreamStatusAndBody(t *testing.T) {
	router := testRouter(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/services" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"subscription lapsed"}`))
	})
	token := registerAndLogin(t, router)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/services", token, nil)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected relayed 402, got %d", rec.Code)
	}
	var relayed struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
		Status  int             `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &relayed); err != nil {
		t.Fatalf("decode relay: %v", err)
	}
	if relayed.Success {
		t.Fatal("expected failure relay")
	}
	if relayed.Status != http.StatusPaymentRequired {
		t.Fatalf("unexpected embedded status: %d", relayed.Status)
	}
	if string(relayed.Error) != `{"error":"subscription lapsed"}` {
		t.Fatalf("expected verbatim upstream error, got %s", relayed.Error)
	}
}

func TestPaymentFlow(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPost, "/api/payment", token, map[string]any{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"cardNumber":   "4242424242424242",
		"securityCode": "123",
		"expMonth":     12,
		"expYear":      time.Now().Year() + 2,
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("payment add failed: %d %s", rec.Code, rec.Body.String())
	}
	payment := env.Data["payment"].(map[string]any)
	if payment["cardNumber"] == "4242424242424242" {
		t.Fatal("card number must be masked in responses")
	}
	if payment["isDefault"] != true {
		t.Fatalf("first payment should be default: %v", payment["isDefault"])
	}

	rec, env = doJSON(t, router, http.MethodGet, "/api/payment", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payment list failed: %d", rec.Code)
	}
	if payments, _ := env.Data["payments"].([]any); len(payments) != 1 {
		t.Fatalf("expected one payment, got %v", env.Data["payments"])
	}
}

func TestCompanyPatchRequiresOwnership(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPatch, "/api/companies/999", token, map[string]any{"name": "New"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}
	if env.errorText() != "Company does not belong to this account" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := testRouter(t, nil)
	rec, env := doJSON(t, router, http.MethodDelete, "/api/register", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if env.errorText() != "Method not allowed" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
}

func TestCreatePaymentIntentWithoutStripeKey(t *testing.T) {
	router := testRouter(t, nil)
	token := registerAndLogin(t, router)

	rec, env := doJSON(t, router, http.MethodPost, "/api/create-payment-intent", token, map[string]any{"amount": 9900})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without Stripe key, got %d", rec.Code)
	}
	if env.errorText() != "Stripe not configured" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}

	rec, env = doJSON(t, router, http.MethodPost, "/api/create-payment-intent", token, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing amount, got %d", rec.Code)
	}
	if env.errorText() != "Amount is required" {
		t.Fatalf("unexpected error: %q", env.errorText())
	}
}
