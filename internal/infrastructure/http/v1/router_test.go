package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/app"
	"brewpos/internal/config"
	"brewpos/internal/infrastructure/http/v1/middleware"
	"brewpos/pkg/logger"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	storage := app.NewMemoryStorage(log, 10*time.Minute)
	services := app.NewServices(storage, config.EngineConfig{
		UnitTrackedCategories: []string{"Bakery"},
		ColdTokens:            []string{"iced"},
		CupIngredients:        map[string]string{"HOT_M": "Hot Cup Medium"},
		StaffDiscountRate:     1,
		WasteExpenseCategory:  "Waste",
	})

	router, err := NewRouter(RouterConfig{
		Logger:      log,
		Services:    services,
		Health:      storage,
		HealthName:  storage.Driver,
		Idempotency: storage.Idempotency,
	})
	require.NoError(t, err)
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) create(path string, body any) map[string]any {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(a.t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seedLatte creates Milk (1000 ml), a medium hot cup (10) and a Latte whose M recipe uses 200 ml.
func (a *testAPI) seedLatte() (latteID, milkID string) {
	a.t.Helper()
	milk := a.create("/api/v1/ingredients", map[string]any{"name": "Milk", "unit": "ml", "stock": 1000, "costPerUnit": "0.05"})
	a.create("/api/v1/ingredients", map[string]any{"name": "Hot Cup Medium", "unit": "pcs", "stock": 10})
	latte := a.create("/api/v1/products", map[string]any{"name": "Latte", "category": "Coffee", "price": "4.50"})

	w := a.do(http.MethodPut, "/api/v1/products/"+latte["id"].(string)+"/recipes", map[string]any{
		"size":  "Medium",
		"items": []map[string]any{{"ingredientId": milk["id"], "quantity": 200}},
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return latte["id"].(string), milk["id"].(string)
}

func (a *testAPI) stockOf(ingredientID string) float64 {
	a.t.Helper()
	w := a.do(http.MethodGet, "/api/v1/ingredients/"+ingredientID, nil)
	require.Equal(a.t, http.StatusOK, w.Code)
	return decode(a.t, w)["stock"].(float64)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memory")
}

func TestPlaceOrder_ConsumesRecipeAndCup(t *testing.T) {
	api := newTestAPI(t)
	latteID, milkID := api.seedLatte()

	w := api.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"customerName": "Ada",
		"items":        []map[string]any{{"productId": latteID, "size": "M", "quantity": 2}},
	}, middleware.HeaderStaffID, "barista-7")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := decode(t, w)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "barista-7", order["staffId"])
	assert.Equal(t, "9", order["subtotal"])
	assert.Equal(t, float64(600), api.stockOf(milkID))

	w = api.do(http.MethodGet, "/api/v1/stock/movements?recorderId="+order["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"], "milk and cup")
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	api := newTestAPI(t)
	latteID, milkID := api.seedLatte()

	w := api.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"productId": latteID, "size": "Medium", "quantity": 6}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "Milk", details["ingredient_name"])
	assert.Equal(t, "Latte", details["product_name"])
	assert.Equal(t, float64(1000), details["remaining"])
	assert.Equal(t, float64(1200), details["required"])
	assert.Equal(t, float64(1000), api.stockOf(milkID))
}

func TestPlaceOrder_Validation(t *testing.T) {
	api := newTestAPI(t)
	latteID, _ := api.seedLatte()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown size", map[string]any{"items": []map[string]any{{"productId": latteID, "size": "Venti", "quantity": 1}}}},
		{"no items", map[string]any{"items": []map[string]any{}}},
		{"zero quantity", map[string]any{"items": []map[string]any{{"productId": latteID, "quantity": 0}}}},
		{"bad product id", map[string]any{"items": []map[string]any{{"productId": "latte", "quantity": 1}}}},
		{"quantity above maximum", map[string]any{"items": []map[string]any{{"productId": latteID, "size": "M", "quantity": "1844674407370.9552"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/v1/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
		})
	}
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	api := newTestAPI(t)
	latteID, milkID := api.seedLatte()
	body := map[string]any{"items": []map[string]any{{"productId": latteID, "size": "M", "quantity": 1}}}

	first := api.do(http.MethodPost, "/api/v1/orders", body, middleware.HeaderIdempotencyKey, "till-1-0001")
	require.Equal(t, http.StatusCreated, first.Code)

	second := api.do(http.MethodPost, "/api/v1/orders", body, middleware.HeaderIdempotencyKey, "till-1-0001")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, float64(800), api.stockOf(milkID))

	body["items"] = []map[string]any{{"productId": latteID, "size": "M", "quantity": 2}}
	w := api.do(http.MethodPost, "/api/v1/orders", body, middleware.HeaderIdempotencyKey, "till-1-0001")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "same key, different body")
}

func TestOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	latteID, _ := api.seedLatte()

	order := api.create("/api/v1/orders", map[string]any{
		"items": []map[string]any{{"productId": latteID, "size": "M", "quantity": 1}},
	})
	path := "/api/v1/orders/" + order["id"].(string)

	w := api.do(http.MethodPost, path+"/status", map[string]any{"status": "READY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode(t, w)["code"])

	w = api.do(http.MethodPost, path+"/status", map[string]any{"status": "PREPARING"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, path+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, path+"/cost", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", decode(t, w)["cost"])

	w = api.do(http.MethodGet, "/api/v1/orders?status=PREPARING", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = api.do(http.MethodGet, "/api/v1/orders/0192e0c4-0000-7000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeRoutes(t *testing.T) {
	api := newTestAPI(t)
	latteID, milkID := api.seedLatte()
	path := "/api/v1/products/" + latteID

	w := api.do(http.MethodGet, path+"/recipe?size=m", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resolved := decode(t, w)
	assert.Equal(t, "M", resolved["size"])
	assert.Equal(t, "10", resolved["unitCost"])

	w = api.do(http.MethodGet, path+"/recipe?size=L", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no L and no generic recipe")

	w = api.do(http.MethodPut, path+"/recipes", map[string]any{
		"items": []map[string]any{
			{"ingredientId": milkID, "quantity": 100},
			{"ingredientId": milkID, "quantity": 50},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "ingredient listed twice")

	w = api.do(http.MethodDelete, path+"/recipes?size=Medium", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, path+"/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestWasteAndStaffRoutes(t *testing.T) {
	api := newTestAPI(t)
	latteID, milkID := api.seedLatte()

	w := api.do(http.MethodPost, "/api/v1/waste", map[string]any{
		"ingredientId": milkID, "quantity": "0.5", "unit": "l", "reason": "spilled",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	logged := decode(t, w)
	assert.Equal(t, float64(500), logged["stockQuantity"])
	assert.Equal(t, "25", logged["cost"])
	assert.Equal(t, float64(500), api.stockOf(milkID))

	w = api.do(http.MethodPost, "/api/v1/waste", map[string]any{
		"ingredientId": milkID, "productId": latteID, "quantity": 1, "reason": "both",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/v1/staff-consumptions", map[string]any{
		"items": []map[string]any{{"productId": latteID, "size": "M", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "staff id required")

	w = api.do(http.MethodPost, "/api/v1/staff-consumptions", map[string]any{
		"items": []map[string]any{{"productId": latteID, "size": "M", "quantity": 1}},
	}, middleware.HeaderStaffID, "barista-7")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ticket := decode(t, w)
	assert.Equal(t, "0", ticket["total"])
	assert.Equal(t, "shrink", ticket["category"])
	assert.Equal(t, float64(300), api.stockOf(milkID))

	w = api.do(http.MethodGet, "/api/v1/stock/ingredients/"+milkID+"/movements?recordType=expense", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])
}

func TestRestockAndLowStock(t *testing.T) {
	api := newTestAPI(t)
	cup := api.create("/api/v1/ingredients", map[string]any{"name": "Cold Cup Large", "unit": "pcs", "stock": 2, "minStock": 5})

	w := api.do(http.MethodGet, "/api/v1/ingredients/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = api.do(http.MethodPost, "/api/v1/ingredients/"+cup["id"].(string)+"/restock", map[string]any{"quantity": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "receipt", decode(t, w)["recordType"])
	assert.Equal(t, float64(52), api.stockOf(cup["id"].(string)))

	w = api.do(http.MethodPost, "/api/v1/ingredients/"+cup["id"].(string)+"/restock", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
