package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uniform-store/internal/app"
	"uniform-store/internal/db"
	"uniform-store/internal/store/sqlite"
)

func newTestServer(t *testing.T) (http.Handler, app.ApplicationService) {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.OpenSQLite(db.MemoryPath, zap.NewNop())
	require.NoError(t, err)
	store := sqlite.New(gdb)
	require.NoError(t, store.AutoMigrate(ctx))

	svc := app.NewAppService(store, zap.NewNop())
	t.Cleanup(func() { _ = svc.Close() })
	return NewHandler(svc, "http://shop.local", zap.NewNop()), svc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type idResponse struct {
	ID int `json:"id"`
}

type orderResponse struct {
	ID            int             `json:"id"`
	Status        string          `json:"status"`
	QuantityTotal int             `json:"quantity_total"`
	ValueTotal    decimal.Decimal `json:"value_total"`
}

// seedShop creates one client and one product and returns their IDs.
func seedShop(t *testing.T, h http.Handler, stock int) (clientID, productID int) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/clients", map[string]any{"name": "Ana Souza", "phone": "(11) 5555-0000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	clientID = decode[idResponse](t, rec).ID

	rec = do(t, h, http.MethodPost, "/api/products", map[string]any{
		"name": "Camiseta", "size": "8", "color": "Branco", "unit_price": "29.90", "stock": stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID = decode[idResponse](t, rec).ID
	return clientID, productID
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNewHandler_ServesThroughRouter(t *testing.T) {
	h, _ := newTestServer(t)
	handler, ok := h.(*Handler)
	require.True(t, ok, "NewHandler returns *Handler")
	require.NotNil(t, handler.router)

	rec := do(t, handler.router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderLifecycle_API(t *testing.T) {
	h, _ := newTestServer(t)
	clientID, productID := seedShop(t, h, 10)

	rec := do(t, h, http.MethodPost, "/api/orders", map[string]any{
		"client_id": clientID,
		"lines":     []map[string]int{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[orderResponse](t, rec)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, 3, order.QuantityTotal)
	assert.True(t, decimal.RequireFromString("89.70").Equal(order.ValueTotal), "got %s", order.ValueTotal)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d", productID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[struct {
		Stock int `json:"stock"`
	}](t, rec).Stock)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/orders/%d/status", order.ID), map[string]string{"status": "In Production"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/orders/%d/status", order.ID), map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[errorResponse](t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/orders?status=IN_PRODUCTION", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]idResponse](t, rec), 1)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/products/%d/movements", productID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]idResponse](t, rec), 3, "initial stock, reservation and release")
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	h, _ := newTestServer(t)
	clientID, productID := seedShop(t, h, 2)

	rec := do(t, h, http.MethodPost, "/api/orders", map[string]any{
		"client_id": clientID,
		"lines":     []map[string]int{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code    string                   `json:"code"`
		Details insufficientStockDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)
	assert.Equal(t, insufficientStockDetails{ProductID: productID, Requested: 3, Available: 2}, resp.Details)
}

func TestCreateOrder_BadRequests(t *testing.T) {
	h, _ := newTestServer(t)
	clientID, productID := seedShop(t, h, 2)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing client", map[string]any{"lines": []map[string]int{{"product_id": productID, "quantity": 1}}}, http.StatusBadRequest, "BAD_REQUEST"},
		{"no lines", map[string]any{"client_id": clientID}, http.StatusBadRequest, "NO_ITEMS"},
		{"zero quantity", map[string]any{"client_id": clientID, "lines": []map[string]int{{"product_id": productID, "quantity": 0}}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad date", map[string]any{"client_id": clientID, "expected_delivery_date": "tomorrow", "lines": []map[string]int{{"product_id": productID, "quantity": 1}}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown product", map[string]any{"client_id": clientID, "lines": []map[string]int{{"product_id": 999, "quantity": 1}}}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/orders", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorResponse](t, rec).Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestBodyLimit(t *testing.T) {
	h, _ := newTestServer(t)
	big := `{"name":"` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/schools", strings.NewReader(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStockEndpoints(t *testing.T) {
	h, _ := newTestServer(t)
	_, productID := seedShop(t, h, 4)

	rec := do(t, h, http.MethodPost, "/api/stock/check", map[string]any{
		"items": []map[string]int{{"product_id": productID, "quantity": 4}},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/stock/check", map[string]any{
		"items": []map[string]int{{"product_id": productID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/stock", productID), map[string]any{"quantity": 2, "note": "count"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p struct {
		Stock    int  `json:"stock"`
		LowStock bool `json:"low_stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 2, p.Stock)
	assert.True(t, p.LowStock)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/stock", productID), map[string]any{"note": "no quantity"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reports/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]idResponse](t, rec), 1)
}

func TestSchoolsAndClients(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/schools", map[string]string{"name": "Municipal"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/schools", map[string]string{"name": "municipal"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE", decode[errorResponse](t, rec).Code)

	rec = do(t, h, http.MethodGet, "/api/schools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]idResponse](t, rec), 1)

	clientID, productID := seedShop(t, h, 5)
	rec = do(t, h, http.MethodPost, "/api/orders", map[string]any{
		"client_id": clientID,
		"lines":     []map[string]int{{"product_id": productID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/clients/%d", clientID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "HAS_ORDERS", decode[errorResponse](t, rec).Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/api/products/%d", productID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":false,"deactivated":true}`, rec.Body.String())
}

func TestReports_API(t *testing.T) {
	h, _ := newTestServer(t)
	clientID, productID := seedShop(t, h, 10)
	rec := do(t, h, http.MethodPost, "/api/orders", map[string]any{
		"client_id": clientID,
		"lines":     []map[string]int{{"product_id": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reports/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m struct {
		TotalOrders   int `json:"total_orders"`
		PendingOrders int `json:"pending_orders"`
		TotalClients  int `json:"total_clients"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 1, m.TotalOrders)
	assert.Equal(t, 1, m.PendingOrders)
	assert.Equal(t, 1, m.TotalClients)

	rec = do(t, h, http.MethodGet, "/api/reports/orders-by-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byStatus struct {
		Counts []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"counts"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byStatus))
	assert.Len(t, byStatus.Counts, 5)
	assert.Equal(t, 1, byStatus.Total)

	rec = do(t, h, http.MethodGet, "/api/reports/margins", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]struct {
		ProductID int `json:"product_id"`
	}](t, rec), 1)
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://shop.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://shop.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
