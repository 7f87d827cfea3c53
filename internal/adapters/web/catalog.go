package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"uniform-store/internal/app"
	"uniform-store/internal/core"
)

type productResponse struct {
	core.Product
	LowStock bool `json:"low_stock"`
}

// apiListProducts handles GET /api/products?school_id=&category=&include_inactive=
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := queryInt(w, r, "school_id")
	if !ok {
		return
	}
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))

	result, err := h.svc.ListProducts(r.Context(), app.ListProductsRequest{
		SchoolID:        schoolID,
		Category:        r.URL.Query().Get("category"),
		IncludeInactive: includeInactive,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	products := result.Products
	if products == nil {
		products = []core.Product{}
	}
	writeJSON(w, products)
}

// apiGetProduct handles GET /api/products/{id}
func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, productResponse{Product: *result.Product, LowStock: result.LowStock})
}

// apiCreateProduct handles POST /api/products
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string           `json:"name"`
		Category    string           `json:"category"`
		Size        string           `json:"size"`
		Color       string           `json:"color"`
		Description string           `json:"description"`
		UnitPrice   decimal.Decimal  `json:"unit_price"`
		UnitCost    *decimal.Decimal `json:"unit_cost"`
		Stock       int              `json:"stock"`
		MinStock    *int             `json:"min_stock"`
		SchoolID    *int             `json:"school_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		Name:        body.Name,
		Category:    body.Category,
		Size:        body.Size,
		Color:       body.Color,
		Description: body.Description,
		UnitPrice:   body.UnitPrice,
		UnitCost:    body.UnitCost,
		Stock:       body.Stock,
		MinStock:    body.MinStock,
		SchoolID:    body.SchoolID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, productResponse{Product: *result.Product, LowStock: result.LowStock})
}

// apiDeactivateProduct handles POST /api/products/{id}/deactivate
func (h *Handler) apiDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiDeleteProduct handles DELETE /api/products/{id}. Products referenced by order
// lines are deactivated instead of removed.
func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.DeleteProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	type response struct {
		Deleted     bool `json:"deleted"`
		Deactivated bool `json:"deactivated"`
	}
	writeJSON(w, response{Deleted: result.Deleted, Deactivated: result.Deactivated})
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// apiSetStock handles POST /api/products/{id}/stock
func (h *Handler) apiSetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Quantity *int   `json:"quantity"`
		Note     string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Quantity == nil {
		writeError(w, r, "quantity is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SetStock(r.Context(), app.SetStockRequest{
		ProductID: id,
		Quantity:  *body.Quantity,
		Note:      body.Note,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, productResponse{Product: *result.Product, LowStock: result.LowStock})
}

// apiStockMovements handles GET /api/products/{id}/movements
func (h *Handler) apiStockMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.StockMovements(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	movements := result.Movements
	if movements == nil {
		movements = []core.StockMovement{}
	}
	writeJSON(w, movements)
}

// apiCheckStock handles POST /api/stock/check. It answers 200 when every item is
// available and 409 INSUFFICIENT_STOCK naming the first short product otherwise.
func (h *Handler) apiCheckStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []core.StockItem `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.svc.CheckAvailability(r.Context(), body.Items); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	type response struct {
		Available bool `json:"available"`
	}
	writeJSON(w, response{Available: true})
}
