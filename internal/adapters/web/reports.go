package web

import (
	"net/http"

	"uniform-store/internal/core"
)

// apiMetrics handles GET /api/reports/metrics
func (h *Handler) apiMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMetrics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

// apiOrdersByStatus handles GET /api/reports/orders-by-status
func (h *Handler) apiOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrdersByStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	type response struct {
		Counts []core.StatusCount `json:"counts"`
		Total  int                `json:"total"`
	}
	writeJSON(w, response{Counts: result.Counts, Total: result.Total})
}

// apiLowStock handles GET /api/reports/low-stock
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStock(r.Context())
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

// apiMargins handles GET /api/reports/margins
func (h *Handler) apiMargins(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProductMargins(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	margins := result.Margins
	if margins == nil {
		margins = []core.ProductMargin{}
	}
	writeJSON(w, margins)
}
