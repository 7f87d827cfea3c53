package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"uniform-store/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	logger *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:    svc,
		logger: logger.Named("web"),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Schools & clients ─────────────────────────────────────────────────
		r.Get("/api/schools", h.apiListSchools)
		r.Post("/api/schools", h.apiCreateSchool)
		r.Get("/api/clients", h.apiListClients)
		r.Post("/api/clients", h.apiCreateClient)
		r.Delete("/api/clients/{id}", h.apiDeleteClient)

		// ── Catalog & stock ───────────────────────────────────────────────────
		r.Get("/api/products", h.apiListProducts)
		r.Post("/api/products", h.apiCreateProduct)
		r.Get("/api/products/{id}", h.apiGetProduct)
		r.Delete("/api/products/{id}", h.apiDeleteProduct)
		r.Post("/api/products/{id}/stock", h.apiSetStock)
		r.Get("/api/products/{id}/movements", h.apiStockMovements)
		r.Post("/api/products/{id}/deactivate", h.apiDeactivateProduct)
		r.Post("/api/stock/check", h.apiCheckStock)

		// ── Orders ────────────────────────────────────────────────────────────
		r.Get("/api/orders", h.apiListOrders)
		r.Post("/api/orders", h.apiCreateOrder)
		r.Get("/api/orders/{id}", h.apiGetOrder)
		r.Delete("/api/orders/{id}", h.apiDeleteOrder)
		r.Post("/api/orders/{id}/status", h.apiTransitionOrder)
		r.Post("/api/orders/{id}/cancel", h.apiCancelOrder)

		// ── Reports ───────────────────────────────────────────────────────────
		r.Get("/api/reports/metrics", h.apiMetrics)
		r.Get("/api/reports/orders-by-status", h.apiOrdersByStatus)
		r.Get("/api/reports/low-stock", h.apiLowStock)
		r.Get("/api/reports/margins", h.apiMargins)
	})

	h.router = r
	return h
}

// ServeHTTP dispatches to the chi router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id: "+raw, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. A missing value yields nil.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, "invalid "+name+": "+raw, "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	return &v, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
