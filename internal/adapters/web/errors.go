package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"uniform-store/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type insufficientStockDetails struct {
	ProductID int `json:"product_id"`
	Requested int `json:"requested"`
	Available int `json:"available"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetails(w, r, message, code, status, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, message, code string, status int, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
		Details:   details,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a core error to its HTTP status. Storage and unexpected
// errors are logged and reported with a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr      *core.InsufficientStockError
		transitionErr *core.InvalidTransitionError
		validationErr *core.ValidationError
	)
	switch {
	case errors.As(err, &stockErr):
		writeErrorDetails(w, r, stockErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict, insufficientStockDetails{
			ProductID: stockErr.ProductID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &transitionErr):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrHasOrders):
		writeError(w, r, err.Error(), "HAS_ORDERS", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicateProduct), errors.Is(err, core.ErrDuplicateSchool):
		writeError(w, r, err.Error(), "DUPLICATE", http.StatusConflict)
	case errors.Is(err, core.ErrNoItems):
		writeError(w, r, err.Error(), "NO_ITEMS", http.StatusBadRequest)
	case errors.As(err, &validationErr):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	default:
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
