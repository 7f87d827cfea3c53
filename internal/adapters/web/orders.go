package web

import (
	"net/http"

	"uniform-store/internal/app"
	"uniform-store/internal/core"
)

// apiListOrders handles GET /api/orders?school_id=&client_id=&status=
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	schoolID, ok := queryInt(w, r, "school_id")
	if !ok {
		return
	}
	clientID, ok := queryInt(w, r, "client_id")
	if !ok {
		return
	}
	result, err := h.svc.ListOrders(r.Context(), app.ListOrdersRequest{
		SchoolID: schoolID,
		ClientID: clientID,
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	orders := result.Orders
	if orders == nil {
		orders = []core.Order{}
	}
	writeJSON(w, orders)
}

// apiGetOrder handles GET /api/orders/{id}
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCreateOrder handles POST /api/orders
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID             int    `json:"client_id"`
		SchoolID             *int   `json:"school_id"`
		ExpectedDeliveryDate string `json:"expected_delivery_date"`
		PaymentMethod        string `json:"payment_method"`
		Notes                string `json:"notes"`
		Lines                []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ClientID <= 0 {
		writeError(w, r, "client_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	lines := make([]app.OrderLineInput, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = app.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	result, err := h.svc.PlaceOrder(r.Context(), app.PlaceOrderRequest{
		ClientID:             body.ClientID,
		SchoolID:             body.SchoolID,
		Lines:                lines,
		ExpectedDeliveryDate: body.ExpectedDeliveryDate,
		PaymentMethod:        body.PaymentMethod,
		Notes:                body.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Order)
}

// apiTransitionOrder handles POST /api/orders/{id}/status
func (h *Handler) apiTransitionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Status == "" {
		writeError(w, r, "status is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.TransitionStatus(r.Context(), id, body.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCancelOrder handles POST /api/orders/{id}/cancel. The order is removed and its
// stock returned to the shelf.
func (h *Handler) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.CancelOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiDeleteOrder handles DELETE /api/orders/{id}
func (h *Handler) apiDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
