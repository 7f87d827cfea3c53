package web

import (
	"net/http"
	"strconv"

	"uniform-store/internal/app"
	"uniform-store/internal/core"
)

// apiListSchools handles GET /api/schools?all=true
func (h *Handler) apiListSchools(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	result, err := h.svc.ListSchools(r.Context(), !all)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	schools := result.Schools
	if schools == nil {
		schools = []core.School{}
	}
	writeJSON(w, schools)
}

// apiCreateSchool handles POST /api/schools
func (h *Handler) apiCreateSchool(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateSchool(r.Context(), app.CreateSchoolRequest{
		Name:    body.Name,
		Address: body.Address,
		Phone:   body.Phone,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.School)
}

// apiListClients handles GET /api/clients
func (h *Handler) apiListClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListClients(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	clients := result.Clients
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, clients)
}

// apiCreateClient handles POST /api/clients
func (h *Handler) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Address   string `json:"address"`
		BirthDate string `json:"birth_date"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateClient(r.Context(), app.CreateClientRequest{
		Name:      body.Name,
		Phone:     body.Phone,
		Email:     body.Email,
		Address:   body.Address,
		BirthDate: body.BirthDate,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result.Client)
}

// apiDeleteClient handles DELETE /api/clients/{id}. Clients with orders are kept (409).
func (h *Handler) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
