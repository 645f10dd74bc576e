package handler

import (
	"encoding/json"
	"net/http"

	"echoreport/internal/service"
	"echoreport/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SessionHandler handles in-progress report sessions
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// SetFieldRequest is the request body for writing one field
type SetFieldRequest struct {
	Value *string `json:"value"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.Start(r.Context(), middleware.GetClinicianID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetField handles PUT /v1/sessions/{id}/fields/{name}
func (h *SessionHandler) SetField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "request body must be {\"value\": string}")
		return
	}

	update, err := h.sessionSvc.SetField(r.Context(), vars["id"], vars["name"], *req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

// Submit handles POST /v1/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessionSvc.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Discard handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Discard(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
