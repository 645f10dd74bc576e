package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"echoreport/internal/form"
	"echoreport/internal/repository"
	"echoreport/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		unknown  *form.UnknownFieldError
		readOnly *form.ReadOnlyFieldError
		failure  *form.ValidationFailure
	)
	switch {
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &readOnly):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &failure):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": failure.Reason,
			"field": failure.Field,
		})
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, service.ErrPersistence):
		writeError(w, http.StatusBadGateway, "report could not be saved, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
