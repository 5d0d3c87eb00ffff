package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fabric-digital-system/service"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeServiceError maps the service error taxonomy to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAuth):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, service.ErrUpload), errors.Is(err, service.ErrSchemaMismatch):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrInvalidRecord):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}
