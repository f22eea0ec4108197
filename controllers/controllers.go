package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"aligned_server/models"
)

// WriteJSONResponse encodes payload with the given status code.
func WriteJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// WriteServiceError maps engine errors onto HTTP statuses. Rejected
// preconditions go out verbatim so the client sees a definitive, explained
// failure rather than a generic one.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyDecided),
		errors.Is(err, models.ErrMatchClosed),
		errors.Is(err, models.ErrDuplicatePairing),
		errors.Is(err, models.ErrSelfPairing):
		status = http.StatusConflict
	case errors.Is(err, models.ErrMatchNotFound),
		errors.Is(err, models.ErrMemberNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidDecision):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	WriteJSONResponse(w, status, map[string]string{"error": err.Error()})
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the AMARI Aligned API."})
}
