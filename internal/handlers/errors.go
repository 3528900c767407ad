package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"puzzlebox/internal/service"
	"puzzlebox/internal/validation"
)

// errorResponse is the JSON body sent for every non-2xx API response. Code is
// a stable machine-readable identifier; Message is safe to show to users.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, errorResponse{Error: code, Message: message})
}

// respondServiceError maps service-layer errors onto HTTP responses. Unknown
// errors are logged and surfaced as a 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.Is(err, service.ErrLevelNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", "level not found")
	case errors.Is(err, service.ErrLevelLocked):
		respondWithError(w, http.StatusForbidden, "level_locked", "complete the previous level first")
	case errors.Is(err, service.ErrDailyLimit):
		respondWithError(w, http.StatusForbidden, "daily_limit", "daily new level limit reached, upgrade or come back tomorrow")
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, "invalid_request", validationErr.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
