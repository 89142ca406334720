package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"coachpath/internal/coaching"
	"coachpath/internal/security"
	"coachpath/internal/service"
	"coachpath/internal/validation"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, map[string]string{"error": userMsg})
}

// respondWithServiceError maps domain errors to status codes; anything unknown is a logged 500
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrQuizRequired):
		respondWithJSON(w, http.StatusConflict, map[string]string{
			"error":    ErrQuizRequired,
			"redirect": quizPath,
		})
	case errors.Is(err, coaching.ErrInvalidInput), validation.IsValidationError(err):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, coaching.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", logMsg, err)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, security.ErrInvalidToken):
		respondWithError(w, http.StatusBadRequest, "Invalid or expired link", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}
