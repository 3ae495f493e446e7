package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/ec-storefront/internal/apperr"
)

const msgInternal = "Internal server error"

var errInvalidBody = apperr.New(apperr.CodeValidation, "Invalid request body")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps err onto a status code. Uncategorized errors are logged
// and reported with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
		respondMessage(w, status, msgInternal)
		return
	}

	var e *apperr.Error
	errors.As(err, &e)
	respondMessage(w, status, e.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeValidation, errInvalidBody.Message, err)
	}
	return nil
}
