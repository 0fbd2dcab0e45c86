package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/repository"
)

// Meta carries the outcome of a row mutation or a request failure
type Meta struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Envelope wraps mutation results and errors. Page and column responses are sent bare.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// respondJSON writes payload as JSON with the given status code
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondSuccess sends an enveloped mutation result
func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, Envelope{
		Meta: Meta{Success: true, Message: message},
		Data: data,
	})
}

// respondError sends an enveloped failure with data: null
func respondError(w http.ResponseWriter, status int, message string, details map[string]string) {
	respondJSON(w, status, Envelope{
		Meta: Meta{Success: false, Message: message, Details: details},
	})
}

// decodeBody decodes a JSON body into v. An empty body is accepted only when allowEmpty is set.
// On failure the 400 response is already written.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	respondError(w, http.StatusBadRequest, "Invalid request body", nil)
	return false
}

// storeFailure maps a repository error to the status and message sent to the client.
// The bool is false for unexpected errors that should be logged.
func storeFailure(err error) (int, string, map[string]string, bool) {
	var validationErr *repository.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation failed", validationErr.Fields, true
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Record not found", nil, true
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "A record with the same values already exists", nil, true
	default:
		return http.StatusInternalServerError, "Failed to save the record", nil, false
	}
}
