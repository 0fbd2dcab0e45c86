package client

import (
	"encoding/json"
	"net/http"
)

// APIError is a non-2xx response from the table API
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// mutationMessages are shown for failed row mutations regardless of the response body
var mutationMessages = map[int]string{
	http.StatusConflict:            "A record with the same values already exists",
	http.StatusBadRequest:          "An unexpected error occurred",
	http.StatusInternalServerError: "Failed to save the record",
}

const (
	unknownErrorMessage = "Unknown error"
	deleteFailedMessage = "Failed to delete the record"
)

func newAPIError(status int, body []byte, mutation bool) *APIError {
	var env envelope
	_ = json.Unmarshal(body, &env)

	e := &APIError{
		Status:  status,
		Message: env.Meta.Message,
		Details: env.Meta.Details,
	}
	if mutation {
		if msg, ok := mutationMessages[status]; ok {
			e.Message = msg
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = unknownErrorMessage
	}
	return e
}
