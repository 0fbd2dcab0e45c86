package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// RequireContentType rejects POST and PUT requests whose body media type is not one of allowed
func RequireContentType(allowed ...string) func(http.Handler) http.Handler {
	accepted := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		accepted[strings.ToLower(t)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || !accepted[mediaType] {
					respondUnsupported(w, "Content-Type must be one of "+strings.Join(allowed, ", "))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// respondUnsupported sends a 415 response with the standard format
func respondUnsupported(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnsupportedMediaType)
	w.Write([]byte(`{"meta":{"success":false,"message":"` + message + `"},"data":null}`))
}
