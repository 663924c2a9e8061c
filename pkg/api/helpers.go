// Package api provides the HTTP contracts of the trip card API and helpers
// for writing JSON responses.
package api

import (
	"encoding/json"
	"net/http"
)

// Success writes data as JSON with statusCode. A nil data writes no body.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes {"error": message} with statusCode.
func Error(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, ErrorResponse{Error: message})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
