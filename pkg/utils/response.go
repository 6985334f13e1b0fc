package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// RespondJSON encodes payload to w with the given status. An encoding
// failure can only be logged: the status line has already gone out.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError writes the {"error": message} body every handler uses for
// failure responses.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
