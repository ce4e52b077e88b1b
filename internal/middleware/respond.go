package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/boostmysites25/zippty-backend/internal/api"
)

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Envelope{Status: false, Message: message})
}
