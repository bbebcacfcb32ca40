// Package handlers exposes the assistant's JSON API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LionGab/lyla-erl/internal/identity"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return false
	}
	return true
}

// userEmail resolves the request's storage identity. Unauthenticated
// requests operate under the anonymous namespace.
func userEmail(r *http.Request) string {
	email, _ := identity.UserEmailFromContext(r.Context())
	return email
}
