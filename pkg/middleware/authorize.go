package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskdeck/taskdeck/pkg/composables"
)

const UserIDHeader = "X-User-ID"

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}

// Authorize resolves the acting user from the X-User-ID header. Requests
// without a parseable user id are rejected before reaching any handler.
func Authorize() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				writeUnauthorized(w, "missing "+UserIDHeader+" header")
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				writeUnauthorized(w, "invalid "+UserIDHeader+" header")
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithUserID(r.Context(), userID)))
		})
	}
}
