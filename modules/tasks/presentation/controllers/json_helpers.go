package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskdeck/taskdeck/modules/tasks/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string, meta ...map[string]string) {
	payload := &dtos.APIError{
		Code:    code,
		Message: message,
	}
	if len(meta) > 0 && meta[0] != nil {
		payload.Meta = meta[0]
	}
	writeJSON(w, status, payload)
}

// writeServiceError translates a service error into the API envelope. All
// denial-class errors collapse into one indistinguishable forbidden payload,
// regardless of whether the cause was a missing role, a foreign tenant, or a
// task that does not exist.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Status == http.StatusForbidden {
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "access denied")
			return
		}
		writeJSONError(w, svcErr.Status, svcErr.Code, svcErr.Message)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func logError(r *http.Request, err error) {
	if entry, ok := composables.TryUseLogger(r.Context()); ok {
		entry.WithError(err).Error("request failed")
	}
}
