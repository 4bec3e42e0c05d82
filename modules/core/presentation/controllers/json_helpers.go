package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskdeck/taskdeck/modules/core/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/core/services"
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

func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeJSONError(w, svcErr.Status, svcErr.Code, svcErr.Message)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
