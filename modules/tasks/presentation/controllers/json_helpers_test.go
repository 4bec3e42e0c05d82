package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/tasks/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/tasks/services"
)

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) dtos.APIError {
	t.Helper()
	var payload dtos.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return payload
}

func TestWriteServiceError_ForbiddenIsUniform(t *testing.T) {
	codes := []string{
		services.CodeNoMembership,
		services.CodeRoleInsufficient,
		services.CodeNotRecordHolder,
		services.CodeAssigneeNotMember,
		services.CodeTaskUnavailable,
	}
	for _, code := range codes {
		rr := httptest.NewRecorder()
		writeServiceError(rr, &services.ServiceError{
			Status:  http.StatusForbidden,
			Code:    code,
			Message: "internal detail that must not leak",
		})

		require.Equal(t, http.StatusForbidden, rr.Code, code)
		payload := decodeError(t, rr)
		assert.Equal(t, "FORBIDDEN", payload.Code, code)
		assert.Equal(t, "access denied", payload.Message, code)
	}
}

func TestWriteServiceError_BadRequestKeepsCode(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, &services.ServiceError{
		Status:  http.StatusBadRequest,
		Code:    services.CodeNegativePosition,
		Message: "position must not be negative",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	payload := decodeError(t, rr)
	assert.Equal(t, services.CodeNegativePosition, payload.Code)
}

func TestWriteServiceError_UnknownErrorIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, assert.AnError)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	payload := decodeError(t, rr)
	assert.Equal(t, "INTERNAL", payload.Code)
}

func TestUpdateTaskDTO_NullVersusAbsent(t *testing.T) {
	t.Run("absent fields stay untouched", func(t *testing.T) {
		var dto dtos.UpdateTaskDTO
		require.NoError(t, json.Unmarshal([]byte(`{"title":"new title"}`), &dto))
		require.NotNil(t, dto.Title)
		assert.Nil(t, dto.DueDate)
		assert.Nil(t, dto.AssigneeID)
	})

	t.Run("explicit null clears the field", func(t *testing.T) {
		var dto dtos.UpdateTaskDTO
		require.NoError(t, json.Unmarshal([]byte(`{"assignee_id":null,"due_date":null}`), &dto))
		require.NotNil(t, dto.AssigneeID)
		assert.Nil(t, *dto.AssigneeID)
		require.NotNil(t, dto.DueDate)
		assert.Nil(t, *dto.DueDate)
	})

	t.Run("explicit values are carried", func(t *testing.T) {
		var dto dtos.UpdateTaskDTO
		require.NoError(t, json.Unmarshal([]byte(`{"assignee_id":"2b1f9ad1-7c65-4f68-9b2a-14c2d1fbb3a7"}`), &dto))
		require.NotNil(t, dto.AssigneeID)
		require.NotNil(t, *dto.AssigneeID)
		assert.Equal(t, "2b1f9ad1-7c65-4f68-9b2a-14c2d1fbb3a7", (*dto.AssigneeID).String())
	})
}
