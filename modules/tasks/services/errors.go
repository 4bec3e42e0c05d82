package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries an HTTP-ish status class and a machine code. Every
// 403-class code collapses into one uniform forbidden payload at the API
// boundary; the distinct codes exist for logs and audit metadata only.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// Denial codes. A task that does not exist, or lives in another organization,
// is reported with the same status as a permission denial so callers cannot
// probe for existence across tenants.
const (
	CodeNoMembership      = "TASK_NO_MEMBERSHIP"
	CodeRoleInsufficient  = "TASK_ROLE_INSUFFICIENT"
	CodeNotRecordHolder   = "TASK_NOT_RECORD_HOLDER"
	CodeAssigneeNotMember = "TASK_ASSIGNEE_NOT_MEMBER"
	CodeTaskUnavailable   = "TASK_UNAVAILABLE"

	CodeNegativePosition = "TASK_NEGATIVE_POSITION"
)

// ErrTaskNotFound is the repository-level absence signal. The service never
// lets it escape as-is; it is translated to a forbidden-class error.
var ErrTaskNotFound = errors.New("task not found")

func forbidden(code, message string, cause error) *ServiceError {
	return newServiceError(http.StatusForbidden, code, message, cause)
}

func badRequest(code, message string) *ServiceError {
	return newServiceError(http.StatusBadRequest, code, message, nil)
}

// IsForbidden reports whether err belongs to the denial class.
func IsForbidden(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Status == http.StatusForbidden
}

func denialCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ""
}
