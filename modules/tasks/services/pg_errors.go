package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func mapPgError(err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return mapPgErrorToServiceError(err)
}

func mapPgErrorToServiceError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrTaskNotFound) {
		return forbidden(CodeTaskUnavailable, "task is not available", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		if pgErr.ConstraintName == "tasks_org_status_position_key" {
			// Two siblings on the same position means a shift ran without its
			// lock or with a wrong exclusion filter. Surfaced loudly, never
			// reported as a caller mistake.
			return newServiceError(http.StatusInternalServerError, "TASK_POSITION_INVARIANT", "duplicate position in column", err)
		}
		return newServiceError(http.StatusConflict, "TASK_CONFLICT", "unique constraint violated", err)
	case "23503": // foreign_key_violation
		return newServiceError(http.StatusUnprocessableEntity, "TASK_REFERENCE_NOT_FOUND", "referenced row not found", err)
	default:
		return newServiceError(http.StatusInternalServerError, "TASK_INTERNAL", fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
