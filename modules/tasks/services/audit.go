package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditRecorder persists one audit event. Recording is best-effort: the task
// service never fails or rolls back a mutation because of it.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type AuditEntry struct {
	Action         string
	Resource       string
	ResourceID     uuid.UUID
	ActorID        uuid.UUID
	OrganizationID uuid.UUID
	Metadata       map[string]any
}

// emitAudit records the entry on a detached context so that a caller timeout
// after commit cannot cancel it. Failures are logged and swallowed.
func emitAudit(ctx context.Context, log *logrus.Logger, recorder AuditRecorder, entry AuditEntry) {
	if recorder == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := recorder.Record(detached, entry); err != nil && log != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"action":          entry.Action,
				"resource":        entry.Resource,
				"resource_id":     entry.ResourceID,
				"organization_id": entry.OrganizationID,
			}).Warn("audit record failed")
		}
	}()
}
