package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

const auditInsertQuery = `
	INSERT INTO task_audit_log (
		organization_id,
		actor_id,
		action,
		resource,
		resource_id,
		metadata
	)
	VALUES ($1, $2, $3, $4, $5, $6)`

// PgAuditRecorder writes audit rows outside the mutation transaction. By the
// time an entry is recorded the mutation has already committed or been
// denied, so it always goes through the pool.
type PgAuditRecorder struct{}

func NewAuditRecorder() *PgAuditRecorder {
	return &PgAuditRecorder{}
}

func (r *PgAuditRecorder) Record(ctx context.Context, entry services.AuditEntry) error {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to encode audit metadata")
	}
	if _, err := pool.Exec(ctx, auditInsertQuery,
		entry.OrganizationID,
		entry.ActorID,
		entry.Action,
		entry.Resource,
		entry.ResourceID,
		metadata,
	); err != nil {
		return errors.Wrap(err, "failed to record audit entry")
	}
	return nil
}
