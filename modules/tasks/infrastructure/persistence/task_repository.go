package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
	"github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

const (
	taskSelectColumns = `
		t.id,
		t.organization_id,
		t.title,
		t.description,
		t.status,
		t.priority,
		t.category,
		t.due_date,
		t.position,
		t.created_by_id,
		t.assignee_id,
		t.created_at,
		t.updated_at`

	taskFindQuery = `SELECT` + taskSelectColumns + ` FROM tasks t WHERE t.organization_id = $1 AND t.id = $2`

	taskInsertQuery = `
		INSERT INTO tasks (
			organization_id,
			title,
			description,
			status,
			priority,
			category,
			due_date,
			position,
			created_by_id,
			assignee_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, organization_id, title, description, status, priority, category, due_date, position, created_by_id, assignee_id, created_at, updated_at`

	taskUpdateQuery = `
		UPDATE tasks SET
			title = $3,
			description = $4,
			status = $5,
			priority = $6,
			category = $7,
			due_date = $8,
			position = $9,
			assignee_id = $10,
			updated_at = now()
		WHERE organization_id = $1 AND id = $2
		RETURNING id, organization_id, title, description, status, priority, category, due_date, position, created_by_id, assignee_id, created_at, updated_at`

	taskDeleteQuery = `DELETE FROM tasks WHERE organization_id = $1 AND id = $2`

	taskMaxPositionQuery = `
		SELECT COALESCE(MAX(position), -1)
		FROM tasks
		WHERE organization_id = $1 AND status = $2`

	// Transaction-scoped advisory lock keyed on (organization, status).
	// Row locks over existing rows would leave an empty column unguarded:
	// two concurrent appends would both read the same max position and
	// collide on the position unique constraint at commit.
	taskLockColumnQuery = `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`
)

type Option func(*PgTaskRepository)

// WithoutRowLocking degrades the repository to transaction isolation only,
// for backends where FOR UPDATE is unavailable or a no-op.
func WithoutRowLocking() Option {
	return func(r *PgTaskRepository) { r.rowLocking = false }
}

type PgTaskRepository struct {
	rowLocking bool
}

func NewTaskRepository(opts ...Option) *PgTaskRepository {
	r := &PgTaskRepository{rowLocking: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PgTaskRepository) SupportsRowLocking() bool { return r.rowLocking }

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		id, organizationID, createdByID             uuid.UUID
		title, description, status, priority, categ string
		dueDate                                     pgtype.Timestamptz
		position                                    int
		assigneeID                                  pgtype.UUID
		createdAt, updatedAt                        time.Time
	)
	if err := row.Scan(
		&id,
		&organizationID,
		&title,
		&description,
		&status,
		&priority,
		&categ,
		&dueDate,
		&position,
		&createdByID,
		&assigneeID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return task.Task{}, err
	}

	var due *time.Time
	if dueDate.Valid {
		d := dueDate.Time
		due = &d
	}
	var assignee *uuid.UUID
	if assigneeID.Valid {
		a := uuid.UUID(assigneeID.Bytes)
		assignee = &a
	}
	return task.Hydrate(
		id,
		organizationID,
		title,
		description,
		task.Status(status),
		task.Priority(priority),
		categ,
		due,
		position,
		createdByID,
		assignee,
		createdAt,
		updatedAt,
	), nil
}

func (r *PgTaskRepository) getByID(ctx context.Context, organizationID, taskID uuid.UUID, forUpdate bool) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	query := taskFindQuery
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTask(tx.QueryRow(ctx, query, organizationID, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, services.ErrTaskNotFound
		}
		return task.Task{}, errors.Wrap(err, "failed to get task")
	}
	return t, nil
}

func (r *PgTaskRepository) GetByID(ctx context.Context, organizationID, taskID uuid.UUID) (task.Task, error) {
	return r.getByID(ctx, organizationID, taskID, false)
}

func (r *PgTaskRepository) GetByIDForUpdate(ctx context.Context, organizationID, taskID uuid.UUID) (task.Task, error) {
	return r.getByID(ctx, organizationID, taskID, r.rowLocking)
}

func (r *PgTaskRepository) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	created, err := scanTask(tx.QueryRow(ctx, taskInsertQuery,
		t.OrganizationID(),
		t.Title(),
		t.Description(),
		string(t.Status()),
		string(t.Priority()),
		t.Category(),
		t.DueDate(),
		t.Position(),
		t.CreatedByID(),
		pgNullableUUID(t.AssigneeID()),
	))
	if err != nil {
		return task.Task{}, errors.Wrap(err, "failed to insert task")
	}
	return created, nil
}

func (r *PgTaskRepository) Update(ctx context.Context, t task.Task) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	updated, err := scanTask(tx.QueryRow(ctx, taskUpdateQuery,
		t.OrganizationID(),
		t.ID(),
		t.Title(),
		t.Description(),
		string(t.Status()),
		string(t.Priority()),
		t.Category(),
		t.DueDate(),
		t.Position(),
		pgNullableUUID(t.AssigneeID()),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, services.ErrTaskNotFound
		}
		return task.Task{}, errors.Wrap(err, "failed to update task")
	}
	return updated, nil
}

func (r *PgTaskRepository) Delete(ctx context.Context, organizationID, taskID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, taskDeleteQuery, organizationID, taskID)
	if err != nil {
		return errors.Wrap(err, "failed to delete task")
	}
	if tag.RowsAffected() == 0 {
		return services.ErrTaskNotFound
	}
	return nil
}

func (r *PgTaskRepository) MaxPosition(ctx context.Context, organizationID uuid.UUID, status task.Status) (int, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, false, err
	}
	var max int
	if err := tx.QueryRow(ctx, taskMaxPositionQuery, organizationID, string(status)).Scan(&max); err != nil {
		return 0, false, errors.Wrap(err, "failed to read max position")
	}
	if max < 0 {
		return 0, false, nil
	}
	return max, true, nil
}

func (r *PgTaskRepository) LockColumn(ctx context.Context, organizationID uuid.UUID, statuses ...task.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	// Fixed acquisition order so two transactions locking overlapping
	// column sets cannot deadlock each other.
	sort.Strings(names)
	for _, name := range names {
		if _, err := tx.Exec(ctx, taskLockColumnQuery, organizationID.String(), name); err != nil {
			return errors.Wrap(err, "failed to lock column")
		}
	}
	return nil
}

// ApplyShift moves a contiguous position range by shift.Delta in one
// statement. The moved task is excluded by id in the WHERE clause itself, so
// no second read can race the filter.
func (r *PgTaskRepository) ApplyShift(ctx context.Context, organizationID, excludeTaskID uuid.UUID, shift services.Shift) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET position = position + $1, updated_at = now()
		WHERE organization_id = $2 AND status = $3 AND id <> $4 AND position >= $5`
	args := []any{shift.Delta, organizationID, string(shift.Status), excludeTaskID, shift.Lower}
	if shift.Upper != services.NoUpperBound {
		query += ` AND position <= $6`
		args = append(args, shift.Upper)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to shift positions")
	}
	return nil
}

func (r *PgTaskRepository) List(ctx context.Context, organizationID uuid.UUID, filter services.ListFilter) ([]task.Task, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"t.organization_id = $1"}
	args := []any{organizationID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("t.status = $%d", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("t.priority = $%d", string(*filter.Priority))
	}
	if filter.Category != nil {
		add("t.category = $%d", *filter.Category)
	}
	if filter.AssigneeID != nil {
		add("t.assignee_id = $%d", *filter.AssigneeID)
	}
	if filter.DueBefore != nil {
		add("t.due_date <= $%d", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		add("t.due_date >= $%d", *filter.DueAfter)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		add("t.title ILIKE $%d", "%"+search+"%")
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks t WHERE ` + whereClause
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count tasks")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	listQuery := fmt.Sprintf(
		`SELECT`+taskSelectColumns+` FROM tasks t WHERE %s ORDER BY t.status, t.position LIMIT $%d OFFSET $%d`,
		whereClause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := tx.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list tasks")
	}
	defer rows.Close()

	out := make([]task.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
