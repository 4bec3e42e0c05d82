package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

// TxRunner is the storage transaction primitive: it runs fn atomically and
// rolls the whole unit back on error.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type ListFilter struct {
	Status     *task.Status
	Priority   *task.Priority
	Category   *string
	AssigneeID *uuid.UUID
	DueBefore  *time.Time
	DueAfter   *time.Time
	Search     string
	Page       int
	Limit      int
}

// TaskRepository is the storage surface the task service is written against.
// GetByID and GetByIDForUpdate return ErrTaskNotFound for rows that are
// absent or belong to another organization.
type TaskRepository interface {
	GetByID(ctx context.Context, organizationID, taskID uuid.UUID) (task.Task, error)
	// GetByIDForUpdate acquires a write lock on the task row where the
	// backend supports row locking; otherwise it degrades to a plain read.
	GetByIDForUpdate(ctx context.Context, organizationID, taskID uuid.UUID) (task.Task, error)
	Insert(ctx context.Context, t task.Task) (task.Task, error)
	Update(ctx context.Context, t task.Task) (task.Task, error)
	Delete(ctx context.Context, organizationID, taskID uuid.UUID) error
	List(ctx context.Context, organizationID uuid.UUID, filter ListFilter) ([]task.Task, int64, error)
	MaxPosition(ctx context.Context, organizationID uuid.UUID, status task.Status) (int, bool, error)
	// LockColumn serializes writers of the given columns for the duration
	// of the surrounding transaction. The lock must cover columns that
	// currently hold no rows, so that concurrent appends into an empty
	// column cannot both observe the same max position.
	LockColumn(ctx context.Context, organizationID uuid.UUID, statuses ...task.Status) error
	// ApplyShift adjusts sibling positions in one statement. The excluded id
	// is filtered in the statement itself, not by a prior read.
	ApplyShift(ctx context.Context, organizationID, excludeTaskID uuid.UUID, shift Shift) error
	// SupportsRowLocking is a runtime capability of the backing store.
	SupportsRowLocking() bool
}

// Coordinator wraps one position computation plus the task's own row
// mutation in a single atomic unit. Columns are locked before deltas are
// computed, closing the race where two concurrent writers derive the same
// target position from stale reads. On backends without row locking the
// lock calls are skipped and transaction isolation is the only guarantee;
// two overlapping mutations may then race at the storage layer's discretion.
type Coordinator struct {
	repo   TaskRepository
	runner TxRunner
}

func NewCoordinator(repo TaskRepository, runner TxRunner) *Coordinator {
	return &Coordinator{repo: repo, runner: runner}
}

func (c *Coordinator) lockColumns(ctx context.Context, organizationID uuid.UUID, statuses ...task.Status) error {
	if !c.repo.SupportsRowLocking() {
		return nil
	}
	return c.repo.LockColumn(ctx, organizationID, statuses...)
}

func (c *Coordinator) applyShifts(ctx context.Context, organizationID, taskID uuid.UUID, shifts []Shift) error {
	for _, shift := range shifts {
		if err := c.repo.ApplyShift(ctx, organizationID, taskID, shift); err != nil {
			return err
		}
	}
	return nil
}

// CreateAppended inserts the task at the tail of its column.
func (c *Coordinator) CreateAppended(ctx context.Context, t task.Task) (task.Task, error) {
	var created task.Task
	err := c.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := c.lockColumns(txCtx, t.OrganizationID(), t.Status()); err != nil {
			return err
		}
		maxPos, hasTasks, err := c.repo.MaxPosition(txCtx, t.OrganizationID(), t.Status())
		if err != nil {
			return err
		}
		placement := AppendPlacement(t.Status(), maxPos, hasTasks)
		created, err = c.repo.Insert(txCtx, t.WithPosition(placement.Position))
		return err
	})
	if err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// Mutate applies a field patch and, when the patch changes the column or an
// explicit target position is given, the sibling shifts that keep both
// columns dense. apply receives the authoritative row read under lock.
func (c *Coordinator) Mutate(
	ctx context.Context,
	organizationID, taskID uuid.UUID,
	apply func(current task.Task) (task.Task, *int, error),
) (task.Task, task.Task, error) {
	var before, after task.Task
	err := c.runner.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := c.repo.GetByIDForUpdate(txCtx, organizationID, taskID)
		if err != nil {
			return err
		}
		before = current

		next, targetPos, err := apply(current)
		if err != nil {
			return err
		}

		switch {
		case next.Status() != current.Status():
			if err := c.lockColumns(txCtx, organizationID, current.Status(), next.Status()); err != nil {
				return err
			}
			destMax, destHasTasks, err := c.repo.MaxPosition(txCtx, organizationID, next.Status())
			if err != nil {
				return err
			}
			placement, err := MoveAcrossColumns(current.Status(), current.Position(), next.Status(), targetPos, destMax, destHasTasks)
			if err != nil {
				return err
			}
			if err := c.applyShifts(txCtx, organizationID, taskID, placement.Shifts); err != nil {
				return err
			}
			next = next.WithPosition(placement.Position)
		case targetPos != nil:
			if err := c.lockColumns(txCtx, organizationID, current.Status()); err != nil {
				return err
			}
			maxPos, _, err := c.repo.MaxPosition(txCtx, organizationID, current.Status())
			if err != nil {
				return err
			}
			placement, err := MoveWithinColumn(current.Status(), current.Position(), *targetPos, maxPos)
			if err != nil {
				return err
			}
			if err := c.applyShifts(txCtx, organizationID, taskID, placement.Shifts); err != nil {
				return err
			}
			next = next.WithPosition(placement.Position)
		default:
			next = next.WithPosition(current.Position())
		}

		after, err = c.repo.Update(txCtx, next)
		return err
	})
	if err != nil {
		return task.Task{}, task.Task{}, err
	}
	return before, after, nil
}

// Reorder repositions a task inside its current column. A target equal to
// the task's current position (directly or after clamping) is a documented
// no-op: no sibling is touched and no row is written.
func (c *Coordinator) Reorder(ctx context.Context, organizationID, taskID uuid.UUID, newPosition int) (task.Task, task.Task, bool, error) {
	var (
		before, after task.Task
		moved         bool
	)
	err := c.runner.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := c.repo.GetByIDForUpdate(txCtx, organizationID, taskID)
		if err != nil {
			return err
		}
		before = current
		after = current

		if newPosition == current.Position() {
			return nil
		}

		if err := c.lockColumns(txCtx, organizationID, current.Status()); err != nil {
			return err
		}
		maxPos, _, err := c.repo.MaxPosition(txCtx, organizationID, current.Status())
		if err != nil {
			return err
		}
		placement, err := MoveWithinColumn(current.Status(), current.Position(), newPosition, maxPos)
		if err != nil {
			return err
		}
		if placement.IsNoop(current.Status(), current.Position()) {
			return nil
		}
		if err := c.applyShifts(txCtx, organizationID, taskID, placement.Shifts); err != nil {
			return err
		}
		after, err = c.repo.Update(txCtx, current.WithPosition(placement.Position))
		if err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return task.Task{}, task.Task{}, false, err
	}
	return before, after, moved, nil
}

// Delete removes the row and compacts the column it leaves.
func (c *Coordinator) Delete(ctx context.Context, organizationID, taskID uuid.UUID) (task.Task, error) {
	var deleted task.Task
	err := c.runner.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := c.repo.GetByIDForUpdate(txCtx, organizationID, taskID)
		if err != nil {
			return err
		}
		if err := c.lockColumns(txCtx, organizationID, current.Status()); err != nil {
			return err
		}
		if err := c.repo.Delete(txCtx, organizationID, taskID); err != nil {
			return err
		}
		if err := c.repo.ApplyShift(txCtx, organizationID, taskID, RemovalShift(current.Status(), current.Position())); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return deleted, nil
}
