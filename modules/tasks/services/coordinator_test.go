package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

type columnLock struct {
	status task.Status
	rows   int
}

// lockRecordingTaskRepository reports row locking support and records every
// column lock together with how many rows the column held at lock time.
type lockRecordingTaskRepository struct {
	*memTaskRepository
	lockMu sync.Mutex
	locks  []columnLock
}

func newLockRecordingTaskRepository() *lockRecordingTaskRepository {
	return &lockRecordingTaskRepository{memTaskRepository: newMemTaskRepository()}
}

func (r *lockRecordingTaskRepository) SupportsRowLocking() bool { return true }

func (r *lockRecordingTaskRepository) LockColumn(_ context.Context, organizationID uuid.UUID, statuses ...task.Status) error {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	for _, s := range statuses {
		r.locks = append(r.locks, columnLock{status: s, rows: len(r.positions(organizationID, s))})
	}
	return nil
}

func (r *lockRecordingTaskRepository) locked() []columnLock {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	return append([]columnLock(nil), r.locks...)
}

func TestCoordinator_CreateLocksEmptyColumn(t *testing.T) {
	repo := newLockRecordingTaskRepository()
	c := NewCoordinator(repo, memTxRunner{})
	orgID := uuid.New()

	created, err := c.CreateAppended(context.Background(), task.New(orgID, "first", uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, 0, created.Position())

	locks := repo.locked()
	require.Len(t, locks, 1)
	assert.Equal(t, task.StatusTodo, locks[0].status)
	// The column must be serialized before any row exists in it, otherwise
	// two concurrent appends both read the same max position.
	assert.Equal(t, 0, locks[0].rows)
}

func TestCoordinator_MoveLocksBothColumns(t *testing.T) {
	repo := newLockRecordingTaskRepository()
	c := NewCoordinator(repo, memTxRunner{})
	orgID := uuid.New()

	created, err := c.CreateAppended(context.Background(), task.New(orgID, "movable", uuid.New()))
	require.NoError(t, err)

	_, _, err = c.Mutate(context.Background(), orgID, created.ID(), func(current task.Task) (task.Task, *int, error) {
		return current.WithStatus(task.StatusDone), nil, nil
	})
	require.NoError(t, err)

	locks := repo.locked()
	statuses := make(map[task.Status]bool, len(locks))
	for _, l := range locks {
		statuses[l.status] = true
	}
	assert.True(t, statuses[task.StatusTodo])
	// The destination column is empty and still has to be serialized.
	assert.True(t, statuses[task.StatusDone])
}

func TestCoordinator_SkipsLocksWithoutRowLocking(t *testing.T) {
	repo := newMemTaskRepository()
	c := NewCoordinator(repo, memTxRunner{})
	orgID := uuid.New()

	created, err := c.CreateAppended(context.Background(), task.New(orgID, "unlocked", uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, 0, created.Position())
}
