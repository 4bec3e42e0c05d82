package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

func TestValidateTargetPosition(t *testing.T) {
	require.NoError(t, ValidateTargetPosition(0))
	require.NoError(t, ValidateTargetPosition(42))

	err := ValidateTargetPosition(-1)
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
	assert.Equal(t, CodeNegativePosition, svcErr.Code)
}

func TestAppendPlacement(t *testing.T) {
	t.Run("empty column starts at zero", func(t *testing.T) {
		p := AppendPlacement(task.StatusTodo, 0, false)
		assert.Equal(t, 0, p.Position)
		assert.Empty(t, p.Shifts)
	})

	t.Run("appends after the current tail", func(t *testing.T) {
		p := AppendPlacement(task.StatusTodo, 4, true)
		assert.Equal(t, 5, p.Position)
		assert.Empty(t, p.Shifts)
	})
}

func TestMoveWithinColumn(t *testing.T) {
	t.Run("moving down shifts the gap left behind", func(t *testing.T) {
		// Column of five, task at 1 moves to 3: tasks at 2..3 step down.
		p, err := MoveWithinColumn(task.StatusTodo, 1, 3, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Position)
		require.Len(t, p.Shifts, 1)
		assert.Equal(t, Shift{Status: task.StatusTodo, Lower: 2, Upper: 3, Delta: -1}, p.Shifts[0])
	})

	t.Run("moving up shifts the displaced block", func(t *testing.T) {
		// Task at 3 moves to 1: tasks at 1..2 step up.
		p, err := MoveWithinColumn(task.StatusTodo, 3, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Position)
		require.Len(t, p.Shifts, 1)
		assert.Equal(t, Shift{Status: task.StatusTodo, Lower: 1, Upper: 2, Delta: +1}, p.Shifts[0])
	})

	t.Run("same position is a no-op", func(t *testing.T) {
		p, err := MoveWithinColumn(task.StatusTodo, 2, 2, 4)
		require.NoError(t, err)
		assert.True(t, p.IsNoop(task.StatusTodo, 2))
		assert.Empty(t, p.Shifts)
	})

	t.Run("target past the tail clamps to the tail", func(t *testing.T) {
		p, err := MoveWithinColumn(task.StatusTodo, 0, 99, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Position)
	})

	t.Run("clamped target equal to current is a no-op", func(t *testing.T) {
		p, err := MoveWithinColumn(task.StatusTodo, 4, 99, 4)
		require.NoError(t, err)
		assert.True(t, p.IsNoop(task.StatusTodo, 4))
	})

	t.Run("negative target is rejected", func(t *testing.T) {
		_, err := MoveWithinColumn(task.StatusTodo, 2, -1, 4)
		require.Error(t, err)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeNegativePosition, svcErr.Code)
	})
}

func TestMoveAcrossColumns(t *testing.T) {
	t.Run("explicit target opens a slot and closes the gap", func(t *testing.T) {
		target := 1
		p, err := MoveAcrossColumns(task.StatusTodo, 2, task.StatusInProgress, &target, 3, true)
		require.NoError(t, err)
		assert.Equal(t, task.StatusInProgress, p.Status)
		assert.Equal(t, 1, p.Position)
		require.Len(t, p.Shifts, 2)
		assert.Equal(t, Shift{Status: task.StatusTodo, Lower: 3, Upper: NoUpperBound, Delta: -1}, p.Shifts[0])
		assert.Equal(t, Shift{Status: task.StatusInProgress, Lower: 1, Upper: NoUpperBound, Delta: +1}, p.Shifts[1])
	})

	t.Run("nil target appends to the destination", func(t *testing.T) {
		p, err := MoveAcrossColumns(task.StatusTodo, 0, task.StatusDone, nil, 2, true)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Position)
		require.Len(t, p.Shifts, 1)
		assert.Equal(t, Shift{Status: task.StatusTodo, Lower: 1, Upper: NoUpperBound, Delta: -1}, p.Shifts[0])
	})

	t.Run("empty destination lands at zero without insert shift", func(t *testing.T) {
		target := 5
		p, err := MoveAcrossColumns(task.StatusTodo, 1, task.StatusReview, &target, 0, false)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Position)
		require.Len(t, p.Shifts, 1)
	})

	t.Run("target past the destination tail clamps to one past it", func(t *testing.T) {
		target := 99
		p, err := MoveAcrossColumns(task.StatusTodo, 0, task.StatusDone, &target, 2, true)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Position)
		// Appending at the clamped tail shifts no destination sibling.
		require.Len(t, p.Shifts, 1)
	})

	t.Run("negative target is rejected", func(t *testing.T) {
		target := -3
		_, err := MoveAcrossColumns(task.StatusTodo, 0, task.StatusDone, &target, 2, true)
		require.Error(t, err)
	})
}

func TestRemovalShift(t *testing.T) {
	s := RemovalShift(task.StatusTodo, 2)
	assert.Equal(t, Shift{Status: task.StatusTodo, Lower: 3, Upper: NoUpperBound, Delta: -1}, s)
}
