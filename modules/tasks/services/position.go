package services

import (
	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

// NoUpperBound marks a shift range that extends to the end of the column.
const NoUpperBound = -1

// Shift is one +1/-1 adjustment applied to every sibling whose position falls
// inside [Lower, Upper]. The moved task itself is always excluded by the
// repository's SQL condition, never by a separate read.
type Shift struct {
	Status task.Status
	Lower  int
	Upper  int
	Delta  int
}

// Placement is the outcome of a position computation: the sibling shifts to
// apply and the final (status, position) of the primary task.
type Placement struct {
	Status   task.Status
	Position int
	Shifts   []Shift
}

// IsNoop reports whether applying the placement to a task already at
// (status, position) would change nothing.
func (p Placement) IsNoop(status task.Status, position int) bool {
	return len(p.Shifts) == 0 && p.Status == status && p.Position == position
}

// ValidateTargetPosition rejects negative targets before any sibling row is
// read.
func ValidateTargetPosition(position int) error {
	if position < 0 {
		return badRequest(CodeNegativePosition, "position must not be negative")
	}
	return nil
}

// AppendPlacement computes the position for a task appended to a column:
// max+1, or 0 for an empty column. Appending never shifts siblings, which
// keeps creates from contending with mid-column reorders.
func AppendPlacement(status task.Status, maxPosition int, hasTasks bool) Placement {
	position := 0
	if hasTasks {
		position = maxPosition + 1
	}
	return Placement{Status: status, Position: position}
}

// MoveWithinColumn computes the shifts for repositioning a task inside its
// column. Targets past the column tail clamp to the tail. Moving a task onto
// its current position yields an empty placement.
func MoveWithinColumn(status task.Status, oldPosition, newPosition, maxPosition int) (Placement, error) {
	if err := ValidateTargetPosition(newPosition); err != nil {
		return Placement{}, err
	}
	if newPosition > maxPosition {
		newPosition = maxPosition
	}
	if newPosition == oldPosition {
		return Placement{Status: status, Position: oldPosition}, nil
	}

	var shift Shift
	if newPosition > oldPosition {
		shift = Shift{Status: status, Lower: oldPosition + 1, Upper: newPosition, Delta: -1}
	} else {
		shift = Shift{Status: status, Lower: newPosition, Upper: oldPosition - 1, Delta: +1}
	}
	return Placement{Status: status, Position: newPosition, Shifts: []Shift{shift}}, nil
}

// MoveAcrossColumns computes the shifts for moving a task between columns:
// close the gap it leaves behind, open a slot in the destination. A nil
// target position means append semantics on the destination.
func MoveAcrossColumns(
	oldStatus task.Status,
	oldPosition int,
	newStatus task.Status,
	newPosition *int,
	destMaxPosition int,
	destHasTasks bool,
) (Placement, error) {
	removal := RemovalShift(oldStatus, oldPosition)

	if newPosition == nil {
		appended := AppendPlacement(newStatus, destMaxPosition, destHasTasks)
		appended.Shifts = []Shift{removal}
		return appended, nil
	}

	if err := ValidateTargetPosition(*newPosition); err != nil {
		return Placement{}, err
	}

	target := *newPosition
	end := 0
	if destHasTasks {
		end = destMaxPosition + 1
	}
	if target > end {
		target = end
	}

	shifts := []Shift{removal}
	if target <= destMaxPosition && destHasTasks {
		shifts = append(shifts, Shift{Status: newStatus, Lower: target, Upper: NoUpperBound, Delta: +1})
	}
	return Placement{Status: newStatus, Position: target, Shifts: shifts}, nil
}

// RemovalShift closes the gap left when a task leaves oldPosition: every
// sibling above it moves down by one.
func RemovalShift(status task.Status, oldPosition int) Shift {
	return Shift{Status: status, Lower: oldPosition + 1, Upper: NoUpperBound, Delta: -1}
}
