package task

import "github.com/google/uuid"

type CreatedEvent struct {
	ActorID uuid.UUID
	Result  Task
}

func NewCreatedEvent(actorID uuid.UUID, result Task) *CreatedEvent {
	return &CreatedEvent{ActorID: actorID, Result: result}
}

type UpdatedEvent struct {
	ActorID uuid.UUID
	Before  Task
	Result  Task
}

func NewUpdatedEvent(actorID uuid.UUID, before, result Task) *UpdatedEvent {
	return &UpdatedEvent{ActorID: actorID, Before: before, Result: result}
}

// MovedEvent is published for reorders and status moves.
type MovedEvent struct {
	ActorID     uuid.UUID
	OldStatus   Status
	OldPosition int
	Result      Task
}

func NewMovedEvent(actorID uuid.UUID, oldStatus Status, oldPosition int, result Task) *MovedEvent {
	return &MovedEvent{ActorID: actorID, OldStatus: oldStatus, OldPosition: oldPosition, Result: result}
}

type DeletedEvent struct {
	ActorID uuid.UUID
	Result  Task
}

func NewDeletedEvent(actorID uuid.UUID, result Task) *DeletedEvent {
	return &DeletedEvent{ActorID: actorID, Result: result}
}
