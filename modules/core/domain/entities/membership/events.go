package membership

import "github.com/google/uuid"

type AddedEvent struct {
	ActorID uuid.UUID
	Result  Membership
}

func NewAddedEvent(actorID uuid.UUID, result Membership) *AddedEvent {
	return &AddedEvent{ActorID: actorID, Result: result}
}

type RoleChangedEvent struct {
	ActorID uuid.UUID
	Result  Membership
}

func NewRoleChangedEvent(actorID uuid.UUID, result Membership) *RoleChangedEvent {
	return &RoleChangedEvent{ActorID: actorID, Result: result}
}

type RemovedEvent struct {
	ActorID uuid.UUID
	Result  Membership
}

func NewRemovedEvent(actorID uuid.UUID, result Membership) *RemovedEvent {
	return &RemovedEvent{ActorID: actorID, Result: result}
}
