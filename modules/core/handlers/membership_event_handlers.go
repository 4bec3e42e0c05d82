package handlers

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

// MembershipEventsHandler mirrors membership changes into the structured
// log. Role grants and removals are security-relevant, so each one is
// recorded with the acting user.
type MembershipEventsHandler struct {
	log *logrus.Logger
}

func RegisterMembershipEventHandlers(bus eventbus.EventBus, log *logrus.Logger) *MembershipEventsHandler {
	handler := &MembershipEventsHandler{log: log}
	bus.Subscribe(handler.onMemberAdded)
	bus.Subscribe(handler.onRoleChanged)
	bus.Subscribe(handler.onMemberRemoved)
	return handler
}

func (h *MembershipEventsHandler) onMemberAdded(event *membership.AddedEvent) {
	h.membershipFields(event.ActorID, event.Result).Info("member added")
}

func (h *MembershipEventsHandler) onRoleChanged(event *membership.RoleChangedEvent) {
	h.membershipFields(event.ActorID, event.Result).Info("member role changed")
}

func (h *MembershipEventsHandler) onMemberRemoved(event *membership.RemovedEvent) {
	h.membershipFields(event.ActorID, event.Result).Info("member removed")
}

func (h *MembershipEventsHandler) membershipFields(actorID uuid.UUID, m membership.Membership) *logrus.Entry {
	return h.log.WithFields(logrus.Fields{
		"actor_id":        actorID,
		"user_id":         m.UserID(),
		"organization_id": m.OrganizationID(),
		"role":            string(m.Role()),
	})
}
