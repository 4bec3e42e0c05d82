package handlers

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

func TestRegisterMembershipEventHandlers(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)

	bus := eventbus.NewEventPublisher(log)
	RegisterMembershipEventHandlers(bus, log)
	require.Equal(t, 3, bus.SubscribersCount())

	actorID := uuid.New()
	now := time.Now()
	m := membership.Hydrate(uuid.New(), uuid.New(), uuid.New(), membership.RoleViewer, now, now)

	bus.Publish(membership.NewAddedEvent(actorID, m))
	bus.Publish(membership.NewRoleChangedEvent(actorID, m.WithRole(membership.RoleAdmin)))
	bus.Publish(membership.NewRemovedEvent(actorID, m))

	output := logBuffer.String()
	assert.Contains(t, output, "member added")
	assert.Contains(t, output, "member role changed")
	assert.Contains(t, output, "member removed")
	assert.NotContains(t, output, "no matching subscribers")
}
