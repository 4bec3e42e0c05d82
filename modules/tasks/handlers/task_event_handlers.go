package handlers

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

// TaskEventsHandler mirrors task lifecycle events into the structured log,
// so every board mutation leaves a trace keyed by actor and task.
type TaskEventsHandler struct {
	log *logrus.Logger
}

func RegisterTaskEventHandlers(bus eventbus.EventBus, log *logrus.Logger) *TaskEventsHandler {
	handler := &TaskEventsHandler{log: log}
	bus.Subscribe(handler.onTaskCreated)
	bus.Subscribe(handler.onTaskUpdated)
	bus.Subscribe(handler.onTaskMoved)
	bus.Subscribe(handler.onTaskDeleted)
	return handler
}

func (h *TaskEventsHandler) onTaskCreated(event *task.CreatedEvent) {
	h.taskFields(event.ActorID, event.Result).Info("task created")
}

func (h *TaskEventsHandler) onTaskUpdated(event *task.UpdatedEvent) {
	h.taskFields(event.ActorID, event.Result).Info("task updated")
}

func (h *TaskEventsHandler) onTaskMoved(event *task.MovedEvent) {
	h.taskFields(event.ActorID, event.Result).WithFields(logrus.Fields{
		"old_status":   string(event.OldStatus),
		"old_position": event.OldPosition,
	}).Info("task moved")
}

func (h *TaskEventsHandler) onTaskDeleted(event *task.DeletedEvent) {
	h.taskFields(event.ActorID, event.Result).Info("task deleted")
}

func (h *TaskEventsHandler) taskFields(actorID uuid.UUID, t task.Task) *logrus.Entry {
	return h.log.WithFields(logrus.Fields{
		"actor_id":        actorID,
		"task_id":         t.ID(),
		"organization_id": t.OrganizationID(),
		"status":          string(t.Status()),
		"position":        t.Position(),
	})
}
