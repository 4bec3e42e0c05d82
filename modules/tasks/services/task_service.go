package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

const auditResourceTask = "task"

type CreateTaskInput struct {
	Title       string
	Description string
	Status      *task.Status
	Priority    *task.Priority
	Category    string
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *task.Status
	Priority    *task.Priority
	Category    *string
	DueDate     **time.Time
	Position    *int
	AssigneeID  **uuid.UUID
}

type TaskPage struct {
	Data  []task.Task `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// TaskService is the only write path for tasks. Every externally invoked
// operation runs membership resolution, then the authorization policy, then
// (when positions are involved) the coordinator, and finally emits a
// best-effort audit event for both the success and the denial path.
type TaskService struct {
	repo        TaskRepository
	policy      *AuthorizationPolicy
	coordinator *Coordinator
	audit       AuditRecorder
	publisher   eventbus.EventBus
	log         *logrus.Logger
}

func NewTaskService(
	repo TaskRepository,
	policy *AuthorizationPolicy,
	coordinator *Coordinator,
	audit AuditRecorder,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *TaskService {
	return &TaskService{
		repo:        repo,
		policy:      policy,
		coordinator: coordinator,
		audit:       audit,
		publisher:   publisher,
		log:         log,
	}
}

func (s *TaskService) recordOutcome(ctx context.Context, action string, resourceID, actorID, organizationID uuid.UUID, meta map[string]any, opErr error) {
	if meta == nil {
		meta = map[string]any{}
	}
	if opErr != nil {
		meta["outcome"] = "denied"
		if code := denialCode(opErr); code != "" {
			meta["denial_code"] = code
		}
	} else {
		meta["outcome"] = "ok"
	}
	emitAudit(ctx, s.log, s.audit, AuditEntry{
		Action:         action,
		Resource:       auditResourceTask,
		ResourceID:     resourceID,
		ActorID:        actorID,
		OrganizationID: organizationID,
		Metadata:       meta,
	})
}

// Create appends a new task to its column. Tasks are never inserted through
// any other path, which keeps position assignment centralized.
func (s *TaskService) Create(ctx context.Context, organizationID, actorID uuid.UUID, in CreateTaskInput) (created task.Task, err error) {
	defer func() {
		s.recordOutcome(ctx, "task.create", created.ID(), actorID, organizationID, nil, err)
	}()

	if in.Title == "" {
		return task.Task{}, badRequest("TASK_INVALID_BODY", "title is required")
	}

	if err = s.policy.AuthorizeCreate(ctx, actorID, organizationID, in.AssigneeID); err != nil {
		return task.Task{}, err
	}

	opts := []task.Option{
		task.WithDescription(in.Description),
		task.WithCategory(in.Category),
		task.WithDueDate(in.DueDate),
		task.WithAssigneeID(in.AssigneeID),
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return task.Task{}, badRequest("TASK_INVALID_BODY", "invalid status")
		}
		opts = append(opts, task.WithStatus(*in.Status))
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return task.Task{}, badRequest("TASK_INVALID_BODY", "invalid priority")
		}
		opts = append(opts, task.WithPriority(*in.Priority))
	}

	created, err = s.coordinator.CreateAppended(ctx, task.New(organizationID, in.Title, actorID, opts...))
	if err != nil {
		err = mapPgError(err)
		return task.Task{}, err
	}

	s.publisher.Publish(task.NewCreatedEvent(actorID, created))
	return created, nil
}

// Update applies a field patch. Status changes are position changes: they go
// through the coordinator's cross-column path atomically with the patch.
func (s *TaskService) Update(ctx context.Context, organizationID, taskID, actorID uuid.UUID, in UpdateTaskInput) (updated task.Task, err error) {
	meta := map[string]any{}
	defer func() {
		s.recordOutcome(ctx, "task.update", taskID, actorID, organizationID, meta, err)
	}()

	if in.Position != nil {
		if err = ValidateTargetPosition(*in.Position); err != nil {
			return task.Task{}, err
		}
	}
	if in.Status != nil && !in.Status.IsValid() {
		err = badRequest("TASK_INVALID_BODY", "invalid status")
		return task.Task{}, err
	}
	if in.Priority != nil && !in.Priority.IsValid() {
		err = badRequest("TASK_INVALID_BODY", "invalid priority")
		return task.Task{}, err
	}

	snapshot, err := s.repo.GetByID(ctx, organizationID, taskID)
	if err != nil {
		err = mapPgError(err)
		return task.Task{}, err
	}

	var newAssignee *uuid.UUID
	assigneeChanged := in.AssigneeID != nil
	if assigneeChanged {
		newAssignee = *in.AssigneeID
	}
	if err = s.policy.AuthorizeUpdate(ctx, actorID, snapshot, newAssignee, assigneeChanged); err != nil {
		return task.Task{}, err
	}

	before, after, err := s.coordinator.Mutate(ctx, organizationID, taskID, func(current task.Task) (task.Task, *int, error) {
		next := current
		if in.Title != nil {
			next = next.WithTitle(*in.Title)
		}
		if in.Description != nil {
			next = next.WithDescription(*in.Description)
		}
		if in.Status != nil {
			next = next.WithStatus(*in.Status)
		}
		if in.Priority != nil {
			next = next.WithPriority(*in.Priority)
		}
		if in.Category != nil {
			next = next.WithCategory(*in.Category)
		}
		if in.DueDate != nil {
			next = next.WithDueDate(*in.DueDate)
		}
		if assigneeChanged {
			next = next.WithAssigneeID(newAssignee)
		}
		return next, in.Position, nil
	})
	if err != nil {
		err = mapPgError(err)
		return task.Task{}, err
	}

	meta["old_status"] = string(before.Status())
	meta["new_status"] = string(after.Status())
	meta["old_position"] = before.Position()
	meta["new_position"] = after.Position()

	if before.Status() != after.Status() || before.Position() != after.Position() {
		s.publisher.Publish(task.NewMovedEvent(actorID, before.Status(), before.Position(), after))
	}
	s.publisher.Publish(task.NewUpdatedEvent(actorID, before, after))
	return after, nil
}

// Delete removes a task and compacts its column. Creatorship or assignment
// never substitutes for the admin floor here.
func (s *TaskService) Delete(ctx context.Context, organizationID, taskID, actorID uuid.UUID) (err error) {
	defer func() {
		s.recordOutcome(ctx, "task.delete", taskID, actorID, organizationID, nil, err)
	}()

	if err = s.policy.AuthorizeDelete(ctx, actorID, organizationID); err != nil {
		return err
	}

	deleted, err := s.coordinator.Delete(ctx, organizationID, taskID)
	if err != nil {
		err = mapPgError(err)
		return err
	}

	s.publisher.Publish(task.NewDeletedEvent(actorID, deleted))
	return nil
}

// Reorder repositions a task inside its column. Reordering a task onto its
// current position is a no-op: nothing is written and no audit event is
// emitted.
func (s *TaskService) Reorder(ctx context.Context, organizationID, taskID, actorID uuid.UUID, newPosition int) (task.Task, error) {
	// Validated before any row, sibling or otherwise, is read.
	if err := ValidateTargetPosition(newPosition); err != nil {
		s.recordOutcome(ctx, "task.reorder", taskID, actorID, organizationID, nil, err)
		return task.Task{}, err
	}

	if err := s.policy.AuthorizeReorder(ctx, actorID, organizationID); err != nil {
		s.recordOutcome(ctx, "task.reorder", taskID, actorID, organizationID, nil, err)
		return task.Task{}, err
	}

	before, after, moved, err := s.coordinator.Reorder(ctx, organizationID, taskID, newPosition)
	if err != nil {
		err = mapPgError(err)
		s.recordOutcome(ctx, "task.reorder", taskID, actorID, organizationID, nil, err)
		return task.Task{}, err
	}
	if !moved {
		return after, nil
	}

	s.recordOutcome(ctx, "task.reorder", taskID, actorID, organizationID, map[string]any{
		"old_status":   string(before.Status()),
		"new_status":   string(after.Status()),
		"old_position": before.Position(),
		"new_position": after.Position(),
	}, nil)
	s.publisher.Publish(task.NewMovedEvent(actorID, before.Status(), before.Position(), after))
	return after, nil
}

// GetByID is the read path; it requires any membership.
func (s *TaskService) GetByID(ctx context.Context, organizationID, taskID, actorID uuid.UUID) (task.Task, error) {
	if err := s.policy.AuthorizeRead(ctx, actorID, organizationID); err != nil {
		return task.Task{}, err
	}
	t, err := s.repo.GetByID(ctx, organizationID, taskID)
	if err != nil {
		return task.Task{}, mapPgError(err)
	}
	return t, nil
}

// List returns one page of the organization's tasks ordered by
// (status, position). The position engine is not involved.
func (s *TaskService) List(ctx context.Context, organizationID, actorID uuid.UUID, filter ListFilter) (TaskPage, error) {
	if err := s.policy.AuthorizeRead(ctx, actorID, organizationID); err != nil {
		return TaskPage{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 25
	}
	data, total, err := s.repo.List(ctx, organizationID, filter)
	if err != nil {
		return TaskPage{}, mapPgError(err)
	}
	return TaskPage{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
