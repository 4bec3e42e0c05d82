package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single board item. Position is maintained exclusively by the
// task service; no other writer touches it.
type Task struct {
	id             uuid.UUID
	organizationID uuid.UUID
	title          string
	description    string
	status         Status
	priority       Priority
	category       string
	dueDate        *time.Time
	position       int
	createdByID    uuid.UUID
	assigneeID     *uuid.UUID
	createdAt      time.Time
	updatedAt      time.Time
}

func New(organizationID uuid.UUID, title string, createdByID uuid.UUID, opts ...Option) Task {
	t := Task{
		organizationID: organizationID,
		title:          strings.TrimSpace(title),
		status:         StatusTodo,
		priority:       PriorityMedium,
		createdByID:    createdByID,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

type Option func(*Task)

func WithDescription(description string) Option {
	return func(t *Task) { t.description = strings.TrimSpace(description) }
}

func WithStatus(status Status) Option {
	return func(t *Task) { t.status = status }
}

func WithPriority(priority Priority) Option {
	return func(t *Task) { t.priority = priority }
}

func WithCategory(category string) Option {
	return func(t *Task) { t.category = strings.TrimSpace(category) }
}

func WithDueDate(dueDate *time.Time) Option {
	return func(t *Task) { t.dueDate = dueDate }
}

func WithAssigneeID(assigneeID *uuid.UUID) Option {
	return func(t *Task) { t.assigneeID = assigneeID }
}

func Hydrate(
	id uuid.UUID,
	organizationID uuid.UUID,
	title string,
	description string,
	status Status,
	priority Priority,
	category string,
	dueDate *time.Time,
	position int,
	createdByID uuid.UUID,
	assigneeID *uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Task {
	return Task{
		id:             id,
		organizationID: organizationID,
		title:          title,
		description:    description,
		status:         status,
		priority:       priority,
		category:       category,
		dueDate:        dueDate,
		position:       position,
		createdByID:    createdByID,
		assigneeID:     assigneeID,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (t Task) ID() uuid.UUID             { return t.id }
func (t Task) OrganizationID() uuid.UUID { return t.organizationID }
func (t Task) Title() string             { return t.title }
func (t Task) Description() string       { return t.description }
func (t Task) Status() Status            { return t.status }
func (t Task) Priority() Priority        { return t.priority }
func (t Task) Category() string          { return t.category }
func (t Task) DueDate() *time.Time       { return t.dueDate }
func (t Task) Position() int             { return t.position }
func (t Task) CreatedByID() uuid.UUID    { return t.createdByID }
func (t Task) AssigneeID() *uuid.UUID    { return t.assigneeID }
func (t Task) CreatedAt() time.Time      { return t.createdAt }
func (t Task) UpdatedAt() time.Time      { return t.updatedAt }

func (t Task) IsCreatedBy(userID uuid.UUID) bool { return t.createdByID == userID }

func (t Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.assigneeID != nil && *t.assigneeID == userID
}

func (t Task) WithTitle(title string) Task {
	t.title = strings.TrimSpace(title)
	return t
}

func (t Task) WithDescription(description string) Task {
	t.description = strings.TrimSpace(description)
	return t
}

func (t Task) WithStatus(status Status) Task {
	t.status = status
	return t
}

func (t Task) WithPriority(priority Priority) Task {
	t.priority = priority
	return t
}

func (t Task) WithCategory(category string) Task {
	t.category = strings.TrimSpace(category)
	return t
}

func (t Task) WithDueDate(dueDate *time.Time) Task {
	t.dueDate = dueDate
	return t
}

func (t Task) WithPosition(position int) Task {
	t.position = position
	return t
}

func (t Task) WithAssigneeID(assigneeID *uuid.UUID) Task {
	t.assigneeID = assigneeID
	return t
}
