package dtos

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
	"github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/constants"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type CreateTaskDTO struct {
	Title       string     `json:"title" validate:"required,max=500"`
	Description string     `json:"description" validate:"omitempty,max=10000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    string     `json:"category" validate:"omitempty,max=100"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateTaskDTO distinguishes absent from null for due_date and assignee_id
// with double pointers populated by custom unmarshalling in the controller.
type UpdateTaskDTO struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string     `json:"description" validate:"omitempty,max=10000"`
	Status      *string     `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	Priority    *string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    *string     `json:"category" validate:"omitempty,max=100"`
	Position    *int        `json:"position"`
	DueDate     **time.Time `json:"-"`
	AssigneeID  **uuid.UUID `json:"-"`
}

// UnmarshalJSON records whether due_date and assignee_id were present at all,
// so a PATCH can tell "clear this field" (explicit null) apart from "leave it
// alone" (absent).
func (dto *UpdateTaskDTO) UnmarshalJSON(data []byte) error {
	type alias UpdateTaskDTO
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*dto = UpdateTaskDTO(a)
	if raw, ok := keys["due_date"]; ok {
		var v *time.Time
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		dto.DueDate = &v
	}
	if raw, ok := keys["assignee_id"]; ok {
		var v *uuid.UUID
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		dto.AssigneeID = &v
	}
	return nil
}

type ReorderTaskDTO struct {
	Position int `json:"position"`
}

func validationMessages(errs error) (map[string]string, bool) {
	if errs == nil {
		return nil, true
	}
	out := map[string]string{}
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = err.Tag()
	}
	return out, false
}

func (dto *CreateTaskDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *UpdateTaskDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *CreateTaskDTO) ToInput() services.CreateTaskInput {
	in := services.CreateTaskInput{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		DueDate:     dto.DueDate,
		AssigneeID:  dto.AssigneeID,
	}
	if dto.Status != nil {
		s := task.Status(*dto.Status)
		in.Status = &s
	}
	if dto.Priority != nil {
		p := task.Priority(*dto.Priority)
		in.Priority = &p
	}
	return in
}

func (dto *UpdateTaskDTO) ToInput() services.UpdateTaskInput {
	in := services.UpdateTaskInput{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		Position:    dto.Position,
		DueDate:     dto.DueDate,
		AssigneeID:  dto.AssigneeID,
	}
	if dto.Status != nil {
		s := task.Status(*dto.Status)
		in.Status = &s
	}
	if dto.Priority != nil {
		p := task.Priority(*dto.Priority)
		in.Priority = &p
	}
	return in
}

type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Category       string     `json:"category"`
	DueDate        *time.Time `json:"due_date"`
	Position       int        `json:"position"`
	CreatedByID    uuid.UUID  `json:"created_by_id"`
	AssigneeID     *uuid.UUID `json:"assignee_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewTaskResponse(t task.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID(),
		OrganizationID: t.OrganizationID(),
		Title:          t.Title(),
		Description:    t.Description(),
		Status:         string(t.Status()),
		Priority:       string(t.Priority()),
		Category:       t.Category(),
		DueDate:        t.DueDate(),
		Position:       t.Position(),
		CreatedByID:    t.CreatedByID(),
		AssigneeID:     t.AssigneeID(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

type TaskPageResponse struct {
	Data  []TaskResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func NewTaskPageResponse(page services.TaskPage) TaskPageResponse {
	data := make([]TaskResponse, len(page.Data))
	for i, t := range page.Data {
		data[i] = NewTaskResponse(t)
	}
	return TaskPageResponse{Data: data, Total: page.Total, Page: page.Page, Limit: page.Limit}
}
