package dtos

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/core/domain/entities/organization"
	"github.com/taskdeck/taskdeck/pkg/constants"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

type CreateOrganizationDTO struct {
	Name     string     `json:"name" validate:"required,max=200"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type AddMemberDTO struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=viewer admin owner"`
}

type ChangeRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=viewer admin owner"`
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

func (dto *CreateOrganizationDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *AddMemberDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *ChangeRoleDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

type OrganizationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewOrganizationResponse(o organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID(),
		Name:      o.Name(),
		ParentID:  o.ParentID(),
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
}

type OrganizationPageResponse struct {
	Data  []OrganizationResponse `json:"data"`
	Total int64                  `json:"total"`
}

type MembershipResponse struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewMembershipResponse(m membership.Membership) MembershipResponse {
	return MembershipResponse{
		UserID:         m.UserID(),
		OrganizationID: m.OrganizationID(),
		Role:           string(m.Role()),
		CreatedAt:      m.CreatedAt(),
	}
}
