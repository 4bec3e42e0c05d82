package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/aggregates/user"
	"github.com/taskdeck/taskdeck/pkg/constants"
)

type RegisterUserDTO struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=255"`
}

func (dto *RegisterUserDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:          u.ID(),
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		CreatedAt:   u.CreatedAt(),
	}
}
