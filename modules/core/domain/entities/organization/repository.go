package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type FindParams struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	// GetPaginated lists organizations the given user holds a membership in.
	GetPaginated(ctx context.Context, params *FindParams) ([]Organization, int64, error)
	Create(ctx context.Context, o Organization) (Organization, error)
}
