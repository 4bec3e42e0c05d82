package membership

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrMembershipNotFound = errors.New("membership not found")

type Repository interface {
	GetByUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (Membership, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]Membership, error)
	// CountOwners locks the organization's owner rows for the duration of the
	// surrounding transaction, so last-owner checks cannot race.
	CountOwners(ctx context.Context, organizationID uuid.UUID) (int64, error)
	Create(ctx context.Context, m Membership) (Membership, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) (Membership, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
