package membership

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to an organization with exactly one role.
type Membership struct {
	id             uuid.UUID
	userID         uuid.UUID
	organizationID uuid.UUID
	role           Role
	createdAt      time.Time
	updatedAt      time.Time
}

func New(userID, organizationID uuid.UUID, role Role) Membership {
	return Membership{
		userID:         userID,
		organizationID: organizationID,
		role:           role,
	}
}

func Hydrate(
	id uuid.UUID,
	userID uuid.UUID,
	organizationID uuid.UUID,
	role Role,
	createdAt time.Time,
	updatedAt time.Time,
) Membership {
	return Membership{
		id:             id,
		userID:         userID,
		organizationID: organizationID,
		role:           role,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (m Membership) ID() uuid.UUID             { return m.id }
func (m Membership) UserID() uuid.UUID         { return m.userID }
func (m Membership) OrganizationID() uuid.UUID { return m.organizationID }
func (m Membership) Role() Role                { return m.role }
func (m Membership) CreatedAt() time.Time      { return m.createdAt }
func (m Membership) UpdatedAt() time.Time      { return m.updatedAt }
func (m Membership) IsOwner() bool             { return m.role == RoleOwner }

func (m Membership) WithRole(role Role) Membership {
	m.role = role
	return m
}
