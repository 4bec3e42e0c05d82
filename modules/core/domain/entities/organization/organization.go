package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant. A sub-organization references its parent; the
// parent must itself be a root (one level of nesting, no chains).
type Organization struct {
	id          uuid.UUID
	name        string
	parentID    *uuid.UUID
	createdByID uuid.UUID
	createdAt   time.Time
	updatedAt   time.Time
}

func New(name string, createdByID uuid.UUID) Organization {
	return Organization{
		name:        strings.TrimSpace(name),
		createdByID: createdByID,
	}
}

func NewSub(name string, parentID uuid.UUID, createdByID uuid.UUID) Organization {
	o := New(name, createdByID)
	o.parentID = &parentID
	return o
}

func Hydrate(
	id uuid.UUID,
	name string,
	parentID *uuid.UUID,
	createdByID uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Organization {
	return Organization{
		id:          id,
		name:        strings.TrimSpace(name),
		parentID:    parentID,
		createdByID: createdByID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (o Organization) ID() uuid.UUID          { return o.id }
func (o Organization) Name() string           { return o.name }
func (o Organization) ParentID() *uuid.UUID   { return o.parentID }
func (o Organization) CreatedByID() uuid.UUID { return o.createdByID }
func (o Organization) CreatedAt() time.Time   { return o.createdAt }
func (o Organization) UpdatedAt() time.Time   { return o.updatedAt }
func (o Organization) IsRoot() bool           { return o.parentID == nil }
