package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/core/domain/entities/organization"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

// OrganizationService creates and reads tenants. Creating an organization
// creates the creator's owner membership in the same transaction, so a fresh
// organization can never exist without an owner.
type OrganizationService struct {
	orgs        organization.Repository
	memberships membership.Repository
	runner      TxRunner
	publisher   eventbus.EventBus
}

func NewOrganizationService(
	orgs organization.Repository,
	memberships membership.Repository,
	runner TxRunner,
	publisher eventbus.EventBus,
) *OrganizationService {
	return &OrganizationService{orgs: orgs, memberships: memberships, runner: runner, publisher: publisher}
}

// Create creates a root organization.
func (s *OrganizationService) Create(ctx context.Context, actorID uuid.UUID, name string) (organization.Organization, error) {
	return s.create(ctx, actorID, organization.New(name, actorID))
}

// CreateSub creates a sub-organization. The parent must itself be a root
// organization: nesting is limited to one level, chains are rejected. The
// actor must hold at least admin in the parent.
func (s *OrganizationService) CreateSub(ctx context.Context, actorID uuid.UUID, name string, parentID uuid.UUID) (organization.Organization, error) {
	parent, err := s.orgs.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, organization.ErrOrganizationNotFound) {
			return organization.Organization{}, newServiceError(http.StatusNotFound, "ORG_PARENT_NOT_FOUND", "parent organization not found", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	if !parent.IsRoot() {
		return organization.Organization{}, newServiceError(http.StatusUnprocessableEntity, "ORG_NESTING_TOO_DEEP", "parent must be a root organization", nil)
	}

	actorRole, err := s.memberships.GetByUserAndOrg(ctx, actorID, parentID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return organization.Organization{}, newServiceError(http.StatusForbidden, "MEMBERSHIP_NO_MEMBERSHIP", "actor holds no membership in the parent organization", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	if !actorRole.Role().Satisfies(membership.RoleAdmin) {
		return organization.Organization{}, newServiceError(http.StatusForbidden, "MEMBERSHIP_ROLE_INSUFFICIENT", "creating sub-organizations requires the admin role", nil)
	}

	return s.create(ctx, actorID, organization.NewSub(name, parentID, actorID))
}

func (s *OrganizationService) create(ctx context.Context, actorID uuid.UUID, o organization.Organization) (organization.Organization, error) {
	if strings.TrimSpace(o.Name()) == "" {
		return organization.Organization{}, newServiceError(http.StatusBadRequest, "ORG_INVALID_BODY", "name is required", nil)
	}

	var created organization.Organization
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.orgs.Create(txCtx, o)
		if err != nil {
			return err
		}
		_, err = s.memberships.Create(txCtx, membership.New(actorID, created.ID(), membership.RoleOwner))
		return err
	})
	if err != nil {
		return organization.Organization{}, mapPgError(err)
	}
	return created, nil
}

// GetByID requires any membership in the organization.
func (s *OrganizationService) GetByID(ctx context.Context, actorID, organizationID uuid.UUID) (organization.Organization, error) {
	if _, err := s.memberships.GetByUserAndOrg(ctx, actorID, organizationID); err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return organization.Organization{}, newServiceError(http.StatusForbidden, "MEMBERSHIP_NO_MEMBERSHIP", "actor holds no membership in this organization", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	o, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, organization.ErrOrganizationNotFound) {
			return organization.Organization{}, newServiceError(http.StatusNotFound, "ORG_NOT_FOUND", "organization not found", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	return o, nil
}

// ListForUser returns the organizations the actor belongs to.
func (s *OrganizationService) ListForUser(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]organization.Organization, int64, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	orgs, total, err := s.orgs.GetPaginated(ctx, &organization.FindParams{UserID: actorID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, mapPgError(err)
	}
	return orgs, total, nil
}
