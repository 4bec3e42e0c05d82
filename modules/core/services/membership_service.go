package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
)

// TxRunner is the storage transaction primitive injected into core services.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// MembershipService manages the (user, organization) → role bindings.
// Every organization keeps at least one owner at all times: downgrading or
// removing the last owner is rejected inside the same transaction that
// counts the remaining owners.
type MembershipService struct {
	memberships membership.Repository
	runner      TxRunner
	publisher   eventbus.EventBus
}

func NewMembershipService(memberships membership.Repository, runner TxRunner, publisher eventbus.EventBus) *MembershipService {
	return &MembershipService{memberships: memberships, runner: runner, publisher: publisher}
}

// GetRole resolves the actor's role in the organization. Absence is
// signalled with membership.ErrMembershipNotFound.
func (s *MembershipService) GetRole(ctx context.Context, userID, organizationID uuid.UUID) (membership.Role, error) {
	m, err := s.memberships.GetByUserAndOrg(ctx, userID, organizationID)
	if err != nil {
		return "", err
	}
	return m.Role(), nil
}

func (s *MembershipService) requireRole(ctx context.Context, actorID, organizationID uuid.UUID, need membership.Role) (membership.Role, error) {
	role, err := s.GetRole(ctx, actorID, organizationID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return "", newServiceError(http.StatusForbidden, "MEMBERSHIP_NO_MEMBERSHIP", "actor holds no membership in this organization", err)
		}
		return "", err
	}
	if !role.Satisfies(need) {
		return "", newServiceError(http.StatusForbidden, "MEMBERSHIP_ROLE_INSUFFICIENT", "insufficient role", nil)
	}
	return role, nil
}

// ListByOrganization requires any membership.
func (s *MembershipService) ListByOrganization(ctx context.Context, actorID, organizationID uuid.UUID) ([]membership.Membership, error) {
	if _, err := s.requireRole(ctx, actorID, organizationID, membership.RoleViewer); err != nil {
		return nil, err
	}
	list, err := s.memberships.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, mapPgError(err)
	}
	return list, nil
}

// AddMember binds a user to the organization. Granting the owner role
// requires the actor to be an owner; any other grant requires admin.
func (s *MembershipService) AddMember(ctx context.Context, actorID, organizationID, userID uuid.UUID, role membership.Role) (membership.Membership, error) {
	if !role.IsValid() {
		return membership.Membership{}, newServiceError(http.StatusBadRequest, "MEMBERSHIP_INVALID_ROLE", "invalid role", nil)
	}
	need := membership.RoleAdmin
	if role == membership.RoleOwner {
		need = membership.RoleOwner
	}
	if _, err := s.requireRole(ctx, actorID, organizationID, need); err != nil {
		return membership.Membership{}, err
	}

	var created membership.Membership
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.memberships.Create(txCtx, membership.New(userID, organizationID, role))
		return err
	})
	if err != nil {
		return membership.Membership{}, mapPgError(err)
	}
	s.publisher.Publish(membership.NewAddedEvent(actorID, created))
	return created, nil
}

// ChangeRole updates a member's role, rejecting a downgrade of the last
// owner.
func (s *MembershipService) ChangeRole(ctx context.Context, actorID, organizationID, userID uuid.UUID, newRole membership.Role) (membership.Membership, error) {
	if !newRole.IsValid() {
		return membership.Membership{}, newServiceError(http.StatusBadRequest, "MEMBERSHIP_INVALID_ROLE", "invalid role", nil)
	}
	need := membership.RoleAdmin
	if newRole == membership.RoleOwner {
		need = membership.RoleOwner
	}
	if _, err := s.requireRole(ctx, actorID, organizationID, need); err != nil {
		return membership.Membership{}, err
	}

	var updated membership.Membership
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.memberships.GetByUserAndOrg(txCtx, userID, organizationID)
		if err != nil {
			return err
		}
		if current.IsOwner() && newRole != membership.RoleOwner {
			if err := s.requireAnotherOwner(txCtx, organizationID); err != nil {
				return err
			}
		}
		updated, err = s.memberships.UpdateRole(txCtx, current.ID(), newRole)
		return err
	})
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return membership.Membership{}, newServiceError(http.StatusNotFound, "MEMBERSHIP_NOT_FOUND", "membership not found", err)
		}
		return membership.Membership{}, mapPgError(err)
	}
	s.publisher.Publish(membership.NewRoleChangedEvent(actorID, updated))
	return updated, nil
}

// RemoveMember deletes the binding, rejecting removal of the last owner.
func (s *MembershipService) RemoveMember(ctx context.Context, actorID, organizationID, userID uuid.UUID) error {
	if _, err := s.requireRole(ctx, actorID, organizationID, membership.RoleAdmin); err != nil {
		return err
	}

	var removed membership.Membership
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.memberships.GetByUserAndOrg(txCtx, userID, organizationID)
		if err != nil {
			return err
		}
		if current.IsOwner() {
			if err := s.requireAnotherOwner(txCtx, organizationID); err != nil {
				return err
			}
		}
		removed = current
		return s.memberships.Delete(txCtx, current.ID())
	})
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return newServiceError(http.StatusNotFound, "MEMBERSHIP_NOT_FOUND", "membership not found", err)
		}
		return mapPgError(err)
	}
	s.publisher.Publish(membership.NewRemovedEvent(actorID, removed))
	return nil
}

// requireAnotherOwner runs inside the mutation transaction; CountOwners
// locks the owner rows so two concurrent removals cannot both pass.
func (s *MembershipService) requireAnotherOwner(ctx context.Context, organizationID uuid.UUID) error {
	owners, err := s.memberships.CountOwners(ctx, organizationID)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return newServiceError(http.StatusConflict, "MEMBERSHIP_LAST_OWNER", "organization must retain at least one owner", nil)
	}
	return nil
}
