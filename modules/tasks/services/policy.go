package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

// MembershipLookup resolves (user, organization) to a role. Absence is
// signalled with membership.ErrMembershipNotFound.
type MembershipLookup interface {
	GetRole(ctx context.Context, userID, organizationID uuid.UUID) (membership.Role, error)
}

// AuthorizationPolicy is the single place the task permission rules live.
// The rule set is fixed and closed; route handlers never check roles
// themselves.
type AuthorizationPolicy struct {
	memberships MembershipLookup
}

func NewAuthorizationPolicy(memberships MembershipLookup) *AuthorizationPolicy {
	return &AuthorizationPolicy{memberships: memberships}
}

func (p *AuthorizationPolicy) roleOf(ctx context.Context, userID, organizationID uuid.UUID) (membership.Role, error) {
	role, err := p.memberships.GetRole(ctx, userID, organizationID)
	if err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return "", forbidden(CodeNoMembership, "actor holds no membership in this organization", err)
		}
		return "", err
	}
	return role, nil
}

// requireMember fails closed when the actor holds no membership at all.
func (p *AuthorizationPolicy) requireMember(ctx context.Context, actorID, organizationID uuid.UUID) (membership.Role, error) {
	return p.roleOf(ctx, actorID, organizationID)
}

func (p *AuthorizationPolicy) requireAssigneeMember(ctx context.Context, assigneeID *uuid.UUID, organizationID uuid.UUID) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := p.memberships.GetRole(ctx, *assigneeID, organizationID); err != nil {
		if errors.Is(err, membership.ErrMembershipNotFound) {
			return forbidden(CodeAssigneeNotMember, "assignee holds no membership in this organization", err)
		}
		return err
	}
	return nil
}

// AuthorizeCreate requires at least admin, and a same-organization membership
// for any named assignee.
func (p *AuthorizationPolicy) AuthorizeCreate(ctx context.Context, actorID, organizationID uuid.UUID, assigneeID *uuid.UUID) error {
	role, err := p.requireMember(ctx, actorID, organizationID)
	if err != nil {
		return err
	}
	if !role.Satisfies(membership.RoleAdmin) {
		return forbidden(CodeRoleInsufficient, "creating tasks requires the admin role", nil)
	}
	return p.requireAssigneeMember(ctx, assigneeID, organizationID)
}

// AuthorizeRead requires any membership; there is no role floor on reads.
func (p *AuthorizationPolicy) AuthorizeRead(ctx context.Context, actorID, organizationID uuid.UUID) error {
	_, err := p.requireMember(ctx, actorID, organizationID)
	return err
}

// AuthorizeUpdate approves admins, the task's creator, and its current
// assignee. When the patch rebinds the assignee, the new assignee must be a
// member too.
func (p *AuthorizationPolicy) AuthorizeUpdate(ctx context.Context, actorID uuid.UUID, t task.Task, newAssigneeID *uuid.UUID, assigneeChanged bool) error {
	role, err := p.requireMember(ctx, actorID, t.OrganizationID())
	if err != nil {
		return err
	}
	if !role.Satisfies(membership.RoleAdmin) && !t.IsCreatedBy(actorID) && !t.IsAssignedTo(actorID) {
		return forbidden(CodeNotRecordHolder, "updating requires admin role, creatorship or assignment", nil)
	}
	if assigneeChanged {
		return p.requireAssigneeMember(ctx, newAssigneeID, t.OrganizationID())
	}
	return nil
}

// AuthorizeDelete requires at least admin. Creatorship or assignment never
// substitutes here.
func (p *AuthorizationPolicy) AuthorizeDelete(ctx context.Context, actorID, organizationID uuid.UUID) error {
	role, err := p.requireMember(ctx, actorID, organizationID)
	if err != nil {
		return err
	}
	if !role.Satisfies(membership.RoleAdmin) {
		return forbidden(CodeRoleInsufficient, "deleting tasks requires the admin role", nil)
	}
	return nil
}

// AuthorizeReorder has the same floor as read: any member may reposition a
// task they can see.
func (p *AuthorizationPolicy) AuthorizeReorder(ctx context.Context, actorID, organizationID uuid.UUID) error {
	_, err := p.requireMember(ctx, actorID, organizationID)
	return err
}
