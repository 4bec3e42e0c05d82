package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
)

type fakeMembershipLookup struct {
	roles map[uuid.UUID]membership.Role
}

func (f *fakeMembershipLookup) GetRole(_ context.Context, userID, _ uuid.UUID) (membership.Role, error) {
	role, ok := f.roles[userID]
	if !ok {
		return "", membership.ErrMembershipNotFound
	}
	return role, nil
}

func newPolicyFixture(t *testing.T) (*AuthorizationPolicy, *fakeMembershipLookup) {
	t.Helper()
	lookup := &fakeMembershipLookup{roles: map[uuid.UUID]membership.Role{}}
	return NewAuthorizationPolicy(lookup), lookup
}

func requireDenied(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, IsForbidden(err))
	assert.Equal(t, code, denialCode(err))
}

func TestAuthorizeCreate(t *testing.T) {
	policy, lookup := newPolicyFixture(t)
	orgID := uuid.New()

	owner := uuid.New()
	admin := uuid.New()
	viewer := uuid.New()
	stranger := uuid.New()
	lookup.roles[owner] = membership.RoleOwner
	lookup.roles[admin] = membership.RoleAdmin
	lookup.roles[viewer] = membership.RoleViewer

	ctx := context.Background()
	require.NoError(t, policy.AuthorizeCreate(ctx, owner, orgID, nil))
	require.NoError(t, policy.AuthorizeCreate(ctx, admin, orgID, nil))
	requireDenied(t, policy.AuthorizeCreate(ctx, viewer, orgID, nil), CodeRoleInsufficient)
	requireDenied(t, policy.AuthorizeCreate(ctx, stranger, orgID, nil), CodeNoMembership)

	t.Run("assignee must be a member", func(t *testing.T) {
		require.NoError(t, policy.AuthorizeCreate(ctx, admin, orgID, &viewer))
		outsider := uuid.New()
		requireDenied(t, policy.AuthorizeCreate(ctx, admin, orgID, &outsider), CodeAssigneeNotMember)
	})
}

func TestAuthorizeUpdate(t *testing.T) {
	policy, lookup := newPolicyFixture(t)
	orgID := uuid.New()

	admin := uuid.New()
	creator := uuid.New()
	assignee := uuid.New()
	bystander := uuid.New()
	lookup.roles[admin] = membership.RoleAdmin
	lookup.roles[creator] = membership.RoleViewer
	lookup.roles[assignee] = membership.RoleViewer
	lookup.roles[bystander] = membership.RoleViewer

	tsk := task.New(orgID, "ship the board", creator, task.WithAssigneeID(&assignee))
	ctx := context.Background()

	require.NoError(t, policy.AuthorizeUpdate(ctx, admin, tsk, nil, false))
	require.NoError(t, policy.AuthorizeUpdate(ctx, creator, tsk, nil, false))
	require.NoError(t, policy.AuthorizeUpdate(ctx, assignee, tsk, nil, false))
	requireDenied(t, policy.AuthorizeUpdate(ctx, bystander, tsk, nil, false), CodeNotRecordHolder)
	requireDenied(t, policy.AuthorizeUpdate(ctx, uuid.New(), tsk, nil, false), CodeNoMembership)

	t.Run("rebinding to a non-member is denied", func(t *testing.T) {
		outsider := uuid.New()
		requireDenied(t, policy.AuthorizeUpdate(ctx, admin, tsk, &outsider, true), CodeAssigneeNotMember)
	})

	t.Run("clearing the assignee needs no member check", func(t *testing.T) {
		require.NoError(t, policy.AuthorizeUpdate(ctx, admin, tsk, nil, true))
	})
}

func TestAuthorizeDelete(t *testing.T) {
	policy, lookup := newPolicyFixture(t)
	orgID := uuid.New()

	admin := uuid.New()
	viewer := uuid.New()
	lookup.roles[admin] = membership.RoleAdmin
	lookup.roles[viewer] = membership.RoleViewer

	ctx := context.Background()
	require.NoError(t, policy.AuthorizeDelete(ctx, admin, orgID))
	requireDenied(t, policy.AuthorizeDelete(ctx, viewer, orgID), CodeRoleInsufficient)
	requireDenied(t, policy.AuthorizeDelete(ctx, uuid.New(), orgID), CodeNoMembership)
}

func TestAuthorizeReadAndReorder(t *testing.T) {
	policy, lookup := newPolicyFixture(t)
	orgID := uuid.New()

	viewer := uuid.New()
	lookup.roles[viewer] = membership.RoleViewer

	ctx := context.Background()
	require.NoError(t, policy.AuthorizeRead(ctx, viewer, orgID))
	require.NoError(t, policy.AuthorizeReorder(ctx, viewer, orgID))
	requireDenied(t, policy.AuthorizeRead(ctx, uuid.New(), orgID), CodeNoMembership)
	requireDenied(t, policy.AuthorizeReorder(ctx, uuid.New(), orgID), CodeNoMembership)
}
