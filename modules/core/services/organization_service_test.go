package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/core/domain/entities/organization"
)

type memOrganizationRepository struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]organization.Organization
	memberships *memMembershipRepository
}

func newMemOrganizationRepository(memberships *memMembershipRepository) *memOrganizationRepository {
	return &memOrganizationRepository{
		byID:        map[uuid.UUID]organization.Organization{},
		memberships: memberships,
	}
}

func (r *memOrganizationRepository) GetByID(_ context.Context, id uuid.UUID) (organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return organization.Organization{}, organization.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *memOrganizationRepository) GetPaginated(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []organization.Organization
	for _, o := range r.byID {
		if _, err := r.memberships.GetByUserAndOrg(ctx, params.UserID, o.ID()); err == nil {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrganizationRepository) Create(_ context.Context, o organization.Organization) (organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := organization.Hydrate(uuid.New(), o.Name(), o.ParentID(), o.CreatedByID(), now, now)
	r.byID[stored.ID()] = stored
	return stored, nil
}

func newOrganizationFixture() (*OrganizationService, *memMembershipRepository) {
	memberships := newMemMembershipRepository()
	orgs := newMemOrganizationRepository(memberships)
	return NewOrganizationService(orgs, memberships, passthroughTxRunner{}, noopEventBus{}), memberships
}

func TestOrganizationService_CreateGrantsOwnership(t *testing.T) {
	svc, memberships := newOrganizationFixture()
	actor := uuid.New()

	created, err := svc.Create(context.Background(), actor, "acme")
	require.NoError(t, err)
	assert.True(t, created.IsRoot())

	m, err := memberships.GetByUserAndOrg(context.Background(), actor, created.ID())
	require.NoError(t, err)
	assert.Equal(t, membership.RoleOwner, m.Role())
}

func TestOrganizationService_CreateRequiresName(t *testing.T) {
	svc, _ := newOrganizationFixture()

	_, err := svc.Create(context.Background(), uuid.New(), "   ")
	requireServiceError(t, err, http.StatusBadRequest, "ORG_INVALID_BODY")
}

func TestOrganizationService_CreateSub(t *testing.T) {
	svc, memberships := newOrganizationFixture()
	ctx := context.Background()
	owner := uuid.New()

	root, err := svc.Create(ctx, owner, "acme")
	require.NoError(t, err)

	t.Run("owner of the parent may create a sub-organization", func(t *testing.T) {
		sub, err := svc.CreateSub(ctx, owner, "platform team", root.ID())
		require.NoError(t, err)
		require.NotNil(t, sub.ParentID())
		assert.Equal(t, root.ID(), *sub.ParentID())

		t.Run("nesting stops at one level", func(t *testing.T) {
			_, err := svc.CreateSub(ctx, owner, "sub-sub", sub.ID())
			requireServiceError(t, err, http.StatusUnprocessableEntity, "ORG_NESTING_TOO_DEEP")
		})
	})

	t.Run("viewer in the parent may not", func(t *testing.T) {
		viewer := uuid.New()
		memberships.put(viewer, root.ID(), membership.RoleViewer)
		_, err := svc.CreateSub(ctx, viewer, "side project", root.ID())
		requireServiceError(t, err, http.StatusForbidden, "MEMBERSHIP_ROLE_INSUFFICIENT")
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := svc.CreateSub(ctx, owner, "orphan", uuid.New())
		requireServiceError(t, err, http.StatusNotFound, "ORG_PARENT_NOT_FOUND")
	})
}

func TestOrganizationService_GetByIDRequiresMembership(t *testing.T) {
	svc, _ := newOrganizationFixture()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, "acme")
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, owner, created.ID())
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, uuid.New(), created.ID())
	requireServiceError(t, err, http.StatusForbidden, "MEMBERSHIP_NO_MEMBERSHIP")
}
