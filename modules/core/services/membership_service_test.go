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
)

type memMembershipRepository struct {
	mu   sync.Mutex
	byID map[uuid.UUID]membership.Membership
}

func newMemMembershipRepository() *memMembershipRepository {
	return &memMembershipRepository{byID: map[uuid.UUID]membership.Membership{}}
}

func (r *memMembershipRepository) put(userID, organizationID uuid.UUID, role membership.Role) membership.Membership {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	m := membership.Hydrate(uuid.New(), userID, organizationID, role, now, now)
	r.byID[m.ID()] = m
	return m
}

func (r *memMembershipRepository) GetByUserAndOrg(_ context.Context, userID, organizationID uuid.UUID) (membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.UserID() == userID && m.OrganizationID() == organizationID {
			return m, nil
		}
	}
	return membership.Membership{}, membership.ErrMembershipNotFound
}

func (r *memMembershipRepository) ListByOrganization(_ context.Context, organizationID uuid.UUID) ([]membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []membership.Membership
	for _, m := range r.byID {
		if m.OrganizationID() == organizationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMembershipRepository) CountOwners(_ context.Context, organizationID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.byID {
		if m.OrganizationID() == organizationID && m.IsOwner() {
			n++
		}
	}
	return n, nil
}

func (r *memMembershipRepository) Create(_ context.Context, m membership.Membership) (membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := membership.Hydrate(uuid.New(), m.UserID(), m.OrganizationID(), m.Role(), now, now)
	r.byID[stored.ID()] = stored
	return stored, nil
}

func (r *memMembershipRepository) UpdateRole(_ context.Context, id uuid.UUID, role membership.Role) (membership.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return membership.Membership{}, membership.ErrMembershipNotFound
	}
	updated := m.WithRole(role)
	r.byID[id] = updated
	return updated, nil
}

func (r *memMembershipRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return membership.ErrMembershipNotFound
	}
	delete(r.byID, id)
	return nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type noopEventBus struct{}

func (noopEventBus) Publish(...interface{})  {}
func (noopEventBus) Subscribe(interface{})   {}
func (noopEventBus) Unsubscribe(interface{}) {}
func (noopEventBus) Clear()                  {}
func (noopEventBus) SubscribersCount() int   { return 0 }

func requireServiceError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, status, svcErr.Status)
	assert.Equal(t, code, svcErr.Code)
}

func TestMembershipService_AddMember(t *testing.T) {
	repo := newMemMembershipRepository()
	svc := NewMembershipService(repo, passthroughTxRunner{}, noopEventBus{})
	orgID := uuid.New()

	owner := uuid.New()
	admin := uuid.New()
	viewer := uuid.New()
	repo.put(owner, orgID, membership.RoleOwner)
	repo.put(admin, orgID, membership.RoleAdmin)
	repo.put(viewer, orgID, membership.RoleViewer)

	ctx := context.Background()

	t.Run("admin may add viewers and admins", func(t *testing.T) {
		added, err := svc.AddMember(ctx, admin, orgID, uuid.New(), membership.RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, membership.RoleViewer, added.Role())
	})

	t.Run("only an owner may grant owner", func(t *testing.T) {
		_, err := svc.AddMember(ctx, admin, orgID, uuid.New(), membership.RoleOwner)
		requireServiceError(t, err, http.StatusForbidden, "MEMBERSHIP_ROLE_INSUFFICIENT")

		_, err = svc.AddMember(ctx, owner, orgID, uuid.New(), membership.RoleOwner)
		require.NoError(t, err)
	})

	t.Run("viewer may not add anyone", func(t *testing.T) {
		_, err := svc.AddMember(ctx, viewer, orgID, uuid.New(), membership.RoleViewer)
		requireServiceError(t, err, http.StatusForbidden, "MEMBERSHIP_ROLE_INSUFFICIENT")
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := svc.AddMember(ctx, uuid.New(), orgID, uuid.New(), membership.RoleViewer)
		requireServiceError(t, err, http.StatusForbidden, "MEMBERSHIP_NO_MEMBERSHIP")
	})
}

func TestMembershipService_LastOwnerProtection(t *testing.T) {
	repo := newMemMembershipRepository()
	svc := NewMembershipService(repo, passthroughTxRunner{}, noopEventBus{})
	orgID := uuid.New()

	soleOwner := uuid.New()
	repo.put(soleOwner, orgID, membership.RoleOwner)

	ctx := context.Background()

	t.Run("downgrading the last owner is rejected", func(t *testing.T) {
		_, err := svc.ChangeRole(ctx, soleOwner, orgID, soleOwner, membership.RoleAdmin)
		requireServiceError(t, err, http.StatusConflict, "MEMBERSHIP_LAST_OWNER")
	})

	t.Run("removing the last owner is rejected", func(t *testing.T) {
		err := svc.RemoveMember(ctx, soleOwner, orgID, soleOwner)
		requireServiceError(t, err, http.StatusConflict, "MEMBERSHIP_LAST_OWNER")
	})

	t.Run("a second owner unlocks both operations", func(t *testing.T) {
		second := uuid.New()
		_, err := svc.AddMember(ctx, soleOwner, orgID, second, membership.RoleOwner)
		require.NoError(t, err)

		changed, err := svc.ChangeRole(ctx, soleOwner, orgID, soleOwner, membership.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, membership.RoleAdmin, changed.Role())
	})
}

func TestMembershipService_ChangeRoleUnknownMember(t *testing.T) {
	repo := newMemMembershipRepository()
	svc := NewMembershipService(repo, passthroughTxRunner{}, noopEventBus{})
	orgID := uuid.New()

	admin := uuid.New()
	repo.put(admin, orgID, membership.RoleAdmin)

	_, err := svc.ChangeRole(context.Background(), admin, orgID, uuid.New(), membership.RoleViewer)
	requireServiceError(t, err, http.StatusNotFound, "MEMBERSHIP_NOT_FOUND")
}
