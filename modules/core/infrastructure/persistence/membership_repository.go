package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

const (
	membershipFindQuery = `
		SELECT
			m.id,
			m.user_id,
			m.organization_id,
			m.role,
			m.created_at,
			m.updated_at
		FROM memberships m`

	membershipInsertQuery = `
		INSERT INTO memberships (user_id, organization_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, organization_id, role, created_at, updated_at`

	membershipUpdateRoleQuery = `
		UPDATE memberships SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, organization_id, role, created_at, updated_at`

	membershipDeleteQuery = `DELETE FROM memberships WHERE id = $1`

	// Owner rows are locked so that two concurrent last-owner checks
	// serialize instead of both passing on the same stale count.
	membershipCountOwnersQuery = `
		SELECT COUNT(*) FROM (
			SELECT id FROM memberships
			WHERE organization_id = $1 AND role = 'owner'
			FOR UPDATE
		) owners`
)

type PgMembershipRepository struct{}

func NewMembershipRepository() membership.Repository {
	return &PgMembershipRepository{}
}

func scanMembership(row pgx.Row) (membership.Membership, error) {
	var (
		id, userID, organizationID uuid.UUID
		role                       string
		createdAt, updatedAt       time.Time
	)
	if err := row.Scan(&id, &userID, &organizationID, &role, &createdAt, &updatedAt); err != nil {
		return membership.Membership{}, err
	}
	return membership.Hydrate(id, userID, organizationID, membership.Role(role), createdAt, updatedAt), nil
}

func (r *PgMembershipRepository) GetByUserAndOrg(ctx context.Context, userID, organizationID uuid.UUID) (membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return membership.Membership{}, err
	}
	m, err := scanMembership(tx.QueryRow(ctx,
		membershipFindQuery+` WHERE m.user_id = $1 AND m.organization_id = $2`,
		userID, organizationID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Membership{}, membership.ErrMembershipNotFound
		}
		return membership.Membership{}, errors.Wrap(err, "failed to get membership")
	}
	return m, nil
}

func (r *PgMembershipRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		membershipFindQuery+` WHERE m.organization_id = $1 ORDER BY m.created_at`,
		organizationID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memberships")
	}
	defer rows.Close()

	out := make([]membership.Membership, 0, 16)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PgMembershipRepository) CountOwners(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, membershipCountOwnersQuery, organizationID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count owners")
	}
	return count, nil
}

func (r *PgMembershipRepository) Create(ctx context.Context, m membership.Membership) (membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return membership.Membership{}, err
	}
	created, err := scanMembership(tx.QueryRow(ctx,
		membershipInsertQuery,
		m.UserID(), m.OrganizationID(), string(m.Role()),
	))
	if err != nil {
		return membership.Membership{}, errors.Wrap(err, "failed to create membership")
	}
	return created, nil
}

func (r *PgMembershipRepository) UpdateRole(ctx context.Context, id uuid.UUID, role membership.Role) (membership.Membership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return membership.Membership{}, err
	}
	updated, err := scanMembership(tx.QueryRow(ctx, membershipUpdateRoleQuery, id, string(role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Membership{}, membership.ErrMembershipNotFound
		}
		return membership.Membership{}, errors.Wrap(err, "failed to update membership role")
	}
	return updated, nil
}

func (r *PgMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, membershipDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete membership")
	}
	if tag.RowsAffected() == 0 {
		return membership.ErrMembershipNotFound
	}
	return nil
}
