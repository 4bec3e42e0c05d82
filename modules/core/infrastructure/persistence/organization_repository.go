package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/organization"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

const (
	organizationFindQuery = `
		SELECT
			o.id,
			o.name,
			o.parent_id,
			o.created_by_id,
			o.created_at,
			o.updated_at
		FROM organizations o`

	organizationInsertQuery = `
		INSERT INTO organizations (name, parent_id, created_by_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, parent_id, created_by_id, created_at, updated_at`

	organizationListForUserQuery = organizationFindQuery + `
		JOIN memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.created_at
		LIMIT $2 OFFSET $3`

	organizationCountForUserQuery = `
		SELECT COUNT(*)
		FROM organizations o
		JOIN memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1`
)

type PgOrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{}
}

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var (
		id, createdByID      uuid.UUID
		name                 string
		parentID             pgtype.UUID
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &parentID, &createdByID, &createdAt, &updatedAt); err != nil {
		return organization.Organization{}, err
	}
	return organization.Hydrate(id, name, nullableUUID(parentID), createdByID, createdAt, updatedAt), nil
}

func (r *PgOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}
	o, err := scanOrganization(tx.QueryRow(ctx, organizationFindQuery+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, errors.Wrap(err, "failed to get organization")
	}
	return o, nil
}

func (r *PgOrganizationRepository) GetPaginated(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int64, error) {
	if params == nil {
		params = &organization.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx, organizationListForUserQuery, params.UserID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list organizations")
	}
	defer rows.Close()

	out := make([]organization.Organization, 0, params.Limit)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx, organizationCountForUserQuery, params.UserID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count organizations")
	}
	return out, total, nil
}

func (r *PgOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}
	created, err := scanOrganization(tx.QueryRow(ctx,
		organizationInsertQuery,
		o.Name(), pgNullableUUID(o.ParentID()), o.CreatedByID(),
	))
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to create organization")
	}
	return created, nil
}
