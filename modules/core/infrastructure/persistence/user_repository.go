package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskdeck/taskdeck/modules/core/domain/aggregates/user"
	"github.com/taskdeck/taskdeck/pkg/composables"
)

const (
	userFindQuery = `
		SELECT
			u.id,
			u.email,
			u.display_name,
			u.created_at,
			u.updated_at
		FROM users u`

	userInsertQuery = `
		INSERT INTO users (email, display_name)
		VALUES ($1, $2)
		RETURNING id, email, display_name, created_at, updated_at`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		id                   uuid.UUID
		email, displayName   string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &email, &displayName, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	return user.Hydrate(id, email, displayName, createdAt, updatedAt), nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	u, err := scanUser(tx.QueryRow(ctx, userFindQuery+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, errors.Wrap(err, "failed to get user")
	}
	return u, nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	u, err := scanUser(tx.QueryRow(ctx, userFindQuery+` WHERE u.email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, errors.Wrap(err, "failed to get user by email")
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	created, err := scanUser(tx.QueryRow(ctx, userInsertQuery, u.Email(), u.DisplayName()))
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to create user")
	}
	return created, nil
}
