package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/modules/core/domain/aggregates/user"
)

// UserService covers account registration and lookup. Everything
// organization-scoped lives behind memberships instead.
type UserService struct {
	users  user.Repository
	runner TxRunner
}

func NewUserService(users user.Repository, runner TxRunner) *UserService {
	return &UserService{users: users, runner: runner}
}

func (s *UserService) Register(ctx context.Context, email, displayName string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return user.User{}, newServiceError(http.StatusBadRequest, "USER_INVALID_EMAIL", "email is invalid", err)
	}

	var created user.User
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.users.Create(txCtx, user.New(email, displayName))
		return err
	})
	if err != nil {
		return user.User{}, mapPgError(err)
	}
	return created, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, newServiceError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", err)
		}
		return user.User{}, mapPgError(err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, newServiceError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", err)
		}
		return user.User{}, mapPgError(err)
	}
	return u, nil
}
