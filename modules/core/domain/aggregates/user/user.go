package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	id          uuid.UUID
	email       string
	displayName string
	createdAt   time.Time
	updatedAt   time.Time
}

func New(email, displayName string) User {
	return User{
		email:       strings.ToLower(strings.TrimSpace(email)),
		displayName: strings.TrimSpace(displayName),
	}
}

func Hydrate(id uuid.UUID, email, displayName string, createdAt, updatedAt time.Time) User {
	return User{
		id:          id,
		email:       strings.ToLower(strings.TrimSpace(email)),
		displayName: strings.TrimSpace(displayName),
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (u User) ID() uuid.UUID        { return u.id }
func (u User) Email() string        { return u.email }
func (u User) DisplayName() string  { return u.displayName }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) IsZero() bool         { return u.id == uuid.Nil && u.email == "" }
