package storage

import (
	"context"
	"errors"
	"secretserver/auth/users"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type AuthStorage interface {
	CreateUser(ctx context.Context, user users.User, secret users.Secret) error
	GetUser(ctx context.Context, id uuid.UUID) (users.User, error)
	GetUserByName(ctx context.Context, name string) (users.User, error)
	GetUserSecret(ctx context.Context, user users.User) (users.Secret, error)
	// FindOrCreateByGoogleID returns the user owning the given Google
	// subject id, inserting a fresh record if none exists. Concurrent
	// calls for the same unseen id must converge on a single record.
	FindOrCreateByGoogleID(ctx context.Context, googleID string) (users.User, error)
}
