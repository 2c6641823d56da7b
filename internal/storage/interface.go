package storage

import (
	"context"

	"github.com/google/uuid"
)

type SecretStorage interface {
	// ReplaceSecret discards whatever the user stored before and keeps
	// only the given body. The schema allows a sequence per user but
	// submission has always overwritten it.
	ReplaceSecret(ctx context.Context, userID uuid.UUID, body string) error
	// ListAll returns every stored secret body, oldest first, with no
	// owner identities attached.
	ListAll(ctx context.Context) ([]string, error)
}
