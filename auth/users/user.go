package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account created either with a local username/password
// or through the Google sign-in flow. At least one of the two
// identities is always present.
type User struct {
	ID           uuid.UUID
	Name         string
	GoogleID     string
	RegisteredAt time.Time
}

// IsZero reports whether u is the anonymous user.
func (u User) IsZero() bool {
	return u.ID == uuid.Nil
}

type Secret struct {
	PasswordHash []byte
}
