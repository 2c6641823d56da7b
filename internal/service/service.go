package service

import (
	"context"
	"errors"
	"secretserver/internal/storage"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEmptySecret = errors.New("empty secret")

// SecretService owns the one piece of user content in the system: the
// submitted secret text.
type SecretService struct {
	storage storage.SecretStorage
	log     *logrus.Entry
}

func New(secretStorage storage.SecretStorage, l *logrus.Logger) *SecretService {
	return &SecretService{
		storage: secretStorage,
		log:     l.WithField("from", "secret-service"),
	}
}

// Submit stores the secret on the owner's record, replacing any
// previous submission.
func (s *SecretService) Submit(ctx context.Context, userID uuid.UUID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptySecret
	}
	err := s.storage.ReplaceSecret(ctx, userID, body)
	if err != nil {
		return err
	}
	s.log.WithField("user_id", userID).Debug("secret stored")
	return nil
}

// List returns every stored secret with no identities attached.
func (s *SecretService) List(ctx context.Context) ([]string, error) {
	return s.storage.ListAll(ctx)
}
