package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	authstorage "secretserver/auth/storage"
	"secretserver/auth/users"
	"secretserver/internal/storage"

	"github.com/google/uuid"
)

type record struct {
	user    users.User
	secret  users.Secret
	body    string
	hasBody bool
	savedAt int
}

// Storage is a mutex-guarded map standing in for the real store in
// tests. It implements both the auth and the secret storage interfaces.
type Storage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*record
	counter int
}

var (
	_ authstorage.AuthStorage = (*Storage)(nil)
	_ storage.SecretStorage   = (*Storage)(nil)
)

func New() *Storage {
	return &Storage{
		byID: make(map[uuid.UUID]*record),
	}
}

func (s *Storage) CreateUser(_ context.Context, user users.User, secret users.Secret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.byID {
		if r.user.Name != "" && r.user.Name == user.Name {
			return authstorage.ErrAlreadyExists
		}
	}
	s.byID[user.ID] = &record{user: user, secret: secret}
	return nil
}

func (s *Storage) GetUser(_ context.Context, id uuid.UUID) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return users.User{}, authstorage.ErrNotFound
	}
	return r.user, nil
}

func (s *Storage) GetUserByName(_ context.Context, name string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byID {
		if r.user.Name != "" && r.user.Name == name {
			return r.user, nil
		}
	}
	return users.User{}, authstorage.ErrNotFound
}

func (s *Storage) GetUserSecret(_ context.Context, user users.User) (users.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byID {
		if (user.ID != uuid.Nil && r.user.ID == user.ID) ||
			(user.ID == uuid.Nil && user.Name != "" && r.user.Name == user.Name) {
			if len(r.secret.PasswordHash) == 0 {
				return users.Secret{}, authstorage.ErrNotFound
			}
			return r.secret, nil
		}
	}
	return users.Secret{}, authstorage.ErrNotFound
}

func (s *Storage) FindOrCreateByGoogleID(_ context.Context, googleID string) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.byID {
		if r.user.GoogleID == googleID {
			return r.user, nil
		}
	}
	user := users.User{
		ID:           uuid.New(),
		GoogleID:     googleID,
		RegisteredAt: time.Now(),
	}
	s.byID[user.ID] = &record{user: user}
	return user, nil
}

func (s *Storage) ReplaceSecret(_ context.Context, userID uuid.UUID, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[userID]
	if !ok {
		return authstorage.ErrNotFound
	}
	s.counter++
	r.body = body
	r.hasBody = true
	r.savedAt = s.counter
	return nil
}

func (s *Storage) ListAll(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	withBody := make([]*record, 0, len(s.byID))
	for _, r := range s.byID {
		if r.hasBody {
			withBody = append(withBody, r)
		}
	}
	sort.Slice(withBody, func(i, j int) bool {
		return withBody[i].savedAt < withBody[j].savedAt
	})
	bodies := make([]string, 0, len(withBody))
	for _, r := range withBody {
		bodies = append(bodies, r.body)
	}
	return bodies, nil
}

// UserCount reports how many user records exist, for assertions on
// find-or-create behavior.
func (s *Storage) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
