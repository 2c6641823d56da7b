package service

import (
	"context"
	"errors"
	"secretserver/auth/storage"
	"secretserver/auth/users"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	storage  storage.AuthStorage
	cfg      Config
	log      *logrus.Entry
	reserved mapset.Set[string]
}

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so the response never reveals which one it was. The logs do.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username is taken")
)

func New(cfg Config, authStorage storage.AuthStorage, l *logrus.Logger) *Service {
	reserved := mapset.NewSet[string]()
	for _, name := range cfg.ReservedNames {
		reserved.Add(name)
	}
	return &Service{
		cfg:      cfg,
		storage:  authStorage,
		log:      l.WithField("from", "auth-service"),
		reserved: reserved,
	}
}

// SignUp creates a local account and returns it so the caller can start
// a session right away.
func (s *Service) SignUp(ctx context.Context, name string, password string) (users.User, error) {
	if s.reserved.Contains(name) {
		s.log.WithField("user", name).Info("signup rejected: reserved username")
		return users.User{}, ErrUserExists
	}
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.PasswordPepper+password), cost)
	if err != nil {
		return users.User{}, err
	}
	user := users.User{
		ID:           uuid.New(),
		Name:         name,
		RegisteredAt: time.Now(),
	}
	err = s.storage.CreateUser(ctx, user, users.Secret{PasswordHash: hash})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.log.WithField("user", name).Info("signup rejected: duplicate username")
			return users.User{}, ErrUserExists
		}
		return users.User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, name string, password string) (users.User, error) {
	user, err := s.storage.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("user", name).Info("login failed: unknown username")
			return users.User{}, ErrInvalidCredentials
		}
		return users.User{}, err
	}
	secret, err := s.storage.GetUserSecret(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("user", name).Info("login failed: no local password")
			return users.User{}, ErrInvalidCredentials
		}
		return users.User{}, err
	}
	err = bcrypt.CompareHashAndPassword(secret.PasswordHash, []byte(s.cfg.PasswordPepper+password))
	if err != nil {
		s.log.WithField("user", name).Info("login failed: wrong password")
		return users.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GenerateJWTCookie(userID uuid.UUID, host string) (*fiber.Cookie, error) {
	expiresIn, err := time.ParseDuration(s.cfg.Expiration)
	if err != nil {
		return nil, err
	}
	expirationTime := time.Now().Add(expiresIn)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: expirationTime.Unix(),
		IssuedAt:  time.Now().Unix(),
		Subject:   userID.String(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.Token))
	if err != nil {
		return nil, err
	}
	return &fiber.Cookie{
		Name:        "token",
		Value:       tokenString,
		Path:        "/",
		Domain:      host,
		Expires:     expirationTime,
		Secure:      false,
		HTTPOnly:    true,
		SameSite:    "",
		SessionOnly: false,
	}, nil
}

// Auth resolves a session cookie to a user. An empty, malformed, expired
// or dangling token resolves to the anonymous user, never to an error;
// only storage failures bubble up.
func (s *Service) Auth(ctx context.Context, cookie string) (users.User, error) {
	if cookie == "" {
		return users.User{}, nil
	}
	token, err := jwt.ParseWithClaims(cookie, &jwt.StandardClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Token), nil
	})
	if err != nil || !token.Valid {
		s.log.WithError(err).Debug("session token rejected")
		return users.User{}, nil
	}
	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok {
		return users.User{}, nil
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.log.WithError(err).Debug("malformed session subject")
		return users.User{}, nil
	}
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return users.User{}, nil
		}
		return users.User{}, err
	}
	return user, nil
}
