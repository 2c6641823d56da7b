package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"secretserver/internal/storage/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*Service, *memory.Storage) {
	t.Helper()
	st := memory.New()
	svc := New(Config{
		Token:         "test-signing-secret",
		Expiration:    "1h",
		BcryptCost:    bcrypt.MinCost,
		ReservedNames: []string{"root"},
	}, st, quietLogger())
	return svc, st
}

func TestSignUpThenLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if created.Name != "alice" {
		t.Errorf("SignUp() name = %q, want %q", created.Name, "alice")
	}

	got, err := svc.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Login() id = %v, want %v", got.ID, created.ID)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "alice", password: "nope"},
		{name: "unknown username", username: "bob", password: "pw123"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestSignUpRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "pw123"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
	}{
		{name: "duplicate", username: "alice"},
		{name: "reserved", username: "root"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.username, "whatever")
			if !errors.Is(err, ErrUserExists) {
				t.Errorf("SignUp() error = %v, want %v", err, ErrUserExists)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	cookie, err := svc.GenerateJWTCookie(user.ID, "localhost")
	if err != nil {
		t.Fatalf("GenerateJWTCookie() error = %v", err)
	}

	resolved, err := svc.Auth(ctx, cookie.Value)
	if err != nil {
		t.Fatalf("Auth() error = %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("Auth() id = %v, want %v", resolved.ID, user.ID)
	}
}

func TestSessionResolvesAnonymous(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	// signed with a different secret
	forger := New(Config{Token: "other-secret", Expiration: "1h"}, memory.New(), quietLogger())
	forged, err := forger.GenerateJWTCookie(user.ID, "localhost")
	if err != nil {
		t.Fatalf("GenerateJWTCookie() error = %v", err)
	}

	// signed correctly but for an id the store never heard of
	dangling, err := svc.GenerateJWTCookie(uuid.New(), "localhost")
	if err != nil {
		t.Fatalf("GenerateJWTCookie() error = %v", err)
	}

	tests := []struct {
		name   string
		cookie string
	}{
		{name: "empty", cookie: ""},
		{name: "garbage", cookie: "not-a-jwt"},
		{name: "wrong signature", cookie: forged.Value},
		{name: "dangling id", cookie: dangling.Value},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Auth(ctx, tt.cookie)
			if err != nil {
				t.Fatalf("Auth() error = %v", err)
			}
			if !got.IsZero() {
				t.Errorf("Auth() = %v, want anonymous", got)
			}
		})
	}
}
