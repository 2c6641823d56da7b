package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"secretserver/auth/storage"
	"secretserver/auth/users"
	migrations "secretserver/internal/migrate"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestStorage(t *testing.T) (*Storage, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "test.sqlite")+"?cache=shared")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.UpServerDB(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return New(db, quietLogger()), db
}

func TestGetUserSecret(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	user := users.User{ID: uuid.New(), Name: "alice", RegisteredAt: time.Now()}
	hash := []byte("stored-hash")
	if err := st.CreateUser(ctx, user, users.Secret{PasswordHash: hash}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	secret, err := st.GetUserSecret(ctx, user)
	if err != nil {
		t.Fatalf("GetUserSecret() error = %v", err)
	}
	if !bytes.Equal(secret.PasswordHash, hash) {
		t.Errorf("GetUserSecret() hash = %q, want %q", secret.PasswordHash, hash)
	}
}

func TestGetUserSecretSkipsDeleted(t *testing.T) {
	st, db := newTestStorage(t)
	ctx := context.Background()

	user := users.User{ID: uuid.New(), Name: "alice", RegisteredAt: time.Now()}
	if err := st.CreateUser(ctx, user, users.Secret{PasswordHash: []byte("x")}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := db.Exec("UPDATE users SET deleted_at = ? WHERE id = ?", time.Now(), user.ID.String()); err != nil {
		t.Fatalf("marking user deleted: %v", err)
	}

	_, err := st.GetUserSecret(ctx, user)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserSecret() error = %v, want %v", err, storage.ErrNotFound)
	}
	_, err = st.GetUserByName(ctx, user.Name)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByName() error = %v, want %v", err, storage.ErrNotFound)
	}
}
