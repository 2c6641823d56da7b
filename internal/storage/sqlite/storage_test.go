package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	authsqlite "secretserver/auth/storage/sqlite"
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

func newTestDB(t *testing.T) *sql.DB {
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
	return db
}

func createTestUser(t *testing.T, db *sql.DB) users.User {
	t.Helper()
	user := users.User{
		ID:           uuid.New(),
		Name:         "alice",
		RegisteredAt: time.Now(),
	}
	err := authsqlite.New(db, quietLogger()).CreateUser(context.Background(), user, users.Secret{PasswordHash: []byte("x")})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func TestReplaceSecretOverwrites(t *testing.T) {
	db := newTestDB(t)
	st := New(db, quietLogger())
	user := createTestUser(t, db)
	ctx := context.Background()

	if err := st.ReplaceSecret(ctx, user.ID, "first"); err != nil {
		t.Fatalf("ReplaceSecret() error = %v", err)
	}
	if err := st.ReplaceSecret(ctx, user.ID, "second"); err != nil {
		t.Fatalf("ReplaceSecret() error = %v", err)
	}

	got, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("ListAll() = %v, want [second]", got)
	}
}

func TestReplaceSecretConcurrent(t *testing.T) {
	db := newTestDB(t)
	st := New(db, quietLogger())
	user := createTestUser(t, db)
	ctx := context.Background()

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = st.ReplaceSecret(ctx, user.ID, fmt.Sprintf("w%d", i))
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("ReplaceSecret() #%d error = %v", i, err)
		}
	}
	got, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("user has %d secrets after concurrent replace, want 1: %v", len(got), got)
	}
}
