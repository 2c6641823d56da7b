package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"secretserver/auth/gen/model"
	"secretserver/auth/gen/table"
	"secretserver/auth/storage"
	"secretserver/auth/users"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.AuthStorage = (*Storage)(nil)

func New(db *sql.DB, l *logrus.Logger) *Storage {
	log := l.WithFields(map[string]interface{}{
		"from": "auth-storage",
	})
	return &Storage{
		db:  db,
		log: log,
	}
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (users.User, error) {
	var dbUser model.Users
	err := table.Users.
		SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
		FROM(table.Users).
		WHERE(table.Users.ID.EQ(sqlite.UUID(id)).
			AND(table.Users.DeletedAt.IS_NULL())).
		QueryContext(ctx, s.db, &dbUser)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return convertUserToModel(dbUser)
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (users.User, error) {
	var dbUser model.Users
	err := table.Users.
		SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
		FROM(table.Users).
		WHERE(table.Users.Username.EQ(sqlite.String(name)).
			AND(table.Users.DeletedAt.IS_NULL())).
		QueryContext(ctx, s.db, &dbUser)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return convertUserToModel(dbUser)
}

func (s *Storage) GetUserSecret(ctx context.Context, user users.User) (users.Secret, error) {
	var where sqlite.BoolExpression
	switch {
	case user.ID != uuid.Nil:
		where = table.Users.ID.EQ(sqlite.UUID(user.ID))
	case user.Name != "":
		where = table.Users.Username.EQ(sqlite.String(user.Name))
	default:
		return users.Secret{}, errors.New("empty user")
	}

	var dbUser model.Users
	err := table.Users.
		SELECT(table.Users.PasswordHash).
		FROM(table.Users).
		WHERE(where.AND(table.Users.DeletedAt.IS_NULL())).
		QueryContext(ctx, s.db, &dbUser)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.Secret{}, storage.ErrNotFound
		}
		return users.Secret{}, err
	}
	if dbUser.PasswordHash == nil {
		return users.Secret{}, storage.ErrNotFound
	}
	return users.Secret{
		PasswordHash: []byte(*dbUser.PasswordHash),
	}, nil
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, secret users.Secret) error {
	hash := string(secret.PasswordHash)
	dbUser := model.Users{
		ID:           user.ID.String(),
		Username:     &user.Name,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}
	_, err := table.Users.
		INSERT(table.Users.ID, table.Users.Username, table.Users.PasswordHash, table.Users.CreatedAt).
		MODEL(dbUser).
		ExecContext(ctx, s.db)
	if err != nil {
		if isConstraintViolation(err) {
			return storage.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Storage) FindOrCreateByGoogleID(ctx context.Context, googleID string) (users.User, error) {
	// The unique index on google_id makes the insert a no-op when a
	// concurrent callback got there first; the follow-up select then
	// observes whichever record won.
	_, err := table.Users.
		INSERT(table.Users.ID, table.Users.GoogleID, table.Users.CreatedAt).
		VALUES(uuid.New().String(), googleID, time.Now()).
		ON_CONFLICT(table.Users.GoogleID).
		DO_NOTHING().
		ExecContext(ctx, s.db)
	if err != nil {
		return users.User{}, err
	}

	var dbUser model.Users
	err = table.Users.
		SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
		FROM(table.Users).
		WHERE(table.Users.GoogleID.EQ(sqlite.String(googleID))).
		QueryContext(ctx, s.db, &dbUser)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return convertUserToModel(dbUser)
}

func convertUserToModel(user model.Users) (users.User, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return users.User{}, err
	}
	u := users.User{
		ID:           id,
		RegisteredAt: user.CreatedAt,
	}
	if user.Username != nil {
		u.Name = *user.Username
	}
	if user.GoogleID != nil {
		u.GoogleID = *user.GoogleID
	}
	return u, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
