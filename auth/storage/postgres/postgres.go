package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"time"

	"secretserver/auth/storage"
	"secretserver/auth/users"
	"secretserver/gen/auth/public/model"
	"secretserver/gen/auth/public/table"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
)

const uniqueViolation = "23505"

type Storage struct {
	db *sql.DB
}

var _ storage.AuthStorage = (*Storage)(nil)

type Config struct {
	Host     string
	Port     int
	DBName   string
	Username string
	Password string
}

func New(ctx context.Context, config Config) (*Storage, error) {
	db, err := sql.Open("pgx", NewURLConnectionString(
		"postgres",
		config.Host+":"+strconv.Itoa(config.Port),
		config.DBName,
		config.Username,
		config.Password,
	))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (users.User, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.User, error) {
		var dbUser model.Users
		err := table.Users.
			SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
			FROM(table.Users).
			WHERE(table.Users.ID.EQ(postgres.UUID(id)).
				AND(table.Users.DeletedAt.IS_NULL())).
			QueryContext(ctx, tx, &dbUser)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.User{}, storage.ErrNotFound
			}
			return users.User{}, err
		}
		return convertDBUserToModel(dbUser), nil
	})
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (users.User, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.User, error) {
		var dbUser model.Users
		err := table.Users.
			SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
			FROM(table.Users).
			WHERE(table.Users.Username.EQ(postgres.String(name)).
				AND(table.Users.DeletedAt.IS_NULL())).
			QueryContext(ctx, tx, &dbUser)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.User{}, storage.ErrNotFound
			}
			return users.User{}, err
		}
		return convertDBUserToModel(dbUser), nil
	})
}

func (s *Storage) GetUserSecret(ctx context.Context, user users.User) (users.Secret, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.Secret, error) {
		var where postgres.BoolExpression
		switch {
		case user.ID != uuid.Nil:
			where = table.Users.ID.EQ(postgres.UUID(user.ID))
		case user.Name != "":
			where = table.Users.Username.EQ(postgres.String(user.Name))
		default:
			return users.Secret{}, errors.New("empty user")
		}

		var dbUser model.Users
		err := table.Users.
			SELECT(table.Users.PasswordHash).
			FROM(table.Users).
			WHERE(where.AND(table.Users.DeletedAt.IS_NULL())).
			QueryContext(ctx, tx, &dbUser)
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
	})
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, secret users.Secret) error {
	return inTxSimple(ctx, s.db, func(tx *sql.Tx) error {
		hash := string(secret.PasswordHash)
		dbUser := model.Users{
			ID:           user.ID,
			Username:     &user.Name,
			PasswordHash: &hash,
			CreatedAt:    time.Now(),
		}
		_, err := table.Users.
			INSERT(table.Users.ID, table.Users.Username, table.Users.PasswordHash, table.Users.CreatedAt).
			MODEL(dbUser).
			ExecContext(ctx, tx)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (s *Storage) FindOrCreateByGoogleID(ctx context.Context, googleID string) (users.User, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.User, error) {
		_, err := table.Users.
			INSERT(table.Users.ID, table.Users.GoogleID, table.Users.CreatedAt).
			VALUES(uuid.New(), googleID, time.Now()).
			ON_CONFLICT(table.Users.GoogleID).
			DO_NOTHING().
			ExecContext(ctx, tx)
		if err != nil {
			return users.User{}, err
		}

		var dbUser model.Users
		err = table.Users.
			SELECT(table.Users.AllColumns.Except(table.Users.PasswordHash)).
			FROM(table.Users).
			WHERE(table.Users.GoogleID.EQ(postgres.String(googleID))).
			QueryContext(ctx, tx, &dbUser)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.User{}, storage.ErrNotFound
			}
			return users.User{}, err
		}
		return convertDBUserToModel(dbUser), nil
	})
}

func convertDBUserToModel(user model.Users) users.User {
	u := users.User{
		ID:           user.ID,
		RegisteredAt: user.CreatedAt,
	}
	if user.Username != nil {
		u.Name = *user.Username
	}
	if user.GoogleID != nil {
		u.GoogleID = *user.GoogleID
	}
	return u
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func NewURLConnectionString(scheme string, host string, dbName string, user string, password string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(user, password),
		Host:   host,
		Path:   dbName,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}
