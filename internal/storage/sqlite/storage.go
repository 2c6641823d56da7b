package sqlite

import (
	"context"
	"database/sql"
	"secretserver/auth/gen/model"
	"secretserver/auth/gen/table"
	"secretserver/internal/storage"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.SecretStorage = (*Storage)(nil)

func New(db *sql.DB, l *logrus.Logger) *Storage {
	return &Storage{
		db:  db,
		log: l.WithField("from", "secret-storage"),
	}
}

// ReplaceSecret runs the delete and the insert in one transaction so
// concurrent submits by the same user cannot leave more than one row.
func (s *Storage) ReplaceSecret(ctx context.Context, userID uuid.UUID, body string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = table.Secrets.
		DELETE().
		WHERE(table.Secrets.UserID.EQ(sqlite.UUID(userID))).
		ExecContext(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	dbSecret := model.Secrets{
		UserID:    userID.String(),
		Position:  0,
		Body:      body,
		CreatedAt: time.Now(),
	}
	_, err = table.Secrets.
		INSERT(table.Secrets.MutableColumns).
		MODEL(dbSecret).
		ExecContext(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Storage) ListAll(ctx context.Context) ([]string, error) {
	var dest []model.Secrets
	err := table.Secrets.
		SELECT(table.Secrets.AllColumns).
		FROM(table.Secrets.INNER_JOIN(table.Users, table.Users.ID.EQ(table.Secrets.UserID))).
		WHERE(table.Users.DeletedAt.IS_NULL()).
		ORDER_BY(table.Secrets.CreatedAt.ASC(), table.Secrets.ID.ASC()).
		QueryContext(ctx, s.db, &dest)
	if err != nil {
		return nil, err
	}
	bodies := make([]string, 0, len(dest))
	for _, secret := range dest {
		bodies = append(bodies, secret.Body)
	}
	return bodies, nil
}
