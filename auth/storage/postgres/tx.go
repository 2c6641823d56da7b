package postgres

import (
	"context"
	"database/sql"
)

func inTx[T any](ctx context.Context, db *sql.DB, f func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	v, err := f(tx)
	if err != nil {
		_ = tx.Rollback()
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return v, nil
}

func inTxSimple(ctx context.Context, db *sql.DB, f func(tx *sql.Tx) error) error {
	_, err := inTx(ctx, db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, f(tx)
	})
	return err
}
