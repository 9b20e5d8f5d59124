// Package store is the Postgres persistence layer. Every public method is
// one transaction; callers compose behavior from whole methods, never from
// shared transaction state. Tests stub the Beginner seam with a pgx.Tx
// fake, integration runs hand it a pgxpool.Pool.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Beginner is the seam between the store and pgx. *pgxpool.Pool satisfies
// it directly.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	db Beginner
}

func New(db Beginner) *Store {
	return &Store{db: db}
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
