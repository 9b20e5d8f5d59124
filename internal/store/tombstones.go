package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// PutTombstone records that an external lookup key resolved to "no match".
// A repeat lookup refreshes the timestamp.
func (s *Store) PutTombstone(ctx context.Context, kind, key string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO lookup_tombstones (kind, key, created_at)
VALUES ($1, $2, now())
ON CONFLICT (kind, key) DO UPDATE SET created_at = now()
`, kind, key)
		return err
	})
}

// HasFreshTombstone reports whether the key was marked missing within the
// freshness window, meaning the next run should not re-attempt it yet.
func (s *Store) HasFreshTombstone(ctx context.Context, kind, key string, window time.Duration) (bool, error) {
	var at time.Time
	found := true
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
SELECT created_at FROM lookup_tombstones WHERE kind = $1 AND key = $2
`, kind, key).Scan(&at)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}
	return found && time.Since(at) < window, nil
}
