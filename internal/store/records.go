package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"material-recon/internal/domain"
)

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var r domain.Record
	var fields []byte
	err := row.Scan(&r.ID, &fields, &r.FacultyAbbr, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &r.Fields); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecord loads one canonical record; nil without error when absent.
func (s *Store) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	var rec *domain.Record
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		rec, err = scanRecord(tx.QueryRow(ctx, `
SELECT id, fields, COALESCE(faculty_abbr, ''), created_at, updated_at
FROM records WHERE id = $1
`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyRowParams is everything needed to land one resolved staged row
// atomically: record state, audit entry, row close and batch counter.
type ApplyRowParams struct {
	Row     *domain.StagedRow
	Record  *domain.Record
	Created bool
	Changes domain.ChangeSet
	Source  domain.ChangeSource
}

// ApplyRow persists a non-empty merge outcome in one transaction: upsert
// the record, append the change-log entry, mark the staged row done and
// bump the created/updated counter. Any failure rolls the whole row back.
func (s *Store) ApplyRow(ctx context.Context, p ApplyRowParams) error {
	fields, err := json.Marshal(p.Record.Fields)
	if err != nil {
		return err
	}
	changes, err := json.Marshal(p.Changes)
	if err != nil {
		return err
	}
	counter := "updated"
	if p.Created {
		counter = "created"
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO records (id, fields, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()
`, p.Record.ID, fields); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO change_log (record_id, batch_id, source, changes, at)
VALUES ($1, $2, $3, $4, now())
`, p.Record.ID, p.Row.BatchID, p.Source, changes); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE staged_rows SET status = $2 WHERE id = $1
`, p.Row.ID, domain.RowDone); err != nil {
			return err
		}
		return bumpCounter(ctx, tx, p.Row.BatchID, counter)
	})
}

// AppendChangeLog writes an audit entry outside batch processing (used by
// enrichment when it touches a record's links).
func (s *Store) AppendChangeLog(ctx context.Context, recordID int64, batchID *uuid.UUID, source domain.ChangeSource, changes domain.ChangeSet) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO change_log (record_id, batch_id, source, changes, at)
VALUES ($1, $2, $3, $4, now())
`, recordID, batchID, source, raw)
		return err
	})
}

// ChangeLogCount is used by audits and tests: entries for one record,
// optionally restricted to a source tag.
func (s *Store) ChangeLogCount(ctx context.Context, recordID int64, source domain.ChangeSource) (int, error) {
	var n int
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
SELECT count(*) FROM change_log WHERE record_id = $1 AND ($2 = '' OR source = $2)
`, recordID, source).Scan(&n)
	})
	return n, err
}
