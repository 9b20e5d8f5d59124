package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"material-recon/internal/domain"
	"material-recon/internal/staging"
)

// StageRows bulk-inserts standardized rows for a batch in pending state.
// One transaction for the whole file: a half-staged batch is worse than a
// failed one.
func (s *Store) StageRows(ctx context.Context, batchID uuid.UUID, source domain.SourceType, rows []staging.Standardized) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, r := range rows {
			payload, err := json.Marshal(r.Payload)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO staged_rows (batch_id, source, material_id, row_number, payload, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
`, batchID, source, r.MaterialID, r.RowNumber, payload, domain.RowPending); err != nil {
				return err
			}
		}
		return nil
	})
}

// PendingRows returns the batch's unprocessed rows ordered by row number.
// Rows already done or failed are inert here, which is what makes
// re-processing idempotent.
func (s *Store) PendingRows(ctx context.Context, batchID uuid.UUID) ([]domain.StagedRow, error) {
	var out []domain.StagedRow
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT id, batch_id, source, material_id, row_number, payload, status, created_at
FROM staged_rows
WHERE batch_id = $1 AND status = $2
ORDER BY row_number
`, batchID, domain.RowPending)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r domain.StagedRow
			var payload []byte
			if err := rows.Scan(&r.ID, &r.BatchID, &r.Source, &r.MaterialID, &r.RowNumber, &payload, &r.Status, &r.CreatedAt); err != nil {
				return err
			}
			if err := json.Unmarshal(payload, &r.Payload); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRowDone closes a row that produced no record change ("skipped") and
// bumps the skipped counter.
func (s *Store) MarkRowDone(ctx context.Context, row *domain.StagedRow, counter string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
UPDATE staged_rows SET status = $2 WHERE id = $1
`, row.ID, domain.RowDone); err != nil {
			return err
		}
		return bumpCounter(ctx, tx, row.BatchID, counter)
	})
}

// FailRow records the processing failure and marks the row failed, in its
// own transaction so the evidence survives the rolled-back merge.
func (s *Store) FailRow(ctx context.Context, row *domain.StagedRow, kind domain.ErrorKind, detail string) error {
	payload, err := json.Marshal(row.Payload)
	if err != nil {
		payload = []byte(`{}`)
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO processing_failures (batch_id, row_number, kind, detail, payload, created_at)
VALUES ($1, $2, $3, $4, $5, now())
`, row.BatchID, row.RowNumber, kind, detail, payload); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE staged_rows SET status = $2 WHERE id = $1
`, row.ID, domain.RowFailed); err != nil {
			return err
		}
		return bumpCounter(ctx, tx, row.BatchID, "failed")
	})
}

// Failures lists a batch's processing failures for the operator report.
func (s *Store) Failures(ctx context.Context, batchID uuid.UUID) ([]domain.ProcessingFailure, error) {
	var out []domain.ProcessingFailure
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT id, batch_id, row_number, kind, detail, payload, created_at
FROM processing_failures WHERE batch_id = $1 ORDER BY row_number
`, batchID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var f domain.ProcessingFailure
			var payload []byte
			if err := rows.Scan(&f.ID, &f.BatchID, &f.RowNumber, &f.Kind, &f.Detail, &payload, &f.CreatedAt); err != nil {
				return err
			}
			if err := json.Unmarshal(payload, &f.Payload); err != nil {
				return err
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
