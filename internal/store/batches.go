package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"material-recon/internal/domain"
)

// CreateBatch registers a new upload in pending state.
func (s *Store) CreateBatch(ctx context.Context, source domain.SourceType, fileName string) (*domain.Batch, error) {
	b := &domain.Batch{
		ID:       uuid.New(),
		Source:   source,
		FileName: fileName,
		Status:   domain.BatchPending,
	}
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
INSERT INTO batches (id, source, file_name, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING created_at, updated_at
`, b.ID, b.Source, b.FileName, b.Status).Scan(&b.CreatedAt, &b.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBatch loads a batch with its current counters.
func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	var b domain.Batch
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
SELECT id, source, file_name, status, total_rows, staged, created, updated, skipped, failed,
       COALESCE(error, ''), created_at, updated_at
FROM batches WHERE id = $1
`, id).Scan(&b.ID, &b.Source, &b.FileName, &b.Status, &b.TotalRows, &b.Staged,
			&b.Created, &b.Updated, &b.Skipped, &b.Failed, &b.Error, &b.CreatedAt, &b.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SetBatchStatus moves the batch through its lifecycle. An optional top
// level error message is recorded for direct-to-failed transitions.
func (s *Store) SetBatchStatus(ctx context.Context, id uuid.UUID, status domain.BatchStatus, errMsg string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE batches SET status = $2, error = NULLIF($3, ''), updated_at = now() WHERE id = $1
`, id, status, errMsg)
		return err
	})
}

// SetBatchStaged records the staging outcome: total rows read from the file
// and how many survived standardization.
func (s *Store) SetBatchStaged(ctx context.Context, id uuid.UUID, totalRows, staged int) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE batches SET status = $2, total_rows = $3, staged = $4, updated_at = now() WHERE id = $1
`, id, domain.BatchStaged, totalRows, staged)
		return err
	})
}

// bumpCounter adds one to a named batch counter inside an existing tx.
func bumpCounter(ctx context.Context, tx pgx.Tx, id uuid.UUID, column string) error {
	// column comes from a fixed caller-side set, never from input.
	_, err := tx.Exec(ctx, `UPDATE batches SET `+column+` = `+column+` + 1, updated_at = now() WHERE id = $1`, id)
	return err
}

// FinalizeBatch derives the terminal status from the counters and stamps it.
func (s *Store) FinalizeBatch(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	b, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = b.TerminalStatus()
	b.UpdatedAt = time.Now()
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE batches SET status = $2, updated_at = now() WHERE id = $1
`, id, b.Status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
