package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"material-recon/internal/domain"
)

// StartRun creates one pending result row per record for an enrichment run.
func (s *Store) StartRun(ctx context.Context, runID uuid.UUID, recordIDs []int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, id := range recordIDs {
			if _, err := tx.Exec(ctx, `
INSERT INTO enrichment_results (run_id, record_id, status, detail, created_at, updated_at)
VALUES ($1, $2, $3, '', now(), now())
`, runID, id, domain.EnrichPending); err != nil {
				return err
			}
		}
		return nil
	})
}

// FinishResult mutates a run's result exactly once, on completion. Results
// left pending (abandoned on deadline) stay pending and are re-dispatched
// by the next run.
func (s *Store) FinishResult(ctx context.Context, runID uuid.UUID, recordID int64, status domain.EnrichStatus, detail string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE enrichment_results SET status = $3, detail = $4, updated_at = now()
WHERE run_id = $1 AND record_id = $2 AND status = $5
`, runID, recordID, status, detail, domain.EnrichPending)
		return err
	})
}
