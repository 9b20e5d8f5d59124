// Package batch drains staged rows through the merge resolver into
// canonical records. Rows are processed serially, each in its own
// transaction: rows within one batch may target the same record and must
// not race. One bad row never aborts the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"material-recon/internal/domain"
	"material-recon/internal/merge"
	"material-recon/internal/staging"
	"material-recon/internal/store"
)

// Store is the slice of the persistence layer the processor needs.
type Store interface {
	CreateBatch(ctx context.Context, source domain.SourceType, fileName string) (*domain.Batch, error)
	SetBatchStatus(ctx context.Context, id uuid.UUID, status domain.BatchStatus, errMsg string) error
	SetBatchStaged(ctx context.Context, id uuid.UUID, totalRows, staged int) error
	StageRows(ctx context.Context, batchID uuid.UUID, source domain.SourceType, rows []staging.Standardized) error
	PendingRows(ctx context.Context, batchID uuid.UUID) ([]domain.StagedRow, error)
	GetRecord(ctx context.Context, id int64) (*domain.Record, error)
	ApplyRow(ctx context.Context, p store.ApplyRowParams) error
	MarkRowDone(ctx context.Context, row *domain.StagedRow, counter string) error
	FailRow(ctx context.Context, row *domain.StagedRow, kind domain.ErrorKind, detail string) error
	FinalizeBatch(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
}

type Processor struct {
	store    Store
	resolver *merge.Resolver
	log      *slog.Logger
}

func NewProcessor(st Store, resolver *merge.Resolver) *Processor {
	return &Processor{store: st, resolver: resolver, log: slog.Default().With("component", "batch")}
}

// Stage creates the batch and stores the standardized rows. Rows without a
// material identifier were already dropped by staging.Standardize; their
// count still lands in total_rows so the numbers reconcile against the
// file.
func (p *Processor) Stage(ctx context.Context, source domain.SourceType, fileName string, raw []staging.RawRow) (*domain.Batch, error) {
	b, err := p.store.CreateBatch(ctx, source, fileName)
	if err != nil {
		return nil, err
	}
	if err := p.store.SetBatchStatus(ctx, b.ID, domain.BatchStaging, ""); err != nil {
		return nil, err
	}

	rows, dropped := staging.Standardize(source, raw)
	if err := p.store.StageRows(ctx, b.ID, source, rows); err != nil {
		_ = p.store.SetBatchStatus(ctx, b.ID, domain.BatchFailed, err.Error())
		return nil, err
	}
	if err := p.store.SetBatchStaged(ctx, b.ID, len(raw), len(rows)); err != nil {
		return nil, err
	}

	p.log.Info("batch staged", "batch", b.ID, "source", source, "rows", len(rows), "dropped", dropped)
	b.Status = domain.BatchStaged
	b.TotalRows = len(raw)
	b.Staged = len(rows)
	return b, nil
}

// rowResult is the explicit per-row outcome; failure handling is a branch
// in the loop, not a stack unwind.
type rowResult struct {
	kind   domain.ErrorKind
	detail string
	ok     bool
}

// Process applies all pending rows of a batch and derives the terminal
// status from the counters. Safe to re-invoke: done/failed rows are not
// selected again, so a second pass over a finished batch is a no-op.
func (p *Processor) Process(ctx context.Context, batchID uuid.UUID) (domain.Outcome, error) {
	if err := p.store.SetBatchStatus(ctx, batchID, domain.BatchProcessing, ""); err != nil {
		return domain.Outcome{BatchID: batchID}, err
	}

	rows, err := p.store.PendingRows(ctx, batchID)
	if err != nil {
		// Failure outside the per-row boundary: the batch itself fails.
		_ = p.store.SetBatchStatus(ctx, batchID, domain.BatchFailed, err.Error())
		return domain.Outcome{BatchID: batchID}, err
	}

	for i := range rows {
		row := &rows[i]
		res := p.processRow(ctx, row)
		if res.ok {
			continue
		}
		if err := p.store.FailRow(ctx, row, res.kind, res.detail); err != nil {
			// The failure record itself failed; nothing left to do for
			// this row but it must not stop the others.
			p.log.Error("recording row failure failed", "batch", batchID, "row", row.RowNumber, "err", err)
		}
	}

	b, err := p.store.FinalizeBatch(ctx, batchID)
	if err != nil {
		return domain.Outcome{BatchID: batchID}, err
	}
	out := domain.Outcome{
		Success:    b.Failed == 0,
		BatchID:    b.ID,
		RowsStaged: b.Staged,
		Created:    b.Created,
		Updated:    b.Updated,
		Skipped:    b.Skipped,
		Failed:     b.Failed,
	}
	p.log.Info("batch processed", "batch", b.ID, "status", b.Status,
		"created", b.Created, "updated", b.Updated, "skipped", b.Skipped, "failed", b.Failed)
	return out, nil
}

func (p *Processor) processRow(ctx context.Context, row *domain.StagedRow) rowResult {
	record, err := p.store.GetRecord(ctx, row.MaterialID)
	if err != nil {
		return rowResult{kind: domain.KindValidation, detail: fmt.Sprintf("load record %d: %v", row.MaterialID, err)}
	}

	created := false
	if record == nil {
		if row.Source == domain.SourceHuman {
			// Human sheets only update; a stale identifier fails the row,
			// never creates a record.
			return rowResult{kind: domain.KindReferential, detail: fmt.Sprintf("record %d: %v", row.MaterialID, domain.ErrNoRecord)}
		}
		record = &domain.Record{ID: row.MaterialID, Fields: map[domain.Field]string{}}
		created = true
	}

	changes, updated := p.resolver.Resolve(record, row.Payload, row.Source)
	if len(changes) == 0 {
		if err := p.store.MarkRowDone(ctx, row, "skipped"); err != nil {
			return rowResult{kind: domain.KindValidation, detail: fmt.Sprintf("close row: %v", err)}
		}
		return rowResult{ok: true}
	}

	source := domain.ChangeSystemIngestion
	if row.Source == domain.SourceHuman {
		source = domain.ChangeHumanIngestion
	}
	err = p.store.ApplyRow(ctx, store.ApplyRowParams{
		Row:     row,
		Record:  updated,
		Created: created,
		Changes: changes,
		Source:  source,
	})
	if err != nil {
		if kind, ok := domain.KindOf(err); ok {
			return rowResult{kind: kind, detail: err.Error()}
		}
		return rowResult{kind: domain.KindValidation, detail: err.Error()}
	}
	return rowResult{ok: true}
}
