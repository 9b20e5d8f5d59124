package domain

import (
	"time"

	"github.com/google/uuid"
)

// RowStatus is the processing state of one staged row. A row is written
// exactly once after staging: to done or failed.
type RowStatus string

const (
	RowPending RowStatus = "pending"
	RowDone    RowStatus = "done"
	RowFailed  RowStatus = "failed"
)

// StagedRow is one standardized line from an uploaded feed file, held
// durably until the batch processor applies it. Rows are retained for audit
// and never reused.
type StagedRow struct {
	ID         int64
	BatchID    uuid.UUID
	Source     SourceType
	MaterialID int64 // required positive identifier; rows without one are dropped before staging
	RowNumber  int   // originating line in the feed file, for error reporting
	Payload    map[Field]string
	Status     RowStatus
	CreatedAt  time.Time
}

// BatchStatus is the lifecycle state of one feed upload.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchStaging    BatchStatus = "staging"
	BatchStaged     BatchStatus = "staged"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchPartial    BatchStatus = "partial"
	BatchFailed     BatchStatus = "failed"
)

// Batch is one feed-upload unit with running counters. Counts satisfy
// created+updated+skipped+failed <= TotalRows, and the terminal status is a
// pure function of the counts (see TerminalStatus).
type Batch struct {
	ID        uuid.UUID
	Source    SourceType
	FileName  string
	Status    BatchStatus
	TotalRows int
	Staged    int
	Created   int
	Updated   int
	Skipped   int
	Failed    int
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TerminalStatus derives the batch outcome from its counters:
// no failures means completed, all failures means failed, anything in
// between is partial.
func (b *Batch) TerminalStatus() BatchStatus {
	switch {
	case b.Failed == 0:
		return BatchCompleted
	case b.Failed >= b.Staged:
		return BatchFailed
	default:
		return BatchPartial
	}
}

// ProcessingFailure records one row that could not be applied, kept outside
// the rolled-back transaction so the evidence survives.
type ProcessingFailure struct {
	ID        int64
	BatchID   uuid.UUID
	RowNumber int
	Kind      ErrorKind
	Detail    string
	Payload   map[Field]string
	CreatedAt time.Time
}

// Outcome is the batch-processing result handed back to the upload/CLI
// boundary.
type Outcome struct {
	Success    bool      `json:"success"`
	BatchID    uuid.UUID `json:"batchId"`
	RowsStaged int       `json:"rowsStaged"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}
