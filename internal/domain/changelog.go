package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeSource tags who or what caused a record mutation.
type ChangeSource string

const (
	ChangeSystemIngestion ChangeSource = "system-ingestion"
	ChangeHumanIngestion  ChangeSource = "human-ingestion"
	ChangeEnrichment      ChangeSource = "enrichment"
	ChangeManual          ChangeSource = "manual"
)

// FieldChange is one old/new pair inside a change-set.
type FieldChange struct {
	Old string
	New string
}

// ChangeSet maps changed fields to their old/new values. An empty change-set
// means the merge was a no-op ("skipped").
type ChangeSet map[Field]FieldChange

// ChangeLogEntry is the append-only audit record of one record mutation.
// Entries are never updated or deleted.
type ChangeLogEntry struct {
	ID       int64
	RecordID int64
	BatchID  *uuid.UUID // nil for enrichment and manual changes
	Source   ChangeSource
	Changes  ChangeSet
	At       time.Time
}
