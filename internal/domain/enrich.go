package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course is catalog data materialized from the external course-search
// service, upserted by course code.
type Course struct {
	ID        int64
	Code      string // natural key
	Name      string
	ShortName string
	CatalogID string // the catalog's internal id
	Program   string
	FetchedAt time.Time
}

// Person is directory data materialized from the external person-search
// service, upserted by display name.
type Person struct {
	ID          int64
	DisplayName string // natural key
	Email       string
	FacultyAbbr string
	FetchedAt   time.Time
}

// CourseRole links a person to a course under a role tag ("teacher",
// "contact", ...). A (course, person, role) triple appears at most once.
type CourseRole struct {
	CourseID int64
	PersonID int64
	Role     string
}

// EnrichStatus is the per-record outcome state of one enrichment run.
type EnrichStatus string

const (
	EnrichPending   EnrichStatus = "pending"
	EnrichCompleted EnrichStatus = "completed"
	EnrichFailed    EnrichStatus = "failed"
)

// EnrichmentResult is one external-fetch outcome for one record within one
// run, mutated exactly once on completion and retained for audit.
type EnrichmentResult struct {
	ID        int64
	RunID     uuid.UUID
	RecordID  int64
	Status    EnrichStatus
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tombstone marks an external lookup key that resolved to "no match", so
// later runs skip it until the freshness window expires.
type Tombstone struct {
	Kind      string // "course" or "person"
	Key       string
	CreatedAt time.Time
}
