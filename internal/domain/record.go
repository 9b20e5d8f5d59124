package domain

import "time"

// SourceType identifies which feed a value came from. Every mutable record
// field is owned by exactly one source type; the ownership registry enforces
// the partition.
type SourceType string

const (
	SourceSystem SourceType = "system" // system-of-record export (Qlik)
	SourceHuman  SourceType = "human"  // faculty-maintained classification sheets
)

// Field names a single mutable attribute of a Record. Values are stored in
// a normalized scalar form; the declared FieldKind in the ownership registry
// says how to interpret them.
type Field string

// System-owned fields (populated from the Qlik export).
const (
	FieldTitle          Field = "title"
	FieldFileName       Field = "file_name"
	FieldFileURL        Field = "file_url"
	FieldCourseCodeText Field = "course_code_text"
	FieldCourseName     Field = "course_name"
	FieldDepartment     Field = "department"
	FieldMaterialType   Field = "material_type"
	FieldPageCount      Field = "page_count"
	FieldWordCount      Field = "word_count"
	FieldPublicationYear Field = "publication_year"
	FieldLastSeen       Field = "last_seen"
)

// Human-owned fields (populated from faculty sheets).
const (
	FieldWorkflowStatus Field = "workflow_status"
	FieldClassification Field = "classification"
	FieldHandledBy      Field = "handled_by"
	FieldRemark         Field = "remark"
	FieldLicenseNote    Field = "license_note"
)

// Enrichment-written fields (never present in a feed; stamped from
// external lookups and logged as enrichment changes).
const (
	FieldFacultyAbbr Field = "faculty_abbr"
)

// FieldKind is the declared value type of a field. Staging validates values
// against the kind once, so downstream code never has to guess.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindDate   FieldKind = "date"
	KindRanked FieldKind = "ranked" // closed value set with a priority ordering
)

// Record is the single reconciled entity per material identifier. It is
// created on first system-source ingestion and mutated only through the
// merge resolver; records are never hard-deleted.
type Record struct {
	ID          int64 // material identifier from the system of record
	Fields      map[Field]string
	CourseIDs   []int64
	FacultyAbbr string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkflowStatus returns the record's workflow status field, defaulting to
// todo when the field was never set.
func (r *Record) WorkflowStatus() string {
	if v, ok := r.Fields[FieldWorkflowStatus]; ok && v != "" {
		return v
	}
	return StatusTodo
}

// Clone returns a deep copy so resolver staging can't alias live state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Fields = make(map[Field]string, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	out.CourseIDs = append([]int64(nil), r.CourseIDs...)
	return &out
}

// Canonical workflow status values. The ranking between them lives in the
// reconciliation config (RankedPriority strategy), not here.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)
