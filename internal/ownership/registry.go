// Package ownership holds the static partition of record fields between the
// two feed sources. The partition is built once at startup; an overlap is a
// fatal configuration error because it would make merge outcomes depend on
// which feed arrived last.
package ownership

import (
	"sort"

	"material-recon/internal/domain"
)

// Spec declares one field: its value kind and, for ranked fields, the
// priority ordering (lower index wins).
type Spec struct {
	Field   domain.Field
	Kind    domain.FieldKind
	Ranking []string
}

// Registry answers which source type owns a field. Immutable after
// construction.
type Registry struct {
	owner map[domain.Field]domain.SourceType
	specs map[domain.Field]Spec
	bysrc map[domain.SourceType][]Spec
}

// New builds a registry from the two ownership lists. The lists must be
// disjoint and free of internal duplicates; any overlap returns a
// KindInvariant error and the process must not start.
func New(system, human []Spec) (*Registry, error) {
	r := &Registry{
		owner: make(map[domain.Field]domain.SourceType),
		specs: make(map[domain.Field]Spec),
		bysrc: make(map[domain.SourceType][]Spec),
	}
	for _, pair := range []struct {
		src   domain.SourceType
		specs []Spec
	}{
		{domain.SourceSystem, system},
		{domain.SourceHuman, human},
	} {
		for _, s := range pair.specs {
			if prev, ok := r.owner[s.Field]; ok {
				return nil, domain.Errf(domain.KindInvariant,
					"field %q claimed by both %s and %s", s.Field, prev, pair.src)
			}
			r.owner[s.Field] = pair.src
			r.specs[s.Field] = s
			r.bysrc[pair.src] = append(r.bysrc[pair.src], s)
		}
	}
	return r, nil
}

// Owner reports which source type owns the field, false for unknown fields.
func (r *Registry) Owner(f domain.Field) (domain.SourceType, bool) {
	src, ok := r.owner[f]
	return src, ok
}

// Spec returns the field declaration, false for unknown fields.
func (r *Registry) Spec(f domain.Field) (Spec, bool) {
	s, ok := r.specs[f]
	return s, ok
}

// OwnedBy lists the fields owned by a source type, sorted by field name so
// merge processing is deterministic.
func (r *Registry) OwnedBy(src domain.SourceType) []Spec {
	out := append([]Spec(nil), r.bysrc[src]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// DefaultStatusRanking orders workflow statuses best-first: a record marked
// done must never regress to in_progress or todo.
var DefaultStatusRanking = []string{domain.StatusDone, domain.StatusInProgress, domain.StatusTodo}

// Default returns the compiled-in partition. A YAML reconciliation file can
// replace it at startup (see internal/config).
func Default() (*Registry, error) {
	system := []Spec{
		{Field: domain.FieldTitle, Kind: domain.KindText},
		{Field: domain.FieldFileName, Kind: domain.KindText},
		{Field: domain.FieldFileURL, Kind: domain.KindText},
		{Field: domain.FieldCourseCodeText, Kind: domain.KindText},
		{Field: domain.FieldCourseName, Kind: domain.KindText},
		{Field: domain.FieldDepartment, Kind: domain.KindText},
		{Field: domain.FieldMaterialType, Kind: domain.KindText},
		{Field: domain.FieldPageCount, Kind: domain.KindNumber},
		{Field: domain.FieldWordCount, Kind: domain.KindNumber},
		{Field: domain.FieldPublicationYear, Kind: domain.KindNumber},
		{Field: domain.FieldLastSeen, Kind: domain.KindDate},
	}
	human := []Spec{
		{Field: domain.FieldWorkflowStatus, Kind: domain.KindRanked, Ranking: DefaultStatusRanking},
		{Field: domain.FieldClassification, Kind: domain.KindText},
		{Field: domain.FieldHandledBy, Kind: domain.KindText},
		{Field: domain.FieldRemark, Kind: domain.KindText},
		{Field: domain.FieldLicenseNote, Kind: domain.KindText},
	}
	return New(system, human)
}
