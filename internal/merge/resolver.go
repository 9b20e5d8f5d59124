package merge

import (
	"material-recon/internal/domain"
	"material-recon/internal/ownership"
)

// Resolver applies ownership and comparison strategies to compute a
// change-set. It never mutates the record it is given.
type Resolver struct {
	reg       *ownership.Registry
	overrides map[domain.Field]Strategy
}

// NewResolver builds a resolver over the ownership registry. overrides maps
// specific fields to a non-default strategy and may be nil.
func NewResolver(reg *ownership.Registry, overrides map[domain.Field]Strategy) *Resolver {
	return &Resolver{reg: reg, overrides: overrides}
}

func (r *Resolver) strategyFor(spec ownership.Spec) Strategy {
	if s, ok := r.overrides[spec.Field]; ok {
		return s
	}
	switch {
	case spec.Kind == domain.KindDate:
		return PreferNewerDate
	case len(spec.Ranking) > 0:
		return RankedPriority(spec.Ranking)
	default:
		return AlwaysReplace
	}
}

// Resolve evaluates every field owned by source and present in the payload,
// and returns the change-set plus the record state after applying it.
// Fields owned by the other source type are never inspected, even when the
// payload carries them: a feed cannot write across the ownership line by
// construction. An empty change-set means "skipped, no changes".
//
// Creation is the first-write case of the same algorithm: pass a fresh
// record with empty fields and every owned, non-empty payload value lands
// as a replace-empty-with-value.
func (r *Resolver) Resolve(record *domain.Record, payload map[domain.Field]string, source domain.SourceType) (domain.ChangeSet, *domain.Record) {
	changes := domain.ChangeSet{}
	updated := record.Clone()
	if updated.Fields == nil {
		updated.Fields = map[domain.Field]string{}
	}

	for _, spec := range r.reg.OwnedBy(source) {
		newVal, present := payload[spec.Field]
		if !present {
			continue
		}
		oldVal := updated.Fields[spec.Field]
		if !r.strategyFor(spec)(oldVal, newVal) {
			continue
		}
		changes[spec.Field] = domain.FieldChange{Old: oldVal, New: newVal}
		updated.Fields[spec.Field] = newVal
	}
	return changes, updated
}
