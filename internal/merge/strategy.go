// Package merge decides, field by field, whether a staged value replaces the
// canonical one. Strategies return a replace decision, never a value; the
// resolver assigns the new value itself so every strategy stays uniform.
package merge

import (
	"strconv"
	"strings"
	"time"
)

// Strategy is a pure (old, new) -> replace decision.
type Strategy func(old, new string) bool

// Strategy names accepted in the reconciliation config.
const (
	StrategyAlwaysReplace       = "always_replace"
	StrategyFillIfEmpty         = "fill_if_empty"
	StrategyPreferGreaterNumber = "prefer_greater_number"
	StrategyPreferNewerDate     = "prefer_newer_date"
	StrategyRankedPriority      = "ranked_priority"
)

func empty(s string) bool { return strings.TrimSpace(s) == "" }

// AlwaysReplace takes any non-empty new value; an empty value never wipes
// existing data.
func AlwaysReplace(old, new string) bool {
	return !empty(new)
}

// FillIfEmpty writes only the first population of a field.
func FillIfEmpty(old, new string) bool {
	return empty(old) && !empty(new)
}

// PreferGreaterNumber keeps the larger number. When either side fails
// numeric coercion it degrades to AlwaysReplace semantics: the upstream
// sheets carry unconditioned data entry and a non-numeric cell is treated
// as ordinary text, not rejected. Deliberate leniency, kept as-is.
func PreferGreaterNumber(old, new string) bool {
	oldN, oldErr := strconv.ParseFloat(strings.TrimSpace(old), 64)
	newN, newErr := strconv.ParseFloat(strings.TrimSpace(new), 64)
	if oldErr != nil || newErr != nil {
		return AlwaysReplace(old, new)
	}
	return newN > oldN
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02-01-2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PreferNewerDate keeps the most recent date. An unparsable old value
// always loses; an unparsable new value never replaces.
func PreferNewerDate(old, new string) bool {
	newT, newOK := parseDate(new)
	if !newOK {
		return false
	}
	oldT, oldOK := parseDate(old)
	if !oldOK {
		return true
	}
	return newT.After(oldT)
}

// RankedPriority replaces only when the new value ranks strictly better
// (lower index) in the ordered list. Unknown values rank below every listed
// one, so a bogus status can never displace a real one and a less-advanced
// status cannot regress a record.
func RankedPriority(ordered []string) Strategy {
	rank := make(map[string]int, len(ordered))
	for i, v := range ordered {
		rank[strings.ToLower(strings.TrimSpace(v))] = i
	}
	lookup := func(v string) int {
		if r, ok := rank[strings.ToLower(strings.TrimSpace(v))]; ok {
			return r
		}
		return len(ordered)
	}
	return func(old, new string) bool {
		return lookup(new) < lookup(old)
	}
}

// ByName resolves a config strategy name. RankedPriority needs its ordering
// and is only reachable through a ranked field spec, so it is not mapped
// here.
func ByName(name string) (Strategy, bool) {
	switch name {
	case StrategyAlwaysReplace:
		return AlwaysReplace, true
	case StrategyFillIfEmpty:
		return FillIfEmpty, true
	case StrategyPreferGreaterNumber:
		return PreferGreaterNumber, true
	case StrategyPreferNewerDate:
		return PreferNewerDate, true
	default:
		return nil, false
	}
}
