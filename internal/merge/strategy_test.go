package merge

import (
	"testing"

	"material-recon/internal/domain"
)

func TestAlwaysReplace(t *testing.T) {
	cases := []struct {
		old, new string
		want     bool
	}{
		{"", "x", true},
		{"a", "b", true},
		{"a", "", false},
		{"a", "   ", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := AlwaysReplace(c.old, c.new); got != c.want {
			t.Errorf("AlwaysReplace(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestFillIfEmpty(t *testing.T) {
	cases := []struct {
		old, new string
		want     bool
	}{
		{"", "x", true},
		{"  ", "x", true},
		{"a", "b", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := FillIfEmpty(c.old, c.new); got != c.want {
			t.Errorf("FillIfEmpty(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestPreferGreaterNumber(t *testing.T) {
	cases := []struct {
		old, new string
		want     bool
	}{
		{"3", "5", true},
		{"5", "3", false},
		{"5", "5", false},
		{"3.5", "3.7", true},
		{" 10 ", "12", true},
		// Non-numeric sides degrade to always-replace semantics.
		{"n/a", "5", true},
		{"5", "unknown", true},
		{"n/a", "", false},
		{"", "7", true},
	}
	for _, c := range cases {
		if got := PreferGreaterNumber(c.old, c.new); got != c.want {
			t.Errorf("PreferGreaterNumber(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestPreferNewerDate(t *testing.T) {
	cases := []struct {
		old, new string
		want     bool
	}{
		{"2024-01-01", "2024-06-01", true},
		{"2024-06-01", "2024-01-01", false},
		{"2024-06-01", "2024-06-01", false},
		{"2024-01-01T10:00:00Z", "2024-01-01T11:00:00Z", true},
		{"01-02-2024", "2024-03-01", true}, // dd-mm-yyyy old form
		// Unparsable new never replaces; unparsable old always loses.
		{"2024-01-01", "not a date", false},
		{"garbage", "2024-01-01", true},
		{"", "2024-01-01", true},
		{"2024-01-01", "", false},
	}
	for _, c := range cases {
		if got := PreferNewerDate(c.old, c.new); got != c.want {
			t.Errorf("PreferNewerDate(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestRankedPriority(t *testing.T) {
	s := RankedPriority([]string{domain.StatusDone, domain.StatusInProgress, domain.StatusTodo})
	cases := []struct {
		old, new string
		want     bool
	}{
		{domain.StatusTodo, domain.StatusInProgress, true},
		{domain.StatusInProgress, domain.StatusDone, true},
		{domain.StatusTodo, domain.StatusDone, true},
		// No regression.
		{domain.StatusDone, domain.StatusInProgress, false},
		{domain.StatusDone, domain.StatusTodo, false},
		{domain.StatusInProgress, domain.StatusTodo, false},
		// Same rank is not an improvement.
		{domain.StatusDone, domain.StatusDone, false},
		// Unknown values rank below every listed one.
		{domain.StatusTodo, "bogus", false},
		{"bogus", domain.StatusTodo, true},
		{"bogus", "other-bogus", false},
		// Case and whitespace tolerant.
		{"  TODO ", "Done", true},
	}
	for _, c := range cases {
		if got := s(c.old, c.new); got != c.want {
			t.Errorf("RankedPriority(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{
		StrategyAlwaysReplace, StrategyFillIfEmpty,
		StrategyPreferGreaterNumber, StrategyPreferNewerDate,
	} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName(StrategyRankedPriority); ok {
		t.Error("ranked_priority should not resolve without an ordering")
	}
	if _, ok := ByName("nope"); ok {
		t.Error("unknown name resolved")
	}
}
