package ownership

import (
	"testing"

	"material-recon/internal/domain"
)

func TestNewRejectsOverlap(t *testing.T) {
	_, err := New(
		[]Spec{{Field: domain.FieldTitle, Kind: domain.KindText}},
		[]Spec{{Field: domain.FieldTitle, Kind: domain.KindText}},
	)
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if kind, ok := domain.KindOf(err); !ok || kind != domain.KindInvariant {
		t.Errorf("error kind = %q (classified=%v), want invariant", kind, ok)
	}
}

func TestNewRejectsDuplicateWithinSource(t *testing.T) {
	_, err := New(
		[]Spec{
			{Field: domain.FieldTitle, Kind: domain.KindText},
			{Field: domain.FieldTitle, Kind: domain.KindText},
		},
		nil,
	)
	if err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestDefaultPartition(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	// Every field has exactly one owner.
	seen := map[domain.Field]domain.SourceType{}
	for _, src := range []domain.SourceType{domain.SourceSystem, domain.SourceHuman} {
		for _, spec := range reg.OwnedBy(src) {
			if prev, dup := seen[spec.Field]; dup {
				t.Errorf("field %q owned by both %s and %s", spec.Field, prev, src)
			}
			seen[spec.Field] = src
			owner, ok := reg.Owner(spec.Field)
			if !ok || owner != src {
				t.Errorf("Owner(%q) = %q, %v", spec.Field, owner, ok)
			}
		}
	}

	if src, _ := reg.Owner(domain.FieldWorkflowStatus); src != domain.SourceHuman {
		t.Errorf("workflow_status owner = %q", src)
	}
	if src, _ := reg.Owner(domain.FieldPageCount); src != domain.SourceSystem {
		t.Errorf("page_count owner = %q", src)
	}
	if _, ok := reg.Owner("no_such_field"); ok {
		t.Error("unknown field reported as owned")
	}
}

func TestOwnedByIsSorted(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	specs := reg.OwnedBy(domain.SourceSystem)
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Field >= specs[i].Field {
			t.Fatalf("OwnedBy not sorted: %q before %q", specs[i-1].Field, specs[i].Field)
		}
	}
}

func TestRankedSpecCarriesOrdering(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	spec, ok := reg.Spec(domain.FieldWorkflowStatus)
	if !ok {
		t.Fatal("workflow_status spec missing")
	}
	if spec.Kind != domain.KindRanked {
		t.Errorf("kind = %q", spec.Kind)
	}
	want := []string{domain.StatusDone, domain.StatusInProgress, domain.StatusTodo}
	if len(spec.Ranking) != len(want) {
		t.Fatalf("ranking = %v", spec.Ranking)
	}
	for i, v := range want {
		if spec.Ranking[i] != v {
			t.Errorf("ranking[%d] = %q, want %q", i, spec.Ranking[i], v)
		}
	}
}
