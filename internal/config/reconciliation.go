package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"material-recon/internal/domain"
	"material-recon/internal/merge"
	"material-recon/internal/ownership"
)

// Reconciliation bundles everything the merge pipeline needs that an
// operator may want to change without a code release: the ownership
// partition, per-field strategy overrides, the status ranking and the
// known-faculty abbreviation set. Built once at startup and passed by
// reference; nothing here mutates afterwards.
type Reconciliation struct {
	Registry   *ownership.Registry
	Overrides  map[domain.Field]merge.Strategy
	Faculties  map[string]bool // known faculty abbreviations, upper case
	RankingVer string
}

type reconciliationFile struct {
	RankingVersion string   `yaml:"ranking_version"`
	StatusRanking  []string `yaml:"status_ranking"`
	Faculties      []string `yaml:"faculties"`
	SystemFields   []fieldSpecYAML `yaml:"system_fields"`
	HumanFields    []fieldSpecYAML `yaml:"human_fields"`
	Strategies     map[string]string `yaml:"strategies"`
}

type fieldSpecYAML struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// DefaultFaculties is the compiled-in known-faculty abbreviation set used
// when no reconciliation file is configured.
var DefaultFaculties = []string{"FGW", "FNWI", "FEB", "FMG", "FDR", "FGG", "ACTA", "AUC"}

// LoadReconciliation builds the reconciliation config, from the YAML file
// when path is non-empty, otherwise from compiled-in defaults. Any
// ownership overlap in the file is fatal, same as in code.
func LoadReconciliation(path string) (*Reconciliation, error) {
	if path == "" {
		return defaultReconciliation()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reconciliation file: %w", err)
	}
	var f reconciliationFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("reconciliation file: %w", err)
	}

	ranking := f.StatusRanking
	if len(ranking) == 0 {
		ranking = ownership.DefaultStatusRanking
	}

	system, err := specsFromYAML(f.SystemFields, ranking)
	if err != nil {
		return nil, err
	}
	human, err := specsFromYAML(f.HumanFields, ranking)
	if err != nil {
		return nil, err
	}
	reg, err := ownership.New(system, human)
	if err != nil {
		return nil, err
	}

	overrides := map[domain.Field]merge.Strategy{}
	for field, name := range f.Strategies {
		s, ok := merge.ByName(name)
		if !ok {
			return nil, domain.Errf(domain.KindInvariant, "unknown strategy %q for field %q", name, field)
		}
		overrides[domain.Field(field)] = s
	}

	faculties := f.Faculties
	if len(faculties) == 0 {
		faculties = DefaultFaculties
	}

	return &Reconciliation{
		Registry:   reg,
		Overrides:  overrides,
		Faculties:  facultySet(faculties),
		RankingVer: f.RankingVersion,
	}, nil
}

func specsFromYAML(in []fieldSpecYAML, ranking []string) ([]ownership.Spec, error) {
	out := make([]ownership.Spec, 0, len(in))
	for _, fs := range in {
		spec := ownership.Spec{Field: domain.Field(fs.Name)}
		switch domain.FieldKind(fs.Kind) {
		case domain.KindText, "":
			spec.Kind = domain.KindText
		case domain.KindNumber:
			spec.Kind = domain.KindNumber
		case domain.KindDate:
			spec.Kind = domain.KindDate
		case domain.KindRanked:
			spec.Kind = domain.KindRanked
			spec.Ranking = ranking
		default:
			return nil, domain.Errf(domain.KindInvariant, "unknown field kind %q for %q", fs.Kind, fs.Name)
		}
		out = append(out, spec)
	}
	return out, nil
}

func defaultReconciliation() (*Reconciliation, error) {
	reg, err := ownership.Default()
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		Registry: reg,
		Overrides: map[domain.Field]merge.Strategy{
			domain.FieldPublicationYear: merge.PreferGreaterNumber,
			domain.FieldFileName:        merge.FillIfEmpty,
		},
		Faculties:  facultySet(DefaultFaculties),
		RankingVer: "v1",
	}, nil
}

func facultySet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, f := range in {
		out[f] = true
	}
	return out
}
