package staging

import (
	"testing"

	"material-recon/internal/domain"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Titel", "titel"},
		{"  Course   Code  ", "course_code"},
		{"Behandeld Door", "behandeld_door"},
		{"PAGE COUNT", "page_count"},
		{"pagina's", "pagina's"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStandardizeSystemVocabulary(t *testing.T) {
	rows := []RawRow{{
		Number: 1,
		Cells: map[string]string{
			"Materiaal_ID": "123",
			"Titel":        "Reader Week 1",
			"Vakcode":      "5062LOGI6Y",
			"Paginas":      "12",
			"Laatst_Gezien": "2026-08-01",
		},
	}}

	out, dropped := Standardize(domain.SourceSystem, rows)
	if dropped != 0 || len(out) != 1 {
		t.Fatalf("out=%d dropped=%d", len(out), dropped)
	}
	std := out[0]
	if std.MaterialID != 123 || std.RowNumber != 1 {
		t.Errorf("id=%d row=%d", std.MaterialID, std.RowNumber)
	}
	if std.Payload[domain.FieldTitle] != "Reader Week 1" {
		t.Errorf("title = %q", std.Payload[domain.FieldTitle])
	}
	if std.Payload[domain.FieldCourseCodeText] != "5062LOGI6Y" {
		t.Errorf("course code = %q", std.Payload[domain.FieldCourseCodeText])
	}
	if std.Payload[domain.FieldPageCount] != "12" {
		t.Errorf("page count = %q", std.Payload[domain.FieldPageCount])
	}
	if std.Payload[domain.FieldLastSeen] != "2026-08-01" {
		t.Errorf("last seen = %q", std.Payload[domain.FieldLastSeen])
	}
}

func TestStandardizeHumanVocabularyAndStatus(t *testing.T) {
	rows := []RawRow{
		{Number: 1, Cells: map[string]string{"ID": "5", "Status": "Afgehandeld", "Opmerking": "dubbele scan"}},
		{Number: 2, Cells: map[string]string{"ID": "6", "Status": "To Do"}},
		{Number: 3, Cells: map[string]string{"ID": "7", "Status": "mee bezig"}},
		{Number: 4, Cells: map[string]string{"ID": "8", "Status": "weird state"}},
	}

	out, dropped := Standardize(domain.SourceHuman, rows)
	if dropped != 0 || len(out) != 4 {
		t.Fatalf("out=%d dropped=%d", len(out), dropped)
	}
	want := []string{domain.StatusDone, domain.StatusTodo, domain.StatusInProgress, "weird_state"}
	for i, w := range want {
		if got := out[i].Payload[domain.FieldWorkflowStatus]; got != w {
			t.Errorf("row %d status = %q, want %q", i+1, got, w)
		}
	}
	if out[0].Payload[domain.FieldRemark] != "dubbele scan" {
		t.Errorf("remark = %q", out[0].Payload[domain.FieldRemark])
	}
}

func TestStandardizeDropsRowsWithoutIdentifier(t *testing.T) {
	rows := []RawRow{
		{Number: 1, Cells: map[string]string{"Titel": "no id at all"}},
		{Number: 2, Cells: map[string]string{"ID": "abc", "Titel": "bad id"}},
		{Number: 3, Cells: map[string]string{"ID": "-4", "Titel": "negative id"}},
		{Number: 4, Cells: map[string]string{"ID": "0", "Titel": "zero id"}},
		{Number: 5, Cells: map[string]string{"ID": "9", "Titel": "good"}},
	}

	out, dropped := Standardize(domain.SourceSystem, rows)
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}
	if len(out) != 1 || out[0].MaterialID != 9 {
		t.Fatalf("out = %+v", out)
	}
}

func TestStandardizeUnknownHeadersPassThrough(t *testing.T) {
	rows := []RawRow{{
		Number: 1,
		Cells:  map[string]string{"ID": "3", "Extra Kolom": "bewaar dit"},
	}}

	out, _ := Standardize(domain.SourceSystem, rows)
	if len(out) != 1 {
		t.Fatal("row lost")
	}
	if got := out[0].Payload[domain.Field("extra_kolom")]; got != "bewaar dit" {
		t.Errorf("passthrough = %q", got)
	}
}

func TestStandardizeSkipsEmptyValues(t *testing.T) {
	rows := []RawRow{{
		Number: 1,
		Cells:  map[string]string{"ID": "3", "Titel": "   ", "Afdeling": "FNWI"},
	}}

	out, _ := Standardize(domain.SourceSystem, rows)
	if _, present := out[0].Payload[domain.FieldTitle]; present {
		t.Error("blank cell staged")
	}
	if out[0].Payload[domain.FieldDepartment] != "FNWI" {
		t.Errorf("department = %q", out[0].Payload[domain.FieldDepartment])
	}
}
