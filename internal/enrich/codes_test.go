package enrich

import (
	"testing"

	"material-recon/internal/domain"
)

func rec(codeText, courseName string) *domain.Record {
	return &domain.Record{ID: 1, Fields: map[domain.Field]string{
		domain.FieldCourseCodeText: codeText,
		domain.FieldCourseName:     courseName,
	}}
}

func TestCourseCodes(t *testing.T) {
	cases := []struct {
		name     string
		codeText string
		course   string
		want     []string
	}{
		{"single code", "50621", "", []string{"50621"}},
		{"semicolon list", "50621;50622", "", []string{"50621", "50622"}},
		{"comma and space list", "50621, 50622 50623", "", []string{"50621", "50622", "50623"}},
		{"code buried in name", "", "Inleiding Recht (50821)", []string{"50821"}},
		{"dedup across fields", "50621", "Logica 50621", []string{"50621"}},
		{"too short dropped", "123;5062", "", []string{"5062"}},
		{"non-numeric dropped", "ABC123;50621", "", []string{"50621"}},
		{"year-like digits in name", "", "Syllabus 2024 editie 50621", []string{"2024", "50621"}},
		{"nothing usable", "n/a", "Capita Selecta", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CourseCodes(rec(c.codeText, c.course))
			if len(got) != len(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("got %v, want %v", got, c.want)
					break
				}
			}
		})
	}
}

func TestCourseCodesSorted(t *testing.T) {
	got := CourseCodes(rec("90001;10001;50001", ""))
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("not sorted: %v", got)
		}
	}
}
