// Package enrich fetches course and person data from the external catalog
// and directory for a set of canonical records, with bounded concurrency,
// retry/backoff and TTL caching.
package enrich

import (
	"regexp"
	"sort"
	"strings"

	"material-recon/internal/domain"
)

const minCodeLen = 4

var digitRun = regexp.MustCompile(`\d+`)

// CourseCodes derives catalog lookup keys from a record's free-text course
// fields. The code field may hold one code or a semicolon/comma list, and
// feeds sometimes bury the code inside the course name, so both fields are
// scanned tolerantly. Candidates that are non-numeric or too short are
// discarded without failing the record.
func CourseCodes(rec *domain.Record) []string {
	seen := map[string]bool{}

	addTokens := func(raw string) {
		for _, tok := range strings.FieldsFunc(raw, func(r rune) bool {
			return r == ';' || r == ',' || r == ' ' || r == '\t'
		}) {
			tok = strings.TrimSpace(tok)
			if valid(tok) {
				seen[tok] = true
			}
		}
	}

	addTokens(rec.Fields[domain.FieldCourseCodeText])

	// Digit runs embedded in the name field ("Inleiding Recht (2024); 5082HB14").
	for _, m := range digitRun.FindAllString(rec.Fields[domain.FieldCourseName], -1) {
		if valid(m) {
			seen[m] = true
		}
	}

	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func valid(tok string) bool {
	if len(tok) < minCodeLen {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
