// Package staging standardizes parsed feed rows before they are stored.
// File parsing itself happens at the upload boundary; this package receives
// flat header->value maps, maps the two known header vocabularies onto
// record fields, and drops rows without a usable material identifier.
package staging

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"material-recon/internal/domain"
)

// RawRow is one parsed line from a feed file.
type RawRow struct {
	Number int // 1-based line number in the file
	Cells  map[string]string
}

// Standardized is a row ready for staging: identifier resolved, headers
// mapped, values normalized.
type Standardized struct {
	MaterialID int64
	RowNumber  int
	Payload    map[domain.Field]string
}

// NormalizeHeader folds a raw column header to the canonical lookup form:
// NFC, lower case, runs of whitespace as single underscores.
func NormalizeHeader(h string) string {
	h = norm.NFC.String(strings.TrimSpace(h))
	h = strings.ToLower(h)
	return strings.Join(strings.Fields(h), "_")
}

// identifier is the pseudo-field holding the material identifier; it maps
// to the record key, never to a payload field.
const identifier = "material_id"

var systemVocabulary = map[string]domain.Field{
	"materiaal_id":     identifier,
	"material_id":      identifier,
	"id":               identifier,
	"titel":            domain.FieldTitle,
	"title":            domain.FieldTitle,
	"bestandsnaam":     domain.FieldFileName,
	"file_name":        domain.FieldFileName,
	"url":              domain.FieldFileURL,
	"file_url":         domain.FieldFileURL,
	"vakcode":          domain.FieldCourseCodeText,
	"course_code":      domain.FieldCourseCodeText,
	"vaknaam":          domain.FieldCourseName,
	"course_name":      domain.FieldCourseName,
	"afdeling":         domain.FieldDepartment,
	"department":       domain.FieldDepartment,
	"type":             domain.FieldMaterialType,
	"material_type":    domain.FieldMaterialType,
	"paginas":          domain.FieldPageCount,
	"pagina's":         domain.FieldPageCount,
	"page_count":       domain.FieldPageCount,
	"woorden":          domain.FieldWordCount,
	"word_count":       domain.FieldWordCount,
	"jaar":             domain.FieldPublicationYear,
	"publication_year": domain.FieldPublicationYear,
	"laatst_gezien":    domain.FieldLastSeen,
	"last_seen":        domain.FieldLastSeen,
}

var humanVocabulary = map[string]domain.Field{
	"materiaal_id":   identifier,
	"material_id":    identifier,
	"id":             identifier,
	"status":         domain.FieldWorkflowStatus,
	"workflow_status": domain.FieldWorkflowStatus,
	"classificatie":  domain.FieldClassification,
	"classification": domain.FieldClassification,
	"behandeld_door": domain.FieldHandledBy,
	"handled_by":     domain.FieldHandledBy,
	"opmerking":      domain.FieldRemark,
	"remark":         domain.FieldRemark,
	"remarks":        domain.FieldRemark,
	"licentie":       domain.FieldLicenseNote,
	"license_note":   domain.FieldLicenseNote,
}

func vocabulary(src domain.SourceType) map[string]domain.Field {
	if src == domain.SourceHuman {
		return humanVocabulary
	}
	return systemVocabulary
}

// normalizeValue canonicalizes values for fields with a closed value set so
// ranked comparison sees one spelling per status.
func normalizeValue(f domain.Field, v string) string {
	v = strings.TrimSpace(v)
	if f == domain.FieldWorkflowStatus {
		folded := strings.Join(strings.Fields(strings.ToLower(v)), "_")
		switch folded {
		case "todo", "to_do", "open":
			return domain.StatusTodo
		case "in_progress", "busy", "mee_bezig":
			return domain.StatusInProgress
		case "done", "afgehandeld", "klaar":
			return domain.StatusDone
		}
		return folded
	}
	return v
}

// Standardize maps raw rows into staged form. Rows without a positive
// integer material identifier are dropped here, not staged-and-failed;
// the dropped count goes back to the upload boundary for its report.
// Headers outside the vocabulary pass through under their normalized name
// so nothing from the sheet is lost for audit.
func Standardize(source domain.SourceType, rows []RawRow) (out []Standardized, dropped int) {
	vocab := vocabulary(source)
	for _, raw := range rows {
		std := Standardized{RowNumber: raw.Number, Payload: map[domain.Field]string{}}
		for header, value := range raw.Cells {
			key := NormalizeHeader(header)
			field, known := vocab[key]
			if !known {
				field = domain.Field(key)
			}
			if string(field) == identifier {
				if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && id > 0 {
					std.MaterialID = id
				}
				continue
			}
			if v := normalizeValue(field, value); v != "" {
				std.Payload[field] = v
			}
		}
		if std.MaterialID <= 0 {
			dropped++
			continue
		}
		out = append(out, std)
	}
	return out, dropped
}
