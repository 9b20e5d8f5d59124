// Package report renders operator-facing batch reports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"material-recon/internal/domain"
)

// WriteFailuresCSV writes one line per processing failure so the sheet
// owners can fix their rows: row number, error kind, detail.
func WriteFailuresCSV(w io.Writer, failures []domain.ProcessingFailure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "kind", "detail"}); err != nil {
		return fmt.Errorf("report: header: %w", err)
	}
	for _, f := range failures {
		rec := []string{strconv.Itoa(f.RowNumber), string(f.Kind), f.Detail}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: row %d: %w", f.RowNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
