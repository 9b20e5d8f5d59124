// Command ingest stages one feed file and processes it into canonical
// records. It prints the batch outcome as JSON on stdout and, when asked,
// writes a per-row failure report.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"material-recon/internal/batch"
	"material-recon/internal/config"
	"material-recon/internal/domain"
	"material-recon/internal/feedarchive"
	"material-recon/internal/merge"
	"material-recon/internal/report"
	"material-recon/internal/staging"
	"material-recon/internal/store"
)

func main() {
	var (
		sourceFlag  = flag.String("source", "", "feed source: system or human")
		fileFlag    = flag.String("file", "", "path to the feed file (csv)")
		archiveFlag = flag.String("archive", "", "directory for the raw-feed archive (optional)")
		reportFlag  = flag.String("report", "", "path for the failure report csv (optional)")
		timeoutFlag = flag.Duration("timeout", 10*time.Minute, "overall deadline")
	)
	flag.Parse()

	source := domain.SourceType(*sourceFlag)
	if source != domain.SourceSystem && source != domain.SourceHuman {
		log.Fatalf("invalid -source %q: want system or human", *sourceFlag)
	}
	if *fileFlag == "" {
		log.Fatal("missing -file")
	}

	cfg := config.Load()
	config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	rec, err := config.LoadReconciliation(cfg.ReconciliationFile)
	if err != nil {
		log.Fatalf("reconciliation config: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	raw, err := os.ReadFile(*fileFlag)
	if err != nil {
		log.Fatalf("read feed: %v", err)
	}
	rows, err := readFeedCSV(bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("parse feed: %v", err)
	}

	st := store.New(pool)
	proc := batch.NewProcessor(st, merge.NewResolver(rec.Registry, rec.Overrides))

	b, err := proc.Stage(ctx, source, *fileFlag, rows)
	if err != nil {
		log.Fatalf("stage: %v", err)
	}

	if *archiveFlag != "" {
		arch := feedarchive.New(*archiveFlag)
		if err := arch.Store(b.ID, *fileFlag, bytes.NewReader(raw)); err != nil {
			log.Fatalf("archive: %v", err)
		}
	}

	out, err := proc.Process(ctx, b.ID)
	if err != nil {
		log.Fatalf("process: %v", err)
	}

	if *reportFlag != "" && out.Failed > 0 {
		failures, err := st.Failures(ctx, b.ID)
		if err != nil {
			log.Fatalf("load failures: %v", err)
		}
		f, err := os.Create(*reportFlag)
		if err != nil {
			log.Fatalf("create report: %v", err)
		}
		if err := report.WriteFailuresCSV(f, failures); err != nil {
			f.Close()
			log.Fatalf("write report: %v", err)
		}
		f.Close()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode outcome: %v", err)
	}
	if !out.Success {
		os.Exit(1)
	}
}

// readFeedCSV parses a feed into raw rows. The drop delivers both comma-
// and semicolon-separated files; the delimiter is sniffed from the header
// line.
func readFeedCSV(r io.Reader) ([]staging.RawRow, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sep := ','
	if i := bytes.IndexByte(buf, '\n'); i > 0 {
		head := buf[:i]
		if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
			sep = ';'
		}
	}

	cr := csv.NewReader(bytes.NewReader(buf))
	cr.Comma = sep
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []staging.RawRow
	for num := 1; ; num++ {
		line, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", num+1, err)
		}
		cells := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(line) {
				cells[h] = line[i]
			}
		}
		rows = append(rows, staging.RawRow{Number: num, Cells: cells})
	}
	return rows, nil
}
