// Command enrich runs one enrichment pass over the given record ids:
// catalog course lookups, directory person lookups, links and faculty
// stamping. Per-record outcomes are printed as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"material-recon/internal/cache"
	"material-recon/internal/config"
	"material-recon/internal/enrich"
	"material-recon/internal/providers/catalog"
	"material-recon/internal/providers/directory"
	"material-recon/internal/providers/lms"
	"material-recon/internal/store"
)

func main() {
	timeoutFlag := flag.Duration("timeout", 15*time.Minute, "overall run deadline; unfinished records stay pending")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: enrich [-timeout d] <record-id> [record-id ...]")
	}
	var recordIDs []int64
	for _, arg := range flag.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			log.Fatalf("invalid record id %q", arg)
		}
		recordIDs = append(recordIDs, id)
	}

	cfg := config.Load()
	config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	rec, err := config.LoadReconciliation(cfg.ReconciliationFile)
	if err != nil {
		log.Fatalf("reconciliation config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	o := enrich.NewOrchestrator(
		store.New(pool),
		catalog.New(cfg.CatalogBaseURL, cfg.CatalogAPIKey),
		directory.New(cfg.DirectoryBaseURL, cfg.DirectoryAPIKey),
		cache.New(),
		enrich.Options{
			CourseWorkers:   cfg.CourseWorkers,
			PersonWorkers:   cfg.PersonWorkers,
			FreshnessWindow: cfg.FreshnessWindow,
			Faculties:       rec.Faculties,
		},
	).WithFileChecker(lms.New(cfg.LMSToken))

	out, err := o.Enrich(ctx, recordIDs)
	if err != nil {
		log.Fatalf("enrich: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode outcomes: %v", err)
	}
}
