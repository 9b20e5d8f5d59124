package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"material-recon/internal/cache"
	"material-recon/internal/concurrency"
	"material-recon/internal/domain"
	"material-recon/internal/httpx"
	"material-recon/internal/providers/catalog"
	"material-recon/internal/providers/directory"
	"material-recon/internal/providers/lms"
)

// Cache operation names; TTLs are registered per operation.
const (
	opCourse = "course_search"
	opPerson = "person_search"
	opFile   = "file_exists"
)

// Tombstone kinds.
const (
	kindCourse = "course"
	kindPerson = "person"
)

// Store is the slice of the persistence layer enrichment needs.
type Store interface {
	GetRecord(ctx context.Context, id int64) (*domain.Record, error)
	CourseFetchedAt(ctx context.Context, code string) (time.Time, bool, error)
	CourseIDByCode(ctx context.Context, code string) (int64, error)
	HasFreshTombstone(ctx context.Context, kind, key string, window time.Duration) (bool, error)
	PutTombstone(ctx context.Context, kind, key string) error
	UpsertCourse(ctx context.Context, c *domain.Course) (int64, error)
	LinkRecordCourse(ctx context.Context, recordID, courseID int64) error
	UpsertPerson(ctx context.Context, p *domain.Person) (int64, error)
	LinkCoursePerson(ctx context.Context, courseID, personID int64, role string) error
	SetRecordFaculty(ctx context.Context, recordID int64, abbr string) error
	AppendChangeLog(ctx context.Context, recordID int64, batchID *uuid.UUID, source domain.ChangeSource, changes domain.ChangeSet) error
	StartRun(ctx context.Context, runID uuid.UUID, recordIDs []int64) error
	FinishResult(ctx context.Context, runID uuid.UUID, recordID int64, status domain.EnrichStatus, detail string) error
}

type CourseSearcher interface {
	SearchCourse(ctx context.Context, code string) (*catalog.Course, error)
}

type PersonSearcher interface {
	SearchPerson(ctx context.Context, name string) (*directory.Person, error)
}

type FileChecker interface {
	CheckFile(ctx context.Context, resourceURL string) (lms.Existence, error)
}

type Options struct {
	CourseWorkers   int
	PersonWorkers   int
	FreshnessWindow time.Duration
	Faculties       map[string]bool
}

func (o Options) withDefaults() Options {
	if o.CourseWorkers <= 0 {
		o.CourseWorkers = 10
	}
	if o.PersonWorkers <= 0 {
		o.PersonWorkers = 20
	}
	if o.FreshnessWindow <= 0 {
		o.FreshnessWindow = 30 * 24 * time.Hour
	}
	return o
}

// Outcome is the per-record result of one run.
type Outcome struct {
	Status domain.EnrichStatus `json:"status"`
	Detail string              `json:"lastAttemptDetail,omitempty"`
}

type Orchestrator struct {
	store   Store
	courses CourseSearcher
	persons PersonSearcher
	files   FileChecker
	cache   *cache.Cache
	opts    Options
	log     *slog.Logger
}

func NewOrchestrator(st Store, courses CourseSearcher, persons PersonSearcher, c *cache.Cache, opts Options) *Orchestrator {
	if c != nil {
		c.Register(opCourse, cache.TTLCourse)
		c.Register(opPerson, cache.TTLPerson)
	}
	return &Orchestrator{
		store:   st,
		courses: courses,
		persons: persons,
		cache:   c,
		opts:    opts.withDefaults(),
		log:     slog.Default().With("component", "enrich"),
	}
}

// WithFileChecker enables the LMS file-existence phase.
func (o *Orchestrator) WithFileChecker(fc FileChecker) *Orchestrator {
	o.files = fc
	if o.cache != nil {
		o.cache.Register(opFile, cache.TTLFileExists)
	}
	return o
}

// run is the mutable state of one enrichment run. Maps touched from
// parallel tasks go through mu.
type run struct {
	mu        sync.Mutex
	records   map[int64]*domain.Record
	codeRecs  map[string][]int64 // course code -> originating records
	courseRec map[int64][]int64  // course row id -> originating records
	failures  map[int64][]string // record -> failure details
	abandoned map[int64]bool     // record hit the run deadline; stays pending
	details   map[int64]string
}

func (r *run) fail(recordID int64, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[recordID] = append(r.failures[recordID], detail)
}

func (r *run) abandon(recordID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned[recordID] = true
}

// Enrich fetches catalog and directory data for the given records and
// persists it. The returned map has one outcome per requested record; a
// record abandoned on deadline reports pending and is picked up by the
// next run. Failures never cross record boundaries.
func (o *Orchestrator) Enrich(ctx context.Context, recordIDs []int64) (map[int64]Outcome, error) {
	runID := uuid.New()
	if err := o.store.StartRun(ctx, runID, recordIDs); err != nil {
		return nil, fmt.Errorf("enrich: start run: %w", err)
	}
	o.log.Info("enrichment run started", "run", runID, "records", len(recordIDs))

	st := &run{
		records:   map[int64]*domain.Record{},
		codeRecs:  map[string][]int64{},
		courseRec: map[int64][]int64{},
		failures:  map[int64][]string{},
		abandoned: map[int64]bool{},
		details:   map[int64]string{},
	}

	o.discoverTargets(ctx, st, recordIDs)
	o.verifyFiles(ctx, st)
	fetch := o.filterStale(ctx, st)
	staff := o.fetchCourses(ctx, st, fetch)
	o.fetchPersons(ctx, st, staff)

	return o.finish(ctx, st, runID, recordIDs), nil
}

// discoverTargets loads records and derives their course lookup keys.
func (o *Orchestrator) discoverTargets(ctx context.Context, st *run, recordIDs []int64) {
	for _, id := range recordIDs {
		rec, err := o.store.GetRecord(ctx, id)
		if err != nil {
			st.fail(id, fmt.Sprintf("load record: %v", err))
			continue
		}
		if rec == nil {
			st.fail(id, "record does not exist")
			continue
		}
		st.records[id] = rec
		codes := CourseCodes(rec)
		if len(codes) == 0 {
			st.details[id] = "no course codes"
			continue
		}
		for _, code := range codes {
			st.codeRecs[code] = append(st.codeRecs[code], id)
		}
	}
}

// verifyFiles probes the LMS for each record's file link. A dead link is
// noted on the record's outcome detail, not a failure: the record itself is
// fine, its source file went away.
func (o *Orchestrator) verifyFiles(ctx context.Context, st *run) {
	if o.files == nil {
		return
	}
	type target struct {
		id  int64
		url string
	}
	var targets []target
	for id, rec := range st.records {
		if url := strings.TrimSpace(rec.Fields[domain.FieldFileURL]); url != "" {
			targets = append(targets, target{id: id, url: url})
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	opts := concurrency.ParallelOptions{MaxWorkers: o.opts.CourseWorkers}
	results, errs := concurrency.ProcessParallel(ctx, targets, opts, func(ctx context.Context, i int, tgt target) (lms.Existence, error) {
		return cache.Do(ctx, o.cache, opFile, func(ctx context.Context) (lms.Existence, error) {
			return o.files.CheckFile(ctx, tgt.url)
		}, tgt.url)
	})

	for i, err := range errs {
		id := targets[i].id
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				st.abandon(id)
				continue
			}
			st.fail(id, fmt.Sprintf("file check: %s: %v", classify(err), err))
			continue
		}
		if !results[i].Exists {
			st.mu.Lock()
			if st.details[id] == "" {
				st.details[id] = "file missing in lms"
			} else {
				st.details[id] += "; file missing in lms"
			}
			st.mu.Unlock()
		}
	}
}

// filterStale links already-fresh courses and returns the codes that need
// a catalog fetch: never materialized, or older than the freshness window,
// and not tombstoned within the window.
func (o *Orchestrator) filterStale(ctx context.Context, st *run) []string {
	var fetch []string
	for code, recs := range st.codeRecs {
		fetchedAt, known, err := o.store.CourseFetchedAt(ctx, code)
		if err != nil {
			for _, id := range recs {
				st.fail(id, fmt.Sprintf("course %s: staleness check: %v", code, err))
			}
			continue
		}
		if known && time.Since(fetchedAt) < o.opts.FreshnessWindow {
			courseID, err := o.store.CourseIDByCode(ctx, code)
			if err != nil {
				for _, id := range recs {
					st.fail(id, fmt.Sprintf("course %s: id lookup: %v", code, err))
				}
				continue
			}
			if courseID != 0 {
				for _, id := range recs {
					if err := o.store.LinkRecordCourse(ctx, id, courseID); err != nil {
						st.fail(id, fmt.Sprintf("course %s: link: %v", code, err))
					} else {
						st.mu.Lock()
						st.courseRec[courseID] = append(st.courseRec[courseID], id)
						st.mu.Unlock()
					}
				}
				continue
			}
			// Fresh timestamp without a course row means a partial earlier
			// write; fall through and fetch again.
		}
		dead, err := o.store.HasFreshTombstone(ctx, kindCourse, code, o.opts.FreshnessWindow)
		if err == nil && dead {
			continue
		}
		fetch = append(fetch, code)
	}
	sort.Strings(fetch)
	return fetch
}

// staffRef is one person name discovered on a course payload.
type staffRef struct {
	name     string
	role     string
	courseID int64
}

// fetchCourses runs the bounded course-fetch phase and returns discovered
// staff references for the person phase.
func (o *Orchestrator) fetchCourses(ctx context.Context, st *run, fetch []string) []staffRef {
	var (
		mu    sync.Mutex
		staff []staffRef
	)

	opts := concurrency.ParallelOptions{MaxWorkers: o.opts.CourseWorkers}
	_, errs := concurrency.ProcessParallel(ctx, fetch, opts, func(ctx context.Context, i int, code string) (struct{}, error) {
		c, err := cache.Do(ctx, o.cache, opCourse, func(ctx context.Context) (*catalog.Course, error) {
			return o.courses.SearchCourse(ctx, code)
		}, code)
		if err != nil {
			return struct{}{}, err
		}
		if c == nil {
			// No match is not an error; tombstone it so the next runs
			// inside the freshness window skip the code.
			if err := o.store.PutTombstone(ctx, kindCourse, code); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, nil
		}

		courseID, err := o.store.UpsertCourse(ctx, &domain.Course{
			Code:      code,
			Name:      c.Name,
			ShortName: c.ShortName,
			CatalogID: c.CatalogID,
			Program:   c.Program,
		})
		if err != nil {
			return struct{}{}, err
		}
		for _, recID := range st.codeRecs[code] {
			if err := o.store.LinkRecordCourse(ctx, recID, courseID); err != nil {
				return struct{}{}, err
			}
			st.mu.Lock()
			st.courseRec[courseID] = append(st.courseRec[courseID], recID)
			st.mu.Unlock()
		}

		mu.Lock()
		for role, names := range c.Staff {
			for _, name := range names {
				if n := strings.TrimSpace(name); n != "" {
					staff = append(staff, staffRef{name: n, role: role, courseID: courseID})
				}
			}
		}
		mu.Unlock()
		return struct{}{}, nil
	})

	for i, err := range errs {
		if err == nil {
			continue
		}
		code := fetch[i]
		for _, recID := range st.codeRecs[code] {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				st.abandon(recID)
				continue
			}
			st.fail(recID, fmt.Sprintf("course %s: %s: %v", code, classify(err), err))
		}
	}
	return staff
}

// fetchPersons resolves discovered staff names against the directory and
// links them to their courses under the role tag.
func (o *Orchestrator) fetchPersons(ctx context.Context, st *run, staff []staffRef) {
	// One fetch per unique name; links fan back out per (course, role).
	byName := map[string][]staffRef{}
	for _, ref := range staff {
		byName[ref.name] = append(byName[ref.name], ref)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := concurrency.ParallelOptions{MaxWorkers: o.opts.PersonWorkers}
	_, errs := concurrency.ProcessParallel(ctx, names, opts, func(ctx context.Context, i int, name string) (struct{}, error) {
		dead, err := o.store.HasFreshTombstone(ctx, kindPerson, name, o.opts.FreshnessWindow)
		if err == nil && dead {
			return struct{}{}, nil
		}

		p, err := cache.Do(ctx, o.cache, opPerson, func(ctx context.Context) (*directory.Person, error) {
			return o.persons.SearchPerson(ctx, name)
		}, name)
		if err != nil {
			return struct{}{}, err
		}
		if p == nil {
			if err := o.store.PutTombstone(ctx, kindPerson, name); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, nil
		}

		abbr := directory.FacultyAbbr(p.Affiliation, o.opts.Faculties)
		personID, err := o.store.UpsertPerson(ctx, &domain.Person{
			DisplayName: p.DisplayName,
			Email:       p.Email,
			FacultyAbbr: abbr,
		})
		if err != nil {
			return struct{}{}, err
		}

		for _, ref := range byName[name] {
			if err := o.store.LinkCoursePerson(ctx, ref.courseID, personID, ref.role); err != nil {
				return struct{}{}, err
			}
			if abbr != "" && ref.role == "teacher" {
				o.stampFaculty(ctx, st, ref.courseID, abbr)
			}
		}
		return struct{}{}, nil
	})

	for i, err := range errs {
		if err == nil {
			continue
		}
		name := names[i]
		for _, ref := range byName[name] {
			st.mu.Lock()
			recs := append([]int64(nil), st.courseRec[ref.courseID]...)
			st.mu.Unlock()
			for _, recID := range recs {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					st.abandon(recID)
					continue
				}
				st.fail(recID, fmt.Sprintf("person %q: %s: %v", name, classify(err), err))
			}
		}
	}
}

// stampFaculty writes the teacher's faculty onto records linked to the
// course that don't have one yet, with an enrichment audit entry.
func (o *Orchestrator) stampFaculty(ctx context.Context, st *run, courseID int64, abbr string) {
	st.mu.Lock()
	recs := append([]int64(nil), st.courseRec[courseID]...)
	st.mu.Unlock()

	for _, recID := range recs {
		st.mu.Lock()
		rec := st.records[recID]
		empty := rec != nil && rec.FacultyAbbr == ""
		if empty {
			rec.FacultyAbbr = abbr
		}
		st.mu.Unlock()
		if !empty {
			continue
		}
		if err := o.store.SetRecordFaculty(ctx, recID, abbr); err != nil {
			st.fail(recID, fmt.Sprintf("set faculty: %v", err))
			continue
		}
		_ = o.store.AppendChangeLog(ctx, recID, nil, domain.ChangeEnrichment, domain.ChangeSet{
			domain.FieldFacultyAbbr: {Old: "", New: abbr},
		})
	}
}

// finish writes per-record results and builds the outcome map. Abandoned
// records stay pending in the store.
func (o *Orchestrator) finish(ctx context.Context, st *run, runID uuid.UUID, recordIDs []int64) map[int64]Outcome {
	out := make(map[int64]Outcome, len(recordIDs))
	for _, id := range recordIDs {
		if st.abandoned[id] && len(st.failures[id]) == 0 {
			out[id] = Outcome{Status: domain.EnrichPending, Detail: "abandoned: run deadline"}
			continue
		}
		if details := st.failures[id]; len(details) > 0 {
			detail := strings.Join(details, "; ")
			if err := o.store.FinishResult(ctx, runID, id, domain.EnrichFailed, detail); err != nil {
				o.log.Error("finish result failed", "run", runID, "record", id, "err", err)
			}
			out[id] = Outcome{Status: domain.EnrichFailed, Detail: detail}
			continue
		}
		detail := st.details[id]
		if err := o.store.FinishResult(ctx, runID, id, domain.EnrichCompleted, detail); err != nil {
			o.log.Error("finish result failed", "run", runID, "record", id, "err", err)
		}
		out[id] = Outcome{Status: domain.EnrichCompleted, Detail: detail}
	}
	o.log.Info("enrichment run finished", "run", runID, "records", len(recordIDs))
	return out
}

// classify names the taxonomy bucket of an external failure for the audit
// detail: retryable statuses exhausted their attempts, anything else was
// permanent and surfaced on first occurrence.
func classify(err error) domain.ErrorKind {
	var herr *httpx.HTTPError
	if errors.As(err, &herr) && !herr.Retryable() {
		return domain.KindPermanentExternal
	}
	return domain.KindTransientExternal
}
