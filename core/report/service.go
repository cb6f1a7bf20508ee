// Package report builds the analytics, leaderboards and gradebooks shown by the
// professor and student portals. Every view goes through the grade engine, so
// the same student gets the same numbers on every screen.
package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grade"
)

type Options struct {
	// AtRiskBelow flags assessed students whose grade is under it.
	AtRiskBelow float64
	// TopPerformerFrom counts students whose grade reaches it.
	TopPerformerFrom float64
	// Workers bounds the number of students evaluated at once.
	Workers int
}

func DefaultOptions() Options {
	return Options{AtRiskBelow: 70, TopPerformerFrom: 90, Workers: 8}
}

func OptionsFromConfig(conf core.ReportConfig) Options {
	return Options{
		AtRiskBelow:      conf.AtRiskBelow,
		TopPerformerFrom: conf.TopPerformerFrom,
		Workers:          conf.Workers,
	}
}

type Service struct {
	src  Source
	log  core.Logger
	opts Options
}

func NewService(src Source, logger core.Logger, opts Options) *Service {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{src: src, log: logger, opts: opts}
}

// snapshot is the normalized form of one fetch. It is read concurrently and
// must not be modified once built.
type snapshot struct {
	runID      uuid.UUID
	scope      string
	scopeID    int
	class      Class
	students   []Student
	subjects   map[int]Subject
	components []grade.Component
	entries    []grade.Entry
	byStudent  map[int][]grade.Entry
	dropped    int
}

func newSnapshot(scope string, id int, recs Records) *snapshot {
	snap := &snapshot{
		runID:    uuid.New(),
		scope:    scope,
		scopeID:  id,
		class:    NormalizeClass(recs.Class),
		students: NormalizeStudents(recs.Students),
		subjects: make(map[int]Subject),
		components: grade.MergeComponents(
			grade.NormalizeComponents(recs.Components),
			grade.ComponentsFromEntries(recs.Entries),
		),
	}

	for _, e := range grade.NormalizeEntries(recs.Entries) {
		if e.StudentID == 0 {
			snap.dropped++
			continue
		}
		snap.entries = append(snap.entries, e)
	}
	snap.byStudent = grade.GroupByStudent(snap.entries)

	// students with entries but missing from the roster are still graded
	known := make(map[int]bool, len(snap.students))
	for _, s := range snap.students {
		known[s.ID] = true
	}
	for _, id := range grade.SortedKeys(snap.byStudent) {
		if !known[id] {
			snap.students = append(snap.students, Student{ID: id})
		}
	}

	for _, s := range NormalizeSubjects(recs.Subjects) {
		if _, ok := snap.subjects[s.ID]; !ok {
			snap.subjects[s.ID] = s
		}
	}
	return snap
}

func (snap *snapshot) logContext() map[string]interface{} {
	return map[string]interface{}{
		"run":   snap.runID.String(),
		"scope": snap.scope,
		"id":    snap.scopeID,
	}
}

func (snap *snapshot) subject(id int) Subject {
	if s, ok := snap.subjects[id]; ok {
		return s
	}
	return Subject{ID: id}
}

func (svc *Service) load(
	ctx context.Context,
	scope string,
	id int,
	fetch func(context.Context, int) (Records, error),
) (*snapshot, error) {
	recs, err := fetch(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s %d", scope, id)
	}
	snap := newSnapshot(scope, id, recs)
	if snap.dropped > 0 {
		lc := snap.logContext()
		lc["count"] = snap.dropped
		svc.log.Warn("skipped entries without a known student", lc)
	}
	lc := snap.logContext()
	lc["students"] = len(snap.students)
	lc["components"] = len(snap.components)
	lc["entries"] = len(snap.entries)
	svc.log.Debug("records loaded", lc)
	return snap, nil
}

// parallel calls fn for 0..n-1 on at most opts.Workers goroutines.
// fn must only write to its own index of whatever it fills.
func (svc *Service) parallel(ctx context.Context, n int, fn func(i int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(svc.opts.Workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

// trend reports clamped anomalies before handing the value back.
func (svc *Service) trend(snap *snapshot, subject string, id int, snaps []grade.Snapshot) null.Float64 {
	res := grade.Trend(snaps)
	if res.Clamped {
		lc := snap.logContext()
		lc["subject"] = subject
		lc["subject_id"] = id
		lc["previous"] = snaps[len(snaps)-2].Value
		lc["last"] = snaps[len(snaps)-1].Value
		svc.log.Warn("implausible trend clamped to 0", lc)
	}
	return res.Value
}

// subjectPercentages returns the student's assessed subjects, in subject id order.
func (snap *snapshot) subjectPercentages(entries []grade.Entry) []grade.SubjectPercentage {
	bySubject := grade.GroupBySubject(entries)
	var out []grade.SubjectPercentage
	for _, id := range grade.SortedKeys(bySubject) {
		pct := grade.Aggregate(snap.components, grade.GroupByComponent(bySubject[id]))
		if !pct.Valid {
			continue
		}
		out = append(out, grade.SubjectPercentage{
			SubjectID:  id,
			Percentage: pct.Float64,
			Units:      snap.subject(id).Units,
		})
	}
	return out
}
