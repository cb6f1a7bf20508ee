package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grade"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/storage/database"
)

var (
	studentColumns   = []string{"student_id", "first_name", "middle_name", "last_name", "email", "section_id"}
	subjectColumns   = []string{"subject_id", "subject_code", "subject_name", "units"}
	componentColumns = []string{"component_id", "component_name", "weight_percentage"}
	entryColumns     = []string{
		"ge.student_id", "ge.component_id", "ge.class_id", "c.subject_id", "ge.name",
		"ge.score", "ge.max_score", "ge.attendance", "ge.date_recorded", "ge.grade_period",
	}
	entryOrdering = []core.DBOrdering{
		{Field: "ge.date_recorded", Ascending: true},
		{Field: "ge.student_id", Ascending: true},
		{Field: "ge.component_id", Ascending: true},
	}
)

type gradeRepository struct {
	db core.DBQueryer
	sb sq.StatementBuilderType
}

var _ report.Source = (*gradeRepository)(nil)

// NewGradeRepository reads the portal tables. driver picks the placeholder style.
func NewGradeRepository(db core.DBQueryer, driver string) *gradeRepository {
	var format sq.PlaceholderFormat = sq.Dollar
	if driver == database.SQLite {
		format = sq.Question
	}
	return &gradeRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (repo gradeRepository) ClassRecords(ctx context.Context, classID int) (report.Records, error) {
	classes, err := repo.query(ctx, "class", repo.sb.
		Select("class_id", "class_name", "section_id", "subject_id").
		From("classes").
		Where(sq.Eq{"class_id": classID}).
		Limit(1))
	if err != nil {
		return report.Records{}, err
	}
	if len(classes) == 0 {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "class %d", classID)
	}
	recs := report.Records{Class: classes[0]}

	if sectionID := grade.Int(recs.Class, "section_id"); sectionID.Valid {
		if recs.Students, err = repo.students(ctx, sq.Eq{"section_id": sectionID.Int}); err != nil {
			return report.Records{}, err
		}
	}
	if recs.Entries, err = repo.entries(ctx, sq.Eq{"ge.class_id": classID}); err != nil {
		return report.Records{}, err
	}
	if err = repo.related(ctx, &recs); err != nil {
		return report.Records{}, err
	}
	return recs, nil
}

func (repo gradeRepository) SectionRecords(ctx context.Context, sectionID int) (report.Records, error) {
	students, err := repo.students(ctx, sq.Eq{"section_id": sectionID})
	if err != nil {
		return report.Records{}, err
	}
	if len(students) == 0 {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "section %d", sectionID)
	}
	recs := report.Records{Students: students}

	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, grade.Int(s, "student_id").Int)
	}
	if recs.Entries, err = repo.entries(ctx, sq.Eq{"ge.student_id": ids}); err != nil {
		return report.Records{}, err
	}
	if err = repo.related(ctx, &recs); err != nil {
		return report.Records{}, err
	}
	return recs, nil
}

func (repo gradeRepository) StudentRecords(ctx context.Context, studentID int) (report.Records, error) {
	students, err := repo.students(ctx, sq.Eq{"student_id": studentID})
	if err != nil {
		return report.Records{}, err
	}
	if len(students) == 0 {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "student %d", studentID)
	}
	recs := report.Records{Students: students}

	if recs.Entries, err = repo.entries(ctx, sq.Eq{"ge.student_id": studentID}); err != nil {
		return report.Records{}, err
	}
	if err = repo.related(ctx, &recs); err != nil {
		return report.Records{}, err
	}
	return recs, nil
}

func (repo gradeRepository) students(ctx context.Context, where sq.Sqlizer) ([]grade.Record, error) {
	return repo.query(ctx, "students", repo.sb.
		Select(studentColumns...).
		From("students").
		Where(where).
		OrderBy(core.DBOrdering{Field: "student_id", Ascending: true}.String()))
}

func (repo gradeRepository) entries(ctx context.Context, where sq.Sqlizer) ([]grade.Record, error) {
	orderBy := make([]string, 0, len(entryOrdering))
	for _, ord := range entryOrdering {
		orderBy = append(orderBy, ord.String())
	}
	return repo.query(ctx, "entries", repo.sb.
		Select(entryColumns...).
		From("grade_entries ge").
		Join("classes c ON c.class_id = ge.class_id").
		Where(where).
		OrderBy(orderBy...))
}

// related loads the subjects and components referenced by the entries.
func (repo gradeRepository) related(ctx context.Context, recs *report.Records) error {
	subjectIDs := distinctInts(recs.Entries, "subject_id")
	if classSubject := grade.Int(recs.Class, "subject_id"); classSubject.Valid {
		subjectIDs = appendMissing(subjectIDs, classSubject.Int)
	}
	componentIDs := distinctInts(recs.Entries, "component_id")

	var err error
	if len(subjectIDs) > 0 {
		recs.Subjects, err = repo.query(ctx, "subjects", repo.sb.
			Select(subjectColumns...).
			From("subjects").
			Where(sq.Eq{"subject_id": subjectIDs}).
			OrderBy("subject_id ASC"))
		if err != nil {
			return err
		}
	}
	if len(componentIDs) > 0 {
		recs.Components, err = repo.query(ctx, "components", repo.sb.
			Select(componentColumns...).
			From("grade_components").
			Where(sq.Eq{"component_id": componentIDs}).
			OrderBy("component_id ASC"))
		if err != nil {
			return err
		}
	}
	return nil
}

func (repo gradeRepository) query(ctx context.Context, what string, builder sq.SelectBuilder) ([]grade.Record, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrapf(err, "building %s query", what)
	}

	rows, err := repo.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", what)
	}
	defer func() { _ = rows.Close() }()

	var recs []grade.Record
	for rows.Next() {
		rec := make(grade.Record)
		if err = rows.MapScan(rec); err != nil {
			return nil, errors.Wrapf(err, "scanning %s", what)
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", what)
	}
	return recs, nil
}

func distinctInts(recs []grade.Record, key string) []int {
	var ids []int
	for _, rec := range recs {
		if id := grade.Int(rec, key); id.Valid {
			ids = appendMissing(ids, id.Int)
		}
	}
	return ids
}

func appendMissing(ids []int, id int) []int {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
