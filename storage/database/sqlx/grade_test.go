package sqlxrepos

import (
	"context"
	"testing"

	"github.com/trezcool/alama/core/grade"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/storage/database"
	testutil "github.com/trezcool/alama/tests"
)

func newTestRepository(t *testing.T) *gradeRepository {
	t.Helper()
	db := testutil.PrepareDB(t)
	testutil.Seed(t, db, testutil.NewSchool())
	return NewGradeRepository(db, database.SQLite)
}

func TestGradeRepository_ClassRecords(t *testing.T) {
	repo := newTestRepository(t)

	recs, err := repo.ClassRecords(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClassRecords() unexpected error = %v", err)
	}
	if got := report.NormalizeClass(recs.Class); got.ID != 1 || got.SubjectID.Int != 100 || got.SectionID.Int != 10 {
		t.Errorf("ClassRecords() class = %+v", got)
	}
	if got := len(recs.Students); got != 3 {
		t.Errorf("ClassRecords() students = %d, want 3", got)
	}
	if got := len(recs.Entries); got != 8 {
		t.Errorf("ClassRecords() entries = %d, want 8", got)
	}
	if got := len(recs.Components); got != 3 {
		t.Errorf("ClassRecords() components = %d, want 3", got)
	}
	subjects := report.NormalizeSubjects(recs.Subjects)
	if len(subjects) != 1 || subjects[0].Code.String != "MATH" || subjects[0].Units.Float64 != 3 {
		t.Errorf("ClassRecords() subjects = %+v", subjects)
	}

	entries := grade.NormalizeEntries(recs.Entries)
	first := entries[0]
	if first.SubjectID.Int != 100 || !first.DateRecorded.Valid || first.Score.Float64 != 8 {
		t.Errorf("ClassRecords() first entry = %+v", first)
	}
}

func TestGradeRepository_SectionRecords(t *testing.T) {
	repo := newTestRepository(t)

	recs, err := repo.SectionRecords(context.Background(), 10)
	if err != nil {
		t.Fatalf("SectionRecords() unexpected error = %v", err)
	}
	if got := len(recs.Entries); got != 10 {
		t.Errorf("SectionRecords() entries = %d, want 10", got)
	}
	if got := len(recs.Subjects); got != 2 {
		t.Errorf("SectionRecords() subjects = %d, want 2", got)
	}
}

func TestGradeRepository_StudentRecords(t *testing.T) {
	repo := newTestRepository(t)

	recs, err := repo.StudentRecords(context.Background(), 2)
	if err != nil {
		t.Fatalf("StudentRecords() unexpected error = %v", err)
	}
	students := report.NormalizeStudents(recs.Students)
	if len(students) != 1 || students[0].Name != "Baraka M Tshala" || students[0].Email.Valid {
		t.Errorf("StudentRecords() students = %+v", students)
	}
	for _, e := range grade.NormalizeEntries(recs.Entries) {
		if e.StudentID != 2 {
			t.Errorf("StudentRecords() returned an entry of student %d", e.StudentID)
		}
	}
	if got := len(recs.Entries); got != 4 {
		t.Errorf("StudentRecords() entries = %d, want 4", got)
	}
}

func TestGradeRepository_notFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		fetch func() error
	}{
		{name: "class", fetch: func() error { _, err := repo.ClassRecords(ctx, 99); return err }},
		{name: "section", fetch: func() error { _, err := repo.SectionRecords(ctx, 99); return err }},
		{name: "student", fetch: func() error { _, err := repo.StudentRecords(ctx, 99); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fetch(); !report.IsNotFound(err) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestGradeRepository_placeholders(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: database.SQLite, want: "SELECT student_id FROM students WHERE student_id = ?"},
		{driver: database.Postgres, want: "SELECT student_id FROM students WHERE student_id = $1"},
		{driver: database.PGX, want: "SELECT student_id FROM students WHERE student_id = $1"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			repo := NewGradeRepository(nil, tt.driver)
			got, _, err := repo.sb.Select("student_id").From("students").Where("student_id = ?", 1).ToSql()
			if err != nil {
				t.Fatalf("ToSql() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToSql() = %q, want %q", got, tt.want)
			}
		})
	}
}
