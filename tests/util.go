package testutil

import (
	"context"
	"encoding/json"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/grade"
	"github.com/trezcool/alama/storage/database"
)

// School is a raw dataset laid out like the portal tables.
type School struct {
	Classes    []grade.Record `json:"classes" yaml:"classes"`
	Students   []grade.Record `json:"students" yaml:"students"`
	Subjects   []grade.Record `json:"subjects" yaml:"subjects"`
	Components []grade.Record `json:"components" yaml:"components"`
	Entries    []grade.Record `json:"entries" yaml:"entries"`
}

// NewSchool returns section 10 with classes 1 (Mathematics) and 2 (History):
//
//	student 1: math 91.2 (quiz 88, exam 90, attendance 100), history 70
//	student 2: math 41.67 (quiz 50, attendance 25), history 80
//	student 3: no entries
func NewSchool() School {
	return School{
		Classes: []grade.Record{
			{"class_id": 1, "class_name": "Math A", "section_id": 10, "subject_id": 100},
			{"class_id": 2, "class_name": "History A", "section_id": 10, "subject_id": 200},
		},
		Students: []grade.Record{
			{"student_id": 1, "first_name": "Amani", "middle_name": nil, "last_name": "Kabila", "email": "amani@test.cd", "section_id": 10},
			{"student_id": 2, "first_name": "Baraka", "middle_name": "M", "last_name": "Tshala", "email": nil, "section_id": 10},
			{"student_id": 3, "first_name": "Chausiku", "middle_name": nil, "last_name": "Ilunga", "email": nil, "section_id": 10},
		},
		Subjects: []grade.Record{
			{"subject_id": 100, "subject_code": "MATH", "subject_name": "Mathematics", "units": 3},
			{"subject_id": 200, "subject_code": "HIST", "subject_name": "History", "units": 1},
		},
		Components: []grade.Record{
			{"component_id": 1, "component_name": "Quiz", "weight_percentage": 40},
			{"component_id": 2, "component_name": "Exam", "weight_percentage": 40},
			{"component_id": 3, "component_name": "Attendance", "weight_percentage": 20},
		},
		Entries: []grade.Record{
			ScoreEntry(1, 1, 1, 8, 10, "2024-03-01"),
			ScoreEntry(1, 1, 1, 45, 50, "2024-03-02"),
			ScoreEntry(1, 2, 1, 90, 100, "2024-03-02"),
			AttendanceEntry(1, 3, 1, "present", "2024-03-01"),
			AttendanceEntry(1, 3, 1, "present", "2024-03-02"),
			ScoreEntry(2, 1, 1, 5, 10, "2024-03-01"),
			AttendanceEntry(2, 3, 1, "absent", "2024-03-01"),
			AttendanceEntry(2, 3, 1, "late", "2024-03-02"),
			ScoreEntry(1, 2, 2, 70, 100, "2024-03-03"),
			ScoreEntry(2, 2, 2, 80, 100, "2024-03-03"),
		},
	}
}

func ScoreEntry(student, component, class int, score, max float64, date string) grade.Record {
	return grade.Record{
		"student_id":    student,
		"component_id":  component,
		"class_id":      class,
		"score":         score,
		"max_score":     max,
		"attendance":    nil,
		"date_recorded": date,
	}
}

func AttendanceEntry(student, component, class int, status, date string) grade.Record {
	return grade.Record{
		"student_id":    student,
		"component_id":  component,
		"class_id":      class,
		"score":         nil,
		"max_score":     nil,
		"attendance":    status,
		"date_recorded": date,
	}
}

var schema = []string{
	`CREATE TABLE students (
		student_id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		middle_name TEXT,
		last_name TEXT NOT NULL,
		email TEXT,
		section_id INTEGER
	)`,
	`CREATE TABLE subjects (
		subject_id INTEGER PRIMARY KEY,
		subject_code TEXT NOT NULL,
		subject_name TEXT NOT NULL,
		units NUMERIC
	)`,
	`CREATE TABLE classes (
		class_id INTEGER PRIMARY KEY,
		class_name TEXT NOT NULL,
		section_id INTEGER,
		subject_id INTEGER
	)`,
	`CREATE TABLE grade_components (
		component_id INTEGER PRIMARY KEY,
		component_name TEXT NOT NULL,
		weight_percentage NUMERIC
	)`,
	`CREATE TABLE grade_entries (
		grade_id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		component_id INTEGER NOT NULL,
		class_id INTEGER NOT NULL,
		name TEXT,
		score NUMERIC,
		max_score NUMERIC,
		attendance TEXT,
		date_recorded TEXT,
		grade_period TEXT
	)`,
}

// PrepareDB opens a fresh in-memory SQLite database holding the portal tables.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), core.DatabaseConfig{Driver: database.SQLite, Name: ":memory:"})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("PrepareDB() failed: %v", err)
		}
	}
	return db
}

// Seed inserts the school's rows into a database made by PrepareDB.
func Seed(t *testing.T, db *sqlx.DB, school School) {
	t.Helper()
	tables := []struct {
		name string
		rows []grade.Record
	}{
		{name: "classes", rows: school.Classes},
		{name: "students", rows: school.Students},
		{name: "subjects", rows: school.Subjects},
		{name: "grade_components", rows: school.Components},
		{name: "grade_entries", rows: school.Entries},
	}
	for _, tbl := range tables {
		for _, row := range tbl.rows {
			query, args, err := sq.Insert(tbl.name).SetMap(row).ToSql()
			if err != nil {
				t.Fatalf("Seed(%s) failed: %v", tbl.name, err)
			}
			if _, err := db.Exec(query, args...); err != nil {
				t.Fatalf("Seed(%s) failed: %v", tbl.name, err)
			}
		}
	}
}

// JSONDiff fails the test with a unified diff when got and want marshal differently.
func JSONDiff(t *testing.T, name string, got, want interface{}) {
	t.Helper()
	g, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("%s: marshalling got: %v", name, err)
	}
	w, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		t.Fatalf("%s: marshalling want: %v", name, err)
	}
	if string(g) == string(w) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(w)),
		B:        difflib.SplitLines(string(g)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("%s mismatch:\n%s", name, diff)
}
