package report

import (
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/grade"
)

type (
	Student struct {
		ID        int         `json:"student_id"`
		Name      string      `json:"name"`
		Email     null.String `json:"email"`
		SectionID null.Int    `json:"section_id"`
	}

	Subject struct {
		ID    int          `json:"subject_id"`
		Code  null.String  `json:"subject_code"`
		Name  string       `json:"subject_name"`
		Units null.Float64 `json:"units"`
	}

	Class struct {
		ID        int         `json:"class_id"`
		Name      null.String `json:"class_name"`
		SectionID null.Int    `json:"section_id"`
		SubjectID null.Int    `json:"subject_id"`
	}
)

func NormalizeStudents(raw []grade.Record) []Student {
	students := make([]Student, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for _, rec := range raw {
		if rec == nil {
			continue
		}
		id := grade.Int(rec, "student_id", "id").Int
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		students = append(students, Student{
			ID:        id,
			Name:      studentName(rec),
			Email:     grade.String(rec, "email", "accounts.email"),
			SectionID: grade.Int(rec, "section_id", "sections.section_id"),
		})
	}
	return students
}

func studentName(rec grade.Record) string {
	if name := grade.String(rec, "name", "full_name"); name.Valid {
		return name.String
	}
	var parts []string
	for _, key := range []string{"first_name", "middle_name", "last_name"} {
		if part := grade.String(rec, key); part.Valid {
			parts = append(parts, part.String)
		}
	}
	return strings.Join(parts, " ")
}

func NormalizeSubjects(raw []grade.Record) []Subject {
	subjects := make([]Subject, 0, len(raw))
	for _, rec := range raw {
		if rec == nil {
			continue
		}
		subjects = append(subjects, Subject{
			ID:    grade.Int(rec, "subject_id", "id").Int,
			Code:  grade.String(rec, "subject_code", "code"),
			Name:  grade.String(rec, "subject_name", "name").String,
			Units: grade.Float(rec, "units"),
		})
	}
	return subjects
}

func NormalizeClass(rec grade.Record) Class {
	if rec == nil {
		return Class{}
	}
	return Class{
		ID:        grade.Int(rec, "class_id", "id").Int,
		Name:      grade.String(rec, "class_name", "name"),
		SectionID: grade.Int(rec, "section_id"),
		SubjectID: grade.Int(rec, "subject_id"),
	}
}
