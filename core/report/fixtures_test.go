package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/grade"
)

// Section 10 takes class 1 (subject 100) and class 2 (subject 200).
//
//	student 1, subject 100: quiz 8/10 + 45/50 = 88, exam 90, attendance 100 -> 91.2
//	student 2, subject 100: quiz 5/10 = 50, attendance absent+late = 25     -> 41.67
//	student 1, subject 200: exam 70 ; student 2, subject 200: exam 80
//	student 3 has no entries.
var (
	fixtureComponents = []grade.Record{
		{"component_id": 1, "component_name": "Quiz", "weight_percentage": 40},
		{"component_id": 2, "component_name": "Exam", "weight_percentage": 40},
		{"component_id": 3, "component_name": "Attendance", "weight_percentage": 20},
	}
	fixtureStudents = []grade.Record{
		{"student_id": 1, "first_name": "Amani", "last_name": "Kabila", "email": "amani@test.cd", "section_id": 10},
		{"student_id": 2, "first_name": "Baraka", "middle_name": "M", "last_name": "Tshala", "section_id": 10},
		{"student_id": 3, "name": "Chausiku", "section_id": 10},
	}
	fixtureSubjects = []grade.Record{
		{"subject_id": 100, "subject_code": "MATH", "subject_name": "Mathematics", "units": 3},
		{"subject_id": 200, "subject_code": "HIST", "subject_name": "History", "units": "1"},
	}
	subject100Entries = []grade.Record{
		entryRecord(1, 1, 100, "8", "10", "", "2024-03-01"),
		entryRecord(1, 1, 100, "45", "50", "", "2024-03-02"),
		entryRecord(1, 2, 100, "90", "100", "", "2024-03-02"),
		entryRecord(1, 3, 100, "", "", "present", "2024-03-01"),
		entryRecord(1, 3, 100, "", "", "Present", "2024-03-02"),
		entryRecord(2, 1, 100, "5", "10", "", "2024-03-01"),
		entryRecord(2, 3, 100, "", "", "absent", "2024-03-01"),
		entryRecord(2, 3, 100, "", "", "late", "2024-03-02"),
		{"student_id": "n/a", "component_id": 1, "score": 1, "max_score": 1},
	}
	subject200Entries = []grade.Record{
		entryRecord(1, 2, 200, "70", "100", "", "2024-03-03"),
		entryRecord(2, 2, 200, "80", "100", "", "2024-03-03"),
	}
)

func entryRecord(student, component, subject int, score, max, attendance, date string) grade.Record {
	rec := grade.Record{
		"student_id":    student,
		"component_id":  component,
		"classes":       map[string]interface{}{"subject_id": subject, "class_id": subject / 100},
		"date_recorded": date,
	}
	if score != "" {
		rec["score"] = score
		rec["max_score"] = max
	}
	if attendance != "" {
		rec["attendance"] = attendance
	}
	return rec
}

type fakeSource struct {
	classes  map[int]Records
	sections map[int]Records
	students map[int]Records
}

var _ Source = (*fakeSource)(nil)

func newFakeSource() *fakeSource {
	all := append(append([]grade.Record{}, subject100Entries...), subject200Entries...)
	var student1 []grade.Record
	for _, rec := range all {
		if rec["student_id"] == 1 {
			student1 = append(student1, rec)
		}
	}
	return &fakeSource{
		classes: map[int]Records{
			1: {
				Class:      grade.Record{"class_id": 1, "class_name": "Math A", "section_id": 10, "subject_id": 100},
				Students:   fixtureStudents,
				Subjects:   fixtureSubjects[:1],
				Components: fixtureComponents,
				Entries:    subject100Entries,
			},
			// student 5 missed every session, student 6 attended them all
			8: {
				Class:      grade.Record{"class_id": 8},
				Components: fixtureComponents,
				Entries: []grade.Record{
					entryRecord(5, 3, 100, "", "", "absent", "2024-03-01"),
					entryRecord(5, 3, 100, "", "", "absent", "2024-03-02"),
					entryRecord(6, 3, 100, "", "", "present", "2024-03-01"),
				},
			},
			// student 4 scored past the maximum on day 2
			9: {
				Class:      grade.Record{"class_id": 9},
				Components: fixtureComponents,
				Entries: []grade.Record{
					entryRecord(4, 1, 100, "1", "10", "", "2024-03-01"),
					entryRecord(4, 1, 100, "300", "10", "", "2024-03-02"),
				},
			},
		},
		sections: map[int]Records{
			10: {Students: fixtureStudents, Subjects: fixtureSubjects, Components: fixtureComponents, Entries: all},
		},
		students: map[int]Records{
			1: {Students: fixtureStudents[:1], Subjects: fixtureSubjects, Components: fixtureComponents, Entries: student1},
		},
	}
}

func lookupRecords(recs map[int]Records, id int) (Records, error) {
	if r, ok := recs[id]; ok {
		return r, nil
	}
	return Records{}, errors.Wrap(ErrNotFound, fmt.Sprintf("id %d", id))
}

func (src *fakeSource) ClassRecords(_ context.Context, id int) (Records, error) {
	return lookupRecords(src.classes, id)
}

func (src *fakeSource) SectionRecords(_ context.Context, id int) (Records, error) {
	return lookupRecords(src.sections, id)
}

func (src *fakeSource) StudentRecords(_ context.Context, id int) (Records, error) {
	return lookupRecords(src.students, id)
}

type logLine struct {
	level string
	msg   string
	args  []interface{}
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level: level, msg: msg, args: args})
}

func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, line := range l.lines {
		if line.level == level && line.msg == msg {
			n++
		}
	}
	return n
}

func (l *recordingLogger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }
