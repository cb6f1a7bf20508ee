package grade

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestComponentAverage(t *testing.T) {
	quiz := comp(1, 40)
	tests := []struct {
		name    string
		entries []Entry
		want    null.Float64
	}{
		{name: "no entries", want: null.Float64{}},
		{
			name:    "pooled totals, not an average of ratios",
			entries: []Entry{scoreEntry(1, 1, 8, 10, day(1)), scoreEntry(1, 1, 45, 50, day(2))},
			want:    null.Float64From(88),
		},
		{
			name: "attendance",
			entries: []Entry{
				attendanceEntry(1, 1, Present, day(1)),
				attendanceEntry(1, 1, Late, day(2)),
				attendanceEntry(1, 1, Absent, day(3)),
				attendanceEntry(1, 1, Present, day(4)),
			},
			want: null.Float64From(63),
		},
		{
			name:    "all absent is zero, not null",
			entries: []Entry{attendanceEntry(1, 1, Absent, day(1))},
			want:    null.Float64From(0),
		},
		{
			name:    "mixed component uses scorable entries only",
			entries: []Entry{attendanceEntry(1, 1, Present, day(1)), scoreEntry(1, 1, 5, 10, day(2))},
			want:    null.Float64From(50),
		},
		{
			name:    "non-positive max score is excluded",
			entries: []Entry{scoreEntry(1, 1, 5, 0, day(1)), scoreEntry(1, 1, 7, 10, day(2))},
			want:    null.Float64From(70),
		},
		{
			name:    "only unusable entries",
			entries: []Entry{{StudentID: 1, ComponentID: 1, Score: null.Float64From(4)}},
			want:    null.Float64{},
		},
		{
			name:    "entries of other components are ignored",
			entries: []Entry{scoreEntry(1, 2, 10, 10, day(1)), scoreEntry(1, 1, 1, 4, day(1))},
			want:    null.Float64From(25),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComponentAverage(quiz, tt.entries); got != tt.want {
				t.Errorf("ComponentAverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    Kind
	}{
		{name: "empty", want: KindNone},
		{name: "attendance only", entries: []Entry{attendanceEntry(1, 1, Late, day(1))}, want: KindAttendance},
		{name: "score only", entries: []Entry{scoreEntry(1, 1, 1, 2, day(1))}, want: KindScore},
		{name: "mixed", entries: []Entry{attendanceEntry(1, 1, Late, day(1)), scoreEntry(1, 1, 1, 2, day(1))}, want: KindScore},
		{name: "attendance with a zero max score", entries: []Entry{attendanceEntry(1, 1, Late, day(1)), scoreEntry(1, 1, 1, 0, day(1))}, want: KindAttendance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.entries); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttendanceRate(t *testing.T) {
	entries := []Entry{
		attendanceEntry(1, 1, Present, day(1)),
		attendanceEntry(1, 1, Late, day(2)),
		attendanceEntry(1, 1, Absent, day(3)),
		scoreEntry(1, 2, 5, 10, day(3)),
	}
	if got, want := AttendanceRate(entries), null.Float64From(67); got != want {
		t.Errorf("AttendanceRate() = %v, want %v", got, want)
	}
	if got := AttendanceRate(entries[3:]); got.Valid {
		t.Errorf("AttendanceRate() = %v, want null", got)
	}
}

func TestCountUniqueAssignments(t *testing.T) {
	entries := []Entry{
		scoreEntry(1, 1, 5, 10, day(1)),
		scoreEntry(2, 1, 7, 10, day(1)), // same assignment, other student
		scoreEntry(1, 1, 9, 10, day(2)),
		scoreEntry(1, 2, 9, 10, day(2)),
		attendanceEntry(1, 3, Present, day(2)),
	}
	if got, want := CountUniqueAssignments(entries), 3; got != want {
		t.Errorf("CountUniqueAssignments() = %v, want %v", got, want)
	}
}
