// Package grade turns raw grade-entry records into component averages, weighted
// percentages, GPA-like scale values, rankings and trends.
//
// Functions in this package are pure: they never mutate their inputs, never
// perform I/O and never return errors. Missing or malformed data surfaces as a
// null result ("not yet assessed"), which is never the same thing as zero.
package grade

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Record is one loosely-typed raw row as handed over by a record source.
// It may be flat or carry nested objects (e.g. "grade_components": {...}).
type Record = map[string]interface{}

// Attendance statuses
const (
	Present = "present"
	Absent  = "absent"
	Late    = "late"
)

// Kind tells how a component is evaluated for one student.
type Kind int

const (
	KindNone Kind = iota
	KindScore
	KindAttendance
)

func (k Kind) String() string {
	switch k {
	case KindScore:
		return "score"
	case KindAttendance:
		return "attendance"
	default:
		return "none"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one normalized observation for a (student, component) pair.
type Entry struct {
	StudentID    int          `json:"student_id"`
	ComponentID  int          `json:"component_id"`
	ClassID      null.Int     `json:"class_id"`
	SubjectID    null.Int     `json:"subject_id"`
	Name         null.String  `json:"name"`
	Score        null.Float64 `json:"score"`
	MaxScore     null.Float64 `json:"max_score"`
	Attendance   null.String  `json:"attendance"`
	DateRecorded null.Time    `json:"date_recorded"`
	GradePeriod  null.String  `json:"grade_period"`
}

// Scorable reports whether the entry contributes to a score-type average.
func (e Entry) Scorable() bool {
	return e.Score.Valid && e.MaxScore.Valid && e.MaxScore.Float64 > 0
}

// HasAttendance reports whether the entry carries an attendance status.
func (e Entry) HasAttendance() bool {
	return e.Attendance.Valid
}

// Component is a weighted category of assessment within a subject.
// Weights are relative shares: they need not add up to 100.
type Component struct {
	ID               int          `json:"component_id"`
	Name             string       `json:"component_name"`
	WeightPercentage null.Float64 `json:"weight_percentage"`
}

func (c Component) weight() float64 {
	if !c.WeightPercentage.Valid {
		return 0
	}
	return c.WeightPercentage.Float64
}

// Scored is a ranking candidate.
type Scored struct {
	ID    int
	Score null.Float64
	Trend null.Float64
}

// Ranked is one row of a ranking; it only ever exists as the output of Rank.
type Ranked struct {
	ID    int          `json:"id"`
	Score float64      `json:"score"`
	Rank  int          `json:"rank"`
	Trend null.Float64 `json:"trend"`
}

// Snapshot is a cumulative average as of a given day.
type Snapshot struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TrendResult struct {
	Value   null.Float64 `json:"value"`
	Clamped bool         `json:"clamped"`
}

// SubjectPercentage feeds the units-weighted aggregation.
type SubjectPercentage struct {
	SubjectID  int          `json:"subject_id"`
	Percentage float64      `json:"percentage"`
	Units      null.Float64 `json:"units"`
}
