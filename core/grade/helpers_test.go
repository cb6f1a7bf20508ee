package grade

import (
	"math"
	"time"

	"github.com/volatiletech/null/v8"
)

func day(d int) null.Time {
	return null.TimeFrom(time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC))
}

func scoreEntry(student, component int, score, max float64, date null.Time) Entry {
	return Entry{
		StudentID:    student,
		ComponentID:  component,
		Score:        null.Float64From(score),
		MaxScore:     null.Float64From(max),
		DateRecorded: date,
	}
}

func attendanceEntry(student, component int, status string, date null.Time) Entry {
	return Entry{
		StudentID:    student,
		ComponentID:  component,
		Attendance:   null.StringFrom(status),
		DateRecorded: date,
	}
}

func comp(id int, weight float64) Component {
	return Component{ID: id, Name: "C", WeightPercentage: null.Float64From(weight)}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
