package grade

import "github.com/volatiletech/null/v8"

// Classify derives how a set of entries is evaluated: attendance-type when some
// entry has attendance and none is scorable, score-type when any is scorable.
func Classify(entries []Entry) Kind {
	var hasAttendance bool
	for _, e := range entries {
		if e.Scorable() {
			return KindScore
		}
		if e.HasAttendance() {
			hasAttendance = true
		}
	}
	if hasAttendance {
		return KindAttendance
	}
	return KindNone
}

// ComponentAverage returns the component's percentage for the given entries,
// rounded to a whole point, or null when nothing usable was recorded.
//
// Attendance-type components score present as 1, late as 0.5 and absent as 0.
// Score-type components pool totals: sum(score) / sum(max_score). When a
// component mixes both, only the scorable entries count.
func ComponentAverage(c Component, entries []Entry) null.Float64 {
	own := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ComponentID == c.ID {
			own = append(own, e)
		}
	}

	switch Classify(own) {
	case KindScore:
		return scoreAverage(own)
	case KindAttendance:
		return attendanceAverage(own)
	default:
		return null.Float64{}
	}
}

func scoreAverage(entries []Entry) null.Float64 {
	var total, max float64
	for _, e := range entries {
		if !e.Scorable() {
			continue
		}
		total += e.Score.Float64
		max += e.MaxScore.Float64
	}
	if max <= 0 {
		return null.Float64{}
	}
	return null.Float64From(roundWhole(total / max * 100))
}

func attendanceAverage(entries []Entry) null.Float64 {
	present, late, total := countAttendance(entries)
	if total == 0 {
		return null.Float64{}
	}
	return null.Float64From(roundWhole((float64(present) + 0.5*float64(late)) / float64(total) * 100))
}

// AttendanceRate is the share of attendance entries marked present or late,
// rounded to a whole point, or null without attendance entries.
func AttendanceRate(entries []Entry) null.Float64 {
	present, late, total := countAttendance(entries)
	if total == 0 {
		return null.Float64{}
	}
	return null.Float64From(roundWhole(float64(present+late) / float64(total) * 100))
}

func countAttendance(entries []Entry) (present, late, total int) {
	for _, e := range entries {
		if !e.HasAttendance() {
			continue
		}
		total++
		switch e.Attendance.String {
		case Present:
			present++
		case Late:
			late++
		}
	}
	return present, late, total
}

// CountUniqueAssignments counts distinct (component, day) pairs among entries carrying a score.
func CountUniqueAssignments(entries []Entry) int {
	type key struct {
		component int
		day       string
	}
	seen := make(map[key]bool)
	for _, e := range entries {
		if !e.Score.Valid {
			continue
		}
		k := key{component: e.ComponentID}
		if e.DateRecorded.Valid {
			k.day = e.DateRecorded.Time.Format("2006-01-02")
		}
		seen[k] = true
	}
	return len(seen)
}
