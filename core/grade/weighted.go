package grade

import (
	"sort"

	"github.com/volatiletech/null/v8"
)

// DefaultUnits is used for subjects whose credit units are unknown.
const DefaultUnits = 3.0

// WeightedAverage combines per-component averages into a percentage rounded
// to 2 decimals. Components without usable data are skipped and the remaining
// weights renormalized, so a half-assessed subject does not read as failing.
// It returns 0 when nothing was assessed; use Aggregate to tell that apart.
func WeightedAverage(components []Component, byComponent map[int][]Entry) float64 {
	return Aggregate(components, byComponent).Float64
}

// Aggregate is WeightedAverage with "nothing assessed" reported as null.
func Aggregate(components []Component, byComponent map[int][]Entry) null.Float64 {
	avg, ok := aggregate(components, byComponent)
	if !ok {
		return null.Float64{}
	}
	return null.Float64From(round2(avg))
}

func aggregate(components []Component, byComponent map[int][]Entry) (float64, bool) {
	var weightedSum, weightUsed float64
	seen := make(map[int]bool, len(components))
	for _, c := range components {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		avg := ComponentAverage(c, byComponent[c.ID])
		if !avg.Valid {
			continue
		}
		w := c.weight() / 100
		weightedSum += avg.Float64 * w
		weightUsed += w
	}
	if weightUsed == 0 {
		return 0, false
	}
	return weightedSum / weightUsed, true
}

// UnitWeightedAverage averages subject percentages weighted by credit units.
func UnitWeightedAverage(subjects []SubjectPercentage) float64 {
	return unitWeighted(subjects, func(s SubjectPercentage) float64 { return s.Percentage })
}

// UnitWeightedScale averages each subject's bracketed scale value weighted by credit units.
func UnitWeightedScale(subjects []SubjectPercentage) float64 {
	return unitWeighted(subjects, func(s SubjectPercentage) float64 { return ToBracketedScale(s.Percentage) })
}

func unitWeighted(subjects []SubjectPercentage, value func(SubjectPercentage) float64) float64 {
	var weightedSum, units float64
	for _, s := range subjects {
		u := DefaultUnits
		if s.Units.Valid && s.Units.Float64 > 0 {
			u = s.Units.Float64
		}
		weightedSum += value(s) * u
		units += u
	}
	if units == 0 {
		return 0
	}
	return round2(weightedSum / units)
}

// ClassAverage is the mean of the students' weighted averages, ignoring
// students with nothing assessed. Rounded to 2 decimals; 0 for an empty class.
func ClassAverage(components []Component, entries []Entry) float64 {
	avg, ok := classAverage(components, entries)
	if !ok {
		return 0
	}
	return round2(avg)
}

// classAverage reports false when no student has anything assessed.
func classAverage(components []Component, entries []Entry) (float64, bool) {
	var sum float64
	var n int
	byStudent := GroupByStudent(entries)
	for _, id := range SortedKeys(byStudent) {
		if avg, ok := aggregate(components, GroupByComponent(byStudent[id])); ok {
			sum += avg
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func GroupByComponent(entries []Entry) map[int][]Entry {
	return groupBy(entries, func(e Entry) int { return e.ComponentID })
}

func GroupByStudent(entries []Entry) map[int][]Entry {
	return groupBy(entries, func(e Entry) int { return e.StudentID })
}

// GroupBySubject groups entries by subject; entries without one are dropped.
func GroupBySubject(entries []Entry) map[int][]Entry {
	groups := make(map[int][]Entry)
	for _, e := range entries {
		if e.SubjectID.Valid {
			groups[e.SubjectID.Int] = append(groups[e.SubjectID.Int], e)
		}
	}
	return groups
}

func groupBy(entries []Entry, key func(Entry) int) map[int][]Entry {
	groups := make(map[int][]Entry)
	for _, e := range entries {
		k := key(e)
		groups[k] = append(groups[k], e)
	}
	return groups
}

// SortedKeys returns the group ids in ascending order.
func SortedKeys(groups map[int][]Entry) []int {
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
