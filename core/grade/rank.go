package grade

import (
	"math"
	"sort"

	"github.com/volatiletech/null/v8"
)

// TrendGuard bounds a believable change between two snapshots. Bigger jumps
// point at bad upstream data and are reported as 0.
const TrendGuard = 100.0

type RankOptions struct {
	AscendingIsBetter bool
}

// Rank orders the candidates best first and numbers them 1..n.
// Candidates without a score are left out. Ties keep their input order and
// still get distinct, consecutive ranks.
func Rank(subjects []Scored, opts RankOptions) []Ranked {
	scored := make([]Scored, 0, len(subjects))
	for _, s := range subjects {
		if s.Score.Valid {
			scored = append(scored, s)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if opts.AscendingIsBetter {
			return scored[i].Score.Float64 < scored[j].Score.Float64
		}
		return scored[i].Score.Float64 > scored[j].Score.Float64
	})

	ranked := make([]Ranked, len(scored))
	for i, s := range scored {
		ranked[i] = Ranked{
			ID:    s.ID,
			Score: s.Score.Float64,
			Rank:  i + 1,
			Trend: s.Trend,
		}
	}
	return ranked
}

// CumulativeSnapshots builds one snapshot per distinct recorded day, each the
// weighted average over every entry recorded on or before that day.
// Undated entries take no part in the series.
func CumulativeSnapshots(components []Component, entries []Entry) []Snapshot {
	return snapshots(entries, func(upTo []Entry) (float64, bool) {
		return aggregate(components, GroupByComponent(upTo))
	})
}

// ClassSnapshots is CumulativeSnapshots with the class average as the value.
func ClassSnapshots(components []Component, entries []Entry) []Snapshot {
	return snapshots(entries, func(upTo []Entry) (float64, bool) {
		return classAverage(components, upTo)
	})
}

func snapshots(entries []Entry, value func([]Entry) (float64, bool)) []Snapshot {
	dated := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.DateRecorded.Valid {
			dated = append(dated, e)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].DateRecorded.Time.Before(dated[j].DateRecorded.Time)
	})

	var snaps []Snapshot
	for i := 0; i < len(dated); {
		day := dated[i].DateRecorded.Time
		j := i
		for j < len(dated) && dated[j].DateRecorded.Time.Equal(day) {
			j++
		}
		if v, ok := value(dated[:j]); ok {
			snaps = append(snaps, Snapshot{Date: day, Value: round2(v)})
		}
		i = j
	}
	return snaps
}

// Trend is the change between the last two snapshots, rounded to 2 decimals.
func Trend(snapshots []Snapshot) TrendResult {
	n := len(snapshots)
	if n < 2 {
		return TrendResult{}
	}
	delta := round2(snapshots[n-1].Value - snapshots[n-2].Value)
	if math.Abs(delta) > TrendGuard {
		return TrendResult{Value: null.Float64From(0), Clamped: true}
	}
	return TrendResult{Value: null.Float64From(delta)}
}
