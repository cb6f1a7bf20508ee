package report

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/grade"
)

// Participation levels
const (
	ParticipationHigh   = "High"
	ParticipationMedium = "Medium"
	ParticipationLow    = "Low"
)

type (
	ClassAnalytics struct {
		RunID              string                 `json:"run_id"`
		Class              Class                  `json:"class"`
		Students           int                    `json:"students"`
		Assessed           int                    `json:"assessed"`
		ClassAverage       float64                `json:"class_average"`
		Trend              null.Float64           `json:"trend"`
		AttendanceRate     null.Float64           `json:"attendance_rate"`
		ParticipationLevel null.String            `json:"participation_level"`
		AtRisk             int                    `json:"at_risk"`
		TopPerformers      int                    `json:"top_performers"`
		NeedsReview        bool                   `json:"needs_review"`
		Assignments        int                    `json:"assignments"`
		Performance        []PerformancePoint     `json:"performance"`
		Distribution       []DistributionBucket   `json:"distribution"`
		Components         []ComponentPerformance `json:"components"`
		WeakTopics         int                    `json:"weak_topics"`
		StrongTopics       int                    `json:"strong_topics"`
	}

	// PerformancePoint is the cumulative class average as of Date, next to
	// that day's own attendance rate.
	PerformancePoint struct {
		Date           time.Time    `json:"date"`
		Average        float64      `json:"average"`
		AttendanceRate null.Float64 `json:"attendance_rate"`
	}

	DistributionBucket struct {
		Range      string `json:"range"`
		Count      int    `json:"count"`
		Percentage int    `json:"percentage"`
	}

	ComponentPerformance struct {
		ComponentID int          `json:"component_id"`
		Name        string       `json:"component_name"`
		Weight      null.Float64 `json:"weight_percentage"`
		Average     float64      `json:"average"`
	}
)

var distributionRanges = []struct {
	label string
	min   float64
}{
	{label: "90-100", min: 90},
	{label: "80-89", min: 80},
	{label: "70-79", min: 70},
	{label: "60-69", min: 60},
	{label: "Below 60"},
}

func (svc *Service) ClassAnalytics(ctx context.Context, classID int) (ClassAnalytics, error) {
	snap, err := svc.load(ctx, "class", classID, svc.src.ClassRecords)
	if err != nil {
		return ClassAnalytics{}, err
	}

	grades := make([]null.Float64, len(snap.students))
	err = svc.parallel(ctx, len(snap.students), func(i int) {
		entries := snap.byStudent[snap.students[i].ID]
		grades[i] = grade.Aggregate(snap.components, grade.GroupByComponent(entries))
	})
	if err != nil {
		return ClassAnalytics{}, err
	}

	res := ClassAnalytics{
		RunID:          snap.runID.String(),
		Class:          snap.class,
		Students:       len(snap.students),
		ClassAverage:   grade.ClassAverage(snap.components, snap.entries),
		AttendanceRate: grade.AttendanceRate(snap.entries),
		Assignments:    grade.CountUniqueAssignments(snap.entries),
	}
	if res.AttendanceRate.Valid {
		res.ParticipationLevel = null.StringFrom(participationLevel(res.AttendanceRate.Float64))
	}

	var assessed []float64
	for _, g := range grades {
		if !g.Valid {
			continue
		}
		assessed = append(assessed, g.Float64)
		if g.Float64 < svc.opts.AtRiskBelow {
			res.AtRisk++
		}
		if g.Float64 >= svc.opts.TopPerformerFrom {
			res.TopPerformers++
		}
	}
	res.Assessed = len(assessed)
	res.NeedsReview = res.AtRisk > 0
	res.Distribution = distribution(assessed)

	snaps := grade.ClassSnapshots(snap.components, snap.entries)
	res.Trend = svc.trend(snap, "class", classID, snaps)
	res.Performance = performance(snaps, snap.entries)

	res.Components = make([]ComponentPerformance, 0, len(snap.components))
	for _, c := range snap.components {
		avg := grade.ComponentAverage(c, snap.entries)
		if !avg.Valid {
			continue
		}
		res.Components = append(res.Components, ComponentPerformance{
			ComponentID: c.ID,
			Name:        c.Name,
			Weight:      c.WeightPercentage,
			Average:     avg.Float64,
		})
		switch {
		case avg.Float64 < res.ClassAverage:
			res.WeakTopics++
		case avg.Float64 >= res.ClassAverage+10:
			res.StrongTopics++
		}
	}
	return res, nil
}

func performance(snaps []grade.Snapshot, entries []grade.Entry) []PerformancePoint {
	byDay := make(map[time.Time][]grade.Entry)
	for _, e := range entries {
		if e.DateRecorded.Valid {
			byDay[e.DateRecorded.Time] = append(byDay[e.DateRecorded.Time], e)
		}
	}
	points := make([]PerformancePoint, len(snaps))
	for i, s := range snaps {
		points[i] = PerformancePoint{
			Date:           s.Date,
			Average:        s.Value,
			AttendanceRate: grade.AttendanceRate(byDay[s.Date]),
		}
	}
	return points
}

// distribution buckets the grades. Percentages are rounded per bucket and the
// last bucket takes the remainder, so they always add up to 100.
func distribution(grades []float64) []DistributionBucket {
	buckets := make([]DistributionBucket, len(distributionRanges))
	for i, r := range distributionRanges {
		buckets[i].Range = r.label
	}
	for _, g := range grades {
		for i, r := range distributionRanges {
			if g >= r.min {
				buckets[i].Count++
				break
			}
		}
	}
	if len(grades) == 0 {
		return buckets
	}

	remaining := 100
	for i := range buckets {
		if i == len(buckets)-1 {
			buckets[i].Percentage = remaining
			break
		}
		pct := int(grade.Round(float64(buckets[i].Count)/float64(len(grades))*100, 0))
		if pct > remaining {
			pct = remaining
		}
		buckets[i].Percentage = pct
		remaining -= pct
	}
	return buckets
}

func participationLevel(attendanceRate float64) string {
	switch {
	case attendanceRate >= 90:
		return ParticipationHigh
	case attendanceRate >= 75:
		return ParticipationMedium
	default:
		return ParticipationLow
	}
}
