package report

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/grade"
)

// Badges
const (
	BadgePerfectAttendance   = "Perfect Attendance"
	BadgeTopScorer           = "Top Scorer"
	BadgeConsistentPerformer = "Consistent Performer"
	BadgeActiveParticipant   = "Active Participant"
	BadgeImprovedStudent     = "Improved Student"
)

var AllBadges = []string{
	BadgePerfectAttendance,
	BadgeTopScorer,
	BadgeImprovedStudent,
	BadgeConsistentPerformer,
	BadgeActiveParticipant,
}

type (
	ClassLeaderboard struct {
		RunID        string           `json:"run_id"`
		Class        Class            `json:"class"`
		Rows         []LeaderboardRow `json:"rows"`
		Achievements map[string]int   `json:"achievements"`
		Stats        LeaderboardStats `json:"stats"`
	}

	LeaderboardRow struct {
		Rank          int          `json:"rank"`
		Student       Student      `json:"student"`
		Grade         float64      `json:"grade"`
		Trend         null.Float64 `json:"trend"`
		Assignments   int          `json:"assignments"`
		Participation null.Float64 `json:"participation"`
		Badges        []string     `json:"badges"`
	}

	LeaderboardStats struct {
		ClassAverage         float64      `json:"class_average"`
		AssignmentCompletion float64      `json:"assignment_completion"`
		ActiveParticipation  null.Float64 `json:"active_participation"`
		AboveAverage         int          `json:"above_average"`
		NeedSupport          int          `json:"need_support"`
	}
)

// Badges lists the achievements earned with the given grade, participation and trend.
func Badges(score float64, participation, trend null.Float64) []string {
	badges := make([]string, 0, 2)
	if participation.Valid && participation.Float64 >= 98 {
		badges = append(badges, BadgePerfectAttendance)
	}
	if score >= 95 {
		badges = append(badges, BadgeTopScorer)
	}
	if score >= 90 && score < 95 {
		badges = append(badges, BadgeConsistentPerformer)
	}
	if participation.Valid && participation.Float64 >= 85 && score >= 85 {
		badges = append(badges, BadgeActiveParticipant)
	}
	if trend.Valid && trend.Float64 >= 2 {
		badges = append(badges, BadgeImprovedStudent)
	}
	return badges
}

type standing struct {
	average       null.Float64
	trend         null.Float64
	participation null.Float64
	assignments   int
}

// ClassLeaderboard ranks the class's assessed students, best grade first.
func (svc *Service) ClassLeaderboard(ctx context.Context, classID int) (ClassLeaderboard, error) {
	snap, err := svc.load(ctx, "class", classID, svc.src.ClassRecords)
	if err != nil {
		return ClassLeaderboard{}, err
	}

	standings := make([]standing, len(snap.students))
	err = svc.parallel(ctx, len(snap.students), func(i int) {
		id := snap.students[i].ID
		entries := snap.byStudent[id]
		st := standing{
			average:       grade.Aggregate(snap.components, grade.GroupByComponent(entries)),
			participation: grade.AttendanceRate(entries),
		}
		st.trend = svc.trend(snap, "student", id, grade.CumulativeSnapshots(snap.components, entries))
		for _, e := range entries {
			if e.Score.Valid {
				st.assignments++
			}
		}
		standings[i] = st
	})
	if err != nil {
		return ClassLeaderboard{}, err
	}

	scored := make([]grade.Scored, len(snap.students))
	byID := make(map[int]int, len(snap.students))
	for i, s := range snap.students {
		scored[i] = grade.Scored{ID: s.ID, Score: standings[i].average, Trend: standings[i].trend}
		byID[s.ID] = i
	}

	res := ClassLeaderboard{
		RunID:        snap.runID.String(),
		Class:        snap.class,
		Achievements: make(map[string]int, len(AllBadges)),
		Stats:        LeaderboardStats{ClassAverage: grade.ClassAverage(snap.components, snap.entries)},
	}
	for _, b := range AllBadges {
		res.Achievements[b] = 0
	}

	ranked := grade.Rank(scored, grade.RankOptions{})
	res.Rows = make([]LeaderboardRow, len(ranked))
	var maxAssignments, totalAssignments int
	var participationSum float64
	var participationN int
	for i, r := range ranked {
		idx := byID[r.ID]
		st := standings[idx]
		row := LeaderboardRow{
			Rank:          r.Rank,
			Student:       snap.students[idx],
			Grade:         r.Score,
			Trend:         r.Trend,
			Assignments:   st.assignments,
			Participation: st.participation,
			Badges:        Badges(r.Score, st.participation, r.Trend),
		}
		res.Rows[i] = row

		for _, b := range row.Badges {
			res.Achievements[b]++
		}
		if st.assignments > maxAssignments {
			maxAssignments = st.assignments
		}
		totalAssignments += st.assignments
		if st.participation.Valid {
			participationSum += st.participation.Float64
			participationN++
		}
		if r.Score >= res.Stats.ClassAverage {
			res.Stats.AboveAverage++
		} else {
			res.Stats.NeedSupport++
		}
	}

	if n := len(ranked); n > 0 && maxAssignments > 0 {
		avg := float64(totalAssignments) / float64(n)
		res.Stats.AssignmentCompletion = grade.Round(avg/float64(maxAssignments)*100, 2)
	}
	if participationN > 0 {
		res.Stats.ActiveParticipation = null.Float64From(grade.Round(participationSum/float64(participationN), 2))
	}
	return res, nil
}
