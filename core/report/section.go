package report

import (
	"context"
	"sort"

	"github.com/trezcool/alama/core/grade"
)

type (
	SectionLeaderboard struct {
		RunID     string            `json:"run_id"`
		SectionID int               `json:"section_id"`
		Students  []StudentStanding `json:"students"`
		Subjects  []SubjectRanking  `json:"subjects"`
	}

	// StudentStanding is a student's place in the section, by GWA (lower is better).
	StudentStanding struct {
		Rank         int     `json:"rank"`
		Student      Student `json:"student"`
		Overall      float64 `json:"overall_percentage"`
		GWA          float64 `json:"gwa"`
		BracketedGWA float64 `json:"bracketed_gwa"`
		Subjects     int     `json:"subjects"`
	}

	SubjectRanking struct {
		Subject Subject           `json:"subject"`
		Rows    []SubjectStanding `json:"rows"`
	}

	SubjectStanding struct {
		Rank       int     `json:"rank"`
		Student    Student `json:"student"`
		Percentage float64 `json:"percentage"`
		GPA        float64 `json:"gpa"`
	}
)

// SectionLeaderboard ranks a section's students overall and within every subject.
func (svc *Service) SectionLeaderboard(ctx context.Context, sectionID int) (SectionLeaderboard, error) {
	snap, err := svc.load(ctx, "section", sectionID, svc.src.SectionRecords)
	if err != nil {
		return SectionLeaderboard{}, err
	}

	perStudent := make([][]grade.SubjectPercentage, len(snap.students))
	err = svc.parallel(ctx, len(snap.students), func(i int) {
		perStudent[i] = snap.subjectPercentages(snap.byStudent[snap.students[i].ID])
	})
	if err != nil {
		return SectionLeaderboard{}, err
	}

	res := SectionLeaderboard{RunID: snap.runID.String(), SectionID: sectionID}

	// overall, on the precise scale of the units-weighted average
	scored := make([]grade.Scored, len(snap.students))
	byID := make(map[int]int, len(snap.students))
	for i, s := range snap.students {
		byID[s.ID] = i
		scored[i] = grade.Scored{ID: s.ID}
		if len(perStudent[i]) > 0 {
			scored[i].Score.SetValid(grade.ToPreciseScale(grade.UnitWeightedAverage(perStudent[i])))
		}
	}
	ranked := grade.Rank(scored, grade.RankOptions{AscendingIsBetter: true})
	res.Students = make([]StudentStanding, len(ranked))
	for i, r := range ranked {
		idx := byID[r.ID]
		overall := grade.UnitWeightedAverage(perStudent[idx])
		res.Students[i] = StudentStanding{
			Rank:         r.Rank,
			Student:      snap.students[idx],
			Overall:      overall,
			GWA:          grade.Round(r.Score, 2),
			BracketedGWA: grade.ToBracketedScale(overall),
			Subjects:     len(perStudent[idx]),
		}
	}

	// per subject
	percentages := make(map[int]map[int]float64) // subject -> student index -> percentage
	for i, subjects := range perStudent {
		for _, sp := range subjects {
			if percentages[sp.SubjectID] == nil {
				percentages[sp.SubjectID] = make(map[int]float64)
			}
			percentages[sp.SubjectID][i] = sp.Percentage
		}
	}
	subjectIDs := make([]int, 0, len(percentages))
	for id := range percentages {
		subjectIDs = append(subjectIDs, id)
	}
	sort.Ints(subjectIDs)

	res.Subjects = make([]SubjectRanking, len(subjectIDs))
	err = svc.parallel(ctx, len(subjectIDs), func(k int) {
		id := subjectIDs[k]
		scored := make([]grade.Scored, 0, len(percentages[id]))
		for i, s := range snap.students {
			if pct, ok := percentages[id][i]; ok {
				sc := grade.Scored{ID: s.ID}
				sc.Score.SetValid(grade.ToPreciseScale(pct))
				scored = append(scored, sc)
			}
		}
		ranked := grade.Rank(scored, grade.RankOptions{AscendingIsBetter: true})
		rows := make([]SubjectStanding, len(ranked))
		for j, r := range ranked {
			idx := byID[r.ID]
			rows[j] = SubjectStanding{
				Rank:       r.Rank,
				Student:    snap.students[idx],
				Percentage: percentages[id][idx],
				GPA:        grade.Round(r.Score, 2),
			}
		}
		res.Subjects[k] = SubjectRanking{Subject: snap.subject(id), Rows: rows}
	})
	if err != nil {
		return SectionLeaderboard{}, err
	}
	return res, nil
}
