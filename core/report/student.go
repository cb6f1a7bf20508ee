package report

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/grade"
)

type (
	// StudentGrades backs both the dashboard summary and the gradebook.
	StudentGrades struct {
		RunID             string         `json:"run_id"`
		Student           Student        `json:"student"`
		Subjects          []SubjectGrade `json:"subjects"`
		OverallPercentage null.Float64   `json:"overall_percentage"`
		// GWA is the precise scale of the overall percentage.
		GWA          null.Float64 `json:"gwa"`
		BracketedGWA null.Float64 `json:"bracketed_gwa"`
		// GPA averages the subjects' bracketed values by units.
		GPA      null.Float64 `json:"gpa"`
		Assessed int          `json:"assessed_subjects"`
	}

	SubjectGrade struct {
		Subject    Subject          `json:"subject"`
		Units      float64          `json:"units"`
		Components []ComponentGrade `json:"components"`
		Percentage null.Float64     `json:"percentage"`
		PreciseGPA null.Float64     `json:"precise_gpa"`
		GPA        null.Float64     `json:"gpa"`
		Trend      null.Float64     `json:"trend"`
	}

	ComponentGrade struct {
		ComponentID int          `json:"component_id"`
		Name        string       `json:"component_name"`
		Weight      null.Float64 `json:"weight_percentage"`
		Kind        grade.Kind   `json:"kind"`
		Average     null.Float64 `json:"average"`
	}
)

// StudentGrades computes one student's grades in every subject they have entries in.
func (svc *Service) StudentGrades(ctx context.Context, studentID int) (StudentGrades, error) {
	snap, err := svc.load(ctx, "student", studentID, svc.src.StudentRecords)
	if err != nil {
		return StudentGrades{}, err
	}

	res := StudentGrades{RunID: snap.runID.String(), Student: Student{ID: studentID}}
	for _, s := range snap.students {
		if s.ID == studentID {
			res.Student = s
			break
		}
	}

	bySubject := grade.GroupBySubject(snap.byStudent[studentID])
	subjectIDs := grade.SortedKeys(bySubject)
	res.Subjects = make([]SubjectGrade, len(subjectIDs))
	err = svc.parallel(ctx, len(subjectIDs), func(i int) {
		id := subjectIDs[i]
		res.Subjects[i] = svc.subjectGrade(snap, snap.subject(id), bySubject[id])
	})
	if err != nil {
		return StudentGrades{}, err
	}

	assessed := make([]grade.SubjectPercentage, 0, len(res.Subjects))
	for _, sg := range res.Subjects {
		if sg.Percentage.Valid {
			assessed = append(assessed, grade.SubjectPercentage{
				SubjectID:  sg.Subject.ID,
				Percentage: sg.Percentage.Float64,
				Units:      sg.Subject.Units,
			})
		}
	}
	res.Assessed = len(assessed)
	if len(assessed) > 0 {
		overall := grade.UnitWeightedAverage(assessed)
		res.OverallPercentage = null.Float64From(overall)
		res.GWA = null.Float64From(grade.Round(grade.ToPreciseScale(overall), 2))
		res.BracketedGWA = null.Float64From(grade.ToBracketedScale(overall))
		res.GPA = null.Float64From(grade.UnitWeightedScale(assessed))
	}
	return res, nil
}

func (svc *Service) subjectGrade(snap *snapshot, subject Subject, entries []grade.Entry) SubjectGrade {
	byComponent := grade.GroupByComponent(entries)
	sg := SubjectGrade{
		Subject:    subject,
		Units:      grade.DefaultUnits,
		Percentage: grade.Aggregate(snap.components, byComponent),
		Trend:      svc.trend(snap, "subject", subject.ID, grade.CumulativeSnapshots(snap.components, entries)),
	}
	if subject.Units.Valid && subject.Units.Float64 > 0 {
		sg.Units = subject.Units.Float64
	}
	if sg.Percentage.Valid {
		sg.PreciseGPA = null.Float64From(grade.Round(grade.ToPreciseScale(sg.Percentage.Float64), 2))
		sg.GPA = null.Float64From(grade.ToBracketedScale(sg.Percentage.Float64))
	}

	sg.Components = make([]ComponentGrade, 0, len(byComponent))
	for _, c := range snap.components {
		own, ok := byComponent[c.ID]
		if !ok {
			continue
		}
		sg.Components = append(sg.Components, ComponentGrade{
			ComponentID: c.ID,
			Name:        c.Name,
			Weight:      c.WeightPercentage,
			Kind:        grade.Classify(own),
			Average:     grade.ComponentAverage(c, own),
		})
	}
	return sg
}
