package inmemdb

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/grade"
	"github.com/trezcool/alama/core/report"
)

// Dataset holds raw rows laid out like the portal tables.
type Dataset struct {
	Classes    []grade.Record `json:"classes" yaml:"classes"`
	Students   []grade.Record `json:"students" yaml:"students"`
	Subjects   []grade.Record `json:"subjects" yaml:"subjects"`
	Components []grade.Record `json:"components" yaml:"components"`
	Entries    []grade.Record `json:"entries" yaml:"entries"`
}

type DB struct {
	data  Dataset
	mutex sync.RWMutex
}

var _ report.Source = (*DB)(nil)

func Open(data Dataset) *DB {
	return &DB{data: data}
}

// Replace swaps the whole dataset.
func (db *DB) Replace(data Dataset) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.data = data
}

func (db *DB) ClassRecords(ctx context.Context, classID int) (report.Records, error) {
	if err := ctx.Err(); err != nil {
		return report.Records{}, err
	}
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	class := findOne(db.data.Classes, "class_id", classID)
	if class == nil {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "class %d", classID)
	}
	recs := report.Records{Class: class}
	if sectionID := grade.Int(class, "section_id"); sectionID.Valid {
		recs.Students = filter(db.data.Students, "section_id", sectionID.Int)
	}
	recs.Entries = db.entries(func(rec grade.Record) bool {
		return grade.Int(rec, "class_id", "classes.class_id").Int == classID
	})
	db.related(&recs)
	return recs, nil
}

func (db *DB) SectionRecords(ctx context.Context, sectionID int) (report.Records, error) {
	if err := ctx.Err(); err != nil {
		return report.Records{}, err
	}
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	students := filter(db.data.Students, "section_id", sectionID)
	if len(students) == 0 {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "section %d", sectionID)
	}
	ids := make(map[int]bool, len(students))
	for _, s := range students {
		ids[grade.Int(s, "student_id").Int] = true
	}
	recs := report.Records{Students: students}
	recs.Entries = db.entries(func(rec grade.Record) bool {
		return ids[grade.Int(rec, "student_id").Int]
	})
	db.related(&recs)
	return recs, nil
}

func (db *DB) StudentRecords(ctx context.Context, studentID int) (report.Records, error) {
	if err := ctx.Err(); err != nil {
		return report.Records{}, err
	}
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	student := findOne(db.data.Students, "student_id", studentID)
	if student == nil {
		return report.Records{}, errors.Wrapf(report.ErrNotFound, "student %d", studentID)
	}
	recs := report.Records{Students: []grade.Record{student}}
	recs.Entries = db.entries(func(rec grade.Record) bool {
		return grade.Int(rec, "student_id").Int == studentID
	})
	db.related(&recs)
	return recs, nil
}

// entries returns copies of the matching entries, with subject_id filled in
// from their class when the entry does not carry one.
func (db *DB) entries(match func(grade.Record) bool) []grade.Record {
	var out []grade.Record
	for _, rec := range db.data.Entries {
		if rec == nil || !match(rec) {
			continue
		}
		cp := make(grade.Record, len(rec)+1)
		for k, v := range rec {
			cp[k] = v
		}
		if !grade.Int(cp, "subject_id", "classes.subject_id").Valid {
			classID := grade.Int(cp, "class_id", "classes.class_id")
			if class := findOne(db.data.Classes, "class_id", classID.Int); classID.Valid && class != nil {
				cp["subject_id"] = class["subject_id"]
			}
		}
		out = append(out, cp)
	}
	return out
}

func (db *DB) related(recs *report.Records) {
	subjects := make(map[int]bool)
	components := make(map[int]bool)
	if id := grade.Int(recs.Class, "subject_id"); id.Valid {
		subjects[id.Int] = true
	}
	for _, rec := range recs.Entries {
		if id := grade.Int(rec, "subject_id", "classes.subject_id"); id.Valid {
			subjects[id.Int] = true
		}
		if id := grade.Int(rec, "component_id"); id.Valid {
			components[id.Int] = true
		}
	}
	for _, rec := range db.data.Subjects {
		if rec != nil && subjects[grade.Int(rec, "subject_id").Int] {
			recs.Subjects = append(recs.Subjects, rec)
		}
	}
	for _, rec := range db.data.Components {
		if rec != nil && components[grade.Int(rec, "component_id").Int] {
			recs.Components = append(recs.Components, rec)
		}
	}
}

func findOne(recs []grade.Record, key string, id int) grade.Record {
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if v := grade.Int(rec, key); v.Valid && v.Int == id {
			return rec
		}
	}
	return nil
}

func filter(recs []grade.Record, key string, id int) []grade.Record {
	var out []grade.Record
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if v := grade.Int(rec, key); v.Valid && v.Int == id {
			out = append(out, rec)
		}
	}
	return out
}
