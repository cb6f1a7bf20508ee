package report

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/grade"
)

var ErrNotFound = errors.New("records not found")

// Records is one immutable fetch of raw rows for a class, section or student.
type Records struct {
	Class      grade.Record   `json:"class" yaml:"class"`
	Students   []grade.Record `json:"students" yaml:"students"`
	Subjects   []grade.Record `json:"subjects" yaml:"subjects"`
	Components []grade.Record `json:"components" yaml:"components"`
	Entries    []grade.Record `json:"entries" yaml:"entries"`
}

// Source fetches raw records. Implementations return ErrNotFound (possibly
// wrapped) when the requested class, section or student does not exist.
type Source interface {
	// ClassRecords returns the class row, the students of its section, and the class's entries.
	ClassRecords(ctx context.Context, classID int) (Records, error)
	// SectionRecords returns the section's students and their entries across all classes.
	SectionRecords(ctx context.Context, sectionID int) (Records, error)
	// StudentRecords returns one student and their entries across all classes.
	StudentRecords(ctx context.Context, studentID int) (Records, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
