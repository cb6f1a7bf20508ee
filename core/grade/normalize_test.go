package grade

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func TestNormalizeEntries(t *testing.T) {
	tests := []struct {
		name string
		raw  []Record
		want []Entry
	}{
		{name: "nil record is skipped", raw: []Record{nil}, want: []Entry{}},
		{
			name: "flat record with text values",
			raw: []Record{{
				"student_id":    "12",
				"component_id":  3.0,
				"class_id":      int64(4),
				"score":         "8.5",
				"max_score":     10,
				"attendance":    " Present ",
				"date_recorded": "2024-03-01T22:10:00Z",
				"grade_period":  "midterm",
				"name":          "Quiz 1",
			}},
			want: []Entry{{
				StudentID:    12,
				ComponentID:  3,
				ClassID:      null.IntFrom(4),
				Name:         null.StringFrom("Quiz 1"),
				Score:        null.Float64From(8.5),
				MaxScore:     null.Float64From(10),
				Attendance:   null.StringFrom(Present),
				DateRecorded: day(1),
				GradePeriod:  null.StringFrom("midterm"),
			}},
		},
		{
			name: "nested record with camelCase keys",
			raw: []Record{{
				"studentId": 4,
				"grade_components": map[string]interface{}{
					"component_id":      7,
					"component_name":    "Quiz",
					"weight_percentage": "30",
				},
				"classes":      []interface{}{map[string]interface{}{"subject_id": 2, "class_id": 9}},
				"score":        "abc",
				"maxScore":     json.Number("20"),
				"attendance":   "excused",
				"dateRecorded": time.Date(2024, time.March, 2, 15, 0, 0, 0, time.UTC),
			}},
			want: []Entry{{
				StudentID:    4,
				ComponentID:  7,
				ClassID:      null.IntFrom(9),
				SubjectID:    null.IntFrom(2),
				MaxScore:     null.Float64From(20),
				DateRecorded: day(2),
			}},
		},
		{
			name: "driver values",
			raw: []Record{{
				"student_id":    []byte("5"),
				"component_id":  "x1",
				"score":         []byte("7.25"),
				"max_score":     math.NaN(),
				"date_recorded": "not a date",
			}},
			want: []Entry{{
				StudentID: 5,
				Score:     null.Float64From(7.25),
			}},
		},
		{
			name: "fractional ids are unknown",
			raw:  []Record{{"student_id": 1.5, "component_id": "2", "attendance": "LATE"}},
			want: []Entry{{ComponentID: 2, Attendance: null.StringFrom(Late)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEntries(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeEntries() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeComponents(t *testing.T) {
	raw := []Record{
		{"component_id": 1, "component_name": "Exams", "weight_percentage": 60},
		{"id": "2", "name": "Attendance", "weight": "10.5"},
		{"componentId": 3, "componentName": "Labs"},
		{"component_id": 4, "component_name": "Penalty", "weight_percentage": -50},
		{"component_id": 5, "component_name": "Bonus", "weight_percentage": "150"},
	}
	want := []Component{
		{ID: 1, Name: "Exams", WeightPercentage: null.Float64From(60)},
		{ID: 2, Name: "Attendance", WeightPercentage: null.Float64From(10.5)},
		{ID: 3, Name: "Labs"},
		{ID: 4, Name: "Penalty"},
		{ID: 5, Name: "Bonus"},
	}
	got := NormalizeComponents(raw)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeComponents() = %+v, want %+v", got, want)
	}

	byComponent := map[int][]Entry{
		1: {scoreEntry(1, 1, 10, 10, day(1))},
		4: {scoreEntry(1, 4, 0, 10, day(1))},
	}
	if avg := Aggregate(got, byComponent); avg != null.Float64From(100) {
		t.Errorf("Aggregate() with an out-of-range weight = %v, want 100", avg)
	}
}

func TestComponentsFromEntries(t *testing.T) {
	raw := []Record{
		{"student_id": 1, "grade_components": map[string]interface{}{"component_id": 1, "component_name": "Quiz", "weight_percentage": 40}},
		{"student_id": 2, "grade_components": map[string]interface{}{"component_id": 1, "component_name": "Other", "weight_percentage": 10}},
		{"student_id": 2, "grade_components": []interface{}{map[string]interface{}{"component_id": 2, "component_name": "Exam"}}},
		{"student_id": 3, "component_id": 5},
	}
	want := []Component{
		{ID: 1, Name: "Quiz", WeightPercentage: null.Float64From(40)},
		{ID: 2, Name: "Exam"},
	}
	got := ComponentsFromEntries(raw)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ComponentsFromEntries() = %+v, want %+v", got, want)
	}

	merged := MergeComponents([]Component{{ID: 2, Name: "Final"}}, got)
	if len(merged) != 2 || merged[0].Name != "Final" || merged[1].ID != 1 {
		t.Errorf("MergeComponents() = %+v, want Final first then Quiz", merged)
	}
}

func TestRecordFields(t *testing.T) {
	rec := Record{
		"first_name": "Ada",
		"units":      int32(4),
		"section":    map[string]interface{}{"section_id": uint8(2)},
		"flag":       true,
		"blank":      "  ",
	}
	if got := String(rec, "missing", "first_name"); got != null.StringFrom("Ada") {
		t.Errorf("String() = %v, want Ada", got)
	}
	if got := String(rec, "blank"); got.Valid {
		t.Errorf("String() = %v, want null for blank text", got)
	}
	if got := Float(rec, "units"); got != null.Float64From(4) {
		t.Errorf("Float() = %v, want 4", got)
	}
	if got := Int(rec, "section.section_id"); got != null.IntFrom(2) {
		t.Errorf("Int() = %v, want 2", got)
	}
	if got := Int(Record{"student_id": int64(3000000000)}, "student_id"); got != null.IntFrom(3000000000) {
		t.Errorf("Int() = %v, want a bigint id kept", got)
	}
	if got := Int(Record{"student_id": float64(1 << 60)}, "student_id"); got.Valid {
		t.Errorf("Int() = %v, want null past float precision", got)
	}
	if got := Float(rec, "flag"); got.Valid {
		t.Errorf("Float() = %v, want null for a boolean", got)
	}
	if got := Date(rec, "first_name"); got.Valid {
		t.Errorf("Date() = %v, want null", got)
	}
}
