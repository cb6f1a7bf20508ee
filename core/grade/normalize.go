package grade

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// NormalizeEntries maps raw rows onto Entry values.
// Unparseable numbers become null, unknown identities become 0.
func NormalizeEntries(raw []Record) []Entry {
	entries := make([]Entry, 0, len(raw))
	for _, rec := range raw {
		if rec == nil {
			continue
		}
		entries = append(entries, Entry{
			StudentID:    Int(rec, "student_id").Int,
			ComponentID:  Int(rec, "component_id", "grade_components.component_id").Int,
			ClassID:      Int(rec, "class_id", "classes.class_id"),
			SubjectID:    Int(rec, "subject_id", "classes.subject_id"),
			Name:         String(rec, "name", "entry_name"),
			Score:        Float(rec, "score"),
			MaxScore:     Float(rec, "max_score"),
			Attendance:   attendance(rec),
			DateRecorded: Date(rec, "date_recorded"),
			GradePeriod:  String(rec, "grade_period"),
		})
	}
	return entries
}

// NormalizeComponents maps raw component rows onto Component values.
func NormalizeComponents(raw []Record) []Component {
	comps := make([]Component, 0, len(raw))
	for _, rec := range raw {
		if rec == nil {
			continue
		}
		comps = append(comps, component(rec))
	}
	return comps
}

// ComponentsFromEntries extracts the components embedded in nested entry rows,
// keeping the first occurrence of each id.
func ComponentsFromEntries(raw []Record) []Component {
	var comps []Component
	seen := make(map[int]bool)
	for _, rec := range raw {
		nested, ok := lookup(rec, "grade_components")
		if !ok {
			continue
		}
		crec, ok := asRecord(nested)
		if !ok {
			continue
		}
		c := component(crec)
		if c.ID == 0 || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		comps = append(comps, c)
	}
	return comps
}

// MergeComponents returns the union of the lists, earlier lists winning on id clashes.
func MergeComponents(lists ...[]Component) []Component {
	var merged []Component
	seen := make(map[int]bool)
	for _, list := range lists {
		for _, c := range list {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			merged = append(merged, c)
		}
	}
	return merged
}

func component(rec Record) Component {
	return Component{
		ID:               Int(rec, "component_id", "id").Int,
		Name:             String(rec, "component_name", "name").String,
		WeightPercentage: weight(rec),
	}
}

// weight is null outside [0, 100].
func weight(rec Record) null.Float64 {
	w := Float(rec, "weight_percentage", "weight")
	if w.Valid && (w.Float64 < 0 || w.Float64 > 100) {
		return null.Float64{}
	}
	return w
}

func attendance(rec Record) null.String {
	s := String(rec, "attendance")
	if !s.Valid {
		return s
	}
	switch status := core.CleanString(s.String, true /* lower */); status {
	case Present, Absent, Late:
		return null.StringFrom(status)
	default:
		return null.String{}
	}
}

// Float reads the first key holding a finite number.
// Keys may be dotted paths into nested objects; camelCase spellings are also tried.
func Float(rec Record, keys ...string) null.Float64 {
	for _, key := range keys {
		if v, ok := lookup(rec, key); ok {
			if f, ok := toFloat(v); ok {
				return null.Float64From(f)
			}
		}
	}
	return null.Float64{}
}

// maxExactInt is the largest magnitude a float64 holds without losing integers.
const maxExactInt = 1 << 53

// Int reads the first key holding a whole number.
func Int(rec Record, keys ...string) null.Int {
	f := Float(rec, keys...)
	if !f.Valid || f.Float64 != math.Trunc(f.Float64) || math.Abs(f.Float64) > maxExactInt ||
		f.Float64 > math.MaxInt || f.Float64 < math.MinInt {
		return null.Int{}
	}
	return null.IntFrom(int(f.Float64))
}

// String reads the first key holding a non-empty scalar, rendered as text.
func String(rec Record, keys ...string) null.String {
	for _, key := range keys {
		v, ok := lookup(rec, key)
		if !ok {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case []byte:
			s = string(x)
		case json.Number:
			s = x.String()
		case int, int32, int64, float32, float64, bool:
			s = fmt.Sprint(x)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return null.StringFrom(s)
		}
	}
	return null.String{}
}

// Date reads the first key holding a recognizable date, as a UTC calendar day.
func Date(rec Record, keys ...string) null.Time {
	for _, key := range keys {
		v, ok := lookup(rec, key)
		if !ok {
			continue
		}
		if t, ok := toTime(v); ok {
			t = t.UTC()
			return null.TimeFrom(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return null.Time{}
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		return parseFloat(string(x))
	case string:
		return parseFloat(x)
	case []byte:
		return parseFloat(string(x))
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toTime(v interface{}) (time.Time, bool) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// lookup resolves a dotted path, descending into nested objects. A nested value
// may be a one-element list, the shape some query layers return for joins.
func lookup(rec Record, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	cur := rec
	for i, part := range parts {
		v, ok := field(cur, part)
		if !ok || v == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if cur, ok = asRecord(v); !ok {
			return nil, false
		}
	}
	return nil, false
}

func field(rec Record, key string) (interface{}, bool) {
	if v, ok := rec[key]; ok {
		return v, true
	}
	if c := camel(key); c != key {
		v, ok := rec[c]
		return v, ok
	}
	return nil, false
}

func asRecord(v interface{}) (Record, bool) {
	switch x := v.(type) {
	case map[string]interface{}:
		return x, true
	case map[interface{}]interface{}:
		rec := make(Record, len(x))
		for k, val := range x {
			rec[fmt.Sprint(k)] = val
		}
		return rec, true
	case []interface{}:
		if len(x) == 0 {
			return nil, false
		}
		return asRecord(x[0])
	case []map[string]interface{}:
		if len(x) == 0 {
			return nil, false
		}
		return x[0], true
	default:
		return nil, false
	}
}

// camel turns snake_case into camelCase.
func camel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
