package models

import "github.com/google/uuid"

// Record set names double as CSV file stems and sheet names.
const (
	RecordSetCourses            = "courses"
	RecordSetOfferings          = "course_offerings"
	RecordSetDegreeRequirements = "degree_requirements"
	RecordSetStudents           = "students"
	RecordSetPerformance        = "student_performance"
	RecordSetEnrollments        = "enrollments"
	RecordSetPreferences        = "student_preferences"
)

// RecordSet is a flat, string-valued table handed to dataset writers.
// Key names the column consumers look rows up by; UniqueKey is false when
// several rows share a key (preferences are keyed by student).
type RecordSet struct {
	Name      string
	Columns   []string
	Rows      [][]string
	Key       string
	UniqueKey bool
}

// KeyIndex returns the position of the key column, or -1.
func (r *RecordSet) KeyIndex() int {
	for i, c := range r.Columns {
		if c == r.Key {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (r *RecordSet) Len() int {
	return len(r.Rows)
}

// Dataset is the complete output of one generation run.
type Dataset struct {
	RunID uuid.UUID
	Seed  uint64
	// FirstEnrollmentSeq is the sequence of the ledger's first id. Zero means 1.
	FirstEnrollmentSeq int

	Courses      []Course
	Offerings    []Offering
	Requirements []DegreeRequirement
	Students     []Student
	Performance  []PerformanceProfile
	Enrollments  []Enrollment
	Preferences  []PreferenceTuple
}

// LedgerStart returns the sequence the enrollment ledger starts at.
func (d *Dataset) LedgerStart() int {
	if d.FirstEnrollmentSeq > 0 {
		return d.FirstEnrollmentSeq
	}
	return 1
}

// IsEmpty returns true when no record set has rows.
func (d *Dataset) IsEmpty() bool {
	return len(d.Courses) == 0 && len(d.Offerings) == 0 && len(d.Requirements) == 0 &&
		len(d.Students) == 0 && len(d.Performance) == 0 && len(d.Enrollments) == 0 &&
		len(d.Preferences) == 0
}

// EnrollmentsByStudent groups the ledger by student id, preserving ledger order.
func (d *Dataset) EnrollmentsByStudent() map[string][]Enrollment {
	out := make(map[string][]Enrollment, len(d.Students))
	for _, e := range d.Enrollments {
		out[e.StudentID] = append(out[e.StudentID], e)
	}
	return out
}

// RecordSets flattens the dataset into its seven record sets in a stable order.
func (d *Dataset) RecordSets() []RecordSet {
	return []RecordSet{
		flatten(RecordSetCourses, CourseColumns, "course_id", true, d.Courses, (*Course).Row),
		flatten(RecordSetOfferings, OfferingColumns, "offering_id", true, d.Offerings, (*Offering).Row),
		flatten(RecordSetDegreeRequirements, DegreeRequirementColumns, "requirement_id", true, d.Requirements, (*DegreeRequirement).Row),
		flatten(RecordSetStudents, StudentColumns, "student_id", true, d.Students, (*Student).Row),
		flatten(RecordSetPerformance, PerformanceColumns, "student_id", true, d.Performance, (*PerformanceProfile).Row),
		flatten(RecordSetEnrollments, EnrollmentColumns, "enrollment_id", true, d.Enrollments, (*Enrollment).Row),
		flatten(RecordSetPreferences, PreferenceColumns, "student_id", false, d.Preferences, (*PreferenceTuple).Row),
	}
}

func flatten[T any](name string, columns []string, key string, unique bool, items []T, row func(*T) []string) RecordSet {
	rows := make([][]string, len(items))
	for i := range items {
		rows[i] = row(&items[i])
	}
	return RecordSet{
		Name:      name,
		Columns:   columns,
		Rows:      rows,
		Key:       key,
		UniqueKey: unique,
	}
}
