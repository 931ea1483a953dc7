package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

// CompletionStatus is the state of a student's enrollment in a course for one term.
type CompletionStatus string

const (
	StatusCompleted  CompletionStatus = "completed"
	StatusInProgress CompletionStatus = "in-progress"
	StatusWithdrawn  CompletionStatus = "withdrawn"
)

// IsValid checks if the status is known.
func (s CompletionStatus) IsValid() bool {
	return s == StatusCompleted || s == StatusInProgress || s == StatusWithdrawn
}

// SelectionPath records which term-planning rule picked a course.
// It is kept on the ledger for auditing and is not serialized.
type SelectionPath string

const (
	SelectedCore     SelectionPath = "core"
	SelectedBusiness SelectionPath = "business"
	SelectedElective SelectionPath = "technical-elective"
	// SelectedCapstoneReservation marks the final-term capstone append,
	// which is the only path that skips the prerequisite check.
	SelectedCapstoneReservation SelectionPath = "capstone-reservation"
)

const (
	MinGradePoint = 1.0
	MaxGradePoint = 4.0

	enrollmentIDPrefix = "ENR-"
)

// Enrollment is one row of the append-only enrollment ledger.
// GradePoint is set if and only if Status is completed; FeedbackRating only when completed.
type Enrollment struct {
	ID              string
	StudentID       string
	CourseID        string
	Term            TermCode
	GradePoint      *float64
	GradeLetter     string
	Status          CompletionStatus
	FeedbackRating  *int
	HoursPerWeek    float64
	EngagementScore float64
	Selection       SelectionPath
}

// IsGraded reports whether the enrollment counts towards GPA.
func (e *Enrollment) IsGraded() bool {
	return e.Status == StatusCompleted && e.GradePoint != nil
}

// EnrollmentID formats the ledger sequence number, e.g. ENR-00042.
func EnrollmentID(seq int) string {
	return fmt.Sprintf("%s%05d", enrollmentIDPrefix, seq)
}

// ParseEnrollmentID extracts the sequence number from an ENR- id.
func ParseEnrollmentID(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, enrollmentIDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedID, id)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedID, id)
	}
	return seq, nil
}

// IDCounter issues enrollment ids from a single monotonically increasing
// sequence. One counter is owned by one generation run.
type IDCounter struct {
	next int
}

// NewIDCounter returns a counter whose first id is ENR-00001.
func NewIDCounter() *IDCounter {
	return &IDCounter{next: 1}
}

// ResumeIDCounter returns a counter that continues after the highest id in
// an existing ledger, so appended enrollments keep the ledger monotonic.
func ResumeIDCounter(existing []Enrollment) (*IDCounter, error) {
	highest := 0
	for _, e := range existing {
		seq, err := ParseEnrollmentID(e.ID)
		if err != nil {
			return nil, fmt.Errorf("resume enrollment ids: %w", err)
		}
		highest = max(highest, seq)
	}
	return &IDCounter{next: highest + 1}, nil
}

// Next returns the next id and advances the counter.
func (c *IDCounter) Next() string {
	id := EnrollmentID(c.next)
	c.next++
	return id
}

// Peek returns the sequence number the next call to Next will use.
func (c *IDCounter) Peek() int {
	return c.next
}

type gradeThreshold struct {
	min    float64
	letter string
}

var gradeThresholds = []gradeThreshold{
	{3.9, "A+"},
	{3.7, "A"},
	{3.3, "A-"},
	{3.0, "B+"},
	{2.7, "B"},
	{2.3, "B-"},
	{2.0, "C+"},
	{1.7, "C"},
	{1.3, "C-"},
	{1.0, "D"},
}

// GradeLetter maps a grade point to a letter. Thresholds are checked top-down.
func GradeLetter(point float64) string {
	for _, t := range gradeThresholds {
		if point >= t.min {
			return t.letter
		}
	}
	return "F"
}

// EnrollmentColumns are the field names of the enrollments record set.
var EnrollmentColumns = []string{
	"enrollment_id", "student_id", "course_id", "term_code", "grade_point", "grade_letter",
	"completion_status", "feedback_rating", "hours_per_week", "engagement_score",
}

// Row flattens the enrollment for tabular output.
func (e *Enrollment) Row() []string {
	return []string{
		e.ID,
		e.StudentID,
		e.CourseID,
		e.Term.String(),
		formatOptionalFloat(e.GradePoint, 2),
		e.GradeLetter,
		string(e.Status),
		formatOptionalInt(e.FeedbackRating),
		strconv.FormatFloat(e.HoursPerWeek, 'f', 1, 64),
		strconv.FormatFloat(e.EngagementScore, 'f', 2, 64),
	}
}
