package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

func TestGradeLetter(t *testing.T) {
	tests := []struct {
		point float64
		want  string
	}{
		{4.0, "A+"},
		{3.9, "A+"},
		{3.75, "A"},
		{3.3, "A-"},
		{3.0, "B+"},
		{2.7, "B"},
		{2.3, "B-"},
		{2.0, "C+"},
		{1.7, "C"},
		{1.3, "C-"},
		{1.05, "D"},
		{1.0, "D"},
		{0.9, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeLetter(tt.point), "grade point %.2f", tt.point)
	}
}

func TestEnrollmentID(t *testing.T) {
	assert.Equal(t, "ENR-00042", EnrollmentID(42))

	seq, err := ParseEnrollmentID("ENR-00042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "ENR-", "STU-0001", "ENR-abc", "ENR--1"} {
		_, err := ParseEnrollmentID(bad)
		assert.ErrorIs(t, err, apperrors.ErrMalformedID, bad)
	}
}

func TestIDCounter(t *testing.T) {
	ids := NewIDCounter()
	assert.Equal(t, 1, ids.Peek())
	assert.Equal(t, "ENR-00001", ids.Next())
	assert.Equal(t, "ENR-00002", ids.Next())
	assert.Equal(t, 3, ids.Peek())
}

func TestResumeIDCounter(t *testing.T) {
	existing := []Enrollment{{ID: "ENR-00003"}, {ID: "ENR-00041"}, {ID: "ENR-00007"}}

	ids, err := ResumeIDCounter(existing)
	require.NoError(t, err)
	assert.Equal(t, "ENR-00042", ids.Next())

	fresh, err := ResumeIDCounter(nil)
	require.NoError(t, err)
	assert.Equal(t, "ENR-00001", fresh.Next())

	_, err = ResumeIDCounter([]Enrollment{{ID: "ENR-00001"}, {ID: "bogus"}})
	assert.ErrorIs(t, err, apperrors.ErrMalformedID)
}

func TestEnrollment_Row(t *testing.T) {
	point := 3.456
	rating := 4
	graded := Enrollment{
		ID:              "ENR-00001",
		StudentID:       "STU-0001",
		CourseID:        "MAC-COMP-8110",
		Term:            MustParseTermCode("2024F"),
		GradePoint:      &point,
		GradeLetter:     "A-",
		Status:          StatusCompleted,
		FeedbackRating:  &rating,
		HoursPerWeek:    9.3,
		EngagementScore: 0.8,
	}
	assert.True(t, graded.IsGraded())
	assert.Equal(t, []string{
		"ENR-00001", "STU-0001", "MAC-COMP-8110", "2024F", "3.46", "A-",
		"completed", "4", "9.3", "0.80",
	}, graded.Row())

	withdrawn := Enrollment{ID: "ENR-00002", Term: MustParseTermCode("2025W"), Status: StatusWithdrawn}
	assert.False(t, withdrawn.IsGraded())
	row := withdrawn.Row()
	assert.Len(t, row, len(EnrollmentColumns))
	assert.Empty(t, row[4])
	assert.Empty(t, row[7])
}
