package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

// ProgramStream is the MAC program track a student is admitted to.
type ProgramStream string

const (
	StreamAI      ProgramStream = "MAC-AI"
	StreamGeneral ProgramStream = "MAC-General"
)

// CoopStatus tracks a student's co-op placement.
type CoopStatus string

const (
	CoopSeeking       CoopStatus = "seeking"
	CoopPlaced        CoopStatus = "placed"
	CoopNotApplicable CoopStatus = "not-applicable"
)

const (
	// MinEntryGPA and MaxEntryGPA bound the admission GPA.
	MinEntryGPA = 2.7
	MaxEntryGPA = 3.9
)

// Student is an admitted student. Immutable after generation.
type Student struct {
	ID                  string
	AdmitTerm           TermCode
	ProgramStream       ProgramStream
	UndergradMajor      string
	EntryGPA            float64
	CoopStatus          CoopStatus
	DemographicGroup    string
	CitizenshipStatus   string
	Interests           []string
	LearningStyle       string
	WorkExperienceYears float64
}

const studentIDPrefix = "STU-"

// StudentID formats the 1-based student sequence number, e.g. STU-0007.
func StudentID(seq int) string {
	return fmt.Sprintf("%s%04d", studentIDPrefix, seq)
}

// ParseStudentID extracts the sequence number from a STU- id.
func ParseStudentID(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, studentIDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedID, id)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedID, id)
	}
	return seq, nil
}

// NextStudentSeq returns the sequence number after the highest id in
// existing, or 1 when there are no students.
func NextStudentSeq(existing []Student) (int, error) {
	highest := 0
	for _, s := range existing {
		seq, err := ParseStudentID(s.ID)
		if err != nil {
			return 0, fmt.Errorf("resume student ids: %w", err)
		}
		highest = max(highest, seq)
	}
	return highest + 1, nil
}

// ClampEntryGPA limits a sampled GPA to [MinEntryGPA, MaxEntryGPA].
func ClampEntryGPA(gpa float64) float64 {
	return max(MinEntryGPA, min(gpa, MaxEntryGPA))
}

// StudentColumns are the field names of the students record set.
var StudentColumns = []string{
	"student_id", "admit_term", "program_stream", "undergrad_major", "gpa_entry",
	"co_op_status", "demographic_group", "citizenship_status", "interests",
	"learning_style", "work_experience_years",
}

// Row flattens the student for tabular output.
func (s *Student) Row() []string {
	return []string{
		s.ID,
		s.AdmitTerm.String(),
		string(s.ProgramStream),
		s.UndergradMajor,
		strconv.FormatFloat(s.EntryGPA, 'f', 2, 64),
		string(s.CoopStatus),
		s.DemographicGroup,
		s.CitizenshipStatus,
		JoinTags(s.Interests),
		s.LearningStyle,
		strconv.FormatFloat(s.WorkExperienceYears, 'f', 1, 64),
	}
}
