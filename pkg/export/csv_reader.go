package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// ReadCSVDataset loads a dataset previously written by CSVWriter.
// Columns are matched by header name, so column order does not matter.
func ReadCSVDataset(dir string) (*models.Dataset, error) {
	ds := &models.Dataset{}

	if err := readRecordSet(dir, models.RecordSetCourses, func(r *row) {
		ds.Courses = append(ds.Courses, models.Course{
			ID:              r.str("course_id"),
			Code:            r.str("course_code"),
			Title:           r.str("title"),
			Credits:         r.number("credits"),
			Category:        models.CourseCategory(r.str("category")),
			DeliveryMode:    r.str("delivery_mode"),
			Skills:          r.tags("skills"),
			Prerequisites:   r.tags("prerequisites"),
			TermPatterns:    r.tags("term_patterns"),
			DifficultyLevel: r.integer("difficulty_level"),
			Description:     r.str("description"),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetOfferings, func(r *row) {
		ds.Offerings = append(ds.Offerings, models.Offering{
			ID:           r.str("offering_id"),
			CourseID:     r.str("course_id"),
			Term:         r.term("term_code"),
			Instructor:   r.str("instructor"),
			MeetingDays:  r.str("meeting_days"),
			StartTime:    r.str("start_time"),
			EndTime:      r.str("end_time"),
			Location:     r.str("location"),
			DeliveryMode: r.str("delivery_mode"),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetDegreeRequirements, func(r *row) {
		ds.Requirements = append(ds.Requirements, models.DegreeRequirement{
			ID:              r.str("requirement_id"),
			Label:           r.str("label"),
			Category:        r.str("category"),
			CreditMin:       r.optFloat("credit_min"),
			CreditMax:       r.optFloat("credit_max"),
			EligibleCourses: r.tags("eligible_courses"),
			Notes:           r.str("notes"),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetStudents, func(r *row) {
		ds.Students = append(ds.Students, models.Student{
			ID:                  r.str("student_id"),
			AdmitTerm:           r.term("admit_term"),
			ProgramStream:       models.ProgramStream(r.str("program_stream")),
			UndergradMajor:      r.str("undergrad_major"),
			EntryGPA:            r.number("gpa_entry"),
			CoopStatus:          models.CoopStatus(r.str("co_op_status")),
			DemographicGroup:    r.str("demographic_group"),
			CitizenshipStatus:   r.str("citizenship_status"),
			Interests:           r.tags("interests"),
			LearningStyle:       r.str("learning_style"),
			WorkExperienceYears: r.number("work_experience_years"),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetPerformance, func(r *row) {
		ds.Performance = append(ds.Performance, models.PerformanceProfile{
			StudentID:             r.str("student_id"),
			CumulativeGPA:         r.number("cumulative_gpa"),
			LastTermGPA:           r.number("last_term_gpa"),
			TechnicalStrength:     r.integer("technical_strength"),
			AnalyticalStrength:    r.integer("analytical_strength"),
			CommunicationStrength: r.integer("communication_strength"),
			RiskFlag:              models.RiskFlag(r.str("risk_flag")),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetEnrollments, func(r *row) {
		ds.Enrollments = append(ds.Enrollments, models.Enrollment{
			ID:              r.str("enrollment_id"),
			StudentID:       r.str("student_id"),
			CourseID:        r.str("course_id"),
			Term:            r.term("term_code"),
			GradePoint:      r.optFloat("grade_point"),
			GradeLetter:     r.str("grade_letter"),
			Status:          models.CompletionStatus(r.str("completion_status")),
			FeedbackRating:  r.optInt("feedback_rating"),
			HoursPerWeek:    r.number("hours_per_week"),
			EngagementScore: r.number("engagement_score"),
		})
	}); err != nil {
		return nil, err
	}

	if err := readRecordSet(dir, models.RecordSetPreferences, func(r *row) {
		ds.Preferences = append(ds.Preferences, models.PreferenceTuple{
			StudentID: r.str("student_id"),
			Type:      models.PreferenceType(r.str("preference_type")),
			Value:     r.str("preference_value"),
			Weight:    r.number("weight"),
			Source:    models.PreferenceSource(r.str("source")),
		})
	}); err != nil {
		return nil, err
	}

	if len(ds.Enrollments) > 0 {
		if seq, err := models.ParseEnrollmentID(ds.Enrollments[0].ID); err == nil {
			ds.FirstEnrollmentSeq = seq
		}
	}
	return ds, nil
}

func readRecordSet(dir, name string, decode func(r *row)) error {
	path := CSVPath(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("read %s: missing header", name)
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[col] = i
	}

	for i, rec := range records[1:] {
		r := &row{header: header, cells: rec}
		decode(r)
		if r.err != nil {
			// +2 skips the header and converts to 1-based line numbers.
			return fmt.Errorf("%s line %d: %w", name, i+2, r.err)
		}
	}
	return nil
}

// row decodes one CSV record by column name, keeping the first error.
type row struct {
	header map[string]int
	cells  []string
	err    error
}

func (r *row) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (r *row) str(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.cells) {
		r.fail(col, errors.New("missing"))
		return ""
	}
	return r.cells[i]
}

func (r *row) number(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *row) integer(col string) int {
	v, err := strconv.Atoi(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *row) optFloat(col string) *float64 {
	if r.str(col) == "" {
		return nil
	}
	v := r.number(col)
	return &v
}

func (r *row) optInt(col string) *int {
	if r.str(col) == "" {
		return nil
	}
	v := r.integer(col)
	return &v
}

func (r *row) tags(col string) []string {
	return models.SplitTags(r.str(col))
}

func (r *row) term(col string) models.TermCode {
	t, err := models.ParseTermCode(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return t
}
