package models

import "fmt"

// Offering schedules one course section in one term.
type Offering struct {
	ID           string
	CourseID     string
	Term         TermCode
	Instructor   string
	MeetingDays  string
	StartTime    string
	EndTime      string
	Location     string
	DeliveryMode string
}

// OfferingID formats the section id, e.g. 2025W-COMP-8220-A.
func OfferingID(term TermCode, courseCode string) string {
	return fmt.Sprintf("%s-%s-A", term, courseCode)
}

// OfferingColumns are the field names of the course_offerings record set.
var OfferingColumns = []string{
	"offering_id", "course_id", "term_code", "instructor", "meeting_days",
	"start_time", "end_time", "location", "delivery_mode",
}

// Row flattens the offering for tabular output.
func (o *Offering) Row() []string {
	return []string{
		o.ID,
		o.CourseID,
		o.Term.String(),
		o.Instructor,
		o.MeetingDays,
		o.StartTime,
		o.EndTime,
		o.Location,
		o.DeliveryMode,
	}
}
