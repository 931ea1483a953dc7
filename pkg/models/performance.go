package models

import "strconv"

// RiskFlag is a categorical academic-risk indicator.
type RiskFlag string

const (
	RiskNone            RiskFlag = "none"
	RiskPerformanceDrop RiskFlag = "performance-drop"
	RiskCoop            RiskFlag = "co-op-risk"
)

// PerformanceProfile is derived from a student's enrollments and is always
// recomputed in full.
type PerformanceProfile struct {
	StudentID             string
	CumulativeGPA         float64
	LastTermGPA           float64
	TechnicalStrength     int
	AnalyticalStrength    int
	CommunicationStrength int
	RiskFlag              RiskFlag
}

// PerformanceColumns are the field names of the student_performance record set.
var PerformanceColumns = []string{
	"student_id", "cumulative_gpa", "last_term_gpa", "technical_strength",
	"analytical_strength", "communication_strength", "risk_flag",
}

// Row flattens the profile for tabular output.
func (p *PerformanceProfile) Row() []string {
	return []string{
		p.StudentID,
		strconv.FormatFloat(p.CumulativeGPA, 'f', 2, 64),
		strconv.FormatFloat(p.LastTermGPA, 'f', 2, 64),
		strconv.Itoa(p.TechnicalStrength),
		strconv.Itoa(p.AnalyticalStrength),
		strconv.Itoa(p.CommunicationStrength),
		string(p.RiskFlag),
	}
}
