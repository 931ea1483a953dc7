package models

import "strconv"

// PreferenceType is the kind of preference a tuple expresses.
type PreferenceType string

const (
	PreferenceCareerGoal    PreferenceType = "career_goal"
	PreferenceDeliveryMode  PreferenceType = "delivery_mode"
	PreferenceTimeOfDay     PreferenceType = "time_of_day"
	PreferenceSkillsToBuild PreferenceType = "skills_to_build"
)

// PreferenceSource records where a preference was captured.
type PreferenceSource string

const (
	SourceSurvey      PreferenceSource = "survey"
	SourceAdvisorNote PreferenceSource = "advisor_note"
)

// PreferenceTuple is a weighted student preference. Weight lies in (0,1).
type PreferenceTuple struct {
	StudentID string
	Type      PreferenceType
	Value     string
	Weight    float64
	Source    PreferenceSource
}

// PreferenceColumns are the field names of the student_preferences record set.
var PreferenceColumns = []string{
	"student_id", "preference_type", "preference_value", "weight", "source",
}

// Row flattens the tuple for tabular output.
func (p *PreferenceTuple) Row() []string {
	return []string{
		p.StudentID,
		string(p.Type),
		p.Value,
		strconv.FormatFloat(p.Weight, 'f', 2, 64),
		string(p.Source),
	}
}
