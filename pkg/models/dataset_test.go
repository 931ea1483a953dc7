package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_LedgerStart(t *testing.T) {
	assert.Equal(t, 1, (&Dataset{}).LedgerStart())
	assert.Equal(t, 42, (&Dataset{FirstEnrollmentSeq: 42}).LedgerStart())
}

func TestDataset_IsEmpty(t *testing.T) {
	assert.True(t, (&Dataset{}).IsEmpty())
	assert.False(t, (&Dataset{Students: []Student{{ID: "STU-0001"}}}).IsEmpty())
}

func TestDataset_RecordSets(t *testing.T) {
	ds := &Dataset{
		Students: []Student{{ID: "STU-0001", AdmitTerm: MustParseTermCode("2024F")}},
		Preferences: []PreferenceTuple{
			{StudentID: "STU-0001", Type: PreferenceCareerGoal, Value: "cloud-engineer", Weight: 0.5, Source: SourceSurvey},
			{StudentID: "STU-0001", Type: PreferenceTimeOfDay, Value: "evening", Weight: 0.25, Source: SourceSurvey},
		},
	}

	sets := ds.RecordSets()
	require.Len(t, sets, 7)

	names := make([]string, len(sets))
	for i, set := range sets {
		names[i] = set.Name
		assert.GreaterOrEqual(t, set.KeyIndex(), 0, set.Name)
		for _, row := range set.Rows {
			assert.Len(t, row, len(set.Columns), set.Name)
		}
	}
	assert.Equal(t, []string{
		RecordSetCourses, RecordSetOfferings, RecordSetDegreeRequirements, RecordSetStudents,
		RecordSetPerformance, RecordSetEnrollments, RecordSetPreferences,
	}, names)

	students := sets[3]
	assert.Equal(t, 1, students.Len())
	assert.True(t, students.UniqueKey)

	prefs := sets[6]
	assert.Equal(t, 2, prefs.Len())
	assert.False(t, prefs.UniqueKey)
	assert.Equal(t, "student_id", prefs.Key)
}

func TestDataset_EnrollmentsByStudent(t *testing.T) {
	ds := &Dataset{Enrollments: []Enrollment{
		{ID: "ENR-00001", StudentID: "STU-0001"},
		{ID: "ENR-00002", StudentID: "STU-0002"},
		{ID: "ENR-00003", StudentID: "STU-0001"},
	}}

	grouped := ds.EnrollmentsByStudent()
	require.Len(t, grouped["STU-0001"], 2)
	assert.Equal(t, "ENR-00003", grouped["STU-0001"][1].ID)
}
