package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

func simulateTestLedger(t *testing.T, seed uint64, studentCount int, ids *models.IDCounter) (*models.Catalog, []models.Student, []models.Enrollment) {
	t.Helper()
	logger := zap.NewNop()
	src := sampling.New(seed)

	catalog := testCatalog(t)
	students, err := NewPopulationService(logger).GenerateStudents(1, studentCount, src)
	require.NoError(t, err)
	enrollments, err := NewEnrollmentService(logger).SimulateEnrollments(catalog, students, src, ids)
	require.NoError(t, err)
	return catalog, students, enrollments
}

func TestEnrollmentService_LedgerIsGapless(t *testing.T) {
	_, _, enrollments := simulateTestLedger(t, 42, 40, models.NewIDCounter())
	require.NotEmpty(t, enrollments)

	for i, e := range enrollments {
		assert.Equal(t, models.EnrollmentID(i+1), e.ID)
	}
}

func TestEnrollmentService_ResumedCounter(t *testing.T) {
	ids := models.NewIDCounter()
	for range 41 {
		ids.Next()
	}

	_, _, enrollments := simulateTestLedger(t, 42, 5, ids)
	require.NotEmpty(t, enrollments)

	assert.Equal(t, "ENR-00042", enrollments[0].ID)
	assert.Equal(t, 42+len(enrollments), ids.Peek())
}

func TestEnrollmentService_GradeStatusConsistency(t *testing.T) {
	_, _, enrollments := simulateTestLedger(t, 7, 60, models.NewIDCounter())

	statuses := make(map[models.CompletionStatus]int)
	for _, e := range enrollments {
		statuses[e.Status]++
		require.True(t, e.Status.IsValid(), e.ID)

		if e.Status == models.StatusCompleted {
			require.NotNil(t, e.GradePoint, e.ID)
			assert.GreaterOrEqual(t, *e.GradePoint, models.MinGradePoint)
			assert.LessOrEqual(t, *e.GradePoint, models.MaxGradePoint)
			assert.Equal(t, models.GradeLetter(*e.GradePoint), e.GradeLetter, e.ID)
			require.NotNil(t, e.FeedbackRating, e.ID)
			assert.GreaterOrEqual(t, *e.FeedbackRating, 3)
			assert.LessOrEqual(t, *e.FeedbackRating, 5)
		} else {
			assert.Nil(t, e.GradePoint, e.ID)
			assert.Empty(t, e.GradeLetter, e.ID)
			assert.Nil(t, e.FeedbackRating, e.ID)
		}

		assert.GreaterOrEqual(t, e.HoursPerWeek, 6.0)
		assert.LessOrEqual(t, e.HoursPerWeek, 14.0)
		assert.GreaterOrEqual(t, e.EngagementScore, 0.45)
		assert.LessOrEqual(t, e.EngagementScore, 0.95)
	}
	assert.Positive(t, statuses[models.StatusCompleted])
	assert.Positive(t, statuses[models.StatusInProgress])
}

func TestEnrollmentService_TermStructure(t *testing.T) {
	_, students, enrollments := simulateTestLedger(t, 99, 60, models.NewIDCounter())

	admit := make(map[string]models.TermCode, len(students))
	for _, s := range students {
		admit[s.ID] = s.AdmitTerm
	}

	type studentTerm struct {
		student string
		term    models.TermCode
	}
	perTerm := make(map[studentTerm]int)
	finalTerm := make(map[string]models.TermCode)
	for _, e := range enrollments {
		assert.False(t, e.Term.Before(admit[e.StudentID]), "%s enrolled before admission", e.ID)
		perTerm[studentTerm{e.StudentID, e.Term}]++
		if last, ok := finalTerm[e.StudentID]; !ok || last.Before(e.Term) {
			finalTerm[e.StudentID] = e.Term
		}
	}

	for key, n := range perTerm {
		assert.LessOrEqual(t, n, 4, "%s in %s", key.student, key.term)
	}
	for _, e := range enrollments {
		if e.Status == models.StatusInProgress {
			assert.Equal(t, finalTerm[e.StudentID], e.Term, "%s in progress before final term", e.ID)
		}
	}
}

func TestEnrollmentService_PrerequisitesCompletedEarlier(t *testing.T) {
	catalog, _, enrollments := simulateTestLedger(t, 2024, 80, models.NewIDCounter())

	// completedBy[student][course] is the earliest term the course was completed.
	completedBy := make(map[string]map[string]models.TermCode)
	for _, e := range enrollments {
		if e.Status != models.StatusCompleted {
			continue
		}
		if completedBy[e.StudentID] == nil {
			completedBy[e.StudentID] = make(map[string]models.TermCode)
		}
		if prev, ok := completedBy[e.StudentID][e.CourseID]; !ok || e.Term.Before(prev) {
			completedBy[e.StudentID][e.CourseID] = e.Term
		}
	}

	for _, e := range enrollments {
		if e.Selection == models.SelectedCapstoneReservation {
			assert.Equal(t, CapstoneCourseID, e.CourseID)
			continue
		}
		course, ok := catalog.Get(e.CourseID)
		require.True(t, ok)
		for _, p := range course.Prerequisites {
			done, ok := completedBy[e.StudentID][p]
			if assert.True(t, ok, "%s: %s taken without %s", e.ID, e.CourseID, p) {
				assert.True(t, done.Before(e.Term), "%s: %s completed in %s, not before %s", e.ID, p, done, e.Term)
			}
		}
	}
}

func TestEnrollmentService_BusinessNotInFirstTerm(t *testing.T) {
	_, students, enrollments := simulateTestLedger(t, 5, 60, models.NewIDCounter())

	admit := make(map[string]models.TermCode, len(students))
	for _, s := range students {
		admit[s.ID] = s.AdmitTerm
	}
	for _, e := range enrollments {
		if e.Selection == models.SelectedBusiness {
			assert.NotEqual(t, admit[e.StudentID], e.Term, e.ID)
		}
	}
}

func TestEnrollmentService_Deterministic(t *testing.T) {
	_, _, first := simulateTestLedger(t, 17, 30, models.NewIDCounter())
	_, _, second := simulateTestLedger(t, 17, 30, models.NewIDCounter())

	assert.Equal(t, first, second)
}

func TestEnrollmentService_MissingInputs(t *testing.T) {
	svc := NewEnrollmentService(zap.NewNop())
	catalog := testCatalog(t)

	_, err := svc.SimulateEnrollments(nil, nil, sampling.New(1), models.NewIDCounter())
	assert.Error(t, err)

	_, err = svc.SimulateEnrollments(catalog, nil, sampling.New(1), nil)
	assert.Error(t, err)
}

func TestReserveCapstone(t *testing.T) {
	sim := newSimulation(testCatalog(t), sampling.New(1), models.NewIDCounter())

	tests := []struct {
		name      string
		plan      []plannedCourse
		completed map[string]bool
		wantAdded bool
	}{
		{
			name:      "appended when room",
			plan:      []plannedCourse{{courseID: "MAC-COMP-8650", path: models.SelectedElective}},
			completed: map[string]bool{},
			wantAdded: true,
		},
		{
			name: "full plan",
			plan: []plannedCourse{
				{courseID: "a"}, {courseID: "b"}, {courseID: "c"}, {courseID: "d"},
			},
			completed: map[string]bool{},
		},
		{
			name:      "already completed",
			plan:      nil,
			completed: map[string]bool{CapstoneCourseID: true},
		},
		{
			name:      "already planned",
			plan:      []plannedCourse{{courseID: CapstoneCourseID, path: models.SelectedCore}},
			completed: map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sim.reserveCapstone(tt.plan, tt.completed)
			if tt.wantAdded {
				require.Len(t, got, len(tt.plan)+1)
				last := got[len(got)-1]
				assert.Equal(t, CapstoneCourseID, last.courseID)
				assert.Equal(t, models.SelectedCapstoneReservation, last.path)
			} else {
				assert.Equal(t, tt.plan, got)
			}
		})
	}
}

func TestEnrollmentService_CapstoneOnlyInStudentsLastTerm(t *testing.T) {
	_, _, enrollments := simulateTestLedger(t, 21, 200, models.NewIDCounter())

	lastTerm := make(map[string]models.TermCode)
	for _, e := range enrollments {
		if last, ok := lastTerm[e.StudentID]; !ok || last.Before(e.Term) {
			lastTerm[e.StudentID] = e.Term
		}
	}

	capstones := 0
	for _, e := range enrollments {
		if e.CourseID != CapstoneCourseID && e.Selection != models.SelectedCapstoneReservation {
			continue
		}
		capstones++
		assert.Equal(t, models.SelectedCapstoneReservation, e.Selection, e.ID)
		assert.Equal(t, lastTerm[e.StudentID], e.Term, e.ID)
	}
	assert.Positive(t, capstones)
}

func TestSimulateStudent_CapstoneReservedInFinalTerm(t *testing.T) {
	catalog := testCatalog(t)
	student := models.Student{ID: "STU-0001", AdmitTerm: models.MustParseTermCode("2024F"), ProgramStream: models.StreamGeneral}

	reserved := 0
	for seed := uint64(1); seed <= 200; seed++ {
		// The term count is the first draw a student's walk makes.
		termCount := sampling.New(seed).IntRange(minTermsPerStudent, maxTermsPerStudent)
		terms, err := models.TermSequence(student.AdmitTerm, termCount)
		require.NoError(t, err)
		final := terms[len(terms)-1]

		sim := newSimulation(catalog, sampling.New(seed), models.NewIDCounter())
		enrollments, err := sim.simulateStudent(&student)
		require.NoError(t, err)

		for _, e := range enrollments {
			require.Contains(t, terms, e.Term)
			if e.CourseID == CapstoneCourseID {
				reserved++
				assert.Equal(t, final, e.Term, "seed %d", seed)
			}
		}
	}
	assert.Positive(t, reserved)
}

func TestSimulateStudent_NoCapstoneBeforeFinalTermWithRoom(t *testing.T) {
	// One core course leaves every term's plan far below its load.
	catalog, err := models.NewCatalog([]models.Course{
		{ID: "MAC-COMP-8110", Code: "COMP-8110", Category: models.CategoryCore, Credits: 3},
		{ID: CapstoneCourseID, Code: "COMP-8890", Category: models.CategoryProject, Credits: 3},
	})
	require.NoError(t, err)

	sim := newSimulation(catalog, sampling.New(3), models.NewIDCounter())
	for termIdx := range maxTermsPerStudent {
		plan := sim.planTerm(map[string]bool{}, termIdx)
		assert.Less(t, len(plan), termLoad(termIdx))
		for _, pc := range plan {
			assert.NotEqual(t, CapstoneCourseID, pc.courseID, "term %d", termIdx)
		}
	}

	student := models.Student{ID: "STU-0001", AdmitTerm: models.MustParseTermCode("2025W"), ProgramStream: models.StreamAI}
	for seed := uint64(1); seed <= 50; seed++ {
		termCount := sampling.New(seed).IntRange(minTermsPerStudent, maxTermsPerStudent)
		terms, err := models.TermSequence(student.AdmitTerm, termCount)
		require.NoError(t, err)
		final := terms[len(terms)-1]

		sim := newSimulation(catalog, sampling.New(seed), models.NewIDCounter())
		enrollments, err := sim.simulateStudent(&student)
		require.NoError(t, err)

		capstones := 0
		for _, e := range enrollments {
			if e.CourseID == CapstoneCourseID {
				capstones++
				assert.Equal(t, final, e.Term, "seed %d", seed)
			}
		}
		assert.Equal(t, 1, capstones, "seed %d", seed)
	}
}
