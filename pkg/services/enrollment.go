package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

const (
	minTermsPerStudent = 2
	maxTermsPerStudent = 4

	// Students take a heavier load in their first two terms.
	earlyTermLoad  = 4
	laterTermLoad  = 3
	earlyTermCount = 2

	// capstoneReservationLimit is the largest selection the capstone may be appended to.
	capstoneReservationLimit = 4

	inProgressShareFinalTerm = 0.45
	withdrawalRate           = 0.05

	gradeMean = 3.3
	gradeSD   = 0.4
)

// EnrollmentService simulates term-by-term progression through the program.
type EnrollmentService interface {
	// SimulateEnrollments walks every student through their terms and returns
	// the enrollment ledger in issue order.
	SimulateEnrollments(
		catalog *models.Catalog,
		students []models.Student,
		src *sampling.Source,
		ids *models.IDCounter,
	) ([]models.Enrollment, error)
}

type enrollmentService struct {
	logger *zap.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(logger *zap.Logger) EnrollmentService {
	return &enrollmentService{logger: logger.Named("enrollment")}
}

var _ EnrollmentService = (*enrollmentService)(nil)

func (s *enrollmentService) SimulateEnrollments(
	catalog *models.Catalog,
	students []models.Student,
	src *sampling.Source,
	ids *models.IDCounter,
) ([]models.Enrollment, error) {
	if catalog == nil {
		return nil, fmt.Errorf("simulate enrollments: catalog not built")
	}
	if ids == nil {
		return nil, fmt.Errorf("simulate enrollments: id counter is required")
	}

	sim := newSimulation(catalog, src, ids)
	var ledger []models.Enrollment
	for i := range students {
		enrollments, err := sim.simulateStudent(&students[i])
		if err != nil {
			return nil, fmt.Errorf("student %s: %w", students[i].ID, err)
		}
		ledger = append(ledger, enrollments...)
	}

	s.logger.Debug("Simulated enrollments",
		zap.Int("students", len(students)),
		zap.Int("enrollments", len(ledger)))
	return ledger, nil
}

// plannedCourse is a course chosen for a term and the rule that chose it.
type plannedCourse struct {
	courseID string
	path     models.SelectionPath
}

// simulation holds the read-only course groupings plus the run's shared
// random source and id counter.
type simulation struct {
	catalog   *models.Catalog
	src       *sampling.Source
	ids       *models.IDCounter
	core      []string
	business  []string
	electives []string
}

func newSimulation(catalog *models.Catalog, src *sampling.Source, ids *models.IDCounter) *simulation {
	return &simulation{
		catalog:   catalog,
		src:       src,
		ids:       ids,
		core:      catalog.IDsByCategory(models.CategoryCore),
		business:  catalog.IDsByCategory(models.CategoryBusiness),
		electives: catalog.IDsByCategory(models.CategoryTechnicalElective),
	}
}

func (sim *simulation) simulateStudent(student *models.Student) ([]models.Enrollment, error) {
	termCount := sim.src.IntRange(minTermsPerStudent, maxTermsPerStudent)
	terms, err := models.TermSequence(student.AdmitTerm, termCount)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool)
	var enrollments []models.Enrollment
	for termIdx, term := range terms {
		isFinal := termIdx == len(terms)-1

		plan := sim.planTerm(completed, termIdx)
		if isFinal {
			plan = sim.reserveCapstone(plan, completed)
		}

		for _, pc := range plan {
			enrollment := sim.materialize(student.ID, pc, term, isFinal)
			if enrollment.Status == models.StatusCompleted {
				completed[pc.courseID] = true
			}
			enrollments = append(enrollments, enrollment)
		}
	}
	return enrollments, nil
}

func termLoad(termIdx int) int {
	if termIdx < earlyTermCount {
		return earlyTermLoad
	}
	return laterTermLoad
}

// planTerm selects courses for one term: outstanding core courses first,
// then business courses from the second term on, then technical electives.
// Core and elective picks require every prerequisite to be completed.
func (sim *simulation) planTerm(completed map[string]bool, termIdx int) []plannedCourse {
	load := termLoad(termIdx)
	plan := make([]plannedCourse, 0, capstoneReservationLimit)
	selected := make(map[string]bool, capstoneReservationLimit)
	take := func(id string, path models.SelectionPath) {
		plan = append(plan, plannedCourse{courseID: id, path: path})
		selected[id] = true
	}

	outstandingCore := filterIDs(sim.core, func(id string) bool { return !completed[id] })
	sampling.Shuffle(sim.src, outstandingCore)
	for _, id := range outstandingCore {
		if len(plan) >= load {
			break
		}
		if sim.prerequisitesMet(id, completed) {
			take(id, models.SelectedCore)
		}
	}

	if len(plan) < load && termIdx >= 1 {
		business := filterIDs(sim.business, func(id string) bool { return !completed[id] && !selected[id] })
		sampling.Shuffle(sim.src, business)
		for _, id := range business {
			if len(plan) >= load {
				break
			}
			take(id, models.SelectedBusiness)
		}
	}

	if len(plan) < load {
		// Electives are offered again even if already completed.
		electives := filterIDs(sim.electives, func(id string) bool { return !selected[id] })
		// Elective order does not depend on the program stream yet.
		sampling.Shuffle(sim.src, electives)
		for _, id := range electives {
			if len(plan) >= load {
				break
			}
			if sim.prerequisitesMet(id, completed) {
				take(id, models.SelectedElective)
			}
		}
	}

	return plan
}

// reserveCapstone appends the capstone to a final-term plan when it is not
// already completed or planned and the plan has room. This is the one path
// that does not check prerequisites.
func (sim *simulation) reserveCapstone(plan []plannedCourse, completed map[string]bool) []plannedCourse {
	if completed[CapstoneCourseID] || len(plan) >= capstoneReservationLimit {
		return plan
	}
	for _, pc := range plan {
		if pc.courseID == CapstoneCourseID {
			return plan
		}
	}
	return append(plan, plannedCourse{courseID: CapstoneCourseID, path: models.SelectedCapstoneReservation})
}

func (sim *simulation) prerequisitesMet(courseID string, completed map[string]bool) bool {
	course, ok := sim.catalog.Get(courseID)
	return ok && course.PrerequisitesMet(completed)
}

// materialize draws the outcome of one planned course and issues its id.
func (sim *simulation) materialize(studentID string, pc plannedCourse, term models.TermCode, isFinal bool) models.Enrollment {
	enrollment := models.Enrollment{
		ID:        sim.ids.Next(),
		StudentID: studentID,
		CourseID:  pc.courseID,
		Term:      term,
		Selection: pc.path,
	}

	u := sim.src.Float64()
	switch {
	case isFinal && u < inProgressShareFinalTerm:
		enrollment.Status = models.StatusInProgress
	case sim.src.Float64() < withdrawalRate:
		enrollment.Status = models.StatusWithdrawn
	default:
		point := sampling.Round(clampGradePoint(sim.src.Normal(gradeMean, gradeSD)), 2)
		rating := sim.src.IntRange(3, 5)
		enrollment.Status = models.StatusCompleted
		enrollment.GradePoint = &point
		enrollment.GradeLetter = models.GradeLetter(point)
		enrollment.FeedbackRating = &rating
	}

	enrollment.HoursPerWeek = sampling.Round(sim.src.Uniform(6, 14), 1)
	enrollment.EngagementScore = sampling.Round(sim.src.Uniform(0.45, 0.95), 2)
	return enrollment
}

func clampGradePoint(point float64) float64 {
	return max(models.MinGradePoint, min(point, models.MaxGradePoint))
}

func filterIDs(ids []string, keep func(string) bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}
