package services

import (
	"slices"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

const (
	// Risk thresholds.
	lowLastTermGPA     = 2.7
	significantGPADrop = 0.6
	coopRiskGPA        = 3.0
)

type strengthBucket struct {
	min   float64
	score int
}

var strengthBuckets = []strengthBucket{
	{3.8, 5},
	{3.5, 4},
	{3.0, 3},
	{2.5, 2},
}

// PerformanceService derives performance profiles from the enrollment ledger.
type PerformanceService interface {
	// AggregateAll returns one profile per student, in student order.
	AggregateAll(students []models.Student, enrollments []models.Enrollment, catalog *models.Catalog) []models.PerformanceProfile
}

type performanceService struct {
	logger *zap.Logger
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(logger *zap.Logger) PerformanceService {
	return &performanceService{logger: logger.Named("performance")}
}

var _ PerformanceService = (*performanceService)(nil)

func (s *performanceService) AggregateAll(students []models.Student, enrollments []models.Enrollment, catalog *models.Catalog) []models.PerformanceProfile {
	byStudent := make(map[string][]models.Enrollment, len(students))
	for _, e := range enrollments {
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}

	profiles := make([]models.PerformanceProfile, 0, len(students))
	counts := make(map[models.RiskFlag]int)
	for i := range students {
		profile := AggregatePerformance(&students[i], byStudent[students[i].ID], catalog)
		counts[profile.RiskFlag]++
		profiles = append(profiles, profile)
	}

	s.logger.Debug("Aggregated performance profiles",
		zap.Int("profiles", len(profiles)),
		zap.Int("performance_drop", counts[models.RiskPerformanceDrop]),
		zap.Int("coop_risk", counts[models.RiskCoop]))
	return profiles
}

// AggregatePerformance computes a student's profile from scratch. It reads
// its inputs only, so the same inputs always yield the same profile.
func AggregatePerformance(student *models.Student, enrollments []models.Enrollment, catalog *models.Catalog) models.PerformanceProfile {
	graded := make([]models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if e.IsGraded() {
			graded = append(graded, e)
		}
	}

	cumulative := student.EntryGPA
	lastTerm := student.EntryGPA
	if len(graded) > 0 {
		cumulative = meanGradePoint(graded, nil)

		slices.SortStableFunc(graded, func(a, b models.Enrollment) int {
			return a.Term.Compare(b.Term)
		})
		final := graded[len(graded)-1].Term
		lastTerm = meanGradePoint(graded, func(e *models.Enrollment) bool { return e.Term == final })
	}

	strength := func(match func(*models.Course) bool) int {
		relevant := func(e *models.Enrollment) bool {
			course, ok := catalog.Get(e.CourseID)
			return ok && match(course)
		}
		avg, ok := meanGradePointOK(graded, relevant)
		if !ok {
			avg = student.EntryGPA
		}
		return strengthScore(avg)
	}

	return models.PerformanceProfile{
		StudentID:     student.ID,
		CumulativeGPA: cumulative,
		LastTermGPA:   lastTerm,
		TechnicalStrength: strength(func(c *models.Course) bool {
			return c.Category == models.CategoryCore ||
				c.Category == models.CategoryTechnicalElective ||
				c.Category == models.CategoryProject
		}),
		AnalyticalStrength: strength(func(c *models.Course) bool {
			return c.HasSkill("data-analytics") || c.HasSkill("machine-learning")
		}),
		CommunicationStrength: strength(func(c *models.Course) bool {
			return c.Category == models.CategoryBusiness || c.HasSkill("project-delivery")
		}),
		RiskFlag: riskFlag(cumulative, lastTerm, student.CoopStatus),
	}
}

// riskFlag checks performance-drop before co-op risk.
func riskFlag(cumulative, lastTerm float64, coop models.CoopStatus) models.RiskFlag {
	if lastTerm < lowLastTermGPA || cumulative-lastTerm >= significantGPADrop {
		return models.RiskPerformanceDrop
	}
	if coop == models.CoopSeeking && cumulative < coopRiskGPA {
		return models.RiskCoop
	}
	return models.RiskNone
}

func strengthScore(avg float64) int {
	for _, b := range strengthBuckets {
		if avg >= b.min {
			return b.score
		}
	}
	return 1
}

func meanGradePoint(enrollments []models.Enrollment, keep func(*models.Enrollment) bool) float64 {
	avg, _ := meanGradePointOK(enrollments, keep)
	return avg
}

func meanGradePointOK(enrollments []models.Enrollment, keep func(*models.Enrollment) bool) (float64, bool) {
	var sum float64
	var n int
	for i := range enrollments {
		e := &enrollments[i]
		if keep != nil && !keep(e) {
			continue
		}
		sum += *e.GradePoint
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
