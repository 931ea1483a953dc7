package services

import (
	"errors"
	"fmt"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// maxViolationsPerCheck caps how many violations a single check reports.
const maxViolationsPerCheck = 20

// violations collects invariant failures, capped per check name.
type violations struct {
	errs   []error
	counts map[string]int
}

func (v *violations) add(check, format string, args ...any) {
	if v.counts == nil {
		v.counts = make(map[string]int)
	}
	v.counts[check]++
	switch n := v.counts[check]; {
	case n <= maxViolationsPerCheck:
		v.errs = append(v.errs, fmt.Errorf("%w: %s: %s", apperrors.ErrInvalidDataset, check, fmt.Sprintf(format, args...)))
	case n == maxViolationsPerCheck+1:
		v.errs = append(v.errs, fmt.Errorf("%w: %s: further violations omitted", apperrors.ErrInvalidDataset, check))
	}
}

func (v *violations) err() error {
	return errors.Join(v.errs...)
}

// ValidateDataset checks the referential and ledger invariants of a finished
// dataset. It returns nil or every violation found, joined.
func ValidateDataset(ds *models.Dataset) error {
	if ds == nil || ds.IsEmpty() {
		return apperrors.ErrEmptyDataset
	}

	var v violations
	courses := make(map[string]*models.Course, len(ds.Courses))
	for i := range ds.Courses {
		c := &ds.Courses[i]
		if _, dup := courses[c.ID]; dup {
			v.add("course", "duplicate id %s", c.ID)
		}
		courses[c.ID] = c
	}
	students := make(map[string]*models.Student, len(ds.Students))
	for i := range ds.Students {
		s := &ds.Students[i]
		if _, dup := students[s.ID]; dup {
			v.add("student", "duplicate id %s", s.ID)
		}
		students[s.ID] = s
	}

	checkReferences(&v, ds, courses, students)
	checkLedger(&v, ds.Enrollments, ds.LedgerStart())
	checkGrades(&v, ds.Enrollments)
	checkPrerequisites(&v, ds.Enrollments, courses)
	checkPerformance(&v, ds.Performance, students)
	checkPreferences(&v, ds.Preferences)

	return v.err()
}

func checkReferences(v *violations, ds *models.Dataset, courses map[string]*models.Course, students map[string]*models.Student) {
	for _, c := range ds.Courses {
		for _, p := range c.Prerequisites {
			if _, ok := courses[p]; !ok {
				v.add("course prerequisite", "%s requires unknown course %s", c.ID, p)
			}
		}
	}
	for _, o := range ds.Offerings {
		if _, ok := courses[o.CourseID]; !ok {
			v.add("offering course", "%s references unknown course %s", o.ID, o.CourseID)
		}
	}
	for _, r := range ds.Requirements {
		for _, id := range r.EligibleCourses {
			if _, ok := courses[id]; !ok {
				v.add("requirement course", "%s lists unknown course %s", r.ID, id)
			}
		}
	}
	for _, e := range ds.Enrollments {
		if _, ok := students[e.StudentID]; !ok {
			v.add("enrollment student", "%s references unknown student %s", e.ID, e.StudentID)
		}
		if _, ok := courses[e.CourseID]; !ok {
			v.add("enrollment course", "%s references unknown course %s", e.ID, e.CourseID)
		}
	}
	for _, p := range ds.Preferences {
		if _, ok := students[p.StudentID]; !ok {
			v.add("preference student", "tuple %s/%s references unknown student %s", p.Type, p.Value, p.StudentID)
		}
	}
}

// checkLedger requires gapless ids counting up from start in ledger order.
func checkLedger(v *violations, enrollments []models.Enrollment, start int) {
	for i, e := range enrollments {
		seq, err := models.ParseEnrollmentID(e.ID)
		if err != nil {
			v.add("enrollment id", "%v", err)
			continue
		}
		if want := start + i; seq != want {
			v.add("enrollment id", "position %d has %s, want %s", i, e.ID, models.EnrollmentID(want))
		}
	}
}

func checkGrades(v *violations, enrollments []models.Enrollment) {
	for _, e := range enrollments {
		if !e.Status.IsValid() {
			v.add("completion status", "%s has status %q", e.ID, e.Status)
			continue
		}
		completed := e.Status == models.StatusCompleted
		if completed != (e.GradePoint != nil) {
			v.add("grade presence", "%s is %s with grade present=%t", e.ID, e.Status, e.GradePoint != nil)
		}
		if e.FeedbackRating != nil && !completed {
			v.add("feedback", "%s is %s but has a feedback rating", e.ID, e.Status)
		}
		if e.GradePoint == nil {
			if e.GradeLetter != "" {
				v.add("grade letter", "%s has letter %s without a grade point", e.ID, e.GradeLetter)
			}
			continue
		}
		point := *e.GradePoint
		if point < models.MinGradePoint || point > models.MaxGradePoint {
			v.add("grade range", "%s has grade point %.2f", e.ID, point)
		}
		if want := models.GradeLetter(point); e.GradeLetter != want {
			v.add("grade letter", "%s has %s for %.2f, want %s", e.ID, e.GradeLetter, point, want)
		}
	}
}

// checkPrerequisites requires every prerequisite of a completed course to have
// been completed in an earlier term. The capstone is reserved without a
// prerequisite check and is exempt.
func checkPrerequisites(v *violations, enrollments []models.Enrollment, courses map[string]*models.Course) {
	// earliest completed term per student and course
	firstCompleted := make(map[string]map[string]models.TermCode)
	for _, e := range enrollments {
		if e.Status != models.StatusCompleted {
			continue
		}
		done := firstCompleted[e.StudentID]
		if done == nil {
			done = make(map[string]models.TermCode)
			firstCompleted[e.StudentID] = done
		}
		if prev, ok := done[e.CourseID]; !ok || e.Term.Before(prev) {
			done[e.CourseID] = e.Term
		}
	}

	for _, e := range enrollments {
		if e.Status != models.StatusCompleted || isCapstoneReservation(&e) {
			continue
		}
		course, ok := courses[e.CourseID]
		if !ok {
			continue
		}
		for _, p := range course.Prerequisites {
			term, done := firstCompleted[e.StudentID][p]
			if !done || !term.Before(e.Term) {
				v.add("prerequisite", "%s: %s took %s in %s before completing %s",
					e.ID, e.StudentID, e.CourseID, e.Term, p)
			}
		}
	}
}

func isCapstoneReservation(e *models.Enrollment) bool {
	return e.Selection == models.SelectedCapstoneReservation || e.CourseID == CapstoneCourseID
}

func checkPerformance(v *violations, profiles []models.PerformanceProfile, students map[string]*models.Student) {
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if _, ok := students[p.StudentID]; !ok {
			v.add("performance student", "profile for unknown student %s", p.StudentID)
		}
		if seen[p.StudentID] {
			v.add("performance student", "duplicate profile for %s", p.StudentID)
		}
		seen[p.StudentID] = true
		for _, score := range []int{p.TechnicalStrength, p.AnalyticalStrength, p.CommunicationStrength} {
			if score < 1 || score > 5 {
				v.add("strength", "%s has strength score %d", p.StudentID, score)
			}
		}
	}
	if len(seen) != len(students) {
		v.add("performance coverage", "%d profiles for %d students", len(seen), len(students))
	}
}

func checkPreferences(v *violations, prefs []models.PreferenceTuple) {
	for _, p := range prefs {
		if p.Weight <= 0 || p.Weight >= 1 {
			v.add("preference weight", "%s %s weight %.2f outside (0,1)", p.StudentID, p.Type, p.Weight)
		}
		if p.Source != models.SourceSurvey && p.Source != models.SourceAdvisorNote {
			v.add("preference source", "%s %s has source %q", p.StudentID, p.Type, p.Source)
		}
	}
}
