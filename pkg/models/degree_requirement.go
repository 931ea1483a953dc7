package models

import (
	"fmt"
	"strconv"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

// DegreeRequirement is a program rule derived from the catalog.
// CreditMin and CreditMax are optional.
type DegreeRequirement struct {
	ID              string
	Label           string
	Category        string
	CreditMin       *float64
	CreditMax       *float64
	EligibleCourses []string
	Notes           string
}

// Validate checks credit bounds.
func (r *DegreeRequirement) Validate() error {
	if r.CreditMin != nil && *r.CreditMin < 0 {
		return fmt.Errorf("%s: credit_min is negative: %w", r.ID, apperrors.ErrInvalidRequirement)
	}
	if r.CreditMax != nil && *r.CreditMax < 0 {
		return fmt.Errorf("%s: credit_max is negative: %w", r.ID, apperrors.ErrInvalidRequirement)
	}
	if r.CreditMin != nil && r.CreditMax != nil && *r.CreditMax < *r.CreditMin {
		return fmt.Errorf("%s: credit_max below credit_min: %w", r.ID, apperrors.ErrInvalidRequirement)
	}
	return nil
}

// DegreeRequirementColumns are the field names of the degree_requirements record set.
var DegreeRequirementColumns = []string{
	"requirement_id", "label", "category", "credit_min", "credit_max", "eligible_courses", "notes",
}

// Row flattens the requirement for tabular output.
func (r *DegreeRequirement) Row() []string {
	return []string{
		r.ID,
		r.Label,
		r.Category,
		formatOptionalFloat(r.CreditMin, 1),
		formatOptionalFloat(r.CreditMax, 1),
		JoinTags(r.EligibleCourses),
		r.Notes,
	}
}

func formatOptionalFloat(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
