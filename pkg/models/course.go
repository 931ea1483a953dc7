package models

import (
	"fmt"
	"strconv"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/apperrors"
)

// CourseCategory groups courses for degree requirements and selection policy.
type CourseCategory string

const (
	CategoryCore              CourseCategory = "core"
	CategoryTechnicalElective CourseCategory = "technical-elective"
	CategoryBusiness          CourseCategory = "business"
	CategoryProject           CourseCategory = "project"
)

// ValidCourseCategories contains all valid course categories.
var ValidCourseCategories = []CourseCategory{
	CategoryCore,
	CategoryTechnicalElective,
	CategoryBusiness,
	CategoryProject,
}

// IsValid checks if the category is one of the known course categories.
func (c CourseCategory) IsValid() bool {
	for _, v := range ValidCourseCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Course is an immutable catalog entry.
type Course struct {
	ID              string
	Code            string
	Title           string
	Credits         float64
	Category        CourseCategory
	DeliveryMode    string
	Skills          []string
	Prerequisites   []string
	TermPatterns    []string
	DifficultyLevel int
	Description     string
}

// HasSkill reports whether the course teaches the given skill tag.
func (c *Course) HasSkill(skill string) bool {
	for _, s := range c.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// PrerequisitesMet reports whether every prerequisite is in completed.
func (c *Course) PrerequisitesMet(completed map[string]bool) bool {
	for _, p := range c.Prerequisites {
		if !completed[p] {
			return false
		}
	}
	return true
}

// CourseColumns are the field names of the courses record set.
var CourseColumns = []string{
	"course_id", "course_code", "title", "credits", "category", "delivery_mode",
	"skills", "prerequisites", "term_patterns", "difficulty_level", "description",
}

// Row flattens the course for tabular output.
func (c *Course) Row() []string {
	return []string{
		c.ID,
		c.Code,
		c.Title,
		strconv.FormatFloat(c.Credits, 'f', 1, 64),
		string(c.Category),
		c.DeliveryMode,
		JoinTags(c.Skills),
		JoinTags(c.Prerequisites),
		JoinTags(c.TermPatterns),
		strconv.Itoa(c.DifficultyLevel),
		c.Description,
	}
}

// Catalog is a read-only course lookup that preserves definition order.
type Catalog struct {
	courses []Course
	byID    map[string]int
}

// NewCatalog indexes courses and checks categories and prerequisite references.
// Multi-valued fields are normalized the same way they are serialized.
func NewCatalog(courses []Course) (*Catalog, error) {
	cat := &Catalog{
		courses: make([]Course, len(courses)),
		byID:    make(map[string]int, len(courses)),
	}
	for i, c := range courses {
		if _, dup := cat.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %q", c.ID)
		}
		if !c.Category.IsValid() {
			return nil, fmt.Errorf("course %s: invalid category %q", c.ID, c.Category)
		}
		c.Skills = NormalizeTags(c.Skills)
		c.Prerequisites = NormalizeTags(c.Prerequisites)
		c.TermPatterns = NormalizeTags(c.TermPatterns)
		cat.courses[i] = c
		cat.byID[c.ID] = i
	}
	for _, c := range cat.courses {
		for _, p := range c.Prerequisites {
			if _, ok := cat.byID[p]; !ok {
				return nil, fmt.Errorf("course %s prerequisite %s: %w", c.ID, p, apperrors.ErrUnknownCourse)
			}
		}
	}
	return cat, nil
}

// Courses returns the catalog in definition order. Callers must not modify it.
func (c *Catalog) Courses() []Course {
	return c.courses
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Get returns the course with the given id.
func (c *Catalog) Get(id string) (*Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.courses[i], true
}

// IDsByCategory returns course ids of a category in definition order.
func (c *Catalog) IDsByCategory(category CourseCategory) []string {
	var ids []string
	for _, course := range c.courses {
		if course.Category == category {
			ids = append(ids, course.ID)
		}
	}
	return ids
}
