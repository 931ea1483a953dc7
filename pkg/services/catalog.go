package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
)

// CapstoneCourseID is the applied project every student works towards.
const CapstoneCourseID = "MAC-COMP-8890"

// CatalogService builds the fixed MAC course catalog and the degree
// requirements derived from it.
type CatalogService interface {
	// BuildCatalog returns the validated course catalog.
	BuildCatalog() (*models.Catalog, error)

	// BuildDegreeRequirements derives the program requirements from a catalog.
	BuildDegreeRequirements(catalog *models.Catalog) ([]models.DegreeRequirement, error)
}

type catalogService struct {
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(logger *zap.Logger) CatalogService {
	return &catalogService{logger: logger.Named("catalog")}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) BuildCatalog() (*models.Catalog, error) {
	catalog, err := models.NewCatalog(macCourses())
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	if _, ok := catalog.Get(CapstoneCourseID); !ok {
		return nil, fmt.Errorf("build catalog: capstone %s missing", CapstoneCourseID)
	}

	s.logger.Debug("Built course catalog", zap.Int("courses", catalog.Len()))
	return catalog, nil
}

func (s *catalogService) BuildDegreeRequirements(catalog *models.Catalog) ([]models.DegreeRequirement, error) {
	requirements := []models.DegreeRequirement{
		{
			ID:              "MAC_CORE",
			Label:           "Complete all MAC core courses",
			Category:        string(models.CategoryCore),
			CreditMin:       credits(18),
			EligibleCourses: catalog.IDsByCategory(models.CategoryCore),
			Notes:           "Core courses build foundational applied computing competencies.",
		},
		{
			ID:              "MAC_TECH_ELECTIVE",
			Label:           "Choose at least two technical electives",
			Category:        string(models.CategoryTechnicalElective),
			CreditMin:       credits(6),
			CreditMax:       credits(12),
			EligibleCourses: catalog.IDsByCategory(models.CategoryTechnicalElective),
			Notes:           "Technical electives can also satisfy AI stream depth areas.",
		},
		{
			ID:              "MAC_BUSINESS",
			Label:           "Complete two business/management courses",
			Category:        string(models.CategoryBusiness),
			CreditMin:       credits(6),
			CreditMax:       credits(6),
			EligibleCourses: catalog.IDsByCategory(models.CategoryBusiness),
			Notes:           "Students typically select from Odette School of Business offerings.",
		},
		{
			ID:              "MAC_PROJECT",
			Label:           "Complete applied project or co-op placement",
			Category:        string(models.CategoryProject),
			CreditMin:       credits(6),
			CreditMax:       credits(6),
			EligibleCourses: []string{CapstoneCourseID},
			Notes:           "Prerequisites must be satisfied before enrolling.",
		},
		{
			ID:       "MAC_GPA",
			Label:    "Maintain minimum cumulative GPA of 3.0",
			Category: "minimum-gpa",
			Notes:    "Advisors review academic progress each term.",
		},
	}

	for i := range requirements {
		if err := requirements[i].Validate(); err != nil {
			return nil, err
		}
		requirements[i].EligibleCourses = models.NormalizeTags(requirements[i].EligibleCourses)
	}
	return requirements, nil
}

func credits(v float64) *float64 {
	return &v
}

func macCourses() []models.Course {
	return []models.Course{
		{
			ID:              "MAC-COMP-8110",
			Code:            "COMP-8110",
			Title:           "Advanced Computing Concepts",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "in-person",
			Skills:          []string{"software-architecture", "design-patterns", "team-collaboration"},
			TermPatterns:    []string{"Fall", "Winter"},
			DifficultyLevel: 3,
			Description: "Advanced topics in applied computing including design patterns, " +
				"scalable architectures, and professional practice.",
		},
		{
			ID:              "MAC-COMP-8150",
			Code:            "COMP-8150",
			Title:           "Advanced Software Engineering",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "in-person",
			Skills:          []string{"software-engineering", "agile-methods", "requirements"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Fall"},
			DifficultyLevel: 4,
			Description: "Software lifecycle management, agile processes, testing strategies, " +
				"and delivery pipelines for enterprise-scale systems.",
		},
		{
			ID:              "MAC-COMP-8220",
			Code:            "COMP-8220",
			Title:           "Internet Applications and Distributed Systems",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "hybrid",
			Skills:          []string{"distributed-systems", "web-services", "cloud-computing"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Winter"},
			DifficultyLevel: 4,
			Description: "Design and evaluation of scalable, distributed applications for the modern " +
				"internet, covering microservices and event-driven architectures.",
		},
		{
			ID:              "MAC-COMP-8250",
			Code:            "COMP-8250",
			Title:           "Advanced Systems Programming",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "in-person",
			Skills:          []string{"systems-programming", "performance-engineering", "operating-systems"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Fall"},
			DifficultyLevel: 5,
			Description: "Low-level programming, concurrency, and performance engineering " +
				"for high-reliability systems.",
		},
		{
			ID:              "MAC-COMP-8340",
			Code:            "COMP-8340",
			Title:           "Advanced Database Topics",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "in-person",
			Skills:          []string{"data-modeling", "database-admin", "sql-optimization"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Winter"},
			DifficultyLevel: 3,
			Description: "Advanced topics in relational, NoSQL, and distributed databases with " +
				"emphasis on optimization and data governance.",
		},
		{
			ID:              "MAC-COMP-8470",
			Code:            "COMP-8470",
			Title:           "Networking and Data Security",
			Credits:         3.0,
			Category:        models.CategoryCore,
			DeliveryMode:    "hybrid",
			Skills:          []string{"cybersecurity", "network-engineering", "risk-assessment"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Fall", "Winter"},
			DifficultyLevel: 4,
			Description: "Network protocols, secure architecture design, threat modeling, and " +
				"compliance considerations for enterprise environments.",
		},
		{
			ID:              "MAC-COMP-8650",
			Code:            "COMP-8650",
			Title:           "Applied Machine Learning",
			Credits:         3.0,
			Category:        models.CategoryTechnicalElective,
			DeliveryMode:    "hybrid",
			Skills:          []string{"machine-learning", "model-deployment", "python"},
			Prerequisites:   []string{"MAC-COMP-8340"},
			TermPatterns:    []string{"Winter"},
			DifficultyLevel: 4,
			Description: "Hands-on machine learning with emphasis on applied modeling, " +
				"evaluation, and deployment in cloud environments.",
		},
		{
			ID:              "MAC-COMP-8720",
			Code:            "COMP-8720",
			Title:           "Cloud and DevOps Engineering",
			Credits:         3.0,
			Category:        models.CategoryTechnicalElective,
			DeliveryMode:    "online",
			Skills:          []string{"cloud-computing", "devops", "automation"},
			Prerequisites:   []string{"MAC-COMP-8220"},
			TermPatterns:    []string{"Fall", "Summer"},
			DifficultyLevel: 3,
			Description: "Infrastructure-as-code, container orchestration, and continuous delivery " +
				"practices tailored to applied computing projects.",
		},
		{
			ID:              "MAC-COMP-8780",
			Code:            "COMP-8780",
			Title:           "Data Analytics for Business",
			Credits:         3.0,
			Category:        models.CategoryTechnicalElective,
			DeliveryMode:    "in-person",
			Skills:          []string{"data-analytics", "business-intelligence", "storytelling"},
			Prerequisites:   []string{"MAC-COMP-8340"},
			TermPatterns:    []string{"Fall"},
			DifficultyLevel: 3,
			Description: "Analytics lifecycle, dashboarding, and translating technical insight into " +
				"business strategy for stakeholders.",
		},
		{
			ID:              "MAC-COMP-8830",
			Code:            "COMP-8830",
			Title:           "Human-Centered Computing",
			Credits:         3.0,
			Category:        models.CategoryTechnicalElective,
			DeliveryMode:    "in-person",
			Skills:          []string{"ux-design", "user-research", "accessibility"},
			Prerequisites:   []string{"MAC-COMP-8110"},
			TermPatterns:    []string{"Winter"},
			DifficultyLevel: 2,
			Description: "User-centered design, accessibility, and evaluation methods for applied " +
				"software products.",
		},
		{
			ID:              CapstoneCourseID,
			Code:            "COMP-8890",
			Title:           "Applied Computing Project",
			Credits:         6.0,
			Category:        models.CategoryProject,
			DeliveryMode:    "in-person",
			Skills:          []string{"project-delivery", "stakeholder-management", "written-communication"},
			Prerequisites:   []string{"MAC-COMP-8110", "MAC-COMP-8150", "MAC-COMP-8340"},
			TermPatterns:    []string{"Fall", "Winter", "Summer"},
			DifficultyLevel: 5,
			Description: "Capstone project or co-op placement applying MAC competencies to an " +
				"industry problem.",
		},
		{
			ID:              "MAC-BU-7500",
			Code:            "BUSI-7500",
			Title:           "Finance in a Global Perspective",
			Credits:         3.0,
			Category:        models.CategoryBusiness,
			DeliveryMode:    "in-person",
			Skills:          []string{"finance", "quant-analysis", "decision-making"},
			TermPatterns:    []string{"Fall"},
			DifficultyLevel: 2,
			Description: "Financial principles, valuation, and budgeting for technology initiatives in " +
				"global markets.",
		},
		{
			ID:              "MAC-BU-7600",
			Code:            "BUSI-7600",
			Title:           "Marketing Strategy for Technology Ventures",
			Credits:         3.0,
			Category:        models.CategoryBusiness,
			DeliveryMode:    "online",
			Skills:          []string{"marketing", "product-strategy", "communication"},
			TermPatterns:    []string{"Winter"},
			DifficultyLevel: 2,
			Description: "Market analysis, positioning, and go-to-market planning for software " +
				"products and services.",
		},
		{
			ID:              "MAC-BU-7700",
			Code:            "BUSI-7700",
			Title:           "Managing for Organizational Effectiveness",
			Credits:         3.0,
			Category:        models.CategoryBusiness,
			DeliveryMode:    "in-person",
			Skills:          []string{"leadership", "change-management", "team-dynamics"},
			TermPatterns:    []string{"Fall", "Winter"},
			DifficultyLevel: 2,
			Description: "People management, leadership styles, and organizational behaviour for " +
				"technical leaders.",
		},
	}
}
