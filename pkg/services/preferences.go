package services

import (
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// Weights are written with two decimals and must stay inside (0,1).
const (
	minPreferenceWeight = 0.01
	maxPreferenceWeight = 0.99

	enrichedCareerShare = 0.3
)

var (
	careerOptions = []string{
		"ai-specialist", "cloud-engineer", "cybersecurity-analyst",
		"product-manager", "data-analyst", "software-architect",
	}
	deliveryOptions  = []string{"in-person", "hybrid", "online"}
	timeOfDayOptions = []string{"morning", "afternoon", "evening"}

	skillFocusOptions = []string{
		"machine-learning|model-deployment",
		"cloud-computing|devops",
		"cybersecurity|threat-modeling",
		"data-analytics|visualization",
		"leadership|communication",
	}

	enrichmentInterests = []string{
		"deep-learning", "neural-networks", "ai-fundamentals", "pattern-recognition",
		"statistical-learning", "computational-geometry", "algorithm-design",
		"virtual-reality", "3d-graphics", "3d-animation", "data-visualization",
		"information-retrieval", "search-algorithms", "nosql", "graph-databases",
		"functional-programming", "privacy", "cryptography",
	}
	enrichmentCareerGoals = []string{
		"ai-engineer", "ml-engineer", "data-scientist", "vr-developer",
		"algorithms-researcher", "security-analyst", "database-architect",
	}
	enrichmentSources = []models.PreferenceSource{models.SourceSurvey, models.SourceAdvisorNote}
)

// PreferenceService builds weighted student preference tuples.
type PreferenceService interface {
	// GeneratePreferences returns one tuple of each preference type per student.
	GeneratePreferences(students []models.Student, src *sampling.Source) []models.PreferenceTuple

	// EnrichPreferences returns additional tuples for students who took at
	// least one technical elective. The base tuples are not modified.
	EnrichPreferences(
		students []models.Student,
		enrollments []models.Enrollment,
		catalog *models.Catalog,
		src *sampling.Source,
	) []models.PreferenceTuple
}

type preferenceService struct {
	logger *zap.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(logger *zap.Logger) PreferenceService {
	return &preferenceService{logger: logger.Named("preferences")}
}

var _ PreferenceService = (*preferenceService)(nil)

func (s *preferenceService) GeneratePreferences(students []models.Student, src *sampling.Source) []models.PreferenceTuple {
	prefs := make([]models.PreferenceTuple, 0, len(students)*4)
	for _, student := range students {
		career := sampling.Choice(src, careerOptions)
		delivery := sampling.Choice(src, deliveryOptions)
		timeOfDay := sampling.Choice(src, timeOfDayOptions)
		skills := sampling.Choice(src, skillFocusOptions)

		prefs = append(prefs,
			newPreference(student.ID, models.PreferenceCareerGoal, career, preferenceWeight(src, 0.6, 1.0), models.SourceSurvey),
			newPreference(student.ID, models.PreferenceDeliveryMode, delivery, preferenceWeight(src, 0.3, 0.8), models.SourceSurvey),
			newPreference(student.ID, models.PreferenceTimeOfDay, timeOfDay, preferenceWeight(src, 0.2, 0.6), models.SourceSurvey),
			newPreference(student.ID, models.PreferenceSkillsToBuild, skills, preferenceWeight(src, 0.4, 0.9), models.SourceAdvisorNote),
		)
	}
	return prefs
}

func (s *preferenceService) EnrichPreferences(
	students []models.Student,
	enrollments []models.Enrollment,
	catalog *models.Catalog,
	src *sampling.Source,
) []models.PreferenceTuple {
	tookElective := make(map[string]bool)
	for _, e := range enrollments {
		if course, ok := catalog.Get(e.CourseID); ok && course.Category == models.CategoryTechnicalElective {
			tookElective[e.StudentID] = true
		}
	}

	var eligible []string
	for _, student := range students {
		if tookElective[student.ID] {
			eligible = append(eligible, student.ID)
		}
	}

	var extra []models.PreferenceTuple
	for _, id := range eligible {
		for _, interest := range sampling.Sample(src, enrichmentInterests, src.IntRange(1, 2)) {
			extra = append(extra, newPreference(id, models.PreferenceSkillsToBuild, interest,
				preferenceWeight(src, 0.5, 0.9), sampling.Choice(src, enrichmentSources)))
		}
	}

	careerCount := int(float64(len(eligible)) * enrichedCareerShare)
	for _, id := range sampling.Sample(src, eligible, careerCount) {
		goal := sampling.Choice(src, enrichmentCareerGoals)
		extra = append(extra, newPreference(id, models.PreferenceCareerGoal, goal,
			preferenceWeight(src, 0.7, 0.95), models.SourceSurvey))
	}

	s.logger.Debug("Enriched preferences",
		zap.Int("students", len(eligible)),
		zap.Int("tuples", len(extra)))
	return extra
}

func newPreference(studentID string, kind models.PreferenceType, value string, weight float64, source models.PreferenceSource) models.PreferenceTuple {
	return models.PreferenceTuple{
		StudentID: studentID,
		Type:      kind,
		Value:     value,
		Weight:    weight,
		Source:    source,
	}
}

// preferenceWeight draws U(lo,hi) rounded to two decimals and held inside (0,1).
func preferenceWeight(src *sampling.Source, lo, hi float64) float64 {
	w := sampling.Round(src.Uniform(lo, hi), 2)
	return max(minPreferenceWeight, min(w, maxPreferenceWeight))
}
