package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// DefaultStudentCount is the population size when none is configured.
const DefaultStudentCount = 120

const aiStreamShare = 0.35

var (
	admitTerms = []models.TermCode{
		models.MustParseTermCode("2024F"),
		models.MustParseTermCode("2025W"),
		models.MustParseTermCode("2025F"),
	}
	undergradMajors = []string{
		"Computer Science",
		"Software Engineering",
		"Information Technology",
		"Electrical Engineering",
		"Data Science",
		"Mathematics",
	}
	interestPool = []string{
		"cloud-computing",
		"cybersecurity",
		"data-analytics",
		"machine-learning",
		"project-management",
		"software-engineering",
		"human-centered-design",
		"entrepreneurship",
	}
	learningStyles      = []string{"project-based", "lecture", "self-paced"}
	coopStatuses        = []models.CoopStatus{models.CoopSeeking, models.CoopPlaced, models.CoopNotApplicable}
	demographicClusters = []string{"Group-A", "Group-B", "Group-C", "Group-D"}
	citizenshipWeights  = []sampling.Weighted[string]{
		{Value: "domestic", Weight: 0.35},
		{Value: "international", Weight: 0.65},
	}
)

// PopulationService generates the admitted student population.
type PopulationService interface {
	// GenerateStudents returns count students numbered from firstSeq, so
	// STU-0001 onwards for a new population.
	GenerateStudents(firstSeq, count int, src *sampling.Source) ([]models.Student, error)
}

type populationService struct {
	logger *zap.Logger
}

// NewPopulationService creates a new PopulationService.
func NewPopulationService(logger *zap.Logger) PopulationService {
	return &populationService{logger: logger.Named("population")}
}

var _ PopulationService = (*populationService)(nil)

func (s *populationService) GenerateStudents(firstSeq, count int, src *sampling.Source) ([]models.Student, error) {
	if count < 1 {
		return nil, fmt.Errorf("student count must be positive, got %d", count)
	}
	if firstSeq < 1 {
		return nil, fmt.Errorf("first student sequence must be positive, got %d", firstSeq)
	}

	students := make([]models.Student, 0, count)
	for seq := firstSeq; seq < firstSeq+count; seq++ {
		stream := models.StreamGeneral
		if src.Chance(aiStreamShare) {
			stream = models.StreamAI
		}

		students = append(students, models.Student{
			ID:                  models.StudentID(seq),
			AdmitTerm:           sampling.Choice(src, admitTerms),
			ProgramStream:       stream,
			UndergradMajor:      sampling.Choice(src, undergradMajors),
			EntryGPA:            models.ClampEntryGPA(sampling.Round(src.Normal(3.25, 0.25), 2)),
			CoopStatus:          sampling.Choice(src, coopStatuses),
			DemographicGroup:    sampling.Choice(src, demographicClusters),
			CitizenshipStatus:   sampling.WeightedChoice(src, citizenshipWeights),
			Interests:           models.NormalizeTags(sampling.Sample(src, interestPool, src.IntRange(2, 4))),
			LearningStyle:       sampling.Choice(src, learningStyles),
			WorkExperienceYears: sampling.Round(src.Uniform(0, 8), 1),
		})
	}

	s.logger.Debug("Generated student population", zap.Int("students", len(students)))
	return students, nil
}
