package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/sampling"
)

// offeringsPerCourse is how many of the scheduled terms each course runs in.
const offeringsPerCourse = 3

type meetingSlot struct {
	days  string
	start string
	end   string
}

type scheduledTerm struct {
	term  models.TermCode
	slots []meetingSlot
}

var (
	dayTimeSlotsFall = []meetingSlot{
		{"Mon|Wed", "10:00", "11:20"},
		{"Tue|Thu", "14:30", "15:50"},
	}
	dayTimeSlotsWinter = []meetingSlot{
		{"Mon|Wed", "13:00", "14:20"},
		{"Tue|Thu", "09:00", "10:20"},
	}
	eveningSlotsSummer = []meetingSlot{
		{"Tue", "18:00", "21:00"},
		{"Thu", "18:00", "21:00"},
	}

	offeringTerms = []scheduledTerm{
		{models.MustParseTermCode("2024F"), dayTimeSlotsFall},
		{models.MustParseTermCode("2025W"), dayTimeSlotsWinter},
		{models.MustParseTermCode("2025S"), eveningSlotsSummer},
		{models.MustParseTermCode("2025F"), dayTimeSlotsFall},
		{models.MustParseTermCode("2026W"), dayTimeSlotsWinter},
	}

	offeringRooms = []string{"Erie-1012", "Erie-2014", "Lambton-120", "Odette-2104", "Odette-140"}
)

// OfferingService assigns courses to term, room and instructor slots.
type OfferingService interface {
	// ScheduleOfferings returns offeringsPerCourse sections for every catalog course.
	ScheduleOfferings(catalog *models.Catalog, src *sampling.Source) ([]models.Offering, error)
}

type offeringService struct {
	logger *zap.Logger
}

// NewOfferingService creates a new OfferingService.
func NewOfferingService(logger *zap.Logger) OfferingService {
	return &offeringService{logger: logger.Named("offerings")}
}

var _ OfferingService = (*offeringService)(nil)

func (s *offeringService) ScheduleOfferings(catalog *models.Catalog, src *sampling.Source) ([]models.Offering, error) {
	if catalog == nil {
		return nil, fmt.Errorf("schedule offerings: catalog not built")
	}

	offerings := make([]models.Offering, 0, catalog.Len()*offeringsPerCourse)
	for _, course := range catalog.Courses() {
		terms := make([]scheduledTerm, len(offeringTerms))
		copy(terms, offeringTerms)
		sampling.Shuffle(src, terms)

		for _, st := range terms[:offeringsPerCourse] {
			slot := sampling.Choice(src, st.slots)
			offerings = append(offerings, models.Offering{
				ID:           models.OfferingID(st.term, course.Code),
				CourseID:     course.ID,
				Term:         st.term,
				Instructor:   fmt.Sprintf("Faculty-%d", src.IntRange(1, 20)),
				MeetingDays:  slot.days,
				StartTime:    slot.start,
				EndTime:      slot.end,
				Location:     sampling.Choice(src, offeringRooms),
				DeliveryMode: course.DeliveryMode,
			})
		}
	}

	s.logger.Debug("Scheduled offerings", zap.Int("offerings", len(offerings)))
	return offerings, nil
}
