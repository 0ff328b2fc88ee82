package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

type subjectLister interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
}

type teacherLister interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
}

type timeSlotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

// CatalogService assembles read-only catalog snapshots from the record store.
type CatalogService struct {
	subjects  subjectLister
	teachers  teacherLister
	timeSlots timeSlotLister
	logger    *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(subjects subjectLister, teachers teacherLister, timeSlots timeSlotLister, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{subjects: subjects, teachers: teachers, timeSlots: timeSlots, logger: logger}
}

// Load fetches subjects, the school's teachers and the time slots concurrently. Time slots with
// inconsistent bounds are rejected rather than scheduled into.
func (s *CatalogService) Load(ctx context.Context, schoolID string) (models.Catalog, error) {
	var catalog models.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subjects, err := s.subjects.List(gctx, models.SubjectFilter{})
		catalog.Subjects = subjects
		return err
	})
	g.Go(func() error {
		teachers, err := s.teachers.List(gctx, models.TeacherFilter{SchoolID: schoolID})
		catalog.Teachers = teachers
		return err
	})
	g.Go(func() error {
		slots, err := s.timeSlots.List(gctx)
		catalog.TimeSlots = slots
		return err
	})

	if err := g.Wait(); err != nil {
		return models.Catalog{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	if err := validateTimeSlots(catalog.TimeSlots); err != nil {
		return models.Catalog{}, err
	}

	s.logger.Debug("catalog loaded",
		zap.String("school_id", schoolID),
		zap.Int("subjects", len(catalog.Subjects)),
		zap.Int("teachers", len(catalog.Teachers)),
		zap.Int("time_slots", len(catalog.TimeSlots)),
	)
	return catalog, nil
}

// LoadCurriculum fetches subjects and time slots only, for scoring timetables that already have teachers.
func (s *CatalogService) LoadCurriculum(ctx context.Context) (models.Catalog, error) {
	var catalog models.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects, err := s.subjects.List(gctx, models.SubjectFilter{})
		catalog.Subjects = subjects
		return err
	})
	g.Go(func() error {
		slots, err := s.timeSlots.List(gctx)
		catalog.TimeSlots = slots
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Catalog{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum")
	}
	return catalog, nil
}

// ListSubjects returns subjects matching the filter.
func (s *CatalogService) ListSubjects(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	if filter.Category != "" && !models.SubjectCategory(filter.Category).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject category")
	}
	if filter.Priority != "" && !models.NEPPriority(filter.Priority).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown nep priority")
	}
	subjects, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// ListTeachers returns teachers matching the filter. A school is required.
func (s *CatalogService) ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	if strings.TrimSpace(filter.SchoolID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school_id is required")
	}
	teachers, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// ListTimeSlots returns every slot in chronological order.
func (s *CatalogService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.timeSlots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

func validateTimeSlots(slots []models.TimeSlot) error {
	for _, slot := range slots {
		if err := slot.Validate(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "invalid time slot in catalog")
		}
	}
	return nil
}
