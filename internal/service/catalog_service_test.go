package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

type subjectListerStub struct {
	subjects []models.Subject
	err      error
	filter   models.SubjectFilter
}

func (s *subjectListerStub) List(_ context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	s.filter = filter
	return s.subjects, s.err
}

type teacherListerStub struct {
	teachers []models.Teacher
	err      error
	filter   models.TeacherFilter
}

func (s *teacherListerStub) List(_ context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	s.filter = filter
	return s.teachers, s.err
}

type timeSlotListerStub struct {
	slots []models.TimeSlot
	err   error
}

func (s *timeSlotListerStub) List(context.Context) ([]models.TimeSlot, error) {
	return s.slots, s.err
}

func newCatalogFixture(catalog models.Catalog) (*CatalogService, *teacherListerStub) {
	teachers := &teacherListerStub{teachers: catalog.Teachers}
	return NewCatalogService(&subjectListerStub{subjects: catalog.Subjects}, teachers, &timeSlotListerStub{slots: catalog.TimeSlots}, nil), teachers
}

func TestCatalogServiceLoad(t *testing.T) {
	svc, teachers := newCatalogFixture(scenarioCatalog())

	catalog, err := svc.Load(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Len(t, catalog.Subjects, 3)
	assert.Len(t, catalog.Teachers, 1)
	assert.Len(t, catalog.TimeSlots, 4)
	assert.Equal(t, "school-1", teachers.filter.SchoolID)
}

func TestCatalogServiceLoadPropagatesStoreErrors(t *testing.T) {
	svc := NewCatalogService(&subjectListerStub{}, &teacherListerStub{err: errors.New("db down")}, &timeSlotListerStub{}, nil)

	_, err := svc.Load(context.Background(), "school-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestCatalogServiceLoadRejectsBadSlots(t *testing.T) {
	catalog := scenarioCatalog()
	catalog.TimeSlots[0].DurationMinutes = 30
	svc, _ := newCatalogFixture(catalog)

	_, err := svc.Load(context.Background(), "school-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestCatalogServiceListValidation(t *testing.T) {
	svc, _ := newCatalogFixture(scenarioCatalog())

	_, err := svc.ListSubjects(context.Background(), models.SubjectFilter{Category: "sports"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.ListSubjects(context.Background(), models.SubjectFilter{Priority: "urgent"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.ListTeachers(context.Background(), models.TeacherFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	subjects, err := svc.ListSubjects(context.Background(), models.SubjectFilter{Category: "art_education"})
	require.NoError(t, err)
	assert.Len(t, subjects, 3)
}

func TestCatalogServiceLoadCurriculum(t *testing.T) {
	svc, teachers := newCatalogFixture(scenarioCatalog())

	catalog, err := svc.LoadCurriculum(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog.Subjects, 3)
	assert.Len(t, catalog.TimeSlots, 4)
	assert.Empty(t, catalog.Teachers)
	assert.Empty(t, teachers.filter.SchoolID)
}
