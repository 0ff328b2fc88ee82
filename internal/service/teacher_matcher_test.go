package service

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

func TestMatchTeacherByNameToken(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t1", Specializations: pq.StringArray{"Biology"}},
		{ID: "t2", Specializations: pq.StringArray{"Applied Mathematics"}},
	}
	subject := models.Subject{ID: "math", Name: "Mathematics Advanced", Category: models.CategoryCore}

	teacher, err := MatchTeacher(subject, 0, teachers)
	require.NoError(t, err)
	assert.Equal(t, "t2", teacher.ID)
}

func TestMatchTeacherByCategoryKeyword(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t1", Specializations: pq.StringArray{"Chemistry"}},
		{ID: "t2", Specializations: pq.StringArray{"Fine Arts"}},
		{ID: "t3", Specializations: pq.StringArray{"Physical Training"}},
	}

	art, err := MatchTeacher(models.Subject{Name: "Visual Design", Category: models.CategoryArtEducation}, 0, teachers)
	require.NoError(t, err)
	assert.Equal(t, "t2", art.ID)

	pe, err := MatchTeacher(models.Subject{Name: "Yoga", Category: models.CategoryPhysicalEducation}, 0, teachers)
	require.NoError(t, err)
	assert.Equal(t, "t3", pe.ID)
}

func TestMatchTeacherFirstMatchWins(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t1", Specializations: pq.StringArray{"english literature"}},
		{ID: "t2", Specializations: pq.StringArray{"English"}},
	}
	teacher, err := MatchTeacher(models.Subject{Name: "English", Category: models.CategoryCore}, 5, teachers)
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
}

func TestMatchTeacherPositionalFallback(t *testing.T) {
	teachers := []models.Teacher{
		{ID: "t1", Specializations: pq.StringArray{"History"}},
		{ID: "t2"},
		{ID: "t3", Specializations: pq.StringArray{}},
	}
	subject := models.Subject{Name: "Carpentry", Category: models.CategoryVocational}

	for position, want := range map[int]string{0: "t1", 1: "t2", 2: "t3", 4: "t2"} {
		teacher, err := MatchTeacher(subject, position, teachers)
		require.NoError(t, err)
		assert.Equal(t, want, teacher.ID, "position %d", position)
	}
}

func TestMatchTeacherEmptyList(t *testing.T) {
	_, err := MatchTeacher(models.Subject{Name: "Music"}, 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNoTeachersAvailable))
}
