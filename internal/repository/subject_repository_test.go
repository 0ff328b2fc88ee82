package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
)

func TestSubjectRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "code", "category", "credit_hours", "nep_priority", "multidisciplinary"}).
		AddRow("s1", "Art", "ART", "art_education", 2, "high", true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, category, credit_hours, nep_priority, multidisciplinary FROM subjects WHERE 1=1 AND category = $1 AND nep_priority = $2 ORDER BY name ASC")).
		WithArgs("art_education", "high").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.SubjectFilter{Category: "art_education", Priority: "high"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryArtEducation, list[0].Category)
	assert.Equal(t, models.PriorityHigh, list[0].NEPPriority)
	assert.True(t, list[0].Multidisciplinary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("FROM subjects").WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background(), models.SubjectFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list subjects")
}

func TestSubjectRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
