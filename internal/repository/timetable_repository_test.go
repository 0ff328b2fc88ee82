package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

func TestTimetableRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "school_id", "class_id", "subject_id", "teacher_id", "time_slot_id", "day_of_week", "room_number", "ai_confidence_score", "created_at"}).
		AddRow("e1", "school-1", "class-1", "math", "t1", "1", 1, "Room 3", 0.75, now).
		AddRow("e2", "school-1", "class-1", "art", "t1", "2", 1, nil, 0.9, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE class_id = $1 ORDER BY day_of_week ASC, time_slot_id ASC")).
		WithArgs("class-1").
		WillReturnRows(rows)

	entries, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].RoomNumber)
	assert.Equal(t, "Room 3", *entries[0].RoomNumber)
	assert.Nil(t, entries[1].RoomNumber)
	assert.InDelta(t, 0.9, entries[1].AIConfidenceScore, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceForClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.TimetableEntry{
		{SchoolID: "school-1", SubjectID: "math", TeacherID: "t1", TimeSlotID: "1", DayOfWeek: 1, AIConfidenceScore: 0.75},
		{ID: "keep", SchoolID: "school-1", SubjectID: "art", TeacherID: "t1", TimeSlotID: "2", DayOfWeek: 1, AIConfidenceScore: 0.75},
	}
	require.NoError(t, repo.ReplaceForClass(context.Background(), "class-1", entries))
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "keep", entries[1].ID)
	assert.Equal(t, "class-1", entries[0].ClassID)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceForClass(context.Background(), "class-1", []models.TimetableEntry{{SubjectID: "math", DayOfWeek: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert timetable entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}
