package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

const timetableColumns = "id, school_id, class_id, subject_id, teacher_id, time_slot_id, day_of_week, room_number, ai_confidence_score, created_at"

// TimetableRepository persists generated timetable entries per class.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByClass returns a class timetable ordered by day then slot.
func (r *TimetableRepository) ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error) {
	const query = `SELECT ` + timetableColumns + ` FROM timetable_entries WHERE class_id = $1 ORDER BY day_of_week ASC, time_slot_id ASC`
	entries := make([]models.TimetableEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ReplaceForClass discards the class's current timetable and stores the new one atomically. Entries are
// updated in place with their stored IDs and class.
func (r *TimetableRepository) ReplaceForClass(ctx context.Context, classID string, entries []models.TimetableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete previous timetable: %w", err)
	}
	if err = r.insertEntries(ctx, tx, classID, entries); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace timetable: %w", err)
	}
	return nil
}

func (r *TimetableRepository) insertEntries(ctx context.Context, exec sqlx.ExtContext, classID string, entries []models.TimetableEntry) error {
	now := time.Now().UTC()
	for i := range entries {
		payload := entries[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.ClassID = classID

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO timetable_entries (`+timetableColumns+`) VALUES (:id, :school_id, :class_id, :subject_id, :teacher_id, :time_slot_id, :day_of_week, :room_number, :ai_confidence_score, :created_at)`, &payload); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
		entries[i] = payload
	}
	return nil
}
