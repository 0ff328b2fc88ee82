package models

import "time"

const (
	FirstSchoolDay = 1
	LastSchoolDay  = 6
)

// TimetableEntry places one subject with one teacher in a slot on a given day.
type TimetableEntry struct {
	ID                string    `db:"id" json:"id"`
	SchoolID          string    `db:"school_id" json:"school_id"`
	ClassID           string    `db:"class_id" json:"class_id"`
	SubjectID         string    `db:"subject_id" json:"subject_id"`
	TeacherID         string    `db:"teacher_id" json:"teacher_id"`
	TimeSlotID        string    `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek         int       `db:"day_of_week" json:"day_of_week"`
	RoomNumber        *string   `db:"room_number" json:"room_number,omitempty"`
	AIConfidenceScore float64   `db:"ai_confidence_score" json:"ai_confidence_score"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
}

// DayName returns the weekday name for a 1-based school day.
func DayName(day int) string {
	return dayNames[day]
}

// Catalog is the per-invocation snapshot of subjects, teachers and time slots.
type Catalog struct {
	Subjects  []Subject  `json:"subjects"`
	Teachers  []Teacher  `json:"teachers"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// SubjectIndex maps subject IDs to records.
func (c Catalog) SubjectIndex() map[string]Subject {
	index := make(map[string]Subject, len(c.Subjects))
	for _, s := range c.Subjects {
		index[s.ID] = s
	}
	return index
}

// TeacherIndex maps teacher IDs to records.
func (c Catalog) TeacherIndex() map[string]Teacher {
	index := make(map[string]Teacher, len(c.Teachers))
	for _, t := range c.Teachers {
		index[t.ID] = t
	}
	return index
}

// TimeSlotIndex maps time slot IDs to records.
func (c Catalog) TimeSlotIndex() map[string]TimeSlot {
	index := make(map[string]TimeSlot, len(c.TimeSlots))
	for _, s := range c.TimeSlots {
		index[s.ID] = s
	}
	return index
}
