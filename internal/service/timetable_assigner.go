package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

// HeuristicConfidence tags entries produced by the greedy assigner.
const HeuristicConfidence = 0.75

// schoolDays is the number of teaching days (Monday to Saturday).
const schoolDays = models.LastSchoolDay - models.FirstSchoolDay + 1

// AssignmentResult carries the placed entries and what could not be placed.
type AssignmentResult struct {
	Entries []models.TimetableEntry `json:"entries"`
	Dropped []models.DroppedSubject `json:"dropped"`
}

// TimetableAssigner places subjects into slots. Implementations must not mutate the catalog.
type TimetableAssigner interface {
	Assign(catalog models.Catalog, req models.GenerationRequest) (*AssignmentResult, error)
}

// GreedyAssigner is a single-pass priority heuristic: no backtracking, no teacher conflict checks
// across classes.
type GreedyAssigner struct {
	rooms RoomAdvisor
	now   func() time.Time
	newID func() string
}

// NewGreedyAssigner wires the room advisor. A nil advisor uses the default table.
func NewGreedyAssigner(rooms RoomAdvisor) *GreedyAssigner {
	if rooms == nil {
		rooms = NewRoomAdvisor(nil)
	}
	return &GreedyAssigner{
		rooms: rooms,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Assign walks subjects in priority order and fills slot i of day d with the subject at position
// (d-1)*len(pool)+i. Entries come back in sorted-subject order, not calendar order.
func (a *GreedyAssigner) Assign(catalog models.Catalog, req models.GenerationRequest) (*AssignmentResult, error) {
	result := &AssignmentResult{
		Entries: make([]models.TimetableEntry, 0, len(catalog.Subjects)),
		Dropped: make([]models.DroppedSubject, 0),
	}
	if len(catalog.Subjects) == 0 {
		return result, nil
	}

	pool := regularSlotPool(catalog.TimeSlots)
	subjects := sortByPriority(catalog.Subjects)
	capacity := len(pool) * schoolDays
	createdAt := a.now()

	for i, subject := range subjects {
		if i >= capacity {
			for _, rest := range subjects[i:] {
				result.Dropped = append(result.Dropped, models.DroppedSubject{SubjectID: rest.ID, Name: rest.Name, NEPPriority: rest.NEPPriority})
			}
			break
		}

		teacher, err := MatchTeacher(subject, i, catalog.Teachers)
		if err != nil {
			return nil, err
		}

		room := a.rooms.Suggest(subject)
		slot := pool[i%len(pool)]
		result.Entries = append(result.Entries, models.TimetableEntry{
			ID:                a.newID(),
			SchoolID:          req.SchoolID,
			ClassID:           req.ClassID,
			SubjectID:         subject.ID,
			TeacherID:         teacher.ID,
			TimeSlotID:        slot.ID,
			DayOfWeek:         i/len(pool) + models.FirstSchoolDay,
			RoomNumber:        &room,
			AIConfidenceScore: HeuristicConfidence,
			CreatedAt:         createdAt,
		})
	}
	return result, nil
}

// regularSlotPool keeps regular slots in caller order; a repeated slot ID keeps its first position so
// (day, slot) pairs stay unique.
func regularSlotPool(slots []models.TimeSlot) []models.TimeSlot {
	pool := make([]models.TimeSlot, 0, len(slots))
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if !slot.IsAssignable() || seen[slot.ID] {
			continue
		}
		seen[slot.ID] = true
		pool = append(pool, slot)
	}
	return pool
}

func sortByPriority(subjects []models.Subject) []models.Subject {
	sorted := make([]models.Subject, len(subjects))
	copy(sorted, subjects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NEPPriority.Rank() < sorted[j].NEPPriority.Rank()
	})
	return sorted
}
