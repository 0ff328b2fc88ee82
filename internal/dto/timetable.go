package dto

import (
	"github.com/noah-isme/nep-timetable-api/internal/models"
)

// GenerateTimetableRequest asks for a new timetable for one class. Omitted constraints and preferences
// fall back to the administrator defaults.
type GenerateTimetableRequest struct {
	SchoolID    string                        `json:"school_id" validate:"required"`
	ClassID     string                        `json:"class_id" validate:"required"`
	Constraints *models.GenerationConstraints `json:"constraints" validate:"omitempty"`
	Preferences *models.GenerationPreferences `json:"preferences"`
	DryRun      bool                          `json:"dry_run"`
}

// ToModel resolves defaults.
func (r GenerateTimetableRequest) ToModel() models.GenerationRequest {
	req := models.GenerationRequest{
		SchoolID:    r.SchoolID,
		ClassID:     r.ClassID,
		Constraints: models.DefaultConstraints(),
		Preferences: models.DefaultPreferences(),
	}
	if r.Constraints != nil {
		req.Constraints = *r.Constraints
	}
	if r.Preferences != nil {
		req.Preferences = *r.Preferences
	}
	return req
}

// BatchGenerateRequest fans generation out across classes of one school.
type BatchGenerateRequest struct {
	SchoolID    string                        `json:"school_id" validate:"required"`
	ClassIDs    []string                      `json:"class_ids" validate:"required,min=1,max=50,unique,dive,required"`
	Constraints *models.GenerationConstraints `json:"constraints" validate:"omitempty"`
	Preferences *models.GenerationPreferences `json:"preferences"`
}

// ForClass builds the single-class request for one batch member.
func (r BatchGenerateRequest) ForClass(classID string) GenerateTimetableRequest {
	return GenerateTimetableRequest{
		SchoolID:    r.SchoolID,
		ClassID:     classID,
		Constraints: r.Constraints,
		Preferences: r.Preferences,
	}
}

// GenerateTimetableResponse carries the timetable and how it was produced.
type GenerateTimetableResponse struct {
	Source                    string                  `json:"source"`
	Timetable                 []models.TimetableEntry `json:"timetable"`
	Compliance                models.ComplianceReport `json:"compliance"`
	Dropped                   []models.DroppedSubject `json:"dropped_subjects"`
	DroppedCount              int                     `json:"dropped_count"`
	FallbackReason            string                  `json:"fallback_reason,omitempty"`
	RemoteComplianceScore     *float64                `json:"remote_compliance_score,omitempty"`
	OptimizationNotes         []string                `json:"optimization_notes"`
	MultidisciplinarySessions []string                `json:"multidisciplinary_sessions"`
	Warnings                  []string                `json:"warnings"`
	Persisted                 bool                    `json:"persisted"`
	GenerationTimeMs          int64                   `json:"generation_time_ms"`
}

// TimetableEntryInput is one placement submitted for compliance analysis.
type TimetableEntryInput struct {
	SubjectID  string  `json:"subject_id" validate:"required"`
	TeacherID  string  `json:"teacher_id"`
	TimeSlotID string  `json:"time_slot_id" validate:"required"`
	DayOfWeek  int     `json:"day_of_week" validate:"min=1,max=6"`
	RoomNumber *string `json:"room_number"`
}

// ComplianceAnalysisRequest scores an ad hoc timetable. SubjectIDs narrows the subject catalog used as
// the denominator; empty means every subject.
type ComplianceAnalysisRequest struct {
	Timetable  []TimetableEntryInput `json:"timetable" validate:"dive"`
	SubjectIDs []string              `json:"subject_ids" validate:"omitempty,dive,required"`
}

// Entries converts the payload into timetable entries.
func (r ComplianceAnalysisRequest) Entries() []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0, len(r.Timetable))
	for _, in := range r.Timetable {
		entries = append(entries, models.TimetableEntry{
			SubjectID:  in.SubjectID,
			TeacherID:  in.TeacherID,
			TimeSlotID: in.TimeSlotID,
			DayOfWeek:  in.DayOfWeek,
			RoomNumber: in.RoomNumber,
		})
	}
	return entries
}

// BatchClassStatus is the state of one class in a batch.
type BatchClassStatus struct {
	ClassID      string `json:"class_id"`
	Status       string `json:"status"`
	Source       string `json:"source,omitempty"`
	Entries      int    `json:"entries"`
	DroppedCount int    `json:"dropped_count"`
	OverallScore *int   `json:"overall_score,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchStatusResponse reports a batch and its classes.
type BatchStatusResponse struct {
	BatchID     string             `json:"batch_id"`
	SchoolID    string             `json:"school_id"`
	Status      string             `json:"status"`
	RequestedAt string             `json:"requested_at"`
	Classes     []BatchClassStatus `json:"classes"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
