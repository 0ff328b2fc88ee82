package models

// GenerationConstraints bounds what a generated timetable should respect.
type GenerationConstraints struct {
	MaxPeriodsPerDay          int  `json:"max_periods_per_day" validate:"omitempty,min=1,max=16"`
	BreakDuration             int  `json:"break_duration" validate:"omitempty,min=0,max=120"`
	NEPComplianceStrict       bool `json:"nep_compliance_strict"`
	MultidisciplinarySessions bool `json:"multidisciplinary_sessions"`
	CoCurricularMandatory     bool `json:"co_curricular_mandatory"`
}

// GenerationPreferences are subject-name hints, not IDs.
type GenerationPreferences struct {
	MorningSubjects   []string `json:"morning_subjects"`
	AfternoonSubjects []string `json:"afternoon_subjects"`
	AvoidConsecutive  []string `json:"avoid_consecutive"`
}

// GenerationRequest targets one class of one school.
type GenerationRequest struct {
	SchoolID    string                `json:"school_id"`
	ClassID     string                `json:"class_id"`
	Constraints GenerationConstraints `json:"constraints"`
	Preferences GenerationPreferences `json:"preferences"`
}

// DefaultConstraints mirrors the defaults offered to school administrators.
func DefaultConstraints() GenerationConstraints {
	return GenerationConstraints{
		MaxPeriodsPerDay:          8,
		BreakDuration:             15,
		NEPComplianceStrict:       true,
		MultidisciplinarySessions: true,
		CoCurricularMandatory:     true,
	}
}

// DefaultPreferences mirrors the default scheduling hints offered to administrators.
func DefaultPreferences() GenerationPreferences {
	return GenerationPreferences{
		MorningSubjects:   []string{"Mathematics", "Science", "English"},
		AfternoonSubjects: []string{"Art Education", "Physical Education", "Music"},
		AvoidConsecutive:  []string{"Mathematics", "Physics"},
	}
}

// DroppedSubject is a subject left out because the slot-day capacity ran out.
type DroppedSubject struct {
	SubjectID   string      `json:"subject_id"`
	Name        string      `json:"name"`
	NEPPriority NEPPriority `json:"nep_priority"`
}
