package models

import "github.com/lib/pq"

// Teacher represents an instructor record.
type Teacher struct {
	ID              string         `db:"id" json:"id"`
	SchoolID        string         `db:"school_id" json:"school_id"`
	Name            string         `db:"name" json:"name"`
	Email           string         `db:"email" json:"email"`
	Specializations pq.StringArray `db:"specialization" json:"specialization"`
	ExperienceYears int            `db:"experience_years" json:"experience_years"`
	NEPTrained      bool           `db:"nep_trained" json:"nep_trained"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	SchoolID   string
	NEPTrained *bool
	Search     string
}
