package models

// SubjectCategory classifies subjects along the NEP 2020 curriculum areas.
type SubjectCategory string

const (
	CategoryCore              SubjectCategory = "core"
	CategoryElective          SubjectCategory = "elective"
	CategoryVocational        SubjectCategory = "vocational"
	CategoryArtEducation      SubjectCategory = "art_education"
	CategoryPhysicalEducation SubjectCategory = "physical_education"
	CategoryValueEducation    SubjectCategory = "value_education"
)

// AllSubjectCategories lists every defined category in canonical order.
var AllSubjectCategories = []SubjectCategory{
	CategoryCore,
	CategoryElective,
	CategoryVocational,
	CategoryArtEducation,
	CategoryPhysicalEducation,
	CategoryValueEducation,
}

// Valid reports whether the category is part of the closed enumeration.
func (c SubjectCategory) Valid() bool {
	for _, known := range AllSubjectCategories {
		if c == known {
			return true
		}
	}
	return false
}

// NEPPriority expresses how strongly the policy wants a subject placed.
type NEPPriority string

const (
	PriorityHigh   NEPPriority = "high"
	PriorityMedium NEPPriority = "medium"
	PriorityLow    NEPPriority = "low"
)

// Rank orders priorities for placement: high=0, medium=1, low=2. Unknown values sort last.
func (p NEPPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether the priority is part of the closed enumeration.
func (p NEPPriority) Valid() bool {
	return p.Rank() < 3
}

// Subject represents an academic subject in the school catalog.
type Subject struct {
	ID                string          `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Code              string          `db:"code" json:"code"`
	Category          SubjectCategory `db:"category" json:"category"`
	CreditHours       int             `db:"credit_hours" json:"credit_hours"`
	NEPPriority       NEPPriority     `db:"nep_priority" json:"nep_priority"`
	Multidisciplinary bool            `db:"multidisciplinary" json:"multidisciplinary"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Category string
	Priority string
	Search   string
}
