package models

// ComplianceCategory names one criterion of the NEP 2020 rubric.
type ComplianceCategory string

const (
	ComplianceArtEducationPriority         ComplianceCategory = "art_education_priority"
	CompliancePhysicalEducationBalance     ComplianceCategory = "physical_education_balance"
	ComplianceMultidisciplinaryIntegration ComplianceCategory = "multidisciplinary_integration"
	ComplianceValueBasedLearning           ComplianceCategory = "value_based_learning"
	ComplianceFlexibleAssessment           ComplianceCategory = "flexible_assessment"
	ComplianceHolisticDevelopment          ComplianceCategory = "holistic_development"
)

// AllComplianceCategories lists the six rubric criteria in reporting order.
var AllComplianceCategories = []ComplianceCategory{
	ComplianceMultidisciplinaryIntegration,
	ComplianceArtEducationPriority,
	CompliancePhysicalEducationBalance,
	ComplianceValueBasedLearning,
	ComplianceFlexibleAssessment,
	ComplianceHolisticDevelopment,
}

// ComplianceReport is the rubric evaluation of one timetable.
type ComplianceReport struct {
	OverallScore    int                        `json:"overall_score"`
	Categories      map[ComplianceCategory]int `json:"categories"`
	Recommendations []string                   `json:"recommendations"`
}
