package service

import (
	"math"
	"sort"
	"strconv"

	"github.com/noah-isme/nep-timetable-api/internal/models"
)

// Rubric placeholders. These are policy weights, not derived signals.
const (
	PhysicalEducationPresentScore = 90
	PhysicalEducationAbsentScore  = 60
	ValueEducationPresentScore    = 85
	ValueEducationAbsentScore     = 70
	FlexibleAssessmentScore       = 80

	// EarlySlotWindow is how many chronological slot positions count as prime time for art education.
	EarlySlotWindow = 4

	// FallbackComplianceScore is reported when the heuristic assigner stands in for remote generation.
	FallbackComplianceScore = 75

	recommendationThreshold = 80
)

type recommendationRule struct {
	category  models.ComplianceCategory
	threshold int
	advice    string
}

var recommendationRubric = []recommendationRule{
	{
		category:  models.ComplianceArtEducationPriority,
		threshold: recommendationThreshold,
		advice:    "Art education priority is low: schedule art education subjects in the first four periods of the day, during peak creativity hours.",
	},
	{
		category:  models.ComplianceMultidisciplinaryIntegration,
		threshold: recommendationThreshold,
		advice:    "Multidisciplinary integration is low: add more multidisciplinary sessions, for example combining Science and Mathematics.",
	},
	{
		category:  models.CompliancePhysicalEducationBalance,
		threshold: recommendationThreshold,
		advice:    "Physical education balance is low: add a physical education subject to the weekly timetable.",
	},
}

// ComplianceScorer evaluates a timetable against the six-criterion NEP 2020 rubric.
type ComplianceScorer struct{}

// NewComplianceScorer constructs a scorer.
func NewComplianceScorer() *ComplianceScorer {
	return &ComplianceScorer{}
}

// Score is a pure function of its inputs; entry order does not affect the result. Slots, when given,
// define chronological slot positions; otherwise positions follow the natural order of slot IDs.
func (s *ComplianceScorer) Score(entries []models.TimetableEntry, subjects []models.Subject, slots []models.TimeSlot) models.ComplianceReport {
	categories := map[models.ComplianceCategory]int{
		models.ComplianceArtEducationPriority:         artEducationPriority(entries, subjects, slots),
		models.CompliancePhysicalEducationBalance:     presenceScore(subjects, models.CategoryPhysicalEducation, PhysicalEducationPresentScore, PhysicalEducationAbsentScore),
		models.ComplianceMultidisciplinaryIntegration: multidisciplinaryIntegration(subjects),
		models.ComplianceValueBasedLearning:           presenceScore(subjects, models.CategoryValueEducation, ValueEducationPresentScore, ValueEducationAbsentScore),
		models.ComplianceFlexibleAssessment:           FlexibleAssessmentScore,
		models.ComplianceHolisticDevelopment:          holisticDevelopment(subjects),
	}

	total := 0
	for _, score := range categories {
		total += score
	}

	recommendations := make([]string, 0, len(recommendationRubric))
	for _, rule := range recommendationRubric {
		if categories[rule.category] < rule.threshold {
			recommendations = append(recommendations, rule.advice)
		}
	}

	return models.ComplianceReport{
		OverallScore:    roundPercent(float64(total) / float64(len(categories))),
		Categories:      categories,
		Recommendations: recommendations,
	}
}

// FallbackComplianceReport is the fixed report paired with heuristic output.
func FallbackComplianceReport() models.ComplianceReport {
	categories := make(map[models.ComplianceCategory]int, len(models.AllComplianceCategories))
	for _, category := range models.AllComplianceCategories {
		categories[category] = FallbackComplianceScore
	}
	return models.ComplianceReport{
		OverallScore:    FallbackComplianceScore,
		Categories:      categories,
		Recommendations: []string{},
	}
}

func artEducationPriority(entries []models.TimetableEntry, subjects []models.Subject, slots []models.TimeSlot) int {
	art := make(map[string]bool)
	for _, subject := range subjects {
		if subject.Category == models.CategoryArtEducation {
			art[subject.ID] = true
		}
	}
	if len(art) == 0 {
		return 100
	}

	positions := slotPositions(entries, slots)
	early := 0
	for _, entry := range entries {
		if !art[entry.SubjectID] {
			continue
		}
		if pos, ok := positions[entry.TimeSlotID]; ok && pos < EarlySlotWindow {
			early++
		}
	}
	return capPercent(float64(early) / float64(len(art)) * 100)
}

// slotPositions maps slot IDs to their 0-based chronological position among assignable slots.
func slotPositions(entries []models.TimetableEntry, slots []models.TimeSlot) map[string]int {
	positions := make(map[string]int)
	if len(slots) > 0 {
		ordered := make([]models.TimeSlot, 0, len(slots))
		for _, slot := range slots {
			if slot.IsAssignable() {
				ordered = append(ordered, slot)
			}
		}
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartsBefore(ordered[j]) })
		for _, slot := range ordered {
			if _, seen := positions[slot.ID]; !seen {
				positions[slot.ID] = len(positions)
			}
		}
		return positions
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !seen[entry.TimeSlotID] {
			seen[entry.TimeSlotID] = true
			ids = append(ids, entry.TimeSlotID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return naturalLess(ids[i], ids[j]) })
	for i, id := range ids {
		positions[id] = i
	}
	return positions
}

func naturalLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

func presenceScore(subjects []models.Subject, category models.SubjectCategory, present, absent int) int {
	for _, subject := range subjects {
		if subject.Category == category {
			return present
		}
	}
	return absent
}

func multidisciplinaryIntegration(subjects []models.Subject) int {
	if len(subjects) == 0 {
		return 100
	}
	flagged := 0
	for _, subject := range subjects {
		if subject.Multidisciplinary {
			flagged++
		}
	}
	return capPercent(float64(flagged) / float64(len(subjects)) * 100)
}

func holisticDevelopment(subjects []models.Subject) int {
	present := make(map[models.SubjectCategory]bool)
	for _, subject := range subjects {
		if subject.Category.Valid() {
			present[subject.Category] = true
		}
	}
	return roundPercent(float64(len(present)) / float64(len(models.AllSubjectCategories)) * 100)
}

func capPercent(value float64) int {
	return int(math.Min(100, float64(roundPercent(value))))
}

func roundPercent(value float64) int {
	return int(math.Round(value))
}
